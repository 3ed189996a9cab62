package handlers

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"chirp/internal/middleware"
	"chirp/internal/models"
	"chirp/internal/services"
)

// PostHandler handles HTTP requests for posts and likes. All of its routes
// require an authenticated user.
type PostHandler struct {
	service  *services.PostService
	validate *validator.Validate
	log      *zap.Logger
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(service *services.PostService, log *zap.Logger) *PostHandler {
	return &PostHandler{
		service:  service,
		validate: validator.New(),
		log:      log,
	}
}

// RegisterRoutes registers the post routes on a router that already carries
// the auth middleware.
func (h *PostHandler) RegisterRoutes(router fiber.Router) {
	postRoutes := router.Group("/posts")
	postRoutes.Get("/", h.HandleListPosts)
	postRoutes.Post("/", h.HandleCreatePost)
	postRoutes.Patch("/:id", h.HandlePatchPost)
	postRoutes.Delete("/:id", h.HandleDeletePost)
	postRoutes.Post("/:id/like", h.HandleLikePost)
	postRoutes.Get("/:id/likers", h.HandleListLikers)
}

// PostRequest represents the request body for creating or patching a post.
type PostRequest struct {
	Text string `json:"text" validate:"required"`
}

// HandleListPosts returns every post.
func (h *PostHandler) HandleListPosts(c *fiber.Ctx) error {
	posts, err := h.service.ListPosts()
	if err != nil {
		h.log.Error("failed to list posts", zap.Error(err))
		return respondDomainError(c, err, "Could not retrieve posts")
	}
	return c.JSON(posts)
}

// HandleCreatePost creates a post authored by the current user.
func (h *PostHandler) HandleCreatePost(c *fiber.Ctx) error {
	req, ok := h.parsePostRequest(c)
	if !ok {
		return nil // response already written
	}

	user := currentUser(c)
	post, err := h.service.CreatePost(user.ID, req.Text)
	if err != nil {
		h.log.Error("failed to create post", zap.Uint("author_id", user.ID), zap.Error(err))
		return respondDomainError(c, err, "Could not create post")
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// HandlePatchPost replaces the text of a post owned by the current user.
func (h *PostHandler) HandlePatchPost(c *fiber.Ctx) error {
	postID, ok := parsePostID(c)
	if !ok {
		return nil
	}
	req, ok := h.parsePostRequest(c)
	if !ok {
		return nil
	}

	user := currentUser(c)
	post, err := h.service.PatchPost(postID, user.ID, req.Text)
	if err != nil {
		h.log.Warn("failed to patch post", zap.Uint("post_id", postID), zap.Uint("requester_id", user.ID), zap.Error(err))
		return respondDomainError(c, err, "Could not update post")
	}
	return c.JSON(post)
}

// HandleDeletePost deletes a post owned by the current user.
func (h *PostHandler) HandleDeletePost(c *fiber.Ctx) error {
	postID, ok := parsePostID(c)
	if !ok {
		return nil
	}

	user := currentUser(c)
	if err := h.service.DeletePost(postID, user.ID); err != nil {
		h.log.Warn("failed to delete post", zap.Uint("post_id", postID), zap.Uint("requester_id", user.ID), zap.Error(err))
		return respondDomainError(c, err, "Could not delete post")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleLikePost records a like on the post by the current user.
func (h *PostHandler) HandleLikePost(c *fiber.Ctx) error {
	postID, ok := parsePostID(c)
	if !ok {
		return nil
	}

	user := currentUser(c)
	if err := h.service.LikePost(postID, user.ID); err != nil {
		h.log.Warn("failed to like post", zap.Uint("post_id", postID), zap.Uint("user_id", user.ID), zap.Error(err))
		return respondDomainError(c, err, "Could not like post")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Post liked",
	})
}

// HandleListLikers returns the users who liked the post.
func (h *PostHandler) HandleListLikers(c *fiber.Ctx) error {
	postID, ok := parsePostID(c)
	if !ok {
		return nil
	}

	likers, err := h.service.ListLikers(postID)
	if err != nil {
		return respondDomainError(c, err, "Could not retrieve likers")
	}
	return c.JSON(likers)
}

// parsePostRequest binds and validates the post body. On failure it writes
// the error response and reports false.
func (h *PostHandler) parsePostRequest(c *fiber.Ctx) (*PostRequest, bool) {
	var req PostRequest
	if err := c.BodyParser(&req); err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
		return nil, false
	}

	if err := h.validate.Struct(req); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
		return nil, false
	}
	return &req, true
}

// parsePostID reads the :id route parameter. On failure it writes the error
// response and reports false.
func parsePostID(c *fiber.Ctx) (uint, bool) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid post ID",
		})
		return 0, false
	}
	return uint(id), true
}

// currentUser returns the user stored by the auth middleware.
func currentUser(c *fiber.Ctx) *models.User {
	return c.Locals(middleware.ContextUserKey).(*models.User)
}
