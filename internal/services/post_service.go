package services

import (
	"go.uber.org/zap"

	"chirp/internal/models"
	"chirp/internal/repositories"
	"chirp/pkg/rabbitmq"
)

// PostService handles business logic for posts and likes. Ownership and
// self-like rules are enforced by the repository so they stay atomic with the
// mutation; the service orchestrates and publishes events.
type PostService struct {
	postRepo repositories.PostRepository
	mqClient *rabbitmq.Client
	log      *zap.Logger
}

// NewPostService creates a new PostService. mqClient may be nil, in which
// case event publication is skipped.
func NewPostService(postRepo repositories.PostRepository, mqClient *rabbitmq.Client, log *zap.Logger) *PostService {
	return &PostService{
		postRepo: postRepo,
		mqClient: mqClient,
		log:      log,
	}
}

// CreatePost inserts a post authored by authorID and publishes a
// post.created event.
func (s *PostService) CreatePost(authorID uint, text string) (*models.Post, error) {
	post := &models.Post{AuthorID: authorID, Text: text}
	if err := s.postRepo.Create(post); err != nil {
		return nil, err
	}

	s.log.Info("post created", zap.Uint("post_id", post.ID), zap.Uint("author_id", authorID))
	s.publishEvent("post.created", map[string]interface{}{
		"post_id":   post.ID,
		"author_id": post.AuthorID,
	})
	return post, nil
}

// ListPosts returns every post. No pagination.
func (s *PostService) ListPosts() ([]models.Post, error) {
	return s.postRepo.GetAll()
}

// PatchPost replaces the post's text on behalf of requesterID.
func (s *PostService) PatchPost(postID, requesterID uint, text string) (*models.Post, error) {
	return s.postRepo.UpdateText(postID, requesterID, text)
}

// DeletePost removes the post on behalf of requesterID.
func (s *PostService) DeletePost(postID, requesterID uint) error {
	if err := s.postRepo.Delete(postID, requesterID); err != nil {
		return err
	}
	s.log.Info("post deleted", zap.Uint("post_id", postID), zap.Uint("requester_id", requesterID))
	return nil
}

// LikePost records that requesterID liked the post and publishes a
// post.liked event.
func (s *PostService) LikePost(postID, requesterID uint) error {
	if err := s.postRepo.AddLike(postID, requesterID); err != nil {
		return err
	}

	s.publishEvent("post.liked", map[string]interface{}{
		"post_id": postID,
		"user_id": requesterID,
	})
	return nil
}

// ListLikers returns the users who liked the post.
func (s *PostService) ListLikers(postID uint) ([]models.User, error) {
	return s.postRepo.GetLikers(postID)
}

// publishEvent sends a post event to RabbitMQ. Publication is best effort:
// a broker failure is logged and never fails the request.
func (s *PostService) publishEvent(event string, payload map[string]interface{}) {
	if s.mqClient == nil {
		return
	}
	if err := s.mqClient.PublishPostEvent(event, payload); err != nil {
		s.log.Warn("failed to publish event", zap.String("event", event), zap.Error(err))
	}
}
