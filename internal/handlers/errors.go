package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"chirp/internal/models"
)

// statusForError maps a domain error to its transport status code.
// Conflict and SelfLike deliberately map to 400, matching the service's
// public API contract.
func statusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrConflict):
		return fiber.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, models.ErrInvalidCredentials):
		return fiber.StatusBadRequest
	case errors.Is(err, models.ErrSelfLike):
		return fiber.StatusBadRequest
	case errors.Is(err, models.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, models.ErrUnauthenticated), errors.Is(err, models.ErrInvalidToken):
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

// respondDomainError writes the JSON error body for a failed operation.
// Unauthenticated responses carry a bearer challenge.
func respondDomainError(c *fiber.Ctx, err error, message string) error {
	status := statusForError(err)
	if status == fiber.StatusUnauthorized {
		c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	}
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}
