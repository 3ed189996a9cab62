package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"chirp/internal/services"
)

// ContextUserKey is the Locals key under which the authenticated user is stored.
const ContextUserKey = "current_user"

// AuthRequired is a Fiber middleware that resolves the bearer token to a user
// record. Every request re-verifies the token and re-queries the store; there
// is no identity caching.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return challenge(c, "Authorization header is required")
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return challenge(c, "Authorization header format must be 'Bearer <token>'")
		}

		user, err := authService.Resolve(strings.TrimSpace(parts[1]))
		if err != nil {
			return challenge(c, "Could not validate credentials")
		}

		c.Locals(ContextUserKey, user)
		return c.Next()
	}
}

// challenge writes a 401 with a bearer challenge header.
func challenge(c *fiber.Ctx, message string) error {
	c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"message": message,
	})
}
