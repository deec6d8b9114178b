// middleware/session.go
package middleware

import (
	"errors"
	"log"
	"strings"

	"fortune0-platform/services"

	"github.com/gofiber/fiber/v2"
)

// SessionAuthMiddleware resolves the Bearer token to a live session and
// attaches the account email to the request context. Everything under it
// requires auth — there is no soft-fail mode.
func SessionAuthMiddleware(sessions *services.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			token = ""
		}

		email, err := sessions.Get(token)
		if err != nil {
			if !errors.Is(err, services.ErrNotFound) {
				log.Printf("❌ [SESSION] lookup failed on %s: %v", c.Path(), err)
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "session lookup failed",
				})
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Auth required",
			})
		}

		c.Locals("email", email)
		return c.Next()
	}
}
