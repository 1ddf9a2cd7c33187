package middleware

import (
	"errors"
	"strings"

	"taskman/internal/repository"
	"taskman/internal/token"
	"taskman/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CurrentUserKey is the locals key under which RequireUser stores the
// resolved user.
const CurrentUserKey = "currentUser"

// RequireUser guards every task endpoint: it extracts the bearer
// token, verifies it, and resolves the embedded email to a persisted
// user. Token problems are a generic 401. A valid token whose user no
// longer exists is a 404, so the response never confirms whether an
// email is registered.
func RequireUser(tokens *token.Service, users *repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "No token provided",
				"success": false,
				"status":  401,
			})
		}
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid token format",
				"success": false,
				"status":  401,
			})
		}

		email, err := tokens.Verify(parts[1])
		if err != nil {
			logger.SecurityLogger.Warn("Token verification failed", zap.String("path", c.Path()))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid token",
				"success": false,
				"status":  401,
			})
		}

		user, err := users.GetByEmail(email)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				logger.SecurityLogger.Warn("Token subject has no user", zap.String("path", c.Path()))
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"message": "User not found",
					"success": false,
					"status":  404,
				})
			}
			logger.ErrorLogger.Error("Error resolving user", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Error resolving user",
				"success": false,
				"status":  500,
			})
		}

		c.Locals(CurrentUserKey, user)
		return c.Next()
	}
}
