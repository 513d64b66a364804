package middleware

import (
	"errors"
	"log/slog"
	"strings"

	"artisanhub/internal/services"

	"github.com/gofiber/fiber/v2"
)

var (
	errMissingToken    = errors.New("missing bearer token")
	errMalformedHeader = errors.New("malformed authorization header")
)

// AuthRequired is a Fiber middleware to check for a valid JWT token.
func AuthRequired(authService *services.AuthService, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return unauthorized(c, "Authorization header is required", errMissingToken)
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return unauthorized(c, "Authorization header format must be 'Bearer <token>'", errMalformedHeader)
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			logger.Info("rejected token", "path", c.Path(), "error", err)
			return unauthorized(c, "Invalid or expired token", err)
		}

		c.Locals("user_id", claims["user_id"])
		c.Locals("username", claims["username"])
		return c.Next()
	}
}

// unauthorized writes the same failure body the handlers use.
func unauthorized(c *fiber.Ctx, message string, err error) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"message": message,
		"error":   err.Error(),
	})
}
