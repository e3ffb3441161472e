package middleware

import (
	"context"
	"strings"

	"folio/internal/models"

	"github.com/gofiber/fiber/v2"
)

const identityLocal = "identity"

// TokenParser verifies a bearer token and returns the caller it names.
type TokenParser interface {
	Parse(token string) (*models.Identity, error)
}

// AuthRequired rejects requests without a valid bearer token. On success the
// caller is stored in locals ("identity", "userID") and in the user context.
func AuthRequired(tokens TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return unauthorized(c, "Authorization header required")
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return unauthorized(c, "Invalid authorization header format")
		}

		identity, err := tokens.Parse(strings.TrimSpace(token))
		if err != nil {
			return unauthorized(c, err.Error())
		}

		c.Locals(identityLocal, *identity)
		c.Locals("userID", identity.UserID)
		c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, identity.UserID))
		return c.Next()
	}
}

// AdminRequired must run after AuthRequired.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFrom(c)
		if !ok {
			return unauthorized(c, "Authentication required")
		}
		if !identity.IsAdmin() {
			return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse{
				Error: "Admin access required",
				Code:  models.CodeForbidden,
			})
		}
		return c.Next()
	}
}

// IdentityFrom returns the caller stored by AuthRequired.
func IdentityFrom(c *fiber.Ctx) (models.Identity, bool) {
	identity, ok := c.Locals(identityLocal).(models.Identity)
	return identity, ok
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{
		Error: message,
		Code:  models.CodeUnauthorized,
	})
}
