package middleware

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"folio/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubParser map[string]models.Identity

func (s stubParser) Parse(token string) (*models.Identity, error) {
	id, ok := s[token]
	if !ok {
		return nil, errors.New("Invalid or expired token")
	}
	return &id, nil
}

func newAuthApp() *fiber.App {
	tokens := stubParser{
		"user-token":  {UserID: 2, Role: models.RoleUser},
		"admin-token": {UserID: 1, Role: models.RoleAdmin},
	}
	app := fiber.New()
	app.Get("/me", AuthRequired(tokens), func(c *fiber.Ctx) error {
		id, ok := IdentityFrom(c)
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		uid, _ := c.UserContext().Value(UserIDKey).(uint)
		return c.JSON(fiber.Map{"id": id.UserID, "ctx_id": uid})
	})
	app.Get("/admin", AuthRequired(tokens), AdminRequired(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func TestAuthRequired(t *testing.T) {
	app := newAuthApp()

	tests := []struct {
		name   string
		header string
		status int
		errMsg string
	}{
		{"missing header", "", fiber.StatusUnauthorized, "Authorization header required"},
		{"wrong scheme", "Basic abc", fiber.StatusUnauthorized, "Invalid authorization header format"},
		{"empty token", "Bearer ", fiber.StatusUnauthorized, "Invalid authorization header format"},
		{"bad token", "Bearer nope", fiber.StatusUnauthorized, "Invalid or expired token"},
		{"valid token", "Bearer user-token", fiber.StatusOK, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tc.status, resp.StatusCode)

			if tc.errMsg != "" {
				var body models.ErrorResponse
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, tc.errMsg, body.Error)
				assert.Equal(t, models.CodeUnauthorized, body.Code)
				return
			}
			var body map[string]uint
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, uint(2), body["id"])
			assert.Equal(t, uint(2), body["ctx_id"])
		})
	}
}

func TestAdminRequired(t *testing.T) {
	app := newAuthApp()

	for token, status := range map[string]int{
		"user-token":  fiber.StatusForbidden,
		"admin-token": fiber.StatusNoContent,
	} {
		req := httptest.NewRequest("GET", "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, status, resp.StatusCode, token)
	}
}
