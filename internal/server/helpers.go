package server

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"folio/internal/middleware"
	"folio/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is returned by helpers that already wrote an error
// response; handlers return nil when they see it.
var errResponseWritten = errors.New("response already written")

// statusFor maps an AppError code onto its HTTP status.
func statusFor(code string) int {
	switch code {
	case models.CodeNotFound:
		return fiber.StatusNotFound
	case models.CodeUnauthorized:
		return fiber.StatusUnauthorized
	case models.CodeForbidden:
		return fiber.StatusForbidden
	case models.CodeConflict:
		return fiber.StatusConflict
	case models.CodeValidation:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes err as the standard JSON error body.
func (s *Server) respondError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		appErr = models.NewInternalError(err)
	}

	status := statusFor(appErr.Code)
	resp := models.ErrorResponse{
		Error: appErr.Message,
		Code:  appErr.Code,
	}
	if appErr.Err != nil && !s.config.IsProduction() {
		resp.Details = appErr.Err.Error()
	}

	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			slog.String("code", appErr.Code),
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
	}
	return c.Status(status).JSON(resp)
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
		Error: message,
		Code:  models.CodeValidation,
	})
}

func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(param), 10, 32)
	if err != nil || id == 0 {
		_ = badRequest(c, "Invalid ID")
		return 0, errResponseWritten
	}
	return uint(id), nil
}

func parsePagination(c *fiber.Ctx) (page, limit int) {
	page = c.QueryInt("page", models.DefaultPage)
	limit = c.QueryInt("limit", models.DefaultLimit)
	return page, limit
}

// parseOptionalBool returns nil when the query parameter is absent or not a
// boolean.
func parseOptionalBool(c *fiber.Ctx, key string) *bool {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}

// parseTags accepts both ?tags=a,b and repeated ?tags=a&tags=b.
func parseTags(c *fiber.Ctx) []string {
	var tags []string
	for _, raw := range c.Context().QueryArgs().PeekMulti("tags") {
		for _, tag := range strings.Split(string(raw), ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
	}
	return tags
}

func caller(c *fiber.Ctx) (models.Identity, error) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return models.Identity{}, models.NewUnauthorizedError("Authentication required")
	}
	return identity, nil
}
