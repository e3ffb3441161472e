package server

import (
	"folio/internal/models"
	"folio/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createUserRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password *string `json:"password"`
	Phone    string  `json:"phone"`
	Picture  string  `json:"picture"`
}

type updateUserRequest struct {
	Name       *string            `json:"name"`
	Email      *string            `json:"email"`
	Password   *string            `json:"password"`
	Phone      *string            `json:"phone"`
	Picture    *string            `json:"picture"`
	Role       *models.Role       `json:"role"`
	Status     *models.UserStatus `json:"status"`
	IsVerified *bool              `json:"is_verified"`
}

// CreateUser handles POST /api/users
// @Summary Register
// @Description Create a USER account. Password is optional for federated accounts.
// @Tags users
// @Accept json
// @Produce json
// @Param request body createUserRequest true "New account"
// @Success 201 {object} models.PublicUser
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /users [post]
func (s *Server) CreateUser(c *fiber.Ctx) error {
	var req createUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, err := s.userService.CreateUser(c.UserContext(), service.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Picture:  req.Picture,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user.Public())
}

// GetUsers handles GET /api/users
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.UserProfile
// @Failure 403 {object} models.ErrorResponse
// @Router /users [get]
func (s *Server) GetUsers(c *fiber.Ctx) error {
	users, err := s.userService.ListUsers(c.UserContext())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(users)
}

// GetUser handles GET /api/users/:id
// @Summary Get user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} models.UserProfile
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (s *Server) GetUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.GetUserByID(c.UserContext(), id)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(user)
}

// UpdateUser handles PATCH /api/users/:id. Users may update their own
// account; role, status and verification are admin only.
// @Summary Update user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body updateUserRequest true "Fields to change"
// @Success 200 {object} models.PublicUser
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [patch]
func (s *Server) UpdateUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	identity, err := caller(c)
	if err != nil {
		return s.respondError(c, err)
	}

	var req updateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	in := service.UpdateUserInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Phone:      req.Phone,
		Picture:    req.Picture,
		Role:       req.Role,
		Status:     req.Status,
		IsVerified: req.IsVerified,
	}

	if !identity.IsAdmin() {
		if identity.UserID != id {
			return s.respondError(c, models.NewForbiddenError("You can only update your own account"))
		}
		if in.Privileged() {
			return s.respondError(c, models.NewForbiddenError("Only an admin can change privileged fields"))
		}
	}

	user, err := s.userService.UpdateUser(c.UserContext(), id, in)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(user.Public())
}

// DeleteUser handles DELETE /api/users/:id
// @Summary Delete user
// @Description Fails while the user still owns posts or projects
// @Tags users
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /users/{id} [delete]
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.userService.DeleteUser(c.UserContext(), id); err != nil {
		return s.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
