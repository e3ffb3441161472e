package server

import (
	"net/url"
	"strings"
	"time"

	"folio/internal/models"
	"folio/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const oauthStateCookie = "folio_oauth_state"

// Login handles POST /api/auth/login
// @Summary User login
// @Description Authenticate with email and password and return a JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Login credentials"
// @Success 200 {object} service.LoginResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req service.LoginInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	res, err := s.authService.LoginWithEmailAndPassword(c.UserContext(), req)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(res)
}

// AuthWithGoogle handles POST /api/auth/google
// @Summary Google sign-in
// @Description Find or create the account for a Google profile. No token is issued.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,name=string,picture=string} true "Google profile"
// @Success 200 {object} models.PublicUser
// @Failure 400 {object} models.ErrorResponse
// @Router /auth/google [post]
func (s *Server) AuthWithGoogle(c *fiber.Ctx) error {
	var req service.GoogleProfile
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, err := s.authService.AuthWithGoogle(c.UserContext(), req)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(user)
}

// GoogleLogin handles GET /api/auth/google/login
// @Summary Start Google OAuth
// @Tags auth
// @Success 307
// @Failure 404 {object} models.ErrorResponse
// @Router /auth/google/login [get]
func (s *Server) GoogleLogin(c *fiber.Ctx) error {
	if s.google == nil {
		return s.respondError(c, models.NewNotFoundMessage("Google login is not enabled"))
	}

	state := uuid.NewString()
	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/api/auth/google",
		Expires:  time.Now().Add(10 * time.Minute),
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Redirect(s.google.AuthCodeURL(state), fiber.StatusTemporaryRedirect)
}

// GoogleCallback handles GET /api/auth/google/callback
// @Summary Finish Google OAuth
// @Description Exchange the code, log the account in and redirect to the frontend with the token
// @Tags auth
// @Param code query string true "Authorization code"
// @Param state query string true "OAuth state"
// @Success 307
// @Success 200 {object} service.LoginResult
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/google/callback [get]
func (s *Server) GoogleCallback(c *fiber.Ctx) error {
	if s.google == nil {
		return s.respondError(c, models.NewNotFoundMessage("Google login is not enabled"))
	}

	state := c.Query("state")
	if state == "" || state != c.Cookies(oauthStateCookie) {
		return s.respondError(c, models.NewUnauthorizedError("Invalid OAuth state"))
	}
	c.ClearCookie(oauthStateCookie)

	code := c.Query("code")
	if code == "" {
		return badRequest(c, "Missing authorization code")
	}

	ctx := c.UserContext()
	profile, err := s.google.Exchange(ctx, code)
	if err != nil {
		return s.respondError(c, err)
	}
	res, err := s.authService.LoginWithGoogle(ctx, *profile)
	if err != nil {
		return s.respondError(c, err)
	}

	if s.config.FrontendURL == "" {
		return c.JSON(res)
	}
	target := strings.TrimRight(s.config.FrontendURL, "/") + "/auth/callback#token=" + url.QueryEscape(res.Token)
	return c.Redirect(target, fiber.StatusTemporaryRedirect)
}

// Me handles GET /api/auth/me
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.PublicUser
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/me [get]
func (s *Server) Me(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return s.respondError(c, err)
	}

	user, err := s.authService.Me(c.UserContext(), identity)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(user)
}
