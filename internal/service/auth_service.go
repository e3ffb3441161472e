package service

import (
	"context"
	"fmt"
	"strings"

	"folio/internal/models"
	"folio/internal/observability"
	"folio/internal/repository"
	"folio/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

const (
	loginMethodPassword = "password"
	loginMethodGoogle   = "google"
)

type AuthService struct {
	userRepo repository.UserRepository
	tokens   *TokenManager
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is returned by successful logins.
type LoginResult struct {
	User  models.PublicUser `json:"user"`
	Token string            `json:"token"`
}

func NewAuthService(userRepo repository.UserRepository, tokens *TokenManager) *AuthService {
	return &AuthService{userRepo: userRepo, tokens: tokens}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// LoginWithEmailAndPassword looks the account up first, then checks its
// status, then the password. A correct password never unlocks an inactive or
// blocked account, and an empty password is just a wrong one.
func (s *AuthService) LoginWithEmailAndPassword(ctx context.Context, in LoginInput) (res *LoginResult, err error) {
	ctx, span := observability.StartSpan(ctx, "AuthService", "LoginWithEmailAndPassword")
	defer func() { observability.EndSpan(span, err) }()

	email := normalizeEmail(in.Email)
	if email == "" {
		return nil, models.NewValidationError("Email is required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		observability.RecordLogin(loginMethodPassword, observability.OutcomeError)
		return nil, err
	}
	if user == nil {
		observability.RecordLogin(loginMethodPassword, observability.OutcomeNotFound)
		return nil, models.NewNotFoundMessage("User not found")
	}

	if err := checkActive(user); err != nil {
		observability.RecordLogin(loginMethodPassword, observability.OutcomeForbidden)
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash()), []byte(in.Password)); err != nil {
		observability.RecordLogin(loginMethodPassword, observability.OutcomeUnauthorized)
		return nil, models.NewUnauthorizedError("Incorrect password")
	}

	return s.issue(user, loginMethodPassword)
}

// AuthWithGoogle finds or creates the account for a Google profile and
// returns its public projection. No token is issued.
func (s *AuthService) AuthWithGoogle(ctx context.Context, profile GoogleProfile) (*models.PublicUser, error) {
	user, err := s.findOrCreateGoogleUser(ctx, profile)
	if err != nil {
		return nil, err
	}
	pub := user.Public()
	return &pub, nil
}

// LoginWithGoogle finds or creates the account for a profile verified by
// Google and issues a token for it when the account is active.
func (s *AuthService) LoginWithGoogle(ctx context.Context, profile GoogleProfile) (*LoginResult, error) {
	user, err := s.findOrCreateGoogleUser(ctx, profile)
	if err != nil {
		observability.RecordLogin(loginMethodGoogle, observability.OutcomeError)
		return nil, err
	}
	if err := checkActive(user); err != nil {
		observability.RecordLogin(loginMethodGoogle, observability.OutcomeForbidden)
		return nil, err
	}
	return s.issue(user, loginMethodGoogle)
}

// Me returns the public projection of the caller's account.
func (s *AuthService) Me(ctx context.Context, caller models.Identity) (*models.PublicUser, error) {
	user, err := s.userRepo.GetByID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	pub := user.Public()
	return &pub, nil
}

func (s *AuthService) findOrCreateGoogleUser(ctx context.Context, profile GoogleProfile) (*models.User, error) {
	email := normalizeEmail(profile.Email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	name := strings.TrimSpace(profile.Name)
	if name == "" {
		name = email
	}
	user = &models.User{
		Name:       name,
		Email:      email,
		Picture:    profile.Picture,
		Role:       models.RoleUser,
		Status:     models.StatusActive,
		IsVerified: true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// a concurrent request may have created the account first
		if models.ErrorCode(err) == models.CodeConflict {
			existing, getErr := s.userRepo.GetByEmail(ctx, email)
			if getErr == nil && existing != nil {
				return existing, nil
			}
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) issue(user *models.User, method string) (*LoginResult, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		observability.RecordLogin(method, observability.OutcomeError)
		return nil, models.NewInternalError(err)
	}
	observability.RecordLogin(method, observability.OutcomeSuccess)
	return &LoginResult{User: user.Public(), Token: token}, nil
}

func checkActive(user *models.User) error {
	if user.Status != models.StatusActive {
		return models.NewForbiddenError(fmt.Sprintf(
			"User account is %s. Please contact support.", strings.ToLower(string(user.Status))))
	}
	return nil
}
