package service

import (
	"context"
	"log/slog"
	"strings"

	"folio/internal/cache"
	"folio/internal/middleware"
	"folio/internal/models"
	"folio/internal/repository"
	"folio/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	userRepo   repository.UserRepository
	bcryptCost int
	cache      *cache.Store
}

type CreateUserInput struct {
	Name     string
	Email    string
	Password *string
	Phone    string
	Picture  string
	Role     models.Role
}

// UpdateUserInput holds the fields to change; nil fields are left as they are.
type UpdateUserInput struct {
	Name       *string
	Email      *string
	Password   *string
	Phone      *string
	Picture    *string
	Role       *models.Role
	Status     *models.UserStatus
	IsVerified *bool
}

// Privileged reports whether the input touches fields only admins may set.
func (in UpdateUserInput) Privileged() bool {
	return in.Role != nil || in.Status != nil || in.IsVerified != nil
}

// NewUserService returns a UserService hashing passwords with bcryptCost for
// both account creation and password changes.
func NewUserService(userRepo repository.UserRepository, bcryptCost int) *UserService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserService{userRepo: userRepo, bcryptCost: bcryptCost}
}

// WithCache sets the project cache that UpdateUser clears when an owner's
// name, email or picture changes, since cached projects embed the owner.
func (s *UserService) WithCache(store *cache.Store) *UserService {
	s.cache = store
	return s
}

func (s *UserService) hashPassword(password string) (string, error) {
	if err := validation.ValidatePassword(password); err != nil {
		return "", models.NewValidationError(err.Error())
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return string(hash), nil
}

func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	name := strings.TrimSpace(in.Name)
	if err := validation.ValidateName(name); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	email := normalizeEmail(in.Email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	role := in.Role
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return nil, models.NewValidationError("Invalid role")
	}

	user := &models.User{
		Name:    name,
		Email:   email,
		Phone:   in.Phone,
		Picture: in.Picture,
		Role:    role,
		Status:  models.StatusActive,
	}
	if in.Password != nil {
		hash, err := s.hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		user.Password = &hash
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.UserProfile, error) {
	return s.userRepo.ListProfiles(ctx)
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.UserProfile, error) {
	return s.userRepo.GetProfile(ctx, id)
}

func (s *UserService) UpdateUser(ctx context.Context, id uint, in UpdateUserInput) (*models.User, error) {
	updates := map[string]interface{}{}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if err := validation.ValidateName(name); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		updates["name"] = name
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if err := validation.ValidateEmail(email); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		updates["email"] = email
	}
	if in.Phone != nil {
		updates["phone"] = *in.Phone
	}
	if in.Picture != nil {
		updates["picture"] = *in.Picture
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, models.NewValidationError("Invalid role")
		}
		updates["role"] = *in.Role
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, models.NewValidationError("Invalid status")
		}
		updates["status"] = *in.Status
	}
	if in.IsVerified != nil {
		updates["is_verified"] = *in.IsVerified
	}
	if in.Password != nil {
		hash, err := s.hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		updates["password"] = hash
	}

	user, err := s.userRepo.Update(ctx, id, updates)
	if err != nil {
		return nil, err
	}
	if in.Name != nil || in.Email != nil || in.Picture != nil {
		s.dropOwnedProjects(ctx, id)
	}
	return user, nil
}

func (s *UserService) dropOwnedProjects(ctx context.Context, ownerID uint) {
	if !s.cache.Enabled() {
		return
	}
	profile, err := s.userRepo.GetProfile(ctx, ownerID)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "owner project lookup failed",
			slog.Uint64("user_id", uint64(ownerID)), slog.String("error", err.Error()))
		return
	}
	keys := make([]string, 0, 2*len(profile.Projects))
	for _, p := range profile.Projects {
		keys = append(keys, cache.ProjectKey(p.ID), cache.ProjectSlugKey(p.Slug))
	}
	if len(keys) == 0 {
		return
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		middleware.Logger.WarnContext(ctx, "owner project cache invalidation failed",
			slog.Uint64("user_id", uint64(ownerID)), slog.String("error", err.Error()))
	}
}

func (s *UserService) DeleteUser(ctx context.Context, id uint) error {
	return s.userRepo.Delete(ctx, id)
}
