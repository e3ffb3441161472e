package repository

import (
	"context"
	"errors"

	"folio/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetProfile(ctx context.Context, id uint) (*models.UserProfile, error)
	ListProfiles(ctx context.Context) ([]models.UserProfile, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, id uint, updates map[string]interface{}) (*models.User, error)
	Delete(ctx context.Context, id uint) error
}

var profileColumns = []string{
	"id", "name", "email", "phone", "picture", "role", "status", "is_verified", "created_at", "updated_at",
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translateError(err, "User", id)
	}
	return &user, nil
}

// GetByEmail returns nil, nil when no account uses email.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewDatabaseError(err)
	}
	return &user, nil
}

func (r *userRepository) profileQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Select(profileColumns).
		Preload("Posts", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "title", "slug", "author_id", "created_at").Order("created_at DESC")
		}).
		Preload("Projects", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "title", "slug", "owner_id", "created_at").Order("created_at DESC")
		})
}

func (r *userRepository) GetProfile(ctx context.Context, id uint) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := r.profileQuery(ctx).First(&profile, id).Error; err != nil {
		return nil, translateError(err, "User", id)
	}
	return &profile, nil
}

func (r *userRepository) ListProfiles(ctx context.Context) ([]models.UserProfile, error) {
	profiles := []models.UserProfile{}
	if err := r.profileQuery(ctx).Order("created_at DESC").Order("id DESC").Find(&profiles).Error; err != nil {
		return nil, models.NewDatabaseError(err)
	}
	return profiles, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error; err != nil {
		return translateError(err, "User", user.Email)
	}
	return nil
}

// Update applies column updates to the user and returns the stored row.
func (r *userRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			res := tx.Model(&models.User{}).Where("id = ?", id).Updates(updates)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return models.NewNotFoundError("User", id)
			}
		}
		return tx.First(&user, id).Error
	})
	if err != nil {
		return nil, translateError(err, "User", id)
	}
	return &user, nil
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.User{}, id)
	if res.Error != nil {
		return translateError(res.Error, "User", id)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	return nil
}
