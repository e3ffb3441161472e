// Package seed creates the bootstrap admin account and demo content.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"folio/internal/middleware"
	"folio/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AdminName is the display name given to the seeded admin account.
const AdminName = "Administrator"

// AdminOptions describes the admin account to seed.
type AdminOptions struct {
	Email    string
	Password string
	// Cost is the bcrypt cost; 0 means bcrypt.DefaultCost.
	Cost int
}

// Admin creates the admin account unless a user with opts.Email exists.
// It reports whether a new account was created.
func Admin(ctx context.Context, db *gorm.DB, opts AdminOptions) (bool, error) {
	email := strings.ToLower(strings.TrimSpace(opts.Email))
	if email == "" || opts.Password == "" {
		return false, errors.New("admin email and password are required")
	}
	cost := opts.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	var existing int64
	if err := db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		return false, fmt.Errorf("failed to look up admin: %w", err)
	}
	if existing > 0 {
		middleware.Logger.InfoContext(ctx, "admin account already exists", slog.String("email", email))
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(opts.Password), cost)
	if err != nil {
		return false, fmt.Errorf("failed to hash admin password: %w", err)
	}
	password := string(hash)

	admin := &models.User{
		Name:       AdminName,
		Email:      email,
		Password:   &password,
		Role:       models.RoleAdmin,
		Status:     models.StatusActive,
		IsVerified: true,
	}
	if err := db.WithContext(ctx).Create(admin).Error; err != nil {
		return false, fmt.Errorf("failed to create admin: %w", err)
	}

	middleware.Logger.InfoContext(ctx, "admin account created", slog.String("email", email), slog.Uint64("id", uint64(admin.ID)))
	return true, nil
}
