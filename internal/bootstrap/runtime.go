package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"folio/internal/cache"
	"folio/internal/config"
	"folio/internal/database"
	"folio/internal/middleware"
	"folio/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// InitRuntime connects to DB and Redis and seeds the admin account.
// The Redis client is nil when REDIS_URL is empty or unreachable.
func InitRuntime(ctx context.Context, cfg *config.Config) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	r := cache.InitRedis(cfg.RedisURL)

	// a failed seed does not stop the server
	if err := SeedAdmin(ctx, cfg, db); err != nil {
		middleware.Logger.ErrorContext(ctx, "admin seeding failed", slog.String("error", err.Error()))
	}

	return db, r, nil
}

// SeedAdmin creates the configured admin account. It is a no-op when
// ADMIN_EMAIL is not set.
func SeedAdmin(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil || cfg.AdminEmail == "" {
		return nil
	}
	_, err := seed.Admin(ctx, db, seed.AdminOptions{
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
		Cost:     cfg.AdminBcryptCost,
	})
	return err
}
