package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"folio/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RateLimiter counts requests per resource and caller in fixed Redis
// windows. Without Redis, or while Redis fails, it falls back to in-process
// token buckets.
type RateLimiter struct {
	rdb     *redis.Client
	enabled bool

	mu    sync.Mutex
	local map[string]*rate.Limiter
}

// NewRateLimiter returns a RateLimiter; rdb may be nil. A disabled limiter
// lets every request through.
func NewRateLimiter(rdb *redis.Client, enabled bool) *RateLimiter {
	return &RateLimiter{rdb: rdb, enabled: enabled, local: make(map[string]*rate.Limiter)}
}

// Allow reports whether id may make another request to resource.
func (rl *RateLimiter) Allow(ctx context.Context, resource, id string, limit int, window time.Duration) bool {
	if !rl.enabled {
		return true
	}
	if limit <= 0 {
		return false
	}
	key := fmt.Sprintf("rl:%s:%s", resource, id)

	if rl.rdb != nil {
		allowed, err := rl.allowRedis(ctx, key, limit, window)
		if err == nil {
			return allowed
		}
		Logger.WarnContext(ctx, "rate limit store unavailable, using local limiter",
			slog.String("key", key), slog.String("error", err.Error()))
	}
	return rl.allowLocal(key, limit, window)
}

func (rl *RateLimiter) allowRedis(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	cnt, err := rl.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if cnt == 1 {
		if err := rl.rdb.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return cnt <= int64(limit), nil
}

func (rl *RateLimiter) allowLocal(key string, limit int, window time.Duration) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	l, ok := rl.local[key]
	if !ok {
		l = rate.NewLimiter(rate.Every(window/time.Duration(limit)), limit)
		rl.local[key] = l
	}
	return l.Allow()
}

// Limit returns a handler allowing limit requests per window, keyed by the
// authenticated user when present and the client IP otherwise.
func (rl *RateLimiter) Limit(resource string, limit int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := "ip:" + c.IP()
		if uid, ok := c.Locals("userID").(uint); ok {
			id = fmt.Sprintf("user:%d", uid)
		}

		if !rl.Allow(c.UserContext(), resource, id, limit, window) {
			c.Set(fiber.HeaderRetryAfter, fmt.Sprintf("%d", int(window.Seconds())))
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "rate limit exceeded",
				Code:  "RATE_LIMITED",
			})
		}
		return c.Next()
	}
}
