package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"folio/internal/middleware"
	"folio/internal/observability"

	"github.com/redis/go-redis/v9"
)

// ProjectTTL is how long a cached project stays valid.
const ProjectTTL = 10 * time.Minute

// ProjectKey returns the cache key for the project with the given id.
func ProjectKey(id uint) string {
	return fmt.Sprintf("project:%d", id)
}

// ProjectSlugKey returns the cache key for the project with the given slug.
func ProjectSlugKey(slug string) string {
	return fmt.Sprintf("project:slug:%s", slug)
}

// Store is a JSON cache over Redis. A Store with a nil client never hits and
// ignores writes.
type Store struct {
	client *redis.Client
}

// NewStore wraps client; client may be nil.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// Enabled reports whether the store is backed by Redis.
func (s *Store) Enabled() bool {
	return s != nil && s.client != nil
}

// GetJSON attempts to get the key from Redis and unmarshal into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func (s *Store) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	raw, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and sets the key with TTL.
func (s *Store) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, b, ttl).Err()
}

// Delete removes keys; missing keys are ignored.
func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if !s.Enabled() || len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

// Aside tries Redis first; on a miss it calls fetch, which must populate
// dest, and stores dest under key for ttl. Redis failures degrade to fetch.
func (s *Store) Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	prefix := keyPrefix(key)

	found, err := s.GetJSON(ctx, key, dest)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	if found {
		observability.CacheLookups.WithLabelValues(prefix, "hit").Inc()
		return nil
	}
	if s.Enabled() {
		observability.CacheLookups.WithLabelValues(prefix, "miss").Inc()
	}

	if err := fetch(); err != nil {
		return err
	}

	if err := s.SetJSON(ctx, key, dest, ttl); err != nil {
		middleware.Logger.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return nil
}

func keyPrefix(key string) string {
	if i := strings.LastIndex(key, ":"); i > 0 {
		return key[:i]
	}
	return key
}
