package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tokenkeeper/tokenkeeper/internal/logger"
	"github.com/tokenkeeper/tokenkeeper/internal/model"
)

var _ model.BlacklistCache = (*Blacklist)(nil)

const keyPrefix = "blacklist:"

// Blacklist is a redis-backed TTL denylist keyed by raw token string.
type Blacklist struct {
	client *redis.Client
	logger *logger.Logger
}

// NewBlacklist creates a blacklist on top of an existing redis client.
func NewBlacklist(client *redis.Client, logger *logger.Logger) *Blacklist {
	return &Blacklist{client: client, logger: logger}
}

// Block marks a token as rejected for ttl. Failure surfaces to the caller:
// a revoke that could not reach the cache must not report success.
func (b *Blacklist) Block(ctx context.Context, token string, ttl time.Duration) error {
	if err := b.client.Set(ctx, keyPrefix+token, "1", ttl).Err(); err != nil {
		return fmt.Errorf("%w: %s", model.ErrCacheUnavailable, err)
	}
	return nil
}

// IsBlocked reports whether a token has been blacklisted. Read checks fail
// open: cache unavailability is logged and treated as not blocked.
func (b *Blacklist) IsBlocked(ctx context.Context, token string) bool {
	val, err := b.client.Get(ctx, keyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false
		}
		b.logger.Error("failed to check token blacklist", "error", err)
		return false
	}
	return val == "1"
}
