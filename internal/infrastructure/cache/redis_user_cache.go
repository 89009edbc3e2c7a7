package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/activityhub/backend/internal/domain/identity"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultUserKeyPrefix = "activityhub:user:"

// RedisUserCache is the L2 cache shared by every instance. The caller owns
// the client.
type RedisUserCache struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisUserCache creates a cache on an existing client
func NewRedisUserCache(client *redis.Client, keyPrefix string) *RedisUserCache {
	if keyPrefix == "" {
		keyPrefix = defaultUserKeyPrefix
	}
	return &RedisUserCache{client: client, keyPrefix: keyPrefix}
}

func (c *RedisUserCache) key(id uuid.UUID) string {
	return c.keyPrefix + id.String()
}

// Get returns the cached user, or nil on a miss
func (c *RedisUserCache) Get(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user from cache: %w", err)
	}

	var cu cachedUser
	if err := json.Unmarshal(data, &cu); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached user: %w", err)
	}
	return cu.toUser(), nil
}

// Set stores user for ttl, or DefaultUserTTL when ttl is zero
func (c *RedisUserCache) Set(ctx context.Context, user *identity.User, ttl time.Duration) error {
	if user == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = DefaultUserTTL
	}
	data, err := json.Marshal(fromUser(user))
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}
	if err := c.client.Set(ctx, c.key(user.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache user: %w", err)
	}
	return nil
}

// Delete evicts id
func (c *RedisUserCache) Delete(ctx context.Context, id uuid.UUID) error {
	if err := c.client.Del(ctx, c.key(id)).Err(); err != nil {
		return fmt.Errorf("failed to evict user: %w", err)
	}
	return nil
}

var _ UserCache = (*RedisUserCache)(nil)
