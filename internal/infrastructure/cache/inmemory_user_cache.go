package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/activityhub/backend/internal/domain/identity"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultCleanupInterval = 30 * time.Second

// InMemoryUserCache is the per-instance L1 cache
type InMemoryUserCache struct {
	users    sync.Map // map[uuid.UUID]*cacheEntry[identity.User]
	logger   *zap.Logger
	interval time.Duration
	stopCh   chan struct{}
	stopped  int32

	hits   int64
	misses int64
}

// cacheEntry wraps a cached value with its expiration time
type cacheEntry[T any] struct {
	value     *T
	expiresAt time.Time
}

func (e *cacheEntry[T]) isExpired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// InMemoryUserCacheOption configures an InMemoryUserCache
type InMemoryUserCacheOption func(*InMemoryUserCache)

// WithInMemoryLogger sets the logger
func WithInMemoryLogger(logger *zap.Logger) InMemoryUserCacheOption {
	return func(c *InMemoryUserCache) {
		c.logger = logger
	}
}

// WithCleanupInterval sets how often expired entries are swept
func WithCleanupInterval(d time.Duration) InMemoryUserCacheOption {
	return func(c *InMemoryUserCache) {
		if d > 0 {
			c.interval = d
		}
	}
}

// NewInMemoryUserCache creates the cache and starts its cleanup goroutine.
// Call Stop to end it.
func NewInMemoryUserCache(opts ...InMemoryUserCacheOption) *InMemoryUserCache {
	c := &InMemoryUserCache{
		logger:   zap.NewNop(),
		interval: defaultCleanupInterval,
		stopCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	go c.cleanupExpired()
	return c
}

// Get returns a copy of the cached user, or nil on a miss
func (c *InMemoryUserCache) Get(_ context.Context, id uuid.UUID) (*identity.User, error) {
	if value, ok := c.users.Load(id); ok {
		entry := value.(*cacheEntry[identity.User])
		if !entry.isExpired(time.Now()) {
			atomic.AddInt64(&c.hits, 1)
			return copyUser(entry.value), nil
		}
		c.users.Delete(id)
	}
	atomic.AddInt64(&c.misses, 1)
	return nil, nil
}

// Set stores user for ttl, or DefaultUserTTL when ttl is zero
func (c *InMemoryUserCache) Set(_ context.Context, user *identity.User, ttl time.Duration) error {
	if user == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = DefaultUserTTL
	}
	c.users.Store(user.ID, &cacheEntry[identity.User]{
		value:     copyUser(user),
		expiresAt: time.Now().Add(ttl),
	})
	return nil
}

// Delete evicts id
func (c *InMemoryUserCache) Delete(_ context.Context, id uuid.UUID) error {
	c.users.Delete(id)
	return nil
}

// Len counts live and not yet swept entries
func (c *InMemoryUserCache) Len() int {
	n := 0
	c.users.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Stats returns hit and miss counts
func (c *InMemoryUserCache) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Stop ends the cleanup goroutine. Safe to call more than once.
func (c *InMemoryUserCache) Stop() {
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
}

func (c *InMemoryUserCache) cleanupExpired() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case now := <-ticker.C:
			removed := c.sweep(now)
			if removed > 0 {
				c.logger.Debug("Swept expired users from cache", zap.Int("removed", removed))
			}
		}
	}
}

func (c *InMemoryUserCache) sweep(now time.Time) int {
	removed := 0
	c.users.Range(func(key, value any) bool {
		if value.(*cacheEntry[identity.User]).isExpired(now) {
			c.users.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

var _ UserCache = (*InMemoryUserCache)(nil)
