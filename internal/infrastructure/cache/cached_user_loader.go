package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/activityhub/backend/internal/domain/identity"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserSource is the authoritative lookup behind the cache
type UserSource interface {
	FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error)
}

// CachedUserLoader reads through L1 then L2 then the source. Cache errors
// are logged and treated as misses; source errors, including NotFound, are
// returned and never cached.
type CachedUserLoader struct {
	source UserSource
	l1     UserCache
	l2     UserCache
	ttl    time.Duration
	logger *zap.Logger

	l1Hits        int64
	l2Hits        int64
	sourceLookups int64
}

// CachedUserLoaderOption configures a CachedUserLoader
type CachedUserLoaderOption func(*CachedUserLoader)

// WithL2 adds a shared cache behind the local one
func WithL2(l2 UserCache) CachedUserLoaderOption {
	return func(l *CachedUserLoader) {
		l.l2 = l2
	}
}

// WithTTL sets the entry lifetime
func WithTTL(ttl time.Duration) CachedUserLoaderOption {
	return func(l *CachedUserLoader) {
		if ttl > 0 {
			l.ttl = ttl
		}
	}
}

// WithLoaderLogger sets the logger
func WithLoaderLogger(logger *zap.Logger) CachedUserLoaderOption {
	return func(l *CachedUserLoader) {
		l.logger = logger
	}
}

// NewCachedUserLoader wraps source with l1 and the optional L2
func NewCachedUserLoader(source UserSource, l1 UserCache, opts ...CachedUserLoaderOption) *CachedUserLoader {
	l := &CachedUserLoader{
		source: source,
		l1:     l1,
		ttl:    DefaultUserTTL,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// FindByID returns the user with id
func (l *CachedUserLoader) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	if user := l.get(ctx, l.l1, "l1", id); user != nil {
		atomic.AddInt64(&l.l1Hits, 1)
		return user, nil
	}
	if user := l.get(ctx, l.l2, "l2", id); user != nil {
		atomic.AddInt64(&l.l2Hits, 1)
		l.set(ctx, l.l1, "l1", user)
		return user, nil
	}

	atomic.AddInt64(&l.sourceLookups, 1)
	user, err := l.source.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	l.set(ctx, l.l2, "l2", user)
	l.set(ctx, l.l1, "l1", user)
	return user, nil
}

// Invalidate evicts id from both tiers
func (l *CachedUserLoader) Invalidate(ctx context.Context, id uuid.UUID) {
	for _, tier := range []UserCache{l.l1, l.l2} {
		if tier == nil {
			continue
		}
		if err := tier.Delete(ctx, id); err != nil {
			l.logger.Warn("Failed to evict cached user", zap.String("user_id", id.String()), zap.Error(err))
		}
	}
}

// Stats returns L1 hits, L2 hits and source lookups
func (l *CachedUserLoader) Stats() (l1Hits, l2Hits, sourceLookups int64) {
	return atomic.LoadInt64(&l.l1Hits), atomic.LoadInt64(&l.l2Hits), atomic.LoadInt64(&l.sourceLookups)
}

func (l *CachedUserLoader) get(ctx context.Context, tier UserCache, name string, id uuid.UUID) *identity.User {
	if tier == nil {
		return nil
	}
	user, err := tier.Get(ctx, id)
	if err != nil {
		l.logger.Warn("User cache read failed", zap.String("tier", name), zap.String("user_id", id.String()), zap.Error(err))
		return nil
	}
	return user
}

func (l *CachedUserLoader) set(ctx context.Context, tier UserCache, name string, user *identity.User) {
	if tier == nil {
		return
	}
	if err := tier.Set(ctx, user, l.ttl); err != nil {
		l.logger.Warn("User cache write failed", zap.String("tier", name), zap.String("user_id", user.ID.String()), zap.Error(err))
	}
}
