// Package cache keeps short-lived copies of users so the current-user
// lookup on every authenticated request does not always hit the database.
package cache

import (
	"context"
	"time"

	"github.com/activityhub/backend/internal/domain/identity"
	"github.com/google/uuid"
)

// DefaultUserTTL bounds how long a role change can go unnoticed
const DefaultUserTTL = 30 * time.Second

// UserCache stores users by ID. Get returns (nil, nil) on a miss.
type UserCache interface {
	Get(ctx context.Context, id uuid.UUID) (*identity.User, error)
	Set(ctx context.Context, user *identity.User, ttl time.Duration) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// cachedUser is the serialized form kept in Redis
type cachedUser struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Roles     uint8     `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func fromUser(u *identity.User) cachedUser {
	return cachedUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Roles:     uint8(u.Roles),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (c cachedUser) toUser() *identity.User {
	return &identity.User{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Roles:     identity.RoleSet(c.Roles),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// copyUser keeps callers from mutating cached entries
func copyUser(u *identity.User) *identity.User {
	cp := *u
	return &cp
}
