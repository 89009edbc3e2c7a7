package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository reads users owned by the identity provider
type UserRepository interface {
	// FindByID returns the user or shared.ErrNotFound
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByIDs returns the users that exist among ids
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*User, error)

	// Save inserts or updates a user; used by provisioning and tests
	Save(ctx context.Context, user *User) error
}
