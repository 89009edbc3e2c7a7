package activity

import (
	"context"

	"github.com/activityhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Filter narrows activity listings
type Filter struct {
	shared.Filter
	Site   *Site
	Status *Status
	// VisibleTo limits results to PUBLISHED activities plus those the user
	// organises. Nil means no visibility restriction.
	VisibleTo *uuid.UUID
}

// ActivityRepository defines the interface for activity persistence
type ActivityRepository interface {
	// FindByID returns the activity with its staff list, or shared.ErrNotFound
	FindByID(ctx context.Context, id uuid.UUID) (*Activity, error)

	// FindByIDs returns the activities that exist among ids, without staff
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Activity, error)

	// FindAll returns a page of activities and the total count
	FindAll(ctx context.Context, filter Filter) ([]*Activity, int64, error)

	// Save inserts or updates the activity and replaces its staff list
	Save(ctx context.Context, a *Activity) error

	// SaveWithVersion updates the activity only if the stored version equals
	// expectedVersion; a mismatch returns shared.ErrConflict
	SaveWithVersion(ctx context.Context, a *Activity, expectedVersion int) error

	// Delete removes the activity together with its registrations, staff and
	// check records
	Delete(ctx context.Context, id uuid.UUID) error
}

// RegistrationRepository defines the interface for registration persistence
type RegistrationRepository interface {
	// Create stores a registration; a duplicate returns shared.ErrConflict
	Create(ctx context.Context, r *Registration) error

	// Delete removes the user's registration, or returns shared.ErrNotFound
	Delete(ctx context.Context, activityID, userID uuid.UUID) error

	FindByActivity(ctx context.Context, activityID uuid.UUID) ([]*Registration, error)

	Exists(ctx context.Context, activityID, userID uuid.UUID) (bool, error)
}
