package checkin

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CheckRecordRepository persists activity check records
type CheckRecordRepository interface {
	// FindByUserAndActivity returns the record or shared.ErrNotFound
	FindByUserAndActivity(ctx context.Context, userID, activityID uuid.UUID) (*CheckRecord, error)

	// FindByUserAndActivityForUpdate is FindByUserAndActivity taking a row
	// lock; only meaningful inside a transaction
	FindByUserAndActivityForUpdate(ctx context.Context, userID, activityID uuid.UUID) (*CheckRecord, error)

	// Create inserts a record; a duplicate (user, activity) returns shared.ErrConflict
	Create(ctx context.Context, r *CheckRecord) error

	Update(ctx context.Context, r *CheckRecord) error

	FindByActivity(ctx context.Context, activityID uuid.UUID) ([]*CheckRecord, error)

	FindByUser(ctx context.Context, userID uuid.UUID) ([]*CheckRecord, error)
}

// CasualCheckRecordRepository persists casual check records
type CasualCheckRecordRepository interface {
	// LockUser serialises casual check-ins of userID until the enclosing
	// transaction ends
	LockUser(ctx context.Context, userID uuid.UUID) error

	// FindLatestOpenForUpdate returns the latest record without check-out
	// whose check-in lies in [from, to), locking it; shared.ErrNotFound if none
	FindLatestOpenForUpdate(ctx context.Context, userID uuid.UUID, from, to time.Time) (*CasualCheckRecord, error)

	Create(ctx context.Context, r *CasualCheckRecord) error

	Update(ctx context.Context, r *CasualCheckRecord) error

	FindByUser(ctx context.Context, userID uuid.UUID) ([]*CasualCheckRecord, error)
}
