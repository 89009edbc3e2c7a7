package checkin

import (
	"time"

	"github.com/activityhub/backend/internal/domain/geo"
	"github.com/activityhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CheckRecord is a user's attendance of one activity. There is at most one
// record per (user, activity).
type CheckRecord struct {
	ID         uuid.UUID
	ActivityID uuid.UUID
	UserID     uuid.UUID
	Period
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCheckRecord opens a record checked in at `at`
func NewCheckRecord(activityID, userID uuid.UUID, at time.Time, loc *geo.Point) (*CheckRecord, error) {
	if activityID == uuid.Nil || userID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Activity and user are required")
	}
	now := time.Now()
	return &CheckRecord{
		ID:         uuid.New(),
		ActivityID: activityID,
		UserID:     userID,
		Period: Period{
			CheckInAt:       at,
			CheckInLocation: loc,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// NewCorrectedCheckRecord creates a closed record with manager-supplied times
func NewCorrectedCheckRecord(activityID, userID uuid.UUID, checkIn, checkOut time.Time) (*CheckRecord, error) {
	r, err := NewCheckRecord(activityID, userID, checkIn, nil)
	if err != nil {
		return nil, err
	}
	if err := r.overwrite(checkIn, checkOut); err != nil {
		return nil, err
	}
	return r, nil
}

// CheckOut fills the check-out of an open record. A check-out that is not
// after the stored check-in returns INVALID_RANGE.
func (r *CheckRecord) CheckOut(at time.Time, loc *geo.Point) error {
	if err := r.checkOut(at, loc); err != nil {
		return err
	}
	r.UpdatedAt = time.Now()
	return nil
}

// Correct overwrites both timestamps
func (r *CheckRecord) Correct(checkIn, checkOut time.Time) error {
	if err := r.overwrite(checkIn, checkOut); err != nil {
		return err
	}
	r.UpdatedAt = time.Now()
	return nil
}
