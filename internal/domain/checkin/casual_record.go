package checkin

import (
	"time"

	"github.com/activityhub/backend/internal/domain/geo"
	"github.com/activityhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CasualCheckRecord is a check-in not tied to an activity. A user may have
// several per day but only one open at a time.
type CasualCheckRecord struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Period
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCasualCheckRecord opens a casual record checked in at `at`
func NewCasualCheckRecord(userID uuid.UUID, at time.Time, loc *geo.Point) (*CasualCheckRecord, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "User is required")
	}
	now := time.Now()
	return &CasualCheckRecord{
		ID:     uuid.New(),
		UserID: userID,
		Period: Period{
			CheckInAt:       at,
			CheckInLocation: loc,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// CheckOut closes the record
func (r *CasualCheckRecord) CheckOut(at time.Time, loc *geo.Point) error {
	if err := r.checkOut(at, loc); err != nil {
		return err
	}
	r.UpdatedAt = time.Now()
	return nil
}

// DayBounds returns [start, end) of the calendar day containing t in loc
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}
