package checkin

import (
	"time"

	"github.com/activityhub/backend/internal/domain/geo"
	"github.com/activityhub/backend/internal/domain/shared"
)

// MillisPerHour converts a millisecond duration into hours
const MillisPerHour = 3_600_000.0

// Period is a check-in with an optional check-out. Both activity and casual
// records carry one.
type Period struct {
	CheckInAt        time.Time
	CheckOutAt       *time.Time
	CheckInLocation  *geo.Point
	CheckOutLocation *geo.Point
}

// IsOpen reports whether the period has not been checked out yet
func (p *Period) IsOpen() bool {
	return p.CheckOutAt == nil
}

// DurationHours returns (CheckOutAt - CheckInAt) in hours, 0 while open
func (p *Period) DurationHours() float64 {
	if p.CheckOutAt == nil {
		return 0
	}
	return float64(p.CheckOutAt.Sub(p.CheckInAt).Milliseconds()) / MillisPerHour
}

// checkOut closes an open period at `at`
func (p *Period) checkOut(at time.Time, loc *geo.Point) error {
	if !p.IsOpen() {
		return shared.NewDomainError(shared.CodeInvalidState, "Already checked out")
	}
	if !at.After(p.CheckInAt) {
		return shared.NewDomainError(shared.CodeInvalidRange, "Check-out time must be after check-in time")
	}
	p.CheckOutAt = &at
	p.CheckOutLocation = loc
	return nil
}

// overwrite replaces both timestamps; checkOut must be after checkIn
func (p *Period) overwrite(checkIn, checkOut time.Time) error {
	if !checkOut.After(checkIn) {
		return shared.NewDomainError(shared.CodeInvalidRange, "Check-out time must be after check-in time")
	}
	p.CheckInAt = checkIn
	p.CheckOutAt = &checkOut
	return nil
}
