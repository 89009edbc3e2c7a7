package checkin

import (
	"time"

	"github.com/activityhub/backend/internal/domain/checkin"
	"github.com/activityhub/backend/internal/domain/geo"
	"github.com/google/uuid"
)

// ===================== Request DTOs =====================

// CheckInRequest represents a self-service activity check-in or check-out.
// Either coordinates or a QR token prove presence.
type CheckInRequest struct {
	Latitude  *float64 `json:"latitude" binding:"omitempty,latitude" example:"25.033"`
	Longitude *float64 `json:"longitude" binding:"omitempty,longitude" example:"121.5654"`
	QRToken   string   `json:"qr_token" binding:"max=2048"`
}

// Location returns the reported point when both coordinates are present
func (r CheckInRequest) Location() *geo.Point {
	return pointOf(r.Latitude, r.Longitude)
}

// CasualCheckInRequest represents a check-in not tied to an activity
type CasualCheckInRequest struct {
	Latitude  *float64 `json:"latitude" binding:"omitempty,latitude" example:"25.033"`
	Longitude *float64 `json:"longitude" binding:"omitempty,longitude" example:"121.5654"`
}

// Location returns the reported point when both coordinates are present
func (r CasualCheckInRequest) Location() *geo.Point {
	return pointOf(r.Latitude, r.Longitude)
}

// ManagerCheckInRequest sets both timestamps of a user's record
type ManagerCheckInRequest struct {
	CheckInAt  time.Time `json:"check_in_at" binding:"required"`
	CheckOutAt time.Time `json:"check_out_at" binding:"required"`
}

// WorkingStatsQuery selects whose stats to read and the window
type WorkingStatsQuery struct {
	// UserID comes from ?userId=, parsed by the handler
	UserID *uuid.UUID `form:"-"`
	Start  *time.Time `form:"start" time_format:"2006-01-02T15:04:05Z07:00"`
	End    *time.Time `form:"end" time_format:"2006-01-02T15:04:05Z07:00"`
}

// Window returns the domain window of the query
func (q WorkingStatsQuery) Window() checkin.Window {
	return checkin.Window{Start: q.Start, End: q.End}
}

func pointOf(lat, lon *float64) *geo.Point {
	if lat == nil || lon == nil {
		return nil
	}
	p := geo.NewPoint(*lat, *lon)
	return &p
}

// ===================== Response DTOs =====================

// CheckInAction tells the client what a check-in call did
type CheckInAction string

const (
	ActionCheckedIn  CheckInAction = "checked_in"
	ActionCheckedOut CheckInAction = "checked_out"
	// ActionUnchanged means the record was already closed; nothing changed
	ActionUnchanged CheckInAction = "unchanged"
	ActionCorrected CheckInAction = "corrected"
)

// CheckRecordResponse represents an activity check record
type CheckRecordResponse struct {
	ID               uuid.UUID     `json:"id"`
	ActivityID       uuid.UUID     `json:"activity_id"`
	UserID           uuid.UUID     `json:"user_id"`
	CheckInAt        time.Time     `json:"check_in_at"`
	CheckOutAt       *time.Time    `json:"check_out_at"`
	CheckInLocation  *geo.Point    `json:"check_in_location,omitempty"`
	CheckOutLocation *geo.Point    `json:"check_out_location,omitempty"`
	DurationHours    float64       `json:"duration_hours"`
	Action           CheckInAction `json:"action,omitempty"`
}

// CasualCheckRecordResponse represents a casual check record
type CasualCheckRecordResponse struct {
	ID            uuid.UUID     `json:"id"`
	UserID        uuid.UUID     `json:"user_id"`
	CheckInAt     time.Time     `json:"check_in_at"`
	CheckOutAt    *time.Time    `json:"check_out_at"`
	DurationHours float64       `json:"duration_hours"`
	Action        CheckInAction `json:"action,omitempty"`
}

// WorkRecordResponse is one line of the working stats
type WorkRecordResponse struct {
	Kind          string     `json:"kind"`
	RecordID      uuid.UUID  `json:"record_id"`
	ActivityID    *uuid.UUID `json:"activity_id,omitempty"`
	ActivityTitle string     `json:"activity_title,omitempty"`
	Site          string     `json:"site,omitempty"`
	CheckInAt     time.Time  `json:"check_in_at"`
	CheckOutAt    *time.Time `json:"check_out_at"`
	DurationHours float64    `json:"duration_hours"`
	InWindow      bool       `json:"in_window"`
}

// WorkingStatsResponse is the result of getWorkingStats
type WorkingStatsResponse struct {
	UserID               uuid.UUID            `json:"user_id"`
	Records              []WorkRecordResponse `json:"records"`
	TotalWorkingHours    float64              `json:"total_working_hours"`
	WindowedWorkingHours float64              `json:"windowed_working_hours"`
	WindowStart          *time.Time           `json:"window_start,omitempty"`
	WindowEnd            *time.Time           `json:"window_end,omitempty"`
}

// QRTokenResponse carries a check-in token for an activity
type QRTokenResponse struct {
	ActivityID uuid.UUID `json:"activity_id"`
	Token      string    `json:"token"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// ToCheckRecordResponse converts the domain entity to a response DTO
func ToCheckRecordResponse(r *checkin.CheckRecord, action CheckInAction) CheckRecordResponse {
	return CheckRecordResponse{
		ID:               r.ID,
		ActivityID:       r.ActivityID,
		UserID:           r.UserID,
		CheckInAt:        r.CheckInAt,
		CheckOutAt:       r.CheckOutAt,
		CheckInLocation:  r.CheckInLocation,
		CheckOutLocation: r.CheckOutLocation,
		DurationHours:    r.DurationHours(),
		Action:           action,
	}
}

// ToCheckRecordResponses converts a slice of records
func ToCheckRecordResponses(records []*checkin.CheckRecord) []CheckRecordResponse {
	out := make([]CheckRecordResponse, len(records))
	for i, r := range records {
		out[i] = ToCheckRecordResponse(r, "")
	}
	return out
}

// ToCasualCheckRecordResponse converts the domain entity to a response DTO
func ToCasualCheckRecordResponse(r *checkin.CasualCheckRecord, action CheckInAction) CasualCheckRecordResponse {
	return CasualCheckRecordResponse{
		ID:            r.ID,
		UserID:        r.UserID,
		CheckInAt:     r.CheckInAt,
		CheckOutAt:    r.CheckOutAt,
		DurationHours: r.DurationHours(),
		Action:        action,
	}
}
