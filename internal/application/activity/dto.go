package activity

import (
	"time"

	"github.com/activityhub/backend/internal/domain/activity"
	"github.com/google/uuid"
)

// ===================== Request DTOs =====================

// CreateActivityRequest represents a request to create an activity
type CreateActivityRequest struct {
	Site        string    `json:"site" binding:"required,oneof=volunteer class etogether work" example:"volunteer"`
	Title       string    `json:"title" binding:"required,max=200" example:"Lantern festival setup"`
	Description string    `json:"description" binding:"max=5000"`
	Location    string    `json:"location" binding:"max=200" example:"Main hall"`
	StartTime   time.Time `json:"start_time" binding:"required"`
	EndTime     time.Time `json:"end_time" binding:"required,gtfield=StartTime"`
	Draft       bool      `json:"draft"`
}

// UpdateActivityRequest represents a request to update an activity.
// ExpectedVersion turns the update into a compare-and-swap.
type UpdateActivityRequest struct {
	Title           string    `json:"title" binding:"required,max=200"`
	Description     string    `json:"description" binding:"max=5000"`
	Location        string    `json:"location" binding:"max=200"`
	StartTime       time.Time `json:"start_time" binding:"required"`
	EndTime         time.Time `json:"end_time" binding:"required"`
	ExpectedVersion *int      `json:"expected_version,omitempty" binding:"omitempty,min=1"`
}

// AssignStaffRequest replaces the staff list of an activity
type AssignStaffRequest struct {
	StaffIDs []uuid.UUID `json:"staff_ids" binding:"max=100"`
}

// RegisterRequest represents a request to join an activity
type RegisterRequest struct {
	Role     string `json:"role" binding:"max=50"`
	Subgroup string `json:"subgroup" binding:"max=50"`
}

// ListActivitiesFilter represents query options for listing activities
type ListActivitiesFilter struct {
	Site     string `form:"site" binding:"omitempty,oneof=volunteer class etogether work"`
	Status   string `form:"status" binding:"omitempty,oneof=DRAFT INREVIEW PUBLISHED"`
	Search   string `form:"search" binding:"max=100"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ===================== Response DTOs =====================

// ActivityResponse represents an activity in API responses
type ActivityResponse struct {
	ID            uuid.UUID   `json:"id"`
	Site          string      `json:"site"`
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	Location      string      `json:"location"`
	StartTime     time.Time   `json:"start_time"`
	EndTime       time.Time   `json:"end_time"`
	Status        string      `json:"status"`
	OrganiserID   uuid.UUID   `json:"organiser_id"`
	StaffIDs      []uuid.UUID `json:"staff_ids"`
	CoverImageURL string      `json:"cover_image_url,omitempty"`
	ApprovedByID  *uuid.UUID  `json:"approved_by_id,omitempty"`
	ApprovedAt    *time.Time  `json:"approved_at,omitempty"`
	Version       int         `json:"version"`
	IsManager     bool        `json:"is_manager"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// RegistrationResponse represents a registration in API responses
type RegistrationResponse struct {
	ID         uuid.UUID `json:"id"`
	ActivityID uuid.UUID `json:"activity_id"`
	UserID     uuid.UUID `json:"user_id"`
	Role       string    `json:"role,omitempty"`
	Subgroup   string    `json:"subgroup,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ToActivityResponse converts the domain entity to a response DTO
func ToActivityResponse(a *activity.Activity, isManager bool, coverURL string) ActivityResponse {
	staff := a.StaffIDs
	if staff == nil {
		staff = []uuid.UUID{}
	}
	return ActivityResponse{
		ID:            a.ID,
		Site:          a.Site.String(),
		Title:         a.Title,
		Description:   a.Description,
		Location:      a.Location,
		StartTime:     a.StartTime,
		EndTime:       a.EndTime,
		Status:        a.Status.String(),
		OrganiserID:   a.OrganiserID,
		StaffIDs:      staff,
		CoverImageURL: coverURL,
		ApprovedByID:  a.ApprovedByID,
		ApprovedAt:    a.ApprovedAt,
		Version:       a.Version,
		IsManager:     isManager,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

// ToRegistrationResponse converts the domain entity to a response DTO
func ToRegistrationResponse(r *activity.Registration) RegistrationResponse {
	return RegistrationResponse{
		ID:         r.ID,
		ActivityID: r.ActivityID,
		UserID:     r.UserID,
		Role:       r.Role,
		Subgroup:   r.Subgroup,
		CreatedAt:  r.CreatedAt,
	}
}

// ToRegistrationResponses converts a slice of registrations
func ToRegistrationResponses(regs []*activity.Registration) []RegistrationResponse {
	out := make([]RegistrationResponse, len(regs))
	for i, r := range regs {
		out[i] = ToRegistrationResponse(r)
	}
	return out
}
