package models

import (
	"time"

	"github.com/activityhub/backend/internal/domain/activity"
	"github.com/google/uuid"
)

// ActivityModel is the persistence model for the Activity aggregate. Staff
// live in activity_staff and are loaded by the repository.
type ActivityModel struct {
	AggregateModel
	Site          string     `gorm:"type:varchar(20);not null;index"`
	Title         string     `gorm:"type:varchar(200);not null"`
	Description   string     `gorm:"type:text"`
	Location      string     `gorm:"type:varchar(300)"`
	StartTime     time.Time  `gorm:"not null;index"`
	EndTime       time.Time  `gorm:"not null"`
	Status        string     `gorm:"type:varchar(20);not null;index"`
	OrganiserID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	CoverImageKey string     `gorm:"type:varchar(500)"`
	ApprovedByID  *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt    *time.Time
}

// TableName returns the table name for GORM
func (ActivityModel) TableName() string {
	return "activities"
}

// ToDomain converts the persistence model to a domain Activity
func (m *ActivityModel) ToDomain(staffIDs []uuid.UUID) *activity.Activity {
	if staffIDs == nil {
		staffIDs = make([]uuid.UUID, 0)
	}
	return &activity.Activity{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Site:              activity.Site(m.Site),
		Title:             m.Title,
		Description:       m.Description,
		Location:          m.Location,
		StartTime:         m.StartTime,
		EndTime:           m.EndTime,
		Status:            activity.Status(m.Status),
		OrganiserID:       m.OrganiserID,
		StaffIDs:          staffIDs,
		CoverImageKey:     m.CoverImageKey,
		ApprovedByID:      m.ApprovedByID,
		ApprovedAt:        m.ApprovedAt,
	}
}

// ActivityModelFromDomain creates a persistence model from a domain Activity
func ActivityModelFromDomain(a *activity.Activity) *ActivityModel {
	m := &ActivityModel{
		Site:          string(a.Site),
		Title:         a.Title,
		Description:   a.Description,
		Location:      a.Location,
		StartTime:     a.StartTime.UTC(),
		EndTime:       a.EndTime.UTC(),
		Status:        string(a.Status),
		OrganiserID:   a.OrganiserID,
		CoverImageKey: a.CoverImageKey,
		ApprovedByID:  a.ApprovedByID,
		ApprovedAt:    utcPtr(a.ApprovedAt),
	}
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	return m
}

// ActivityStaffModel assigns a staff member to an activity
type ActivityStaffModel struct {
	ActivityID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ActivityStaffModel) TableName() string {
	return "activity_staff"
}

// RegistrationModel is the persistence model for activity.Registration
type RegistrationModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	ActivityID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_registrations_activity_user"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_registrations_activity_user;index"`
	Role       string    `gorm:"type:varchar(50)"`
	Subgroup   string    `gorm:"type:varchar(100)"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (RegistrationModel) TableName() string {
	return "activity_registrations"
}

// ToDomain converts the persistence model to a domain Registration
func (m *RegistrationModel) ToDomain() *activity.Registration {
	return &activity.Registration{
		ID:         m.ID,
		ActivityID: m.ActivityID,
		UserID:     m.UserID,
		Role:       m.Role,
		Subgroup:   m.Subgroup,
		CreatedAt:  m.CreatedAt,
	}
}

// RegistrationModelFromDomain creates a persistence model from a domain Registration
func RegistrationModelFromDomain(r *activity.Registration) *RegistrationModel {
	return &RegistrationModel{
		ID:         r.ID,
		ActivityID: r.ActivityID,
		UserID:     r.UserID,
		Role:       r.Role,
		Subgroup:   r.Subgroup,
		CreatedAt:  r.CreatedAt.UTC(),
	}
}
