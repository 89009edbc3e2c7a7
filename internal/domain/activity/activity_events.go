package activity

import (
	"time"

	"github.com/activityhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AggregateTypeActivity is the aggregate type of Activity events
const AggregateTypeActivity = "Activity"

// Activity event type constants
const (
	EventTypeActivityCreated   = "ActivityCreated"
	EventTypeActivitySubmitted = "ActivitySubmitted"
	EventTypeActivityPublished = "ActivityPublished"
	EventTypeActivityDeleted   = "ActivityDeleted"
)

// ActivityCreatedEvent is raised when an activity is created
type ActivityCreatedEvent struct {
	shared.BaseDomainEvent
	ActivityID  uuid.UUID `json:"activity_id"`
	Site        Site      `json:"site"`
	Title       string    `json:"title"`
	Status      Status    `json:"status"`
	OrganiserID uuid.UUID `json:"organiser_id"`
	StartTime   time.Time `json:"start_time"`
}

// NewActivityCreatedEvent creates a new ActivityCreatedEvent
func NewActivityCreatedEvent(a *Activity) *ActivityCreatedEvent {
	return &ActivityCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeActivityCreated, AggregateTypeActivity, a.ID),
		ActivityID:      a.ID,
		Site:            a.Site,
		Title:           a.Title,
		Status:          a.Status,
		OrganiserID:     a.OrganiserID,
		StartTime:       a.StartTime,
	}
}

// EventType returns the event type name
func (e *ActivityCreatedEvent) EventType() string {
	return EventTypeActivityCreated
}

// ActivitySubmittedEvent is raised when a draft is submitted
type ActivitySubmittedEvent struct {
	shared.BaseDomainEvent
	ActivityID uuid.UUID `json:"activity_id"`
	Site       Site      `json:"site"`
	Title      string    `json:"title"`
	Status     Status    `json:"status"`
}

// NewActivitySubmittedEvent creates a new ActivitySubmittedEvent
func NewActivitySubmittedEvent(a *Activity) *ActivitySubmittedEvent {
	return &ActivitySubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeActivitySubmitted, AggregateTypeActivity, a.ID),
		ActivityID:      a.ID,
		Site:            a.Site,
		Title:           a.Title,
		Status:          a.Status,
	}
}

// EventType returns the event type name
func (e *ActivitySubmittedEvent) EventType() string {
	return EventTypeActivitySubmitted
}

// ActivityPublishedEvent is raised when an activity reaches PUBLISHED
type ActivityPublishedEvent struct {
	shared.BaseDomainEvent
	ActivityID   uuid.UUID  `json:"activity_id"`
	Site         Site       `json:"site"`
	Title        string     `json:"title"`
	OrganiserID  uuid.UUID  `json:"organiser_id"`
	ApprovedByID *uuid.UUID `json:"approved_by_id,omitempty"`
	StartTime    time.Time  `json:"start_time"`
}

// NewActivityPublishedEvent creates a new ActivityPublishedEvent
func NewActivityPublishedEvent(a *Activity) *ActivityPublishedEvent {
	return &ActivityPublishedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeActivityPublished, AggregateTypeActivity, a.ID),
		ActivityID:      a.ID,
		Site:            a.Site,
		Title:           a.Title,
		OrganiserID:     a.OrganiserID,
		ApprovedByID:    a.ApprovedByID,
		StartTime:       a.StartTime,
	}
}

// EventType returns the event type name
func (e *ActivityPublishedEvent) EventType() string {
	return EventTypeActivityPublished
}

// ActivityDeletedEvent is raised when an activity is deleted
type ActivityDeletedEvent struct {
	shared.BaseDomainEvent
	ActivityID uuid.UUID `json:"activity_id"`
	Site       Site      `json:"site"`
	Title      string    `json:"title"`
	DeletedBy  uuid.UUID `json:"deleted_by"`
}

// NewActivityDeletedEvent creates a new ActivityDeletedEvent
func NewActivityDeletedEvent(a *Activity, deletedBy uuid.UUID) *ActivityDeletedEvent {
	return &ActivityDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeActivityDeleted, AggregateTypeActivity, a.ID),
		ActivityID:      a.ID,
		Site:            a.Site,
		Title:           a.Title,
		DeletedBy:       deletedBy,
	}
}

// EventType returns the event type name
func (e *ActivityDeletedEvent) EventType() string {
	return EventTypeActivityDeleted
}
