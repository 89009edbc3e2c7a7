package activity

import (
	"fmt"
	"strings"
	"time"

	"github.com/activityhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Details are the editable fields of an activity
type Details struct {
	Title       string
	Description string
	Location    string
	StartTime   time.Time
	EndTime     time.Time
}

// Activity is the aggregate root for an activity on any site
type Activity struct {
	shared.BaseAggregateRoot
	Site          Site
	Title         string
	Description   string
	Location      string
	StartTime     time.Time
	EndTime       time.Time
	Status        Status
	OrganiserID   uuid.UUID
	StaffIDs      []uuid.UUID
	CoverImageKey string
	ApprovedByID  *uuid.UUID
	ApprovedAt    *time.Time
}

// NewActivity creates an activity. Drafts start in DRAFT; otherwise the
// policy's default status applies.
func NewActivity(policy SitePolicy, organiserID uuid.UUID, d Details, asDraft bool) (*Activity, error) {
	if !policy.Site.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Unknown site %q", policy.Site))
	}
	if organiserID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Organiser ID cannot be empty")
	}
	if err := validateDetails(d); err != nil {
		return nil, err
	}

	status := policy.DefaultStatus
	if asDraft || !status.IsValid() {
		status = StatusDraft
	}

	a := &Activity{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Site:              policy.Site,
		Status:            status,
		OrganiserID:       organiserID,
		StaffIDs:          make([]uuid.UUID, 0),
	}
	a.applyDetails(d)

	a.AddDomainEvent(NewActivityCreatedEvent(a))
	return a, nil
}

// Update replaces the editable fields. Status is never regressed.
func (a *Activity) Update(d Details) error {
	if err := validateDetails(d); err != nil {
		return err
	}
	a.applyDetails(d)
	a.touch()
	return nil
}

// SubmitForReview moves a draft forward: to INREVIEW when the site requires
// approval, otherwise straight to PUBLISHED
func (a *Activity) SubmitForReview(policy SitePolicy) error {
	target := policy.SubmittedStatus()
	if a.Status != StatusDraft || !a.Status.CanTransitionTo(target) {
		return shared.NewDomainError(shared.CodeInvalidTransition, fmt.Sprintf("Cannot transition from %s to %s", a.Status, target))
	}

	a.Status = target
	a.touch()

	a.AddDomainEvent(NewActivitySubmittedEvent(a))
	if target == StatusPublished {
		a.AddDomainEvent(NewActivityPublishedEvent(a))
	}
	return nil
}

// Approve publishes an activity that is in review, stamping it with at
func (a *Activity) Approve(approverID uuid.UUID, at time.Time) error {
	if a.Status != StatusInReview {
		return shared.NewDomainError(shared.CodeInvalidTransition, fmt.Sprintf("Cannot transition from %s to PUBLISHED", a.Status))
	}
	if approverID == uuid.Nil {
		return shared.NewDomainError(shared.CodeInvalidInput, "Approver ID cannot be empty")
	}

	a.Status = StatusPublished
	a.ApprovedByID = &approverID
	a.ApprovedAt = &at
	a.touch()

	a.AddDomainEvent(NewActivityPublishedEvent(a))
	return nil
}

// AssignStaff replaces the staff list. Only staffing sites accept staff.
func (a *Activity) AssignStaff(policy SitePolicy, staffIDs []uuid.UUID) error {
	if !policy.Staffing {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Site %s does not support staff", a.Site))
	}

	seen := make(map[uuid.UUID]struct{}, len(staffIDs))
	staff := make([]uuid.UUID, 0, len(staffIDs))
	for _, id := range staffIDs {
		if id == uuid.Nil {
			return shared.NewDomainError(shared.CodeInvalidInput, "Staff ID cannot be empty")
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		staff = append(staff, id)
	}

	a.StaffIDs = staff
	a.touch()
	return nil
}

// SetCoverImage records the blob key of the cover image
func (a *Activity) SetCoverImage(key string) {
	a.CoverImageKey = key
	a.touch()
}

// MarkDeleted records the deletion event; the repository removes the row
func (a *Activity) MarkDeleted(deletedBy uuid.UUID) {
	a.AddDomainEvent(NewActivityDeletedEvent(a, deletedBy))
}

// IsOrganiser reports whether userID organises the activity
func (a *Activity) IsOrganiser(userID uuid.UUID) bool {
	return userID != uuid.Nil && a.OrganiserID == userID
}

// HasStaff reports whether userID is assigned staff
func (a *Activity) HasStaff(userID uuid.UUID) bool {
	for _, id := range a.StaffIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// IsPublished reports whether the activity is visible to everyone
func (a *Activity) IsPublished() bool {
	return a.Status == StatusPublished
}

// IsOngoing reports whether now falls inside [StartTime, EndTime+grace]
func (a *Activity) IsOngoing(now time.Time, grace time.Duration) bool {
	if now.Before(a.StartTime) {
		return false
	}
	return !now.After(a.EndTime.Add(grace))
}

func (a *Activity) applyDetails(d Details) {
	a.Title = strings.TrimSpace(d.Title)
	a.Description = strings.TrimSpace(d.Description)
	a.Location = strings.TrimSpace(d.Location)
	a.StartTime = d.StartTime
	a.EndTime = d.EndTime
}

func (a *Activity) touch() {
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
}

func validateDetails(d Details) error {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Title cannot be empty")
	}
	if len(title) > 200 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Title cannot exceed 200 characters")
	}
	if d.StartTime.IsZero() || d.EndTime.IsZero() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Start and end time are required")
	}
	if !d.EndTime.After(d.StartTime) {
		return shared.NewDomainError(shared.CodeInvalidRange, "End time must be after start time")
	}
	return nil
}
