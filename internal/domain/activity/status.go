package activity

// Status represents the lifecycle status of an activity
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusInReview  Status = "INREVIEW"
	StatusPublished Status = "PUBLISHED"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusInReview, StatusPublished:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusDraft:
		return target == StatusInReview || target == StatusPublished
	case StatusInReview:
		return target == StatusPublished
	case StatusPublished:
		return false // Terminal; edits bump the version only
	}
	return false
}
