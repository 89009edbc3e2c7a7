package activity

import (
	"strings"
	"time"

	"github.com/activityhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Registration links a user to an activity they participate in.
// At most one registration exists per (user, activity).
type Registration struct {
	ID         uuid.UUID
	ActivityID uuid.UUID
	UserID     uuid.UUID
	Role       string // e.g. "leader", "helper"; free-form per site
	Subgroup   string
	CreatedAt  time.Time
}

// NewRegistration creates a registration
func NewRegistration(activityID, userID uuid.UUID, role, subgroup string) (*Registration, error) {
	if activityID == uuid.Nil || userID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Activity and user are required")
	}
	return &Registration{
		ID:         uuid.New(),
		ActivityID: activityID,
		UserID:     userID,
		Role:       strings.TrimSpace(role),
		Subgroup:   strings.TrimSpace(subgroup),
		CreatedAt:  time.Now(),
	}, nil
}
