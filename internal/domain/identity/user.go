package identity

import (
	"time"

	"github.com/activityhub/backend/internal/domain/activity"
	"github.com/google/uuid"
)

// User is the read model of an account managed by the identity provider.
// Only the fields authorization and attendance need are kept here.
type User struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Roles     RoleSet
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasAdminRole reports whether the user administers site
func (u *User) HasAdminRole(site activity.Site) bool {
	return u.Roles.HasAdminRole(site)
}

// Actor returns the acting identity of the user
func (u *User) Actor() Actor {
	return Actor{UserID: u.ID, Roles: u.Roles}
}

// Actor is the authenticated caller of an operation
type Actor struct {
	UserID uuid.UUID
	Roles  RoleSet
}

// HasAdminRole reports whether the actor administers site
func (a Actor) HasAdminRole(site activity.Site) bool {
	return a.Roles.HasAdminRole(site)
}

// IsAnyAdmin reports whether the actor administers any site
func (a Actor) IsAnyAdmin() bool {
	return a.Roles.IsAnyAdmin()
}
