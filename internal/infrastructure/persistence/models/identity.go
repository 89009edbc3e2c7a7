package models

import (
	"time"

	"github.com/activityhub/backend/internal/domain/identity"
	"github.com/google/uuid"
)

// UserModel is the persistence model for identity.User. AdminRoles holds the
// RoleSet bit flags.
type UserModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name       string    `gorm:"type:varchar(200);not null"`
	Email      string    `gorm:"type:varchar(200)"`
	AdminRoles int16     `gorm:"not null;default:0"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Roles:     identity.RoleSet(m.AdminRoles),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// UserModelFromDomain creates a persistence model from a domain User
func UserModelFromDomain(u *identity.User) *UserModel {
	return &UserModel{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		AdminRoles: int16(u.Roles),
		CreatedAt:  u.CreatedAt.UTC(),
		UpdatedAt:  u.UpdatedAt.UTC(),
	}
}
