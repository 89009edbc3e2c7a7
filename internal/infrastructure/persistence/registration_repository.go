package persistence

import (
	"context"

	"github.com/activityhub/backend/internal/domain/activity"
	"github.com/activityhub/backend/internal/domain/shared"
	"github.com/activityhub/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormRegistrationRepository implements activity.RegistrationRepository using GORM
type GormRegistrationRepository struct {
	db *gorm.DB
}

// NewGormRegistrationRepository creates a new GormRegistrationRepository
func NewGormRegistrationRepository(db *gorm.DB) *GormRegistrationRepository {
	return &GormRegistrationRepository{db: db}
}

// Create stores a registration
func (r *GormRegistrationRepository) Create(ctx context.Context, reg *activity.Registration) error {
	return translateError(r.db.WithContext(ctx).Create(models.RegistrationModelFromDomain(reg)).Error)
}

// Delete removes the user's registration
func (r *GormRegistrationRepository) Delete(ctx context.Context, activityID, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("activity_id = ? AND user_id = ?", activityID, userID).
		Delete(&models.RegistrationModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByActivity lists registrations in sign-up order
func (r *GormRegistrationRepository) FindByActivity(ctx context.Context, activityID uuid.UUID) ([]*activity.Registration, error) {
	var rows []models.RegistrationModel
	if err := r.db.WithContext(ctx).
		Where("activity_id = ?", activityID).
		Order("created_at, id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	regs := make([]*activity.Registration, len(rows))
	for i := range rows {
		regs[i] = rows[i].ToDomain()
	}
	return regs, nil
}

// Exists reports whether the user is registered
func (r *GormRegistrationRepository) Exists(ctx context.Context, activityID, userID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.RegistrationModel{}).
		Where("activity_id = ? AND user_id = ?", activityID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

var _ activity.RegistrationRepository = (*GormRegistrationRepository)(nil)
