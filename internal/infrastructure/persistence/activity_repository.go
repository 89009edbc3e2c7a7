package persistence

import (
	"context"
	"strings"

	"github.com/activityhub/backend/internal/domain/activity"
	"github.com/activityhub/backend/internal/domain/shared"
	"github.com/activityhub/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormActivityRepository implements activity.ActivityRepository using GORM
type GormActivityRepository struct {
	db *gorm.DB
}

// NewGormActivityRepository creates a new GormActivityRepository
func NewGormActivityRepository(db *gorm.DB) *GormActivityRepository {
	return &GormActivityRepository{db: db}
}

// FindByID finds an activity and its staff
func (r *GormActivityRepository) FindByID(ctx context.Context, id uuid.UUID) (*activity.Activity, error) {
	var model models.ActivityModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	staff, err := r.staffOf(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	return model.ToDomain(staff), nil
}

// FindByIDs returns the activities that exist among ids, without staff
func (r *GormActivityRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*activity.Activity, error) {
	if len(ids) == 0 {
		return []*activity.Activity{}, nil
	}
	var activityModels []models.ActivityModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&activityModels).Error; err != nil {
		return nil, err
	}
	activities := make([]*activity.Activity, len(activityModels))
	for i := range activityModels {
		activities[i] = activityModels[i].ToDomain(nil)
	}
	return activities, nil
}

// FindAll returns a page of activities matching the filter and the total count
func (r *GormActivityRepository) FindAll(ctx context.Context, filter activity.Filter) ([]*activity.Activity, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ActivityModel{})
	query = r.applyFilter(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortField := ValidateSortField(filter.OrderBy, ActivitySortFields, "start_time")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(sortField + " " + sortOrder).Order("id")

	page := filter.Filter
	if page.PageSize <= 0 {
		page.PageSize = shared.DefaultFilter().PageSize
	}

	var activityModels []models.ActivityModel
	if err := query.Offset(page.Offset()).Limit(page.PageSize).Find(&activityModels).Error; err != nil {
		return nil, 0, err
	}

	activities := make([]*activity.Activity, len(activityModels))
	for i := range activityModels {
		activities[i] = activityModels[i].ToDomain(nil)
	}
	return activities, total, nil
}

func (r *GormActivityRepository) applyFilter(query *gorm.DB, filter activity.Filter) *gorm.DB {
	if filter.Site != nil {
		query = query.Where("site = ?", string(*filter.Site))
	}
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.VisibleTo != nil {
		staffed := r.db.Model(&models.ActivityStaffModel{}).Select("activity_id").Where("user_id = ?", *filter.VisibleTo)
		query = query.Where(
			r.db.Where("status = ?", string(activity.StatusPublished)).
				Or("organiser_id = ?", *filter.VisibleTo).
				Or("id IN (?)", staffed),
		)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(location) LIKE ?", pattern, pattern)
	}
	return query
}

// Save inserts or updates the activity and replaces its staff list
func (r *GormActivityRepository) Save(ctx context.Context, a *activity.Activity) error {
	model := models.ActivityModelFromDomain(a)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(model).Error; err != nil {
			return translateError(err)
		}
		return r.replaceStaff(tx, a)
	})
}

// SaveWithVersion updates the activity only if the stored version still
// equals expectedVersion
func (r *GormActivityRepository) SaveWithVersion(ctx context.Context, a *activity.Activity, expectedVersion int) error {
	model := models.ActivityModelFromDomain(a)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.ActivityModel{}).
			Where("id = ? AND version = ?", a.ID, expectedVersion).
			Updates(map[string]interface{}{
				"title":           model.Title,
				"description":     model.Description,
				"location":        model.Location,
				"start_time":      model.StartTime,
				"end_time":        model.EndTime,
				"status":          model.Status,
				"cover_image_key": model.CoverImageKey,
				"approved_by_id":  model.ApprovedByID,
				"approved_at":     model.ApprovedAt,
				"version":         model.Version,
				"updated_at":      model.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError(shared.CodeConflict, "Activity was modified by another request")
		}
		return r.replaceStaff(tx, a)
	})
}

// Delete removes the activity with its staff, registrations and check records
func (r *GormActivityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, child := range []any{&models.CheckRecordModel{}, &models.RegistrationModel{}, &models.ActivityStaffModel{}} {
			if err := tx.Where("activity_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}
		result := tx.Delete(&models.ActivityModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func (r *GormActivityRepository) replaceStaff(tx *gorm.DB, a *activity.Activity) error {
	if err := tx.Where("activity_id = ?", a.ID).Delete(&models.ActivityStaffModel{}).Error; err != nil {
		return err
	}
	if len(a.StaffIDs) == 0 {
		return nil
	}
	rows := make([]models.ActivityStaffModel, len(a.StaffIDs))
	for i, userID := range a.StaffIDs {
		rows[i] = models.ActivityStaffModel{
			ActivityID: a.ID,
			UserID:     userID,
			CreatedAt:  a.UpdatedAt.UTC(),
		}
	}
	return tx.Create(&rows).Error
}

func (r *GormActivityRepository) staffOf(ctx context.Context, db *gorm.DB, activityID uuid.UUID) ([]uuid.UUID, error) {
	var staff []uuid.UUID
	err := db.WithContext(ctx).
		Model(&models.ActivityStaffModel{}).
		Where("activity_id = ?", activityID).
		Order("created_at, user_id").
		Pluck("user_id", &staff).Error
	return staff, err
}

var _ activity.ActivityRepository = (*GormActivityRepository)(nil)
