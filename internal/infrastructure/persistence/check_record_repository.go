package persistence

import (
	"context"

	"github.com/activityhub/backend/internal/domain/checkin"
	"github.com/activityhub/backend/internal/domain/shared"
	"github.com/activityhub/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCheckRecordRepository implements checkin.CheckRecordRepository using GORM
type GormCheckRecordRepository struct {
	db *gorm.DB
}

// NewGormCheckRecordRepository creates a new GormCheckRecordRepository
func NewGormCheckRecordRepository(db *gorm.DB) *GormCheckRecordRepository {
	return &GormCheckRecordRepository{db: db}
}

// FindByUserAndActivity finds the record of a user for an activity
func (r *GormCheckRecordRepository) FindByUserAndActivity(ctx context.Context, userID, activityID uuid.UUID) (*checkin.CheckRecord, error) {
	return r.find(r.db.WithContext(ctx), userID, activityID)
}

// FindByUserAndActivityForUpdate is FindByUserAndActivity with SELECT ... FOR
// UPDATE. SQLite ignores the lock.
func (r *GormCheckRecordRepository) FindByUserAndActivityForUpdate(ctx context.Context, userID, activityID uuid.UUID) (*checkin.CheckRecord, error) {
	return r.find(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), userID, activityID)
}

func (r *GormCheckRecordRepository) find(db *gorm.DB, userID, activityID uuid.UUID) (*checkin.CheckRecord, error) {
	var model models.CheckRecordModel
	if err := db.Where("user_id = ? AND activity_id = ?", userID, activityID).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// Create inserts a record. A concurrent insert for the same (user, activity)
// fails the unique index and returns shared.ErrConflict.
func (r *GormCheckRecordRepository) Create(ctx context.Context, rec *checkin.CheckRecord) error {
	return translateError(r.db.WithContext(ctx).Create(models.CheckRecordModelFromDomain(rec)).Error)
}

// Update writes both timestamps and locations of an existing record
func (r *GormCheckRecordRepository) Update(ctx context.Context, rec *checkin.CheckRecord) error {
	model := models.CheckRecordModelFromDomain(rec)
	result := r.db.WithContext(ctx).
		Model(&models.CheckRecordModel{}).
		Where("id = ?", rec.ID).
		Updates(periodUpdates(model.PeriodColumns, model.UpdatedAt))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByActivity lists the activity's records by check-in time
func (r *GormCheckRecordRepository) FindByActivity(ctx context.Context, activityID uuid.UUID) ([]*checkin.CheckRecord, error) {
	return r.list(r.db.WithContext(ctx).Where("activity_id = ?", activityID))
}

// FindByUser lists the user's records by check-in time
func (r *GormCheckRecordRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*checkin.CheckRecord, error) {
	return r.list(r.db.WithContext(ctx).Where("user_id = ?", userID))
}

func (r *GormCheckRecordRepository) list(query *gorm.DB) ([]*checkin.CheckRecord, error) {
	var rows []models.CheckRecordModel
	if err := query.Order("check_in_at, id").Find(&rows).Error; err != nil {
		return nil, err
	}
	records := make([]*checkin.CheckRecord, len(rows))
	for i := range rows {
		records[i] = rows[i].ToDomain()
	}
	return records, nil
}

// periodUpdates lists every period column explicitly so nil check-outs and
// locations are written as NULL
func periodUpdates(p models.PeriodColumns, updatedAt interface{}) map[string]interface{} {
	return map[string]interface{}{
		"check_in_at":         p.CheckInAt,
		"check_out_at":        p.CheckOutAt,
		"check_in_latitude":   p.CheckInLatitude,
		"check_in_longitude":  p.CheckInLongitude,
		"check_out_latitude":  p.CheckOutLatitude,
		"check_out_longitude": p.CheckOutLongitude,
		"updated_at":          updatedAt,
	}
}

var _ checkin.CheckRecordRepository = (*GormCheckRecordRepository)(nil)
