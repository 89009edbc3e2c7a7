package persistence

import (
	"context"
	"time"

	"github.com/activityhub/backend/internal/domain/checkin"
	"github.com/activityhub/backend/internal/domain/shared"
	"github.com/activityhub/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCasualCheckRecordRepository implements checkin.CasualCheckRecordRepository using GORM
type GormCasualCheckRecordRepository struct {
	db *gorm.DB
}

// NewGormCasualCheckRecordRepository creates a new GormCasualCheckRecordRepository
func NewGormCasualCheckRecordRepository(db *gorm.DB) *GormCasualCheckRecordRepository {
	return &GormCasualCheckRecordRepository{db: db}
}

// LockUser takes a transaction-scoped advisory lock on the user. SQLite
// already serialises writers, so the lock is Postgres only.
func (r *GormCasualCheckRecordRepository) LockUser(ctx context.Context, userID uuid.UUID) error {
	if r.db.Dialector.Name() != "postgres" {
		return nil
	}
	return r.db.WithContext(ctx).
		Exec("SELECT pg_advisory_xact_lock(hashtextextended(?, 0))", casualLockKey(userID)).Error
}

func casualLockKey(userID uuid.UUID) string {
	return "casual_check_records:" + userID.String()
}

// FindLatestOpenForUpdate returns the newest open record checked in within
// [from, to), locking it
func (r *GormCasualCheckRecordRepository) FindLatestOpenForUpdate(ctx context.Context, userID uuid.UUID, from, to time.Time) (*checkin.CasualCheckRecord, error) {
	var model models.CasualCheckRecordModel
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND check_out_at IS NULL", userID).
		Where("check_in_at >= ? AND check_in_at < ?", from.UTC(), to.UTC()).
		Order("check_in_at DESC").
		First(&model).Error
	if err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// Create inserts a casual record
func (r *GormCasualCheckRecordRepository) Create(ctx context.Context, rec *checkin.CasualCheckRecord) error {
	return translateError(r.db.WithContext(ctx).Create(models.CasualCheckRecordModelFromDomain(rec)).Error)
}

// Update writes the period of an existing casual record
func (r *GormCasualCheckRecordRepository) Update(ctx context.Context, rec *checkin.CasualCheckRecord) error {
	model := models.CasualCheckRecordModelFromDomain(rec)
	result := r.db.WithContext(ctx).
		Model(&models.CasualCheckRecordModel{}).
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

// FindByUser lists the user's casual records by check-in time
func (r *GormCasualCheckRecordRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*checkin.CasualCheckRecord, error) {
	var rows []models.CasualCheckRecordModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("check_in_at, id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	records := make([]*checkin.CasualCheckRecord, len(rows))
	for i := range rows {
		records[i] = rows[i].ToDomain()
	}
	return records, nil
}

var _ checkin.CasualCheckRecordRepository = (*GormCasualCheckRecordRepository)(nil)
