package persistence

import (
	"context"

	appcheckin "github.com/activityhub/backend/internal/application/checkin"
	"github.com/activityhub/backend/internal/domain/checkin"
	"gorm.io/gorm"
)

// GormTransactionScope implements the check-in TransactionScope using GORM
// transactions
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction. The transaction is rolled
// back when fn returns an error and committed otherwise.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appcheckin.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides repositories bound to one transaction
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// CheckRecordRepo returns the activity check record repository scoped to the transaction
func (r *gormTransactionalRepositories) CheckRecordRepo() checkin.CheckRecordRepository {
	return NewGormCheckRecordRepository(r.tx)
}

// CasualCheckRecordRepo returns the casual check record repository scoped to the transaction
func (r *gormTransactionalRepositories) CasualCheckRecordRepo() checkin.CasualCheckRecordRepository {
	return NewGormCasualCheckRecordRepository(r.tx)
}

var (
	_ appcheckin.TransactionScope          = (*GormTransactionScope)(nil)
	_ appcheckin.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
