package checkin

import (
	"context"

	"github.com/activityhub/backend/internal/domain/checkin"
)

// TransactionScope provides transactional access to check record repositories.
// All repository operations inside fn share one database transaction, which
// is committed when fn returns nil and rolled back otherwise.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories gives access to repositories bound to the
// current transaction
type TransactionalRepositories interface {
	CheckRecordRepo() checkin.CheckRecordRepository
	CasualCheckRecordRepo() checkin.CasualCheckRecordRepository
}

// NoOpTransactionScope runs fn against plain repositories without a
// transaction. Useful for tests.
type NoOpTransactionScope struct {
	checkRecordRepo  checkin.CheckRecordRepository
	casualRecordRepo checkin.CasualCheckRecordRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	checkRecordRepo checkin.CheckRecordRepository,
	casualRecordRepo checkin.CasualCheckRecordRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		checkRecordRepo:  checkRecordRepo,
		casualRecordRepo: casualRecordRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// CheckRecordRepo returns the activity check record repository.
func (s *NoOpTransactionScope) CheckRecordRepo() checkin.CheckRecordRepository {
	return s.checkRecordRepo
}

// CasualCheckRecordRepo returns the casual check record repository.
func (s *NoOpTransactionScope) CasualCheckRecordRepo() checkin.CasualCheckRecordRepository {
	return s.casualRecordRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
