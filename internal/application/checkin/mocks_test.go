package checkin

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/activityhub/backend/internal/domain/activity"
	"github.com/activityhub/backend/internal/domain/checkin"
	"github.com/activityhub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// stepClock returns a preset time that tests move forward explicitly
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type recordKey struct {
	userID     uuid.UUID
	activityID uuid.UUID
}

// memoryCheckRecords is an in-memory checkin.CheckRecordRepository keyed by
// (user, activity)
type memoryCheckRecords struct {
	mu      sync.Mutex
	records map[recordKey]*checkin.CheckRecord
	creates int
	// beforeCreate runs once before the next Create; returning an error
	// simulates a competing insert
	beforeCreate func(r *checkin.CheckRecord) error
}

func newMemoryCheckRecords() *memoryCheckRecords {
	return &memoryCheckRecords{records: make(map[recordKey]*checkin.CheckRecord)}
}

func (m *memoryCheckRecords) FindByUserAndActivity(_ context.Context, userID, activityID uuid.UUID) (*checkin.CheckRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[recordKey{userID, activityID}]
	if !ok {
		return nil, shared.ErrNotFound
	}
	c := *r
	return &c, nil
}

func (m *memoryCheckRecords) FindByUserAndActivityForUpdate(ctx context.Context, userID, activityID uuid.UUID) (*checkin.CheckRecord, error) {
	return m.FindByUserAndActivity(ctx, userID, activityID)
}

func (m *memoryCheckRecords) Create(_ context.Context, r *checkin.CheckRecord) error {
	if hook := m.takeHook(); hook != nil {
		if err := hook(r); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := recordKey{r.UserID, r.ActivityID}
	if _, ok := m.records[key]; ok {
		return shared.ErrConflict
	}
	c := *r
	m.records[key] = &c
	m.creates++
	return nil
}

func (m *memoryCheckRecords) takeHook() func(r *checkin.CheckRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	hook := m.beforeCreate
	m.beforeCreate = nil
	return hook
}

func (m *memoryCheckRecords) Update(_ context.Context, r *checkin.CheckRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := recordKey{r.UserID, r.ActivityID}
	if _, ok := m.records[key]; !ok {
		return shared.ErrNotFound
	}
	c := *r
	m.records[key] = &c
	return nil
}

func (m *memoryCheckRecords) FindByActivity(_ context.Context, activityID uuid.UUID) ([]*checkin.CheckRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*checkin.CheckRecord, 0)
	for k, r := range m.records {
		if k.activityID == activityID {
			c := *r
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *memoryCheckRecords) FindByUser(_ context.Context, userID uuid.UUID) ([]*checkin.CheckRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*checkin.CheckRecord, 0)
	for k, r := range m.records {
		if k.userID == userID {
			c := *r
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *memoryCheckRecords) put(r *checkin.CheckRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *r
	m.records[recordKey{r.UserID, r.ActivityID}] = &c
}

func (m *memoryCheckRecords) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// memoryCasualRecords is an in-memory checkin.CasualCheckRecordRepository
type memoryCasualRecords struct {
	mu      sync.Mutex
	records []*checkin.CasualCheckRecord
	// calls logs LockUser and FindLatestOpenForUpdate in order
	calls []string
}

func (m *memoryCasualRecords) LockUser(_ context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "lock:"+userID.String())
	return nil
}

func (m *memoryCasualRecords) FindLatestOpenForUpdate(_ context.Context, userID uuid.UUID, from, to time.Time) (*checkin.CasualCheckRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "find:"+userID.String())
	var latest *checkin.CasualCheckRecord
	for _, r := range m.records {
		if r.UserID != userID || !r.IsOpen() {
			continue
		}
		if r.CheckInAt.Before(from) || !r.CheckInAt.Before(to) {
			continue
		}
		if latest == nil || r.CheckInAt.After(latest.CheckInAt) {
			latest = r
		}
	}
	if latest == nil {
		return nil, shared.ErrNotFound
	}
	c := *latest
	return &c, nil
}

func (m *memoryCasualRecords) Create(_ context.Context, r *checkin.CasualCheckRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *r
	m.records = append(m.records, &c)
	return nil
}

func (m *memoryCasualRecords) Update(_ context.Context, r *checkin.CasualCheckRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.records {
		if existing.ID == r.ID {
			c := *r
			m.records[i] = &c
			return nil
		}
	}
	return shared.ErrNotFound
}

func (m *memoryCasualRecords) FindByUser(_ context.Context, userID uuid.UUID) ([]*checkin.CasualCheckRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*checkin.CasualCheckRecord, 0)
	for _, r := range m.records {
		if r.UserID == userID {
			c := *r
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckInAt.Before(out[j].CheckInAt) })
	return out, nil
}

// MockActivityRepository is a mock implementation of activity.ActivityRepository
type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) FindByID(ctx context.Context, id uuid.UUID) (*activity.Activity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*activity.Activity), args.Error(1)
}

func (m *MockActivityRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*activity.Activity, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*activity.Activity), args.Error(1)
}

func (m *MockActivityRepository) FindAll(ctx context.Context, filter activity.Filter) ([]*activity.Activity, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*activity.Activity), args.Get(1).(int64), args.Error(2)
}

func (m *MockActivityRepository) Save(ctx context.Context, a *activity.Activity) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockActivityRepository) SaveWithVersion(ctx context.Context, a *activity.Activity, expectedVersion int) error {
	return m.Called(ctx, a, expectedVersion).Error(0)
}

func (m *MockActivityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// fakeQRTokens accepts exactly one token string per activity
type fakeQRTokens struct {
	valid map[uuid.UUID]string
}

var errBadToken = errors.New("bad token")

func (f *fakeQRTokens) Issue(activityID uuid.UUID, now time.Time) (string, time.Time, error) {
	token := "qr-" + activityID.String()
	if f.valid == nil {
		f.valid = make(map[uuid.UUID]string)
	}
	f.valid[activityID] = token
	return token, now.Add(2 * time.Minute), nil
}

func (f *fakeQRTokens) Verify(token string, activityID uuid.UUID, _ time.Time) error {
	if f.valid[activityID] != token {
		return errBadToken
	}
	return nil
}

// MockCheckRecordRepository is a mock implementation of checkin.CheckRecordRepository
type MockCheckRecordRepository struct {
	mock.Mock
}

func (m *MockCheckRecordRepository) FindByUserAndActivity(ctx context.Context, userID, activityID uuid.UUID) (*checkin.CheckRecord, error) {
	args := m.Called(ctx, userID, activityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkin.CheckRecord), args.Error(1)
}

func (m *MockCheckRecordRepository) FindByUserAndActivityForUpdate(ctx context.Context, userID, activityID uuid.UUID) (*checkin.CheckRecord, error) {
	args := m.Called(ctx, userID, activityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkin.CheckRecord), args.Error(1)
}

func (m *MockCheckRecordRepository) Create(ctx context.Context, r *checkin.CheckRecord) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockCheckRecordRepository) Update(ctx context.Context, r *checkin.CheckRecord) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockCheckRecordRepository) FindByActivity(ctx context.Context, activityID uuid.UUID) ([]*checkin.CheckRecord, error) {
	args := m.Called(ctx, activityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*checkin.CheckRecord), args.Error(1)
}

func (m *MockCheckRecordRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*checkin.CheckRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*checkin.CheckRecord), args.Error(1)
}
