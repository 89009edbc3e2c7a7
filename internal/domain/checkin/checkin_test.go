package checkin

import (
	"testing"
	"time"

	"github.com/activityhub/backend/internal/domain/geo"
	"github.com/activityhub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func ptr(t time.Time) *time.Time { return &t }

func TestCheckRecord_CheckOut(t *testing.T) {
	loc := geo.NewPoint(25.03, 121.56)
	r, err := NewCheckRecord(uuid.New(), uuid.New(), at(9, 0), &loc)
	require.NoError(t, err)
	assert.True(t, r.IsOpen())
	assert.Zero(t, r.DurationHours())

	t.Run("checkout before checkin is rejected", func(t *testing.T) {
		err := r.CheckOut(at(8, 59), nil)
		assert.ErrorIs(t, err, shared.ErrInvalidRange)
		assert.True(t, r.IsOpen())
	})

	t.Run("checkout at same instant is rejected", func(t *testing.T) {
		assert.ErrorIs(t, r.CheckOut(at(9, 0), nil), shared.ErrInvalidRange)
	})

	require.NoError(t, r.CheckOut(at(9, 30), &loc))
	assert.False(t, r.IsOpen())
	assert.Equal(t, 0.5, r.DurationHours())

	t.Run("second checkout is rejected", func(t *testing.T) {
		assert.ErrorIs(t, r.CheckOut(at(10, 0), nil), shared.ErrInvalidState)
		assert.Equal(t, at(9, 30), *r.CheckOutAt)
	})
}

func TestCheckRecord_Correct(t *testing.T) {
	r, err := NewCheckRecord(uuid.New(), uuid.New(), at(9, 0), nil)
	require.NoError(t, err)

	assert.ErrorIs(t, r.Correct(at(10, 0), at(10, 0)), shared.ErrInvalidRange)
	assert.ErrorIs(t, r.Correct(at(10, 0), at(9, 0)), shared.ErrInvalidRange)

	require.NoError(t, r.Correct(at(8, 0), at(12, 0)))
	assert.Equal(t, at(8, 0), r.CheckInAt)
	assert.Equal(t, 4.0, r.DurationHours())

	_, err = NewCorrectedCheckRecord(uuid.New(), uuid.New(), at(12, 0), at(11, 0))
	assert.ErrorIs(t, err, shared.ErrInvalidRange)
}

func TestNewCheckRecord_RequiresIDs(t *testing.T) {
	_, err := NewCheckRecord(uuid.Nil, uuid.New(), at(9, 0), nil)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	_, err = NewCasualCheckRecord(uuid.Nil, at(9, 0), nil)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestDayBounds(t *testing.T) {
	taipei := time.FixedZone("Asia/Taipei", 8*3600)

	// 2026-03-01 20:00 UTC is 2026-03-02 04:00 in Taipei
	start, end := DayBounds(time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC), taipei)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, taipei), start)
	assert.Equal(t, time.Date(2026, 3, 3, 0, 0, 0, 0, taipei), end)
	assert.Equal(t, time.Date(2026, 3, 1, 16, 0, 0, 0, time.UTC), start.UTC())
}

func TestAggregateHours(t *testing.T) {
	userID := uuid.New()

	casual, _ := NewCasualCheckRecord(userID, at(10, 0), nil)
	require.NoError(t, casual.CheckOut(at(11, 0), nil))

	act, _ := NewCheckRecord(uuid.New(), userID, at(9, 0), nil)
	require.NoError(t, act.CheckOut(at(9, 30), nil))

	open, _ := NewCasualCheckRecord(userID, at(13, 0), nil)

	t.Run("sums both kinds and ignores open records", func(t *testing.T) {
		h := AggregateHours([]*CheckRecord{act}, []*CasualCheckRecord{casual, open}, Window{})
		assert.Equal(t, 1.5, h.TotalHours)
		assert.Equal(t, 1.5, h.WindowedHours)
		require.Len(t, h.Entries, 3)

		// newest first
		assert.Equal(t, open.ID, h.Entries[0].RecordID)
		assert.Equal(t, RecordKindCasual, h.Entries[1].Kind)
		assert.Equal(t, RecordKindActivity, h.Entries[2].Kind)
		require.NotNil(t, h.Entries[2].ActivityID)
		assert.Equal(t, act.ActivityID, *h.Entries[2].ActivityID)
		assert.Zero(t, h.Entries[0].Hours)
	})

	t.Run("window filters by check-in but total is unwindowed", func(t *testing.T) {
		h := AggregateHours([]*CheckRecord{act}, []*CasualCheckRecord{casual}, Window{Start: ptr(at(9, 45))})
		assert.Equal(t, 1.5, h.TotalHours)
		assert.Equal(t, 1.0, h.WindowedHours)
	})

	t.Run("window bounds are inclusive", func(t *testing.T) {
		h := AggregateHours([]*CheckRecord{act}, nil, Window{Start: ptr(at(9, 0)), End: ptr(at(9, 0))})
		assert.Equal(t, 0.5, h.WindowedHours)
		assert.True(t, h.Entries[0].InWindow)
	})

	t.Run("empty", func(t *testing.T) {
		h := AggregateHours(nil, nil, Window{})
		assert.Zero(t, h.TotalHours)
		assert.Empty(t, h.Entries)
	})
}

func TestWindow(t *testing.T) {
	assert.False(t, Window{}.IsBounded())
	assert.True(t, Window{End: ptr(at(1, 0))}.IsBounded())
	assert.False(t, Window{End: ptr(at(1, 0))}.Contains(at(1, 1)))
	assert.True(t, Window{End: ptr(at(1, 0))}.Contains(at(0, 59)))
}
