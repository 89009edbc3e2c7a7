package persistence

import (
	"testing"
	"time"

	"github.com/activityhub/backend/internal/domain/activity"
	"github.com/activityhub/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testBase = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// newTestDB opens a fresh in-memory SQLite database with every table
// migrated. The pool is pinned to one connection so all queries share the
// same in-memory database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), NewGormConfig(zap.NewNop(), "silent"))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

func newTestActivity(t *testing.T, site activity.Site, organiser uuid.UUID, title string, draft bool) *activity.Activity {
	t.Helper()
	a, err := activity.NewActivity(activity.DefaultPolicies().For(site), organiser, activity.Details{
		Title:     title,
		Location:  "Main hall",
		StartTime: testBase,
		EndTime:   testBase.Add(2 * time.Hour),
	}, draft)
	require.NoError(t, err)
	return a
}
