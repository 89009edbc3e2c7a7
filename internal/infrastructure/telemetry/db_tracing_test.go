package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/activityhub/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type tracedVisit struct {
	ID   uint `gorm:"primaryKey"`
	Note string
}

func newTracedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedVisit{}))
	return db
}

func spanAttrs(s sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := map[attribute.Key]attribute.Value{}
	for _, kv := range s.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestDefaultDBTracingConfig(t *testing.T) {
	cfg := telemetry.DefaultDBTracingConfig()
	assert.False(t, cfg.Enabled)
	assert.False(t, cfg.IncludeQueryArgs)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThreshold)
}

func TestInstrumentDB_DisabledLeavesCallbacksAlone(t *testing.T) {
	db := newTracedDB(t)

	require.NoError(t, telemetry.InstrumentDB(db, telemetry.DefaultDBTracingConfig(), zaptest.NewLogger(t)))
	assert.Nil(t, db.Callback().Create().Get("activityhub:annotate_create"))
}

func TestInstrumentDB_TracesStatements(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	db := newTracedDB(t)
	cfg := telemetry.DefaultDBTracingConfig()
	cfg.Enabled = true
	cfg.DBName = "sqlite"
	cfg.SlowQueryThreshold = time.Nanosecond
	cfg.TracerProvider = tp
	require.NoError(t, telemetry.InstrumentDB(db, cfg, zaptest.NewLogger(t)))

	ctx := context.Background()
	require.NoError(t, db.WithContext(ctx).Create(&tracedVisit{Note: "front desk"}).Error)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	attrs := spanAttrs(spans[0])
	assert.Equal(t, "traced_visits", attrs["db.sql.table"].AsString())
	assert.Equal(t, int64(1), attrs["db.rows_affected"].AsInt64())
	assert.True(t, attrs["db.slow_query"].AsBool())
	assert.NotEqual(t, codes.Error, spans[0].Status().Code)

	t.Run("a miss is not an error", func(t *testing.T) {
		var v tracedVisit
		err := db.WithContext(ctx).First(&v, 999).Error
		require.ErrorIs(t, err, gorm.ErrRecordNotFound)

		spans := sr.Ended()
		require.Len(t, spans, 2)
		assert.NotEqual(t, codes.Error, spans[1].Status().Code)
	})

	t.Run("a failed statement is marked", func(t *testing.T) {
		err := db.WithContext(ctx).Exec("INSERT INTO missing_table (id) VALUES (1)").Error
		require.Error(t, err)

		spans := sr.Ended()
		require.Len(t, spans, 3)
		assert.Equal(t, codes.Error, spans[2].Status().Code)
	})
}
