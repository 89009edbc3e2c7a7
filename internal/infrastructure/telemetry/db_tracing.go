package telemetry

import (
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig controls GORM statement tracing
type DBTracingConfig struct {
	Enabled            bool
	IncludeQueryArgs   bool          // bound arguments in db.statement; leaks data, development only
	SlowQueryThreshold time.Duration // zero disables slow query tagging
	DBName             string
	// TracerProvider overrides the global provider
	TracerProvider trace.TracerProvider
}

// DefaultDBTracingConfig returns tracing off, arguments hidden and a 200ms
// slow query threshold
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		SlowQueryThreshold: 200 * time.Millisecond,
		DBName:             "activityhub",
	}
}

const queryStartKey = "activityhub:query_start"

// InstrumentDB installs otelgorm on db so every statement becomes a client
// span under the request span, then adds hooks that tag table, rows affected,
// failures and slow statements. It does nothing when cfg.Enabled is false.
func InstrumentDB(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled {
		logger.Debug("Database tracing disabled")
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBName)}
	if cfg.TracerProvider != nil {
		opts = append(opts, otelgorm.WithTracerProvider(cfg.TracerProvider))
	}
	if !cfg.IncludeQueryArgs {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	// otelgorm ends its span in otel:after:<op>, so annotation has to run
	// between the GORM processor and that hook
	annotate := annotateSpan(cfg.SlowQueryThreshold)
	cb := db.Callback()
	if err := errors.Join(
		cb.Create().Before("gorm:create").Register("activityhub:start_create", markQueryStart),
		cb.Query().Before("gorm:query").Register("activityhub:start_query", markQueryStart),
		cb.Update().Before("gorm:update").Register("activityhub:start_update", markQueryStart),
		cb.Delete().Before("gorm:delete").Register("activityhub:start_delete", markQueryStart),
		cb.Row().Before("gorm:row").Register("activityhub:start_row", markQueryStart),
		cb.Raw().Before("gorm:raw").Register("activityhub:start_raw", markQueryStart),

		cb.Create().After("gorm:create").Before("otel:after:create").Register("activityhub:annotate_create", annotate),
		cb.Query().After("gorm:query").Before("otel:after:select").Register("activityhub:annotate_query", annotate),
		cb.Update().After("gorm:update").Before("otel:after:update").Register("activityhub:annotate_update", annotate),
		cb.Delete().After("gorm:delete").Before("otel:after:delete").Register("activityhub:annotate_delete", annotate),
		cb.Row().After("gorm:row").Before("otel:after:row").Register("activityhub:annotate_row", annotate),
		cb.Raw().After("gorm:raw").Before("otel:after:raw").Register("activityhub:annotate_raw", annotate),
	); err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.String("db_name", cfg.DBName),
		zap.Bool("query_args", cfg.IncludeQueryArgs),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThreshold),
	)
	return nil
}

func markQueryStart(db *gorm.DB) {
	db.InstanceSet(queryStartKey, time.Now())
}

func annotateSpan(slow time.Duration) func(db *gorm.DB) {
	return func(db *gorm.DB) {
		if db.Statement == nil || db.Statement.Context == nil {
			return
		}
		span := trace.SpanFromContext(db.Statement.Context)
		if !span.IsRecording() {
			return
		}

		if db.Statement.Table != "" {
			span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
		}
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))

		// a miss is an answer, not a failure
		if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, db.Error.Error())
		}

		v, ok := db.InstanceGet(queryStartKey)
		if !ok || slow <= 0 {
			return
		}
		if elapsed := time.Since(v.(time.Time)); elapsed > slow {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
			span.AddEvent("slow_query", trace.WithAttributes(
				attribute.Int64("threshold_ms", slow.Milliseconds()),
			))
		}
	}
}
