package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	activityapp "github.com/activityhub/backend/internal/application/activity"
	checkinapp "github.com/activityhub/backend/internal/application/checkin"
	"github.com/activityhub/backend/internal/domain/activity"
	"github.com/activityhub/backend/internal/domain/shared"
	"github.com/activityhub/backend/internal/infrastructure/auth"
	"github.com/activityhub/backend/internal/infrastructure/cache"
	"github.com/activityhub/backend/internal/infrastructure/config"
	"github.com/activityhub/backend/internal/infrastructure/event"
	"github.com/activityhub/backend/internal/infrastructure/logger"
	"github.com/activityhub/backend/internal/infrastructure/persistence"
	"github.com/activityhub/backend/internal/infrastructure/storage"
	"github.com/activityhub/backend/internal/infrastructure/telemetry"
	"github.com/activityhub/backend/internal/interfaces/http/handler"
	"github.com/activityhub/backend/internal/interfaces/http/middleware"
	"github.com/activityhub/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// multipartOverhead leaves room for boundaries and headers around a cover
const multipartOverhead = 1 << 20

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  cfg.Log.Output,
		Service: cfg.App.Name,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting ActivityHub backend",
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Telemetry.Profiling.Enabled,
		ServerAddress:     cfg.Telemetry.Profiling.ServerAddress,
		ApplicationName:   cfg.Telemetry.ServiceName,
		BasicAuthUser:     cfg.Telemetry.Profiling.BasicAuthUser,
		BasicAuthPassword: cfg.Telemetry.Profiling.BasicAuthPassword,
		Mutex:             cfg.Telemetry.Profiling.Mutex,
		Block:             cfg.Telemetry.Profiling.Block,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	defer func() { _ = profiler.Stop() }()
	if profiler.IsEnabled() {
		// before otelgorm and otelgin capture the global provider
		tp.EnableSpanProfiles()
	}

	db, err := persistence.NewDatabase(&cfg.Database, log, cfg.Log.GormMode)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	dbTracing := telemetry.DefaultDBTracingConfig()
	dbTracing.Enabled = tp.IsEnabled() && cfg.Telemetry.DBTracing
	dbTracing.IncludeQueryArgs = cfg.Telemetry.DBQueryArgs
	dbTracing.SlowQueryThreshold = cfg.Telemetry.SlowQueryThreshold
	dbTracing.DBName = cfg.Database.DBName
	if err := telemetry.InstrumentDB(db.DB, dbTracing, log); err != nil {
		log.Fatal("Failed to instrument database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	activityRepo := persistence.NewGormActivityRepository(db.DB)
	registrationRepo := persistence.NewGormRegistrationRepository(db.DB)
	checkRecordRepo := persistence.NewGormCheckRecordRepository(db.DB)
	casualRecordRepo := persistence.NewGormCasualCheckRecordRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)

	checks := []handler.DependencyCheck{{
		Name:  "database",
		Check: func(context.Context) error { return db.Ping() },
	}}

	// Token blacklist: Redis when configured, process memory otherwise
	var blacklist auth.TokenBlacklist
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient, err = auth.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() { _ = redisClient.Close() }()
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
		checks = append(checks, handler.DependencyCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
		log.Info("Token blacklist backed by Redis", zap.String("addr", cfg.Redis.Addr()))
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist()
		log.Warn("Redis not configured, token blacklist is per-process")
	}

	// Current-user lookups: local cache, shared through Redis when available
	var users middleware.UserLoader = userRepo
	if cfg.Cache.Enabled() {
		l1 := cache.NewInMemoryUserCache(cache.WithInMemoryLogger(log))
		defer l1.Stop()
		opts := []cache.CachedUserLoaderOption{cache.WithTTL(cfg.Cache.UserTTL), cache.WithLoaderLogger(log)}
		if redisClient != nil {
			opts = append(opts, cache.WithL2(cache.NewRedisUserCache(redisClient, "")))
		}
		users = cache.NewCachedUserLoader(userRepo, l1, opts...)
	}

	// Cover images: S3 when a bucket is configured
	var images activityapp.ImageStorage
	var memoryCovers *storage.MemoryImageStorage
	if cfg.Storage.Enabled() {
		s3Storage, err := storage.NewS3ImageStorage(ctx, cfg.Storage, log)
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		if err := s3Storage.EnsureBucket(ctx); err != nil {
			log.Fatal("Cover bucket unavailable", zap.String("bucket", s3Storage.Bucket()), zap.Error(err))
		}
		images = s3Storage
		checks = append(checks, handler.DependencyCheck{Name: "storage", Check: s3Storage.EnsureBucket})
	} else {
		memoryCovers = storage.NewMemoryImageStorage("/covers")
		images = memoryCovers
		log.Warn("Object storage not configured, covers are kept in memory")
	}

	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewActivityNotificationHandler(event.NewLogNotifier(log)))
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	policies := activity.DefaultPolicies()
	if cfg.CheckIn.GracePeriod > 0 {
		policies = policies.WithGracePeriod(cfg.CheckIn.GracePeriod)
	}
	centers, err := cfg.CheckIn.GeofenceCenters()
	if err != nil {
		log.Fatal("Invalid check-in centers", zap.Error(err))
	}
	location, err := cfg.CheckIn.Location()
	if err != nil {
		log.Fatal("Invalid check-in timezone", zap.Error(err))
	}
	if len(centers) == 0 {
		log.Warn("No check-in centers configured, location check-ins will be rejected")
	}

	guard := activityapp.NewGuard(activityRepo, policies)
	activityService := activityapp.NewActivityService(activityRepo, registrationRepo, policies, images, eventBus, shared.SystemClock{}, log)
	checkInService := checkinapp.NewCheckInService(
		persistence.NewGormTransactionScope(db.DB),
		checkRecordRepo,
		auth.NewQRTokenService(cfg.CheckIn.QRSecret, cfg.JWT.Issuer, cfg.CheckIn.QRTokenTTL),
		checkinapp.Settings{
			Geofence: checkinapp.Geofence{Centers: centers, RadiusKm: cfg.CheckIn.RadiusKm},
			Location: location,
		},
		shared.SystemClock{},
		log,
	)
	statsService := checkinapp.NewStatsService(checkRecordRepo, casualRecordRepo, activityRepo, log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Order matters: the request ID feeds recovery and access logs, and the
	// tracing span must exist before the body limit can reject a request.
	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     tp.IsEnabled(),
	}))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(corsConfig))

	r := router.NewRouter(engine, router.WithMiddleware(
		middleware.JWTAuthWithConfig(middleware.JWTMiddlewareConfig{
			JWTService:     auth.NewJWTService(cfg.JWT),
			TokenBlacklist: blacklist,
			Logger:         log,
		}),
		middleware.CurrentUser(users),
		middleware.TracingAttributeInjector(),
	))
	engine.Use(middleware.BodyLimitByRoute(cfg.HTTP.MaxBodySize, map[string]int64{
		r.Prefix() + router.CoverRoute: activityapp.MaxCoverImageSize + multipartOverhead,
	}))

	health := handler.NewHealthHandler(checks...)
	engine.GET("/health", health.Live)
	engine.GET("/health/ready", health.Ready)
	if memoryCovers != nil {
		engine.GET("/covers/*key", handler.NewCoverFileHandler(memoryCovers).Serve)
	}

	r.Register(router.APIGroups(router.Handlers{
		Activity: handler.NewActivityHandler(activityService),
		CheckIn:  handler.NewCheckInHandler(checkInService),
		Stats:    handler.NewStatsHandler(statsService),
		Me:       handler.NewMeHandler(),
	}, guard)...)
	r.Setup()

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           engine,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		MaxHeaderBytes:    cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
