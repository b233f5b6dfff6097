// Command server runs the land sale and financial integrity API
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	_ "github.com/landerp/backend/docs"
	financeapp "github.com/landerp/backend/internal/application/finance"
	landapp "github.com/landerp/backend/internal/application/land"
	"github.com/landerp/backend/internal/application/notification"
	partnerapp "github.com/landerp/backend/internal/application/partner"
	salesapp "github.com/landerp/backend/internal/application/sales"
	settingsapp "github.com/landerp/backend/internal/application/settings"
	appshared "github.com/landerp/backend/internal/application/shared"
	"github.com/landerp/backend/internal/domain/sales"
	"github.com/landerp/backend/internal/domain/settings"
	"github.com/landerp/backend/internal/domain/shared"
	"github.com/landerp/backend/internal/infrastructure/auth"
	"github.com/landerp/backend/internal/infrastructure/cache"
	"github.com/landerp/backend/internal/infrastructure/config"
	"github.com/landerp/backend/internal/infrastructure/event"
	"github.com/landerp/backend/internal/infrastructure/lock"
	"github.com/landerp/backend/internal/infrastructure/logger"
	"github.com/landerp/backend/internal/infrastructure/persistence"
	"github.com/landerp/backend/internal/infrastructure/scheduler"
	"github.com/landerp/backend/internal/infrastructure/storage"
	"github.com/landerp/backend/internal/infrastructure/telemetry"
	"github.com/landerp/backend/internal/interfaces/http/handler"
	"github.com/landerp/backend/internal/interfaces/http/middleware"
	"github.com/landerp/backend/internal/interfaces/http/router"
)

//go:generate swag init -d ../../ -g cmd/server/main.go -o ../../docs --parseInternal

//	@title			Land ERP Backend API
//	@version		1.0
//	@description	Land sale and financial integrity API: RS number allocation, sale ledgers, two-tier approvals and cancellation refunds

//	@contact.name	API Support

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	devTokenRole := flag.String("dev-token", "", "Print an access token for the given role (ADMIN, ACCOUNT_MANAGER, HOF) and exit")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if *devTokenRole != "" {
		if err := printDevToken(cfg, *devTokenRole); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to issue token: %v\n", err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize telemetry before the logger so logs can be exported
	providers, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		Insecure:          cfg.Telemetry.Insecure,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		MetricsEnabled:    cfg.Telemetry.MetricsEnabled,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
		LogsEnabled:       cfg.Telemetry.LogsEnabled,
		SpanProfiles:      cfg.Telemetry.Profiling.Enabled && cfg.Telemetry.Profiling.SpanProfiles,
	}, zap.NewNop())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize telemetry: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
	log, err := logger.New(logCfg,
		logger.Service(cfg.App.Name, cfg.App.Version, cfg.App.Env),
		logger.Tee(providers.LogCore(logger.ParseLevel(cfg.Log.Level))),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting land sales backend",
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("database", cfg.Database.Driver),
		zap.Bool("telemetry", cfg.Telemetry.Enabled),
	)

	if err := run(ctx, cfg, providers, log); err != nil {
		log.Error("Server exited with error", zap.Error(err))
		_ = logger.Sync(log)
		os.Exit(1)
	}
	log.Info("Server stopped")
}

func run(ctx context.Context, cfg *config.Config, providers *telemetry.Providers, log *zap.Logger) error {
	meter := providers.Meter(cfg.Telemetry.ServiceName)
	defer func() {
		if err := providers.Shutdown(context.Background()); err != nil {
			log.Warn("Telemetry shutdown failed", zap.Error(err))
		}
	}()

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Telemetry.Profiling.Enabled,
		ServerAddress:     cfg.Telemetry.Profiling.ServerAddress,
		ApplicationName:   cfg.Telemetry.ServiceName,
		ProfileTypes:      cfg.Telemetry.Profiling.ProfileTypes,
		BasicAuthUser:     cfg.Telemetry.Profiling.BasicAuthUser,
		BasicAuthPassword: cfg.Telemetry.Profiling.BasicAuthPassword,
	}, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Warn("Profiler shutdown failed", zap.Error(err))
		}
	}()

	// Database
	gormLogger := logger.NewGormLogger(log.Named("gorm"), logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
		logger.WithFullSQL(cfg.Telemetry.DBLogFullSQL),
	)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLogger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn("Failed to close database", zap.Error(err))
		}
	}()
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		DBName:          cfg.Database.DBName,
		WithVariables:   !cfg.App.IsProduction() && cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
	}, log); err != nil {
		return fmt.Errorf("register db tracing: %w", err)
	}

	// Redis is optional unless a component is configured to use it
	var redisClient *redis.Client
	if needsRedis(cfg) {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			if cfg.App.IsProduction() {
				return err
			}
			log.Warn("Redis unavailable, using in-process fallbacks", zap.Error(err))
		} else {
			defer func() { _ = redisClient.Close() }()
		}
	}

	locker, err := newLocker(cfg, redisClient, meter, log)
	if err != nil {
		return err
	}

	// Event bus and handlers
	bus := event.NewInMemoryEventBus(log.Named("events"))
	idempotency, err := cache.NewIdempotencyStore(cfg.Event, redisClient, cfg.App.IsProduction(), log)
	if err != nil {
		return err
	}
	defer func() { _ = idempotency.Close() }()

	uow := appshared.NewUnitOfWork(persistence.NewGormTransactionScope(db.DB), locker, bus, log)

	notifier := notification.NewLoggingNotifier(log.Named("notify"))
	bus.Subscribe(event.NewIdempotentHandler(
		notification.NewClientNotificationHandler(uow, notifier, log),
		idempotency,
		"client-notification",
		shared.IdempotencyConfig{Enabled: cfg.Event.IdempotencyEnabled, TTL: cfg.Event.IdempotencyTTL},
		log,
	))

	if providers.MetricsEnabled() {
		metrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:          meter,
			Logger:         log,
			LedgerProvider: telemetry.NewGormLedgerMetricsProvider(db.DB),
		})
		if err != nil {
			return fmt.Errorf("business metrics: %w", err)
		}
		bus.Subscribe(metrics)
		metrics.StartPeriodicCollection(ctx, cfg.Telemetry.MetricsInterval)
		defer metrics.Stop()
	}

	if err := bus.Start(ctx); err != nil {
		return err
	}

	// Application services
	plan, err := stagePlan(cfg.Business.StagePlan)
	if err != nil {
		return err
	}
	documents, err := newDocumentStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	attachments := financeapp.DefaultAttachmentConfig()
	if cfg.Storage.UploadURLExpiry > 0 {
		attachments.UploadURLExpiry = cfg.Storage.UploadURLExpiry
	}
	if cfg.Storage.DownloadURLExpiry > 0 {
		attachments.DownloadURLExpiry = cfg.Storage.DownloadURLExpiry
	}

	settingsService := settingsapp.NewService(uow, settings.Values{
		OfficeChargePercent:     cfg.Business.DefaultOfficeChargePercent,
		InstallmentReminderDays: cfg.Business.InstallmentReminderDays,
	}, log)
	allocatorService := landapp.NewAllocatorService(uow, log)
	clientService := partnerapp.NewClientService(uow, log)
	saleService := salesapp.NewSaleService(uow, settingsService, plan, log)
	cancellationService := salesapp.NewCancellationService(uow, settingsService, log)
	accountService := financeapp.NewAccountService(uow, log)
	receiptService := financeapp.NewReceiptService(uow, documents, attachments, log)
	expenseService := financeapp.NewExpenseService(uow, documents, attachments, log)

	// Background jobs
	stopJobs, err := startReminderJobs(ctx, cfg.Scheduler, saleService, bus, log)
	if err != nil {
		return err
	}

	// HTTP
	jwtService := auth.NewJWTService(cfg.JWT)
	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	if redisClient != nil {
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine, err := router.NewEngine(router.Options{
		ServiceName:      cfg.Telemetry.ServiceName,
		Logger:           log,
		HTTP:             cfg.HTTP,
		Meter:            meter,
		TracingEnabled:   cfg.Telemetry.Enabled,
		ProfilingEnabled: profiler.Enabled(),
		HSTS:             cfg.App.IsProduction(),
		JWT:              middleware.JWTConfig{Service: jwtService, Blacklist: blacklist, Logger: log},
		Swagger: middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		},
	}, router.Handlers{
		Health:       handler.NewHealthHandler(healthChecks(db, redisClient)),
		Auth:         handler.NewAuthHandler(jwtService, blacklist),
		Client:       handler.NewClientHandler(clientService),
		Land:         handler.NewLandHandler(allocatorService),
		Sale:         handler.NewSaleHandler(saleService, receiptService),
		Cancellation: handler.NewCancellationHandler(cancellationService),
		Receipt:      handler.NewReceiptHandler(receiptService),
		Expense:      handler.NewExpenseHandler(expenseService),
		Account:      handler.NewAccountHandler(accountService),
		Settings:     handler.NewSettingsHandler(settingsService),
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			stopJobs()
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		log.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", zap.Error(err))
	}
	stopJobs()
	if err := bus.Stop(shutdownCtx); err != nil {
		log.Warn("Event bus did not drain", zap.Error(err))
	}
	return nil
}

func needsRedis(cfg *config.Config) bool {
	return cfg.Lock.Driver == "redis" || cfg.Event.IdempotencyStore == "redis" || cfg.App.IsProduction()
}

func newLocker(cfg *config.Config, client *redis.Client, meter metric.Meter, log *zap.Logger) (shared.Locker, error) {
	var (
		next    shared.Locker
		backend = "memory"
	)
	switch {
	case cfg.Lock.Driver == "redis" && client != nil:
		next = lock.NewRedisLocker(client, lock.RedisLockerConfig{TTL: cfg.Lock.TTL, RetryDelay: cfg.Lock.RetryDelay}, log)
		backend = "redis"
	case cfg.Lock.Driver == "redis" && cfg.App.IsProduction():
		return nil, errors.New("lock.driver is redis but no Redis client is available")
	default:
		next = lock.NewKeyedMutex()
	}
	log.Info("Keyed locker ready", zap.String("backend", backend))
	return lock.NewInstrumented(next, backend, meter)
}

func newDocumentStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (financeapp.ObjectStorage, error) {
	if cfg.Storage.Driver != "s3" {
		log.Warn("Object storage disabled, attachments use in-memory presigned URLs")
		return storage.NewMemoryDocumentStore(""), nil
	}
	store, err := storage.NewS3DocumentStore(ctx, &cfg.Storage, storage.WithLogger(log))
	if err != nil {
		return nil, err
	}
	if err := store.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func stagePlan(entries []config.StageConfig) (sales.StagePlan, error) {
	if len(entries) == 0 {
		return sales.DefaultStagePlan(), nil
	}
	defs := make([]sales.StageDefinition, len(entries))
	for i, e := range entries {
		pct, err := decimal.NewFromString(e.Percent)
		if err != nil {
			return sales.StagePlan{}, fmt.Errorf("stage plan entry %d: %w", i, err)
		}
		defs[i] = sales.StageDefinition{
			Stage:        sales.StageName(e.Stage),
			Percent:      pct,
			DueAfterDays: e.DueAfterDays,
		}
	}
	return sales.NewStagePlan(defs)
}

// startReminderJobs wires the daily reminder trigger to the worker pool.
// The returned func stops both.
func startReminderJobs(ctx context.Context, cfg config.SchedulerConfig, source scheduler.ReminderSource, publisher shared.EventPublisher, log *zap.Logger) (func(), error) {
	if !cfg.Enabled {
		log.Info("Installment reminder job disabled")
		return func() {}, nil
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("scheduler timezone %q: %w", cfg.Timezone, err)
	}

	poolCfg := scheduler.DefaultConfig()
	if cfg.JobTimeout > 0 {
		poolCfg.JobTimeout = cfg.JobTimeout
	}
	pool, err := scheduler.NewScheduler(poolCfg, log.Named("scheduler"))
	if err != nil {
		return nil, err
	}
	pool.Register(scheduler.JobKindInstallmentReminder,
		scheduler.NewInstallmentReminderExecutor(source, publisher, log.Named("reminders")))

	trigger, err := scheduler.NewCronTrigger(scheduler.TriggerConfig{
		Kind:       scheduler.JobKindInstallmentReminder,
		Rule:       scheduler.DailyAt(cfg.ReminderHour),
		Location:   loc,
		MaxRetries: poolCfg.RetryAttempts,
	}, pool, log.Named("scheduler"))
	if err != nil {
		return nil, err
	}

	if err := pool.Start(ctx); err != nil {
		return nil, err
	}
	if err := trigger.Start(ctx); err != nil {
		return nil, err
	}

	return func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := trigger.Stop(stopCtx); err != nil {
			log.Warn("Reminder trigger stop failed", zap.Error(err))
		}
		if err := pool.Stop(stopCtx); err != nil {
			log.Warn("Scheduler stop failed", zap.Error(err))
		}
	}, nil
}

func healthChecks(db *persistence.Database, client *redis.Client) map[string]handler.HealthCheck {
	checks := map[string]handler.HealthCheck{"database": db.PingContext}
	if client != nil {
		checks["redis"] = func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}
	}
	return checks
}

func printDevToken(cfg *config.Config, role string) error {
	if cfg.App.IsProduction() {
		return errors.New("dev tokens are not available in production")
	}
	actor, err := shared.NewActor(uuid.New(), "Dev "+role, shared.Role(role))
	if err != nil {
		return err
	}
	token, expiresAt, err := auth.NewJWTService(cfg.JWT).IssueAccessToken(actor)
	if err != nil {
		return err
	}
	fmt.Printf("user_id:    %s\nrole:       %s\nexpires_at: %s\ntoken:      %s\n",
		actor.UserID, actor.Role, expiresAt.Format(time.RFC3339), token)
	return nil
}
