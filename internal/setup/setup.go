package setup

import (
	"context"
	"fmt"
	"log"

	"github.com/robalyx/votedentry/internal/database"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/robalyx/votedentry/internal/database/migrations"
	"github.com/robalyx/votedentry/internal/metrics"
	"github.com/robalyx/votedentry/internal/notify"
	"github.com/robalyx/votedentry/internal/redis"
	"github.com/robalyx/votedentry/internal/setup/config"
	"github.com/robalyx/votedentry/internal/setup/telemetry"
	"github.com/robalyx/votedentry/internal/voting"
	"github.com/uptrace/bun/migrate"
	"github.com/uptrace/uptrace-go/uptrace"
	"go.uber.org/zap"
)

// App bundles all core dependencies and services needed by the application.
// Each field represents a major subsystem that needs initialization and cleanup.
type App struct {
	Config       *config.Config            // Application configuration
	Logger       *zap.Logger               // Main application logger
	DBLogger     *zap.Logger               // Database-specific logger
	DB           database.Client           // Database connection pool
	RedisManager *redis.Manager            // Redis connection manager
	Registry     *prometheus.Registry      // Prometheus registry served on /metrics
	Metrics      *metrics.Collector        // Action and notification metrics
	Notifier     *notify.Dispatcher        // Post-commit notification delivery
	Engines      map[string]*voting.Engine // Voting engine per configured kind
	LogManager   *telemetry.Manager        // Log management system
	tracing      bool                      // Whether spans are exported to Uptrace
}

// InitializeApp bootstraps all application dependencies in the correct order,
// ensuring each component has its required dependencies available.
func InitializeApp(ctx context.Context, serviceType telemetry.ServiceType, logDir string) (*App, error) {
	// Load app configuration
	cfg, configDir, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	// Logging system is initialized next to capture setup issues
	logManager := telemetry.NewManager(serviceType, logDir, &cfg.Common.Debug)

	logger, dbLogger, err := logManager.GetLoggers()
	if err != nil {
		return nil, err
	}

	logger.Info("Loaded configuration",
		zap.String("dir", configDir),
		zap.String("instance", logManager.GetInstanceID()))

	// Tracing is configured before the database so query spans are exported
	tracing := setupTracing(&cfg.Common.Debug, serviceType, logger)

	// Redis manager provides connection pools for the notification stream
	redisManager := redis.NewManager(&cfg.Common.Redis, logger)

	// Initialize database with migration check
	db, err := checkAndRunMigrations(ctx, &cfg.Common.PostgreSQL, cfg.Common.Debug.Tracing, dbLogger)
	if err != nil {
		redisManager.Close()
		return nil, err
	}

	// Metrics are registered alongside the Go runtime collectors
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	notifier, err := NewNotifier(ctx, &cfg.Common.Notification, redisManager, collector, logger)
	if err != nil {
		db.Close()
		redisManager.Close()
		return nil, err
	}

	engines, err := NewEngines(&cfg.Common, db.Store(), notifier, logger)
	if err != nil {
		db.Close()
		redisManager.Close()
		return nil, err
	}

	// Bundle all initialized components
	return &App{
		Config:       cfg,
		Logger:       logger,
		DBLogger:     dbLogger.Named("database"),
		DB:           db,
		RedisManager: redisManager,
		Registry:     registry,
		Metrics:      collector,
		Notifier:     notifier,
		Engines:      engines,
		LogManager:   logManager,
		tracing:      tracing,
	}, nil
}

// Cleanup ensures graceful shutdown of all components in reverse initialization order.
// Logs but does not fail on cleanup errors to ensure all components get cleanup attempts.
func (s *App) Cleanup(ctx context.Context) {
	// Let queued notifications finish before their sinks go away
	s.Notifier.Wait()

	// Flush pending spans
	if s.tracing {
		if err := uptrace.Shutdown(ctx); err != nil {
			log.Printf("Failed to shutdown tracing: %v", err)
		}
	}

	// Sync buffered logs before shutdown
	if err := s.Logger.Sync(); err != nil {
		log.Printf("Failed to sync logger: %v", err)
	}

	if err := s.DBLogger.Sync(); err != nil {
		log.Printf("Failed to sync DB logger: %v", err)
	}

	// Close database connections
	if err := s.DB.Close(); err != nil {
		log.Printf("Failed to close database connection: %v", err)
	}

	// Close Redis connections last as other components might need it during cleanup
	s.RedisManager.Close()
}

// checkAndRunMigrations runs database migrations if needed.
func checkAndRunMigrations(
	ctx context.Context, cfg *config.PostgreSQL, tracing bool, dbLogger *zap.Logger,
) (database.Client, error) {
	tempDB, err := database.NewConnection(ctx, cfg, dbLogger, database.Options{Tracing: tracing})
	if err != nil {
		return nil, err
	}

	migrator := migrate.NewMigrator(tempDB.DB(), migrations.Migrations)

	if err := migrator.Init(ctx); err != nil {
		tempDB.Close()
		return nil, fmt.Errorf("failed to initialize migrations: %w", err)
	}

	ms, err := migrator.MigrationsWithStatus(ctx)
	if err != nil {
		tempDB.Close()
		return nil, fmt.Errorf("failed to check migration status: %w", err)
	}

	unapplied := ms.Unapplied()
	if len(unapplied) == 0 {
		return tempDB, nil
	}

	log.Printf("%d database migrations are pending. Would you like to run them now? (y/N)", len(unapplied))

	var response string

	_, _ = fmt.Scanln(&response)

	if response != "y" && response != "Y" {
		tempDB.Close()
		log.Fatalf("Closing program due to incomplete migrations")
	}

	tempDB.Close()

	return database.NewConnection(ctx, cfg, dbLogger, database.Options{AutoMigrate: true, Tracing: tracing})
}

// setupTracing installs the global OpenTelemetry providers when tracing is enabled.
func setupTracing(cfg *config.Debug, serviceType telemetry.ServiceType, logger *zap.Logger) bool {
	if !cfg.Tracing {
		return false
	}

	if cfg.UptraceDSN == "" {
		logger.Warn("Tracing is enabled without an uptrace_dsn, spans will be discarded")
		return false
	}

	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(cfg.UptraceDSN),
		uptrace.WithServiceName("votedentry-"+serviceType.String()),
		uptrace.WithServiceVersion(config.RepositoryVersion),
	)

	logger.Info("Exporting traces to Uptrace")

	return true
}
