// The TCKDB API server: wires PostgreSQL, Redis, Kafka, MinIO, the
// conversion oracle, and the species service into the HTTP interface.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tckdb/tckdb-go/internal/chem/oracle"
	"github.com/tckdb/tckdb-go/internal/chem/resolver"
	"github.com/tckdb/tckdb-go/internal/config"
	"github.com/tckdb/tckdb-go/internal/domain/species"
	"github.com/tckdb/tckdb-go/internal/infrastructure/database/postgres"
	"github.com/tckdb/tckdb-go/internal/infrastructure/database/postgres/repositories"
	"github.com/tckdb/tckdb-go/internal/infrastructure/database/redis"
	"github.com/tckdb/tckdb-go/internal/infrastructure/messaging/kafka"
	"github.com/tckdb/tckdb-go/internal/infrastructure/monitoring/logging"
	"github.com/tckdb/tckdb-go/internal/infrastructure/monitoring/prometheus"
	"github.com/tckdb/tckdb-go/internal/infrastructure/storage/minio"
	httpserver "github.com/tckdb/tckdb-go/internal/interfaces/http"
	"github.com/tckdb/tckdb-go/internal/interfaces/http/handlers"
	"github.com/tckdb/tckdb-go/internal/interfaces/http/middleware"
)

// version is injected via ldflags.
var version = "dev"

const startupTimeout = 30 * time.Second

func main() {
	configPath := flag.String("config", "", "path to configuration file (environment only when empty)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(logging.LogConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	if *configPath != "" {
		config.Watch(*configPath, func(next *config.Config) {
			if ls, ok := logger.(logging.LevelSetter); ok {
				ls.SetLevel(next.Log.Level)
			}
			logger.Info("configuration reloaded", logging.String("log_level", next.Log.Level))
		})
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", logging.Err(err))
	}
}

func run(cfg *config.Config, logger logging.Logger) error {
	logger.Info("starting tckdb api server",
		logging.String("version", version),
		logging.Int("port", cfg.Server.Port),
	)

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	// ── Core stores ───────────────────────────────────────────────────────────

	conn, err := postgres.NewConnection(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer conn.Close()

	rdb, err := redis.NewClient(ctx, cfg.Redis, logger)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer rdb.Close()

	if err := migrate(ctx, cfg, rdb, logger); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	var appMetrics *prometheus.AppMetrics
	var collector prometheus.MetricsCollector
	if cfg.Metrics.Enabled {
		collector, err = prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            "tckdb",
			EnableProcessMetrics: true,
			EnableGoMetrics:      true,
		}, logger)
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		appMetrics = prometheus.NewAppMetrics(collector)
	}

	// ── Oracle and resolver ───────────────────────────────────────────────────

	var conv oracle.Oracle
	switch cfg.Oracle.Mode {
	case "http":
		conv = oracle.NewHTTPOracle(oracle.HTTPConfig{
			BaseURL:           cfg.Oracle.BaseURL,
			Timeout:           cfg.Oracle.Timeout,
			RequestsPerSecond: cfg.Oracle.RequestsPerSecond,
		}, nil, logger)
		if cfg.Oracle.CacheEnabled {
			cache := redis.NewRedisCache(rdb, logger)
			kv := redis.NewOracleKV(cache, cfg.Oracle.CacheTTL, logger)
			conv = oracle.NewCachedOracle(conv, kv)
		}
	default:
		logger.Warn("structure-conversion oracle disabled; identifier resolution degrades to passthrough")
		conv = oracle.NewUnavailable()
	}
	if appMetrics != nil {
		conv = oracle.NewInstrumented(conv, func(op string, ok bool, err error, d time.Duration) {
			prometheus.RecordOracleCall(appMetrics, op, ok, err, d)
		})
	}
	res := resolver.New(conv, logger)

	// ── Optional event and archive backends ───────────────────────────────────

	var publisher species.EventPublisher
	if cfg.Kafka.Enabled {
		producer, err := kafka.NewProducer(kafka.ProducerConfig{
			Brokers:      cfg.Kafka.Brokers,
			Acks:         "all",
			MaxRetries:   cfg.Kafka.ProducerRetries,
			BatchSize:    cfg.Kafka.BatchSize,
			WriteTimeout: time.Duration(cfg.Kafka.TimeoutMS) * time.Millisecond,
		}, logger)
		if err != nil {
			return fmt.Errorf("kafka producer: %w", err)
		}
		defer producer.Close()

		topics, err := kafka.NewTopicManager(cfg.Kafka.Brokers, logger)
		if err != nil {
			return fmt.Errorf("kafka topics: %w", err)
		}
		if err := topics.EnsureDefaultTopics(ctx, cfg.Kafka.TopicPrefix); err != nil {
			topics.Close()
			return fmt.Errorf("kafka topics: %w", err)
		}
		topics.Close()

		publisher = kafka.NewEventPublisher(producer, cfg.Kafka.TopicPrefix, logger)
	}

	var archive species.LogArchive
	var logBrowser handlers.LogBrowser
	var storeChecker handlers.HealthChecker
	if cfg.MinIO.Enabled {
		store, err := minio.NewClient(ctx, cfg.MinIO, logger)
		if err != nil {
			return fmt.Errorf("minio: %w", err)
		}
		logs := minio.NewLogArchive(store, logger)
		archive = logs
		logBrowser = logs
		storeChecker = &minioHealthAdapter{client: store}
	}

	// ── Domain service, metrics, HTTP interface ───────────────────────────────

	repo := repositories.NewSpeciesRepository(conn.Pool(), logger)
	svc := species.NewService(repo, res, publisher, archive, logger)

	checkers := []handlers.HealthChecker{
		&postgresHealthAdapter{conn: conn},
		&redisHealthAdapter{client: rdb},
	}
	if storeChecker != nil {
		checkers = append(checkers, storeChecker)
	}

	corsCfg := middleware.DefaultCORSConfig()
	rlCfg := middleware.DefaultRateLimitConfig()
	limiter := middleware.NewTokenBucketLimiter(rlCfg.RequestsPerSecond, rlCfg.BurstSize, rlCfg.CleanupInterval)
	defer limiter.Stop()

	router := httpserver.NewRouter(httpserver.RouterConfig{
		SpeciesHandler:   handlers.NewSpeciesHandler(svc, logBrowser, appMetrics, logger),
		ToolsHandler:     handlers.NewToolsHandler(logger),
		HealthHandler:    handlers.NewHealthHandler(version, appMetrics, checkers...),
		CORS:             &corsCfg,
		RateLimiter:      limiter,
		RateLimit:        &rlCfg,
		Logger:           logger,
		Metrics:          appMetrics,
		MetricsCollector: collector,
		MetricsPath:      cfg.Metrics.Path,
		Mode:             cfg.Server.Mode,
		MaxBodySize:      cfg.Server.MaxBodySize,
	})

	srv := httpserver.NewServer(cfg.Server, router, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down", logging.String("signal", sig.String()))
	}

	if err := srv.Stop(context.Background()); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// migrate applies pending schema migrations.  A Redis mutex serializes the
// run so concurrently starting replicas do not race the migrator.
func migrate(ctx context.Context, cfg *config.Config, rdb *redis.Client, logger logging.Logger) error {
	mu := redis.NewMutex(rdb, logger, "schema-migrations",
		redis.WithLockTTL(2*time.Minute))
	if err := mu.Lock(ctx); err != nil {
		return fmt.Errorf("acquiring migration lock: %w", err)
	}
	defer func() {
		if err := mu.Unlock(context.Background()); err != nil {
			logger.Warn("releasing migration lock", logging.Err(err))
		}
	}()

	return postgres.RunMigrations(postgres.BuildDSN(cfg.Database), cfg.Database.MigrationPath)
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.LoadFromEnv()
}
