package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/hackgods/patient-portal-scheduling/internal/api"
	"github.com/hackgods/patient-portal-scheduling/internal/catalog"
	"github.com/hackgods/patient-portal-scheduling/internal/config"
	"github.com/hackgods/patient-portal-scheduling/internal/db"
	"github.com/hackgods/patient-portal-scheduling/internal/logging"
	"github.com/hackgods/patient-portal-scheduling/internal/metrics"
	"github.com/hackgods/patient-portal-scheduling/internal/notify"
	redisclient "github.com/hackgods/patient-portal-scheduling/internal/redis"
	"github.com/hackgods/patient-portal-scheduling/internal/session"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Env, cfg.LogLevel)
	if err := run(cfg, logger); err != nil {
		logger.Error().Err(err).Msg("portal-server exited")
		os.Exit(1)
	}
}

func run(cfg config.Config, logger zerolog.Logger) error {
	logger.Info().
		Str("env", cfg.Env).
		Str("http_port", cfg.HTTPPort).
		Str("version", version).
		Msg("portal-server starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cat := catalog.Default()
	var pgPool *pgxpool.Pool
	if cfg.CatalogFromPostgres() {
		pool, loaded, err := loadCatalog(rootCtx, cfg.PostgresDSN, logger)
		if err != nil {
			return err
		}
		defer pool.Close()
		pgPool, cat = pool, loaded
	}

	var rdb *redis.Client
	var notifier notify.Notifier = notify.Nop{}
	if cfg.NotificationsEnabled() {
		client, err := redisclient.NewRedisClient(rootCtx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			return err
		}
		defer func() {
			if err := client.Close(); err != nil {
				logger.Error().Err(err).Msg("error closing redis")
			}
		}()

		publisher := notify.NewRedisPublisher(client, notify.DefaultQueueSize, logger)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := publisher.Close(ctx); err != nil {
				logger.Warn().Err(err).Int64("dropped", publisher.Dropped()).Msg("notifications not flushed")
			}
		}()

		rdb, notifier = client, publisher
		logger.Info().Str("addr", cfg.RedisAddr).Msg("publishing notifications to redis")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	store := session.NewStore(session.Deps{
		Catalog:     cat,
		Notifier:    notifier,
		Metrics:     metrics.NewBookingMetrics(reg),
		Logger:      logger,
		SeedSamples: cfg.SeedSamples,
	})

	srv := &http.Server{
		Addr: ":" + cfg.HTTPPort,
		Handler: api.NewRouter(api.RouterConfig{
			Store:          store,
			Catalog:        cat,
			PgPool:         pgPool,
			Redis:          rdb,
			MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			Logger:         logger,
			Env:            cfg.Env,
			Version:        version,
		}),
		ReadHeaderTimeout: cfg.ReadTimeout,
		ReadTimeout:       cfg.ReadTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-rootCtx.Done():
	}

	logger.Info().Dur("timeout", cfg.ShutdownTimeout).Msg("shutting down portal-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Int("sessions", store.Len()).Msg("portal-server stopped")
	return nil
}

// loadCatalog connects to Postgres and reads the catalog. Empty tables fall
// back to the built-in defaults; partly seeded ones are refused, since no
// booking could pass validation against them.
func loadCatalog(ctx context.Context, dsn string, logger zerolog.Logger) (*pgxpool.Pool, *catalog.Catalog, error) {
	pgCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(pgCtx, dsn)
	if err != nil {
		return nil, nil, err
	}

	cat, err := catalog.LoadPostgres(pgCtx, pool)
	if err == nil {
		err = cat.Check()
	}
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("catalog from postgres: %w", err)
	}

	if cat.Empty() {
		logger.Warn().Msg("postgres catalog is empty, using built-in defaults")
		return pool, catalog.Default(), nil
	}

	logger.Info().
		Int("practitioners", len(cat.Practitioners())).
		Int("services", len(cat.Services())).
		Int("time_slots", len(cat.TimeSlots())).
		Msg("catalog loaded from postgres")

	return pool, cat, nil
}
