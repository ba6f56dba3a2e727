package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// CatalogPoolSize caps connections to the catalog database. The portal reads
// the catalog once at startup and afterwards only pings it for readiness.
const CatalogPoolSize = 4

// ConnectPostgres opens the catalog database pool and checks it answers.
func ConnectPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("catalog database dsn: %w", err)
	}

	cfg.MaxConns = CatalogPoolSize
	cfg.MinConns = 0
	cfg.HealthCheckPeriod = time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.ConnConfig.RuntimeParams["application_name"] = "patient-portal"

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open catalog database pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("catalog database %s unreachable: %w", cfg.ConnConfig.Host, err)
	}

	return pool, nil
}
