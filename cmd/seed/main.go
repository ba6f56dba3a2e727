package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/hackgods/patient-portal-scheduling/internal/catalog"
	"github.com/hackgods/patient-portal-scheduling/internal/config"
	"github.com/hackgods/patient-portal-scheduling/internal/db"
	"github.com/hackgods/patient-portal-scheduling/internal/logging"
)

func main() {
	extra := flag.Int("extra-practitioners", 10, "random practitioners added on top of the portal defaults")
	seed := flag.Uint64("seed", 0, "gofakeit seed, 0 picks a random one")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Env, cfg.LogLevel)
	if err := run(cfg, *extra, *seed, logger); err != nil {
		logger.Error().Err(err).Msg("seed failed")
		os.Exit(1)
	}
}

func run(cfg config.Config, extra int, seed uint64, logger zerolog.Logger) error {
	logger.Info().Msg("seed starting")

	if !cfg.CatalogFromPostgres() {
		return errors.New("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	cat := buildCatalog(gofakeit.New(seed), extra)

	if err := seedCatalog(ctx, pool, cat, logger); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}

	logger.Info().Msg("seed complete")
	return nil
}

// buildCatalog keeps the portal defaults and appends generated practitioners
// with ids that cannot collide with them.
func buildCatalog(faker *gofakeit.Faker, extra int) *catalog.Catalog {
	base := catalog.Default()
	practitioners := base.Practitioners()

	seen := make(map[string]struct{}, len(practitioners)+extra)
	for _, p := range practitioners {
		seen[p.ID] = struct{}{}
	}

	for i := 0; i < extra; i++ {
		first := faker.FirstName()
		id := "dr-" + strings.ToLower(first)
		if _, dup := seen[id]; dup {
			id = fmt.Sprintf("%s-%d", id, len(seen))
		}
		seen[id] = struct{}{}
		practitioners = append(practitioners, catalog.Practitioner{
			ID:   id,
			Name: fmt.Sprintf("Dr. %s %s", first, faker.LastName()),
		})
	}

	return catalog.New(practitioners, base.Services(), base.TimeSlots())
}

func seedCatalog(ctx context.Context, pool *pgxpool.Pool, cat *catalog.Catalog, logger zerolog.Logger) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := catalog.SavePostgres(ctx, tx, cat); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	logger.Info().
		Int("practitioners", len(cat.Practitioners())).
		Int("services", len(cat.Services())).
		Int("time_slots", len(cat.TimeSlots())).
		Msg("catalog seeded")
	return nil
}
