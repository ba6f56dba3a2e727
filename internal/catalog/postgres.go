package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Schema creates the catalog tables read by LoadPostgres.
const Schema = `
CREATE TABLE IF NOT EXISTS practitioners (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS services (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS time_slots (
	label    TEXT PRIMARY KEY,
	position INT  NOT NULL
);
`

// Querier is satisfied by *pgxpool.Pool, pgx.Tx and pgxmock pools.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// LoadPostgres reads the whole catalog in one pass. It is meant to run once
// at process start; the result is not refreshed afterwards.
func LoadPostgres(ctx context.Context, q Querier) (*Catalog, error) {
	practitioners, err := queryPairs(ctx, q, `SELECT id, name FROM practitioners ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("load practitioners: %w", err)
	}

	services, err := queryPairs(ctx, q, `SELECT id, name FROM services ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("load services: %w", err)
	}

	rows, err := q.Query(ctx, `SELECT label FROM time_slots ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load time slots: %w", err)
	}
	defer rows.Close()

	var slots []TimeSlot
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, fmt.Errorf("scan time slot: %w", err)
		}
		slots = append(slots, TimeSlot(label))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load time slots: %w", err)
	}

	ps := make([]Practitioner, 0, len(practitioners))
	for _, p := range practitioners {
		ps = append(ps, Practitioner{ID: p[0], Name: p[1]})
	}
	ss := make([]Service, 0, len(services))
	for _, s := range services {
		ss = append(ss, Service{ID: s[0], Name: s[1]})
	}

	return New(ps, ss, slots), nil
}

func queryPairs(ctx context.Context, q Querier, sql string) ([][2]string, error) {
	rows, err := q.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result [][2]string
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		result = append(result, [2]string{id, name})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// SavePostgres creates the catalog tables if needed and upserts every entry.
func SavePostgres(ctx context.Context, exec Execer, c *Catalog) error {
	if _, err := exec.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("create catalog schema: %w", err)
	}

	for _, p := range c.practitioners {
		_, err := exec.Exec(ctx, `
			INSERT INTO practitioners (id, name)
			VALUES ($1, $2)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name
		`, p.ID, p.Name)
		if err != nil {
			return fmt.Errorf("upsert practitioner %s: %w", p.ID, err)
		}
	}

	for _, s := range c.services {
		_, err := exec.Exec(ctx, `
			INSERT INTO services (id, name)
			VALUES ($1, $2)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name
		`, s.ID, s.Name)
		if err != nil {
			return fmt.Errorf("upsert service %s: %w", s.ID, err)
		}
	}

	for i, slot := range c.slots {
		_, err := exec.Exec(ctx, `
			INSERT INTO time_slots (label, position)
			VALUES ($1, $2)
			ON CONFLICT (label) DO UPDATE SET position = EXCLUDED.position
		`, string(slot), i)
		if err != nil {
			return fmt.Errorf("upsert time slot %s: %w", slot, err)
		}
	}

	return nil
}
