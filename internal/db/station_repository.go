package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/homestations/internal/storage"
)

// StationRepository persists the spawn station registry in spawn_stations.
type StationRepository struct {
	pool *pgxpool.Pool
}

// NewStationRepository creates a new StationRepository.
func NewStationRepository(pool *pgxpool.Pool) *StationRepository {
	return &StationRepository{pool: pool}
}

// LoadStations implements storage.StationStore.
func (r *StationRepository) LoadStations(ctx context.Context) (storage.StationRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT location, is_main FROM spawn_stations ORDER BY location`)
	if err != nil {
		return storage.StationRecord{}, fmt.Errorf("querying spawn stations: %w", err)
	}
	defer rows.Close()

	rec := storage.StationRecord{Main: storage.NotSet}
	for rows.Next() {
		var (
			loc    string
			isMain bool
		)
		if err := rows.Scan(&loc, &isMain); err != nil {
			return storage.StationRecord{}, fmt.Errorf("scanning spawn station row: %w", err)
		}
		rec.Spawns = append(rec.Spawns, loc)
		if isMain {
			rec.Main = loc
		}
	}
	if err := rows.Err(); err != nil {
		return storage.StationRecord{}, fmt.Errorf("iterating spawn station rows: %w", err)
	}
	return rec, nil
}

// SaveStations replaces all rows within a transaction. A main station that
// is missing from the list is stored as well.
func (r *StationRepository) SaveStations(ctx context.Context, rec storage.StationRecord) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM spawn_stations`); err != nil {
		return fmt.Errorf("deleting old spawn stations: %w", err)
	}

	entries := rec.Entries()
	if len(entries) > 0 {
		rows := make([][]any, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, []any{e.Location, e.Main})
		}
		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{"spawn_stations"},
			[]string{"location", "is_main"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return fmt.Errorf("copying spawn stations: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing spawn stations: %w", err)
	}
	return nil
}
