// Package sqlite is the single-file storage backend: the same tables as the
// PostgreSQL backend on top of modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/udisondev/homestations/internal/db/sqlite/migrations"
	"github.com/udisondev/homestations/internal/storage"
)

// DB implements storage.LineStore, storage.StationStore and
// storage.BalanceStore.
type DB struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and migrates it.
func Open(ctx context.Context, path string) (*DB, error) {
	if path == "" {
		return nil, errors.New("empty sqlite path")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating sqlite dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &DB{db: db}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

func initPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("sqlite pragma %q: %w", p, err)
		}
	}
	return nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("creating migration provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	for _, r := range results {
		slog.Info("sqlite migration applied", "version", r.Source.Version, "duration", r.Duration)
	}
	return nil
}

// ReadLines implements storage.LineStore.
func (d *DB) ReadLines(ctx context.Context, key string) ([]string, error) {
	var text string
	err := d.db.QueryRowContext(ctx,
		`SELECT lines FROM player_data WHERE player_key = ?`, key,
	).Scan(&text)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("querying player data %q: %w", key, err)
	}
	if text == "" {
		return nil, nil
	}
	return strings.Split(text, "\n"), nil
}

// WriteLines implements storage.LineStore.
func (d *DB) WriteLines(ctx context.Context, key string, lines []string) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO player_data (player_key, lines) VALUES (?1, ?2)
		 ON CONFLICT (player_key) DO UPDATE
		 SET lines = excluded.lines, updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')`,
		key, strings.Join(lines, "\n"),
	)
	if err != nil {
		return fmt.Errorf("writing player data %q: %w", key, err)
	}
	return nil
}

// Exists implements storage.LineStore.
func (d *DB) Exists(ctx context.Context, key string) (bool, error) {
	var exists bool
	err := d.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM player_data WHERE player_key = ?)`, key,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking player data %q: %w", key, err)
	}
	return exists, nil
}

// Delete implements storage.LineStore.
func (d *DB) Delete(ctx context.Context, key string) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM player_data WHERE player_key = ?`, key); err != nil {
		return fmt.Errorf("deleting player data %q: %w", key, err)
	}
	return nil
}

// LoadStations implements storage.StationStore.
func (d *DB) LoadStations(ctx context.Context) (storage.StationRecord, error) {
	rows, err := d.db.QueryContext(ctx,
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

// SaveStations implements storage.StationStore (full replace).
func (d *DB) SaveStations(ctx context.Context, rec storage.StationRecord) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM spawn_stations`); err != nil {
		return fmt.Errorf("deleting old spawn stations: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO spawn_stations (location, is_main) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing spawn station insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range rec.Entries() {
		if _, err := stmt.ExecContext(ctx, e.Location, e.Main); err != nil {
			return fmt.Errorf("inserting spawn station %s: %w", e.Location, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing spawn stations: %w", err)
	}
	return nil
}

// Balance implements storage.BalanceStore.
func (d *DB) Balance(ctx context.Context, player uuid.UUID) (float64, bool, error) {
	var amount float64
	err := d.db.QueryRowContext(ctx,
		`SELECT amount FROM balances WHERE player_id = ?`, player.String(),
	).Scan(&amount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("querying balance of %s: %w", player, err)
	}
	return amount, true, nil
}

// Adjust implements storage.BalanceStore.
func (d *DB) Adjust(ctx context.Context, player uuid.UUID, delta, initial float64) (float64, error) {
	id := player.String()
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO balances (player_id, amount) VALUES (?, ?)
		 ON CONFLICT (player_id) DO NOTHING`,
		id, initial,
	)
	if err != nil {
		return 0, fmt.Errorf("creating balance of %s: %w", player, err)
	}

	var amount float64
	err = d.db.QueryRowContext(ctx,
		`UPDATE balances SET amount = amount + ?2, updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		 WHERE player_id = ?1 AND amount + ?2 >= 0
		 RETURNING amount`,
		id, delta,
	).Scan(&amount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, storage.ErrInsufficientFunds
		}
		return 0, fmt.Errorf("adjusting balance of %s: %w", player, err)
	}
	return amount, nil
}
