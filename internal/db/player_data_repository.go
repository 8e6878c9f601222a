package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/homestations/internal/storage"
)

// PlayerDataRepository реализует storage.LineStore поверх таблицы player_data.
type PlayerDataRepository struct {
	pool *pgxpool.Pool
}

// NewPlayerDataRepository создаёт новый repository.
func NewPlayerDataRepository(pool *pgxpool.Pool) *PlayerDataRepository {
	return &PlayerDataRepository{pool: pool}
}

// ReadLines возвращает строки записи или storage.ErrNotFound.
func (r *PlayerDataRepository) ReadLines(ctx context.Context, key string) ([]string, error) {
	var lines []string
	err := r.pool.QueryRow(ctx,
		`SELECT lines FROM player_data WHERE player_key = $1`, key,
	).Scan(&lines)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("querying player data %q: %w", key, err)
	}
	return lines, nil
}

// WriteLines заменяет запись (upsert).
func (r *PlayerDataRepository) WriteLines(ctx context.Context, key string, lines []string) error {
	if lines == nil {
		lines = []string{}
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO player_data (player_key, lines, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (player_key) DO UPDATE
		 SET lines = EXCLUDED.lines, updated_at = EXCLUDED.updated_at`,
		key, lines,
	)
	if err != nil {
		return fmt.Errorf("writing player data %q: %w", key, err)
	}
	return nil
}

// Exists проверяет наличие записи.
func (r *PlayerDataRepository) Exists(ctx context.Context, key string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM player_data WHERE player_key = $1)`, key,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking player data %q: %w", key, err)
	}
	return exists, nil
}

// Delete удаляет запись. Отсутствие записи не ошибка.
func (r *PlayerDataRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM player_data WHERE player_key = $1`, key); err != nil {
		return fmt.Errorf("deleting player data %q: %w", key, err)
	}
	return nil
}
