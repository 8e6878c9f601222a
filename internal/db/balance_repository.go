package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/homestations/internal/storage"
)

// BalanceRepository implements storage.BalanceStore over the balances table.
type BalanceRepository struct {
	pool *pgxpool.Pool
}

// NewBalanceRepository creates a new BalanceRepository.
func NewBalanceRepository(pool *pgxpool.Pool) *BalanceRepository {
	return &BalanceRepository{pool: pool}
}

// Balance returns the stored balance. Returns 0, false, nil if the player
// has no row yet.
func (r *BalanceRepository) Balance(ctx context.Context, player uuid.UUID) (float64, bool, error) {
	var amount float64
	err := r.pool.QueryRow(ctx,
		`SELECT amount FROM balances WHERE player_id = $1`, player,
	).Scan(&amount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("querying balance of %s: %w", player, err)
	}
	return amount, true, nil
}

// Adjust adds delta in a single conditional update so concurrent
// withdrawals can never overdraw.
func (r *BalanceRepository) Adjust(ctx context.Context, player uuid.UUID, delta, initial float64) (float64, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO balances (player_id, amount) VALUES ($1, $2)
		 ON CONFLICT (player_id) DO NOTHING`,
		player, initial,
	)
	if err != nil {
		return 0, fmt.Errorf("creating balance of %s: %w", player, err)
	}

	var amount float64
	err = r.pool.QueryRow(ctx,
		`UPDATE balances SET amount = amount + $2, updated_at = now()
		 WHERE player_id = $1 AND amount + $2 >= 0
		 RETURNING amount`,
		player, delta,
	).Scan(&amount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, storage.ErrInsufficientFunds
		}
		return 0, fmt.Errorf("adjusting balance of %s: %w", player, err)
	}
	return amount, nil
}
