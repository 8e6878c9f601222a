package economy

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/udisondev/homestations/internal/storage"
)

// Bank is a BalanceService backed by a storage.BalanceStore.
// Players without a stored balance start with the configured amount.
type Bank struct {
	store    storage.BalanceStore
	starting float64
}

// NewBank creates a Bank.
func NewBank(store storage.BalanceStore, startingBalance float64) *Bank {
	return &Bank{store: store, starting: startingBalance}
}

// Balance returns the player's balance.
func (b *Bank) Balance(ctx context.Context, player uuid.UUID) (float64, error) {
	amount, ok, err := b.store.Balance(ctx, player)
	if err != nil {
		return 0, fmt.Errorf("loading balance of %s: %w", player, err)
	}
	if !ok {
		return b.starting, nil
	}
	return amount, nil
}

// Transfer adds amount to the player's balance. Withdrawals that would
// overdraw the account fail with storage.ErrInsufficientFunds.
func (b *Bank) Transfer(ctx context.Context, player uuid.UUID, amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fmt.Errorf("invalid amount %v", amount)
	}
	if _, err := b.store.Adjust(ctx, player, amount, b.starting); err != nil {
		if errors.Is(err, storage.ErrInsufficientFunds) {
			return storage.ErrInsufficientFunds
		}
		return fmt.Errorf("adjusting balance of %s: %w", player, err)
	}
	return nil
}

// Format renders an amount with thousands separators and at most two decimals.
func (b *Bank) Format(amount float64) string {
	return humanize.CommafWithDigits(math.Round(amount*100)/100, 2)
}
