// Package economy charges players for teleports.
package economy

import (
	"context"

	"github.com/google/uuid"
)

// BalanceService moves money. A nil BalanceService disables teleport costs.
type BalanceService interface {
	Balance(ctx context.Context, player uuid.UUID) (float64, error)
	// Transfer adds a signed amount to the player's balance.
	Transfer(ctx context.Context, player uuid.UUID, amount float64) error
	Format(amount float64) string
}
