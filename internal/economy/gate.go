package economy

import (
	"context"
	"log/slog"
	"math"

	"github.com/google/uuid"

	"github.com/udisondev/homestations/internal/confirm"
	"github.com/udisondev/homestations/internal/messages"
	"github.com/udisondev/homestations/internal/model"
)

// Payer is the player being charged.
type Payer interface {
	ID() uuid.UUID
	messages.Recipient
}

// Gate decides whether a teleport may proceed and charges its fee.
// Not safe for concurrent use.
type Gate struct {
	fee    float64
	bank   BalanceService
	ledger *confirm.Ledger
	msgs   *messages.Catalog
}

// NewGate creates a Gate. A zero fee or a nil bank makes every teleport free.
func NewGate(fee float64, bank BalanceService, ledger *confirm.Ledger, msgs *messages.Catalog) *Gate {
	return &Gate{fee: fee, bank: bank, ledger: ledger, msgs: msgs}
}

// Charge runs the cost check for a teleport from station loc.
// It returns true when the teleport may proceed. The fee is only withdrawn
// on the allow path; a player may have to trigger twice to confirm it.
func (g *Gate) Charge(ctx context.Context, payer Payer, loc model.BlockPos) bool {
	if g.fee == 0 || g.bank == nil {
		return true
	}

	id := payer.ID()
	pending := g.ledger.Consume(id)

	balance, err := g.bank.Balance(ctx, id)
	if err != nil {
		slog.Warn("balance lookup failed", "player", id, "error", err)
		g.msgs.Send(payer, messages.TransactionFailure, "error", err.Error())
		return false
	}

	costs := g.bank.Format(math.Abs(g.fee))
	if g.fee > 0 && balance < g.fee {
		g.msgs.Send(payer, messages.NotEnoughMoney,
			"costs", costs,
			"balance", g.bank.Format(balance))
		return false
	}

	if g.msgs.Enabled(messages.TeleportCostsConfirm) && !g.ledger.Applies(pending, confirm.KindTeleportCost, loc) {
		g.ledger.Request(id, confirm.KindTeleportCost, loc)
		g.msgs.Send(payer, messages.TeleportCostsConfirm,
			"costs", costs,
			"balance", g.bank.Format(balance))
		return false
	}

	if err := g.bank.Transfer(ctx, id, -g.fee); err != nil {
		slog.Info("teleport transaction failed", "player", id, "fee", g.fee, "error", err)
		g.msgs.Send(payer, messages.TransactionFailure, "error", err.Error())
		return false
	}

	balance, err = g.bank.Balance(ctx, id)
	if err != nil {
		slog.Warn("balance lookup after charge failed", "player", id, "error", err)
		return true
	}
	g.msgs.Send(payer, messages.TeleportCostsApplied,
		"costs", costs,
		"balance", g.bank.Format(balance))
	return true
}
