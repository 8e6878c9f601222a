package economy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/homestations/internal/confirm"
	"github.com/udisondev/homestations/internal/messages"
	"github.com/udisondev/homestations/internal/model"
	"github.com/udisondev/homestations/internal/testutil"
)

type mockBalance struct {
	mock.Mock
}

func (m *mockBalance) Balance(ctx context.Context, player uuid.UUID) (float64, error) {
	args := m.Called(ctx, player)
	return args.Get(0).(float64), args.Error(1)
}

func (m *mockBalance) Transfer(ctx context.Context, player uuid.UUID, amount float64) error {
	args := m.Called(ctx, player, amount)
	return args.Error(0)
}

func (m *mockBalance) Format(amount float64) string {
	return humanize.Ftoa(amount)
}

var stationLoc = model.NewBlockPos(testutil.TestWorldName, 10, 64, 10)

func testCatalog() *messages.Catalog {
	return messages.NewCatalog(map[messages.ID]string{
		messages.NotEnoughMoney:       "costs {costs} balance {balance}",
		messages.TeleportCostsConfirm: "confirm {costs} of {balance}",
		messages.TeleportCostsApplied: "paid {costs} left {balance}",
		messages.TransactionFailure:   "failed: {error}",
	})
}

func TestGate_ZeroFeeAllowsWithoutCalls(t *testing.T) {
	bank := new(mockBalance)
	ledger := confirm.NewLedger()
	gate := NewGate(0, bank, ledger, testCatalog())
	p := testutil.NewFakePlayer("alice")

	for range 3 {
		assert.True(t, gate.Charge(context.Background(), p, stationLoc))
	}

	bank.AssertNotCalled(t, "Balance", mock.Anything, mock.Anything)
	bank.AssertNotCalled(t, "Transfer", mock.Anything, mock.Anything, mock.Anything)
	assert.Zero(t, ledger.Len())
	assert.Empty(t, p.Messages())
}

func TestGate_NoBankAllows(t *testing.T) {
	ledger := confirm.NewLedger()
	gate := NewGate(5, nil, ledger, testCatalog())
	p := testutil.NewFakePlayer("alice")

	assert.True(t, gate.Charge(context.Background(), p, stationLoc))
	assert.Zero(t, ledger.Len())
}

func TestGate_NotEnoughMoney(t *testing.T) {
	bank := new(mockBalance)
	gate := NewGate(5, bank, confirm.NewLedger(), testCatalog())
	p := testutil.NewFakePlayer("alice")
	bank.On("Balance", mock.Anything, p.ID()).Return(3.0, nil)

	assert.False(t, gate.Charge(context.Background(), p, stationLoc))

	require.Len(t, p.Messages(), 1)
	assert.Equal(t, "costs 5 balance 3", p.Messages()[0])
	bank.AssertNotCalled(t, "Transfer", mock.Anything, mock.Anything, mock.Anything)
}

func TestGate_ConfirmThenCharge(t *testing.T) {
	store := testutil.NewMemoryBalanceStore()
	bank := NewBank(store, 0)
	ledger := confirm.NewLedger()
	gate := NewGate(5, bank, ledger, testCatalog())
	p := testutil.NewFakePlayer("alice")
	store.Set(p.ID(), 10)
	ctx := context.Background()

	assert.False(t, gate.Charge(ctx, p, stationLoc), "first trigger asks for confirmation")
	assert.Equal(t, 1, ledger.Len())
	assert.Equal(t, []string{"confirm 5 of 10"}, p.Messages())

	balance, err := bank.Balance(ctx, p.ID())
	require.NoError(t, err)
	assert.Equal(t, 10.0, balance, "nothing charged on the confirm path")

	assert.True(t, gate.Charge(ctx, p, stationLoc), "second trigger confirms")
	assert.Zero(t, ledger.Len())

	balance, err = bank.Balance(ctx, p.ID())
	require.NoError(t, err)
	assert.Equal(t, 5.0, balance)
	assert.Equal(t, "paid 5 left 5", p.Messages()[1])
}

func TestGate_ConfirmationIsBoundToLocation(t *testing.T) {
	store := testutil.NewMemoryBalanceStore()
	gate := NewGate(5, NewBank(store, 100), confirm.NewLedger(), testCatalog())
	p := testutil.NewFakePlayer("alice")
	ctx := context.Background()

	assert.False(t, gate.Charge(ctx, p, stationLoc))
	assert.False(t, gate.Charge(ctx, p, stationLoc.Add(1, 0, 0)), "other station needs its own confirmation")
	assert.True(t, gate.Charge(ctx, p, stationLoc.Add(1, 0, 0)))
}

func TestGate_ConfirmationExpires(t *testing.T) {
	now := time.Unix(1000, 0)
	ledger := confirm.NewLedger(confirm.WithClock(func() time.Time { return now }))
	store := testutil.NewMemoryBalanceStore()
	gate := NewGate(5, NewBank(store, 100), ledger, testCatalog())
	p := testutil.NewFakePlayer("alice")
	ctx := context.Background()

	assert.False(t, gate.Charge(ctx, p, stationLoc))
	now = now.Add(confirm.DefaultWindow)
	assert.False(t, gate.Charge(ctx, p, stationLoc), "expired confirmation asks again")
	assert.True(t, gate.Charge(ctx, p, stationLoc))
}

func TestGate_NoConfirmMessageChargesImmediately(t *testing.T) {
	msgs := messages.NewCatalog(map[messages.ID]string{
		messages.TeleportCostsConfirm: "",
		messages.TeleportCostsApplied: "paid {costs}",
	})
	bank := new(mockBalance)
	ledger := confirm.NewLedger()
	gate := NewGate(5, bank, ledger, msgs)
	p := testutil.NewFakePlayer("alice")
	bank.On("Balance", mock.Anything, p.ID()).Return(10.0, nil)
	bank.On("Transfer", mock.Anything, p.ID(), -5.0).Return(nil).Once()

	assert.True(t, gate.Charge(context.Background(), p, stationLoc))

	bank.AssertExpectations(t)
	assert.Zero(t, ledger.Len())
	assert.Equal(t, []string{"paid 5"}, p.Messages())
}

func TestGate_TransferErrorIsShownVerbatim(t *testing.T) {
	bank := new(mockBalance)
	ledger := confirm.NewLedger()
	gate := NewGate(5, bank, ledger, testCatalog())
	p := testutil.NewFakePlayer("alice")
	bank.On("Balance", mock.Anything, p.ID()).Return(10.0, nil)
	bank.On("Transfer", mock.Anything, p.ID(), -5.0).Return(errors.New("account frozen"))

	ctx := context.Background()
	require.False(t, gate.Charge(ctx, p, stationLoc))
	assert.False(t, gate.Charge(ctx, p, stationLoc))

	assert.Equal(t, "failed: account frozen", p.Messages()[1])
	assert.Zero(t, ledger.Len(), "confirmation is consumed on failure")

	// retry needs a fresh confirmation
	assert.False(t, gate.Charge(ctx, p, stationLoc))
	bank.AssertNumberOfCalls(t, "Transfer", 1)
}

func TestGate_BalanceErrorDenies(t *testing.T) {
	bank := new(mockBalance)
	gate := NewGate(5, bank, confirm.NewLedger(), testCatalog())
	p := testutil.NewFakePlayer("alice")
	bank.On("Balance", mock.Anything, p.ID()).Return(0.0, errors.New("db down"))

	assert.False(t, gate.Charge(context.Background(), p, stationLoc))
	assert.Equal(t, []string{"failed: db down"}, p.Messages())
	bank.AssertNotCalled(t, "Transfer", mock.Anything, mock.Anything, mock.Anything)
}

func TestGate_NegativeFeePaysPlayer(t *testing.T) {
	store := testutil.NewMemoryBalanceStore()
	bank := NewBank(store, 0)
	msgs := messages.NewCatalog(map[messages.ID]string{
		messages.TeleportCostsConfirm: "",
		messages.TeleportCostsApplied: "got {costs} now {balance}",
	})
	gate := NewGate(-2.5, bank, confirm.NewLedger(), msgs)
	p := testutil.NewFakePlayer("alice")

	assert.True(t, gate.Charge(context.Background(), p, stationLoc), "negative fee never fails the balance check")
	assert.Equal(t, []string{"got 2.5 now 2.5"}, p.Messages())
}
