package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/homestations/internal/storage"
)

func openTestDB(t *testing.T) (*DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "homestations.db")
	d, err := Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d, path
}

func TestDB_Lines(t *testing.T) {
	ctx := context.Background()
	d, _ := openTestDB(t)
	key := uuid.NewString()

	_, err := d.ReadLines(ctx, key)
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, d.WriteLines(ctx, key, []string{"world;1;2;3", storage.NotSet}))
	require.NoError(t, d.WriteLines(ctx, key, []string{storage.NotSet, "world;4;5;6"}))

	got, err := d.ReadLines(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []string{storage.NotSet, "world;4;5;6"}, got)

	ok, err := d.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, d.Delete(ctx, key))
	ok, err = d.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDB_Stations(t *testing.T) {
	ctx := context.Background()
	d, path := openTestDB(t)

	rec, err := d.LoadStations(ctx)
	require.NoError(t, err)
	assert.Empty(t, rec.Spawns)
	assert.Equal(t, storage.NotSet, rec.Main)

	want := storage.StationRecord{
		Spawns: []string{"world;0;64;0", "world;9;64;9"},
		Main:   "world;0;64;0",
	}
	require.NoError(t, d.SaveStations(ctx, want))
	require.NoError(t, d.Close())

	// reopen: migrations are idempotent and data survives
	d2, err := Open(ctx, path)
	require.NoError(t, err)
	defer d2.Close()

	got, err := d2.LoadStations(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDB_Balance(t *testing.T) {
	ctx := context.Background()
	d, _ := openTestDB(t)
	id := uuid.New()

	_, ok, err := d.Balance(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	amount, err := d.Adjust(ctx, id, 2.5, 10)
	require.NoError(t, err)
	assert.Equal(t, 12.5, amount)

	_, err = d.Adjust(ctx, id, -20, 10)
	require.ErrorIs(t, err, storage.ErrInsufficientFunds)

	amount, ok, err = d.Balance(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 12.5, amount)
}
