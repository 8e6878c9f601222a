// Package storage defines the durable record contracts shared by the file,
// PostgreSQL and SQLite backends.
package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// NotSet is written in place of an absent position.
const NotSet = "not set"

// ErrNotFound is returned when no record exists for a key.
var ErrNotFound = errors.New("record not found")

// LineStore keeps small line-based records addressed by key
// (player id, or a legacy player name).
type LineStore interface {
	// ReadLines returns the record lines, or ErrNotFound.
	ReadLines(ctx context.Context, key string) ([]string, error)
	// WriteLines replaces the record.
	WriteLines(ctx context.Context, key string, lines []string) error
	// Exists reports whether a record is stored for key.
	Exists(ctx context.Context, key string) (bool, error)
	// Delete removes the record. Deleting a missing record is not an error.
	Delete(ctx context.Context, key string) error
}

// StationRecord is the persisted form of the spawn station registry.
// Positions are kept as strings; decoding is the registry's job.
type StationRecord struct {
	Spawns []string
	// Main is the main spawn station, or NotSet / empty.
	Main string
}

// HasMain reports whether a main station is recorded.
func (r StationRecord) HasMain() bool {
	return r.Main != "" && r.Main != NotSet
}

// StationEntry is one stored spawn station.
type StationEntry struct {
	Location string
	Main     bool
}

// Entries flattens the record into unique entries in list order.
// A main station missing from Spawns is appended.
func (r StationRecord) Entries() []StationEntry {
	seen := make(map[string]struct{}, len(r.Spawns)+1)
	out := make([]StationEntry, 0, len(r.Spawns)+1)
	for _, loc := range r.Spawns {
		if _, dup := seen[loc]; dup {
			continue
		}
		seen[loc] = struct{}{}
		out = append(out, StationEntry{Location: loc, Main: r.HasMain() && loc == r.Main})
	}
	if _, ok := seen[r.Main]; r.HasMain() && !ok {
		out = append(out, StationEntry{Location: r.Main, Main: true})
	}
	return out
}

// StationStore persists the spawn station registry.
type StationStore interface {
	LoadStations(ctx context.Context) (StationRecord, error)
	SaveStations(ctx context.Context, rec StationRecord) error
}

// ErrInsufficientFunds is returned when a balance adjustment would go negative.
var ErrInsufficientFunds = errors.New("insufficient funds")

// BalanceStore keeps player balances.
type BalanceStore interface {
	// Balance returns the stored balance and whether a row exists.
	Balance(ctx context.Context, player uuid.UUID) (float64, bool, error)
	// Adjust adds delta to the balance, creating the row with initial first
	// if needed, and returns the new balance. A result below zero is
	// rejected with ErrInsufficientFunds and nothing changes.
	Adjust(ctx context.Context, player uuid.UUID, delta, initial float64) (float64, error)
}
