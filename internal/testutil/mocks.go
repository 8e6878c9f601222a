package testutil

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/udisondev/homestations/internal/storage"
)

// ErrInjected is returned by mocks configured to fail.
var ErrInjected = errors.New("injected failure")

// MemoryLineStore is an in-memory storage.LineStore for unit tests.
type MemoryLineStore struct {
	mu      sync.RWMutex
	records map[string][]string

	// FailWrites makes WriteLines return ErrInjected.
	FailWrites bool
	// FailReads makes ReadLines return ErrInjected.
	FailReads bool

	writes int
}

// NewMemoryLineStore creates an empty store.
func NewMemoryLineStore() *MemoryLineStore {
	return &MemoryLineStore{records: make(map[string][]string)}
}

// ReadLines implements storage.LineStore.
func (s *MemoryLineStore) ReadLines(ctx context.Context, key string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.FailReads {
		return nil, ErrInjected
	}
	lines, ok := s.records[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	// copy to keep callers from aliasing the stored slice
	return slices.Clone(lines), nil
}

// WriteLines implements storage.LineStore.
func (s *MemoryLineStore) WriteLines(ctx context.Context, key string, lines []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWrites {
		return ErrInjected
	}
	s.records[key] = slices.Clone(lines)
	s.writes++
	return nil
}

// Exists implements storage.LineStore.
func (s *MemoryLineStore) Exists(ctx context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[key]
	return ok, nil
}

// Delete implements storage.LineStore.
func (s *MemoryLineStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}

// Put stores a raw record, bypassing failure injection.
func (s *MemoryLineStore) Put(key string, lines ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = lines
}

// Writes returns the number of successful writes.
func (s *MemoryLineStore) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

// MemoryStationStore is an in-memory storage.StationStore for unit tests.
type MemoryStationStore struct {
	mu     sync.Mutex
	record storage.StationRecord
	saves  int

	// FailSaves makes SaveStations return ErrInjected.
	FailSaves bool
}

// NewMemoryStationStore creates a store holding rec.
func NewMemoryStationStore(rec storage.StationRecord) *MemoryStationStore {
	return &MemoryStationStore{record: rec}
}

// LoadStations implements storage.StationStore.
func (s *MemoryStationStore) LoadStations(ctx context.Context) (storage.StationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return storage.StationRecord{Spawns: slices.Clone(s.record.Spawns), Main: s.record.Main}, nil
}

// SaveStations implements storage.StationStore.
func (s *MemoryStationStore) SaveStations(ctx context.Context, rec storage.StationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailSaves {
		return ErrInjected
	}
	s.record = storage.StationRecord{Spawns: slices.Clone(rec.Spawns), Main: rec.Main}
	s.saves++
	return nil
}

// Record returns the last saved record.
func (s *MemoryStationStore) Record() storage.StationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record
}

// Saves returns the number of successful saves.
func (s *MemoryStationStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// MemoryBalanceStore is an in-memory storage.BalanceStore.
type MemoryBalanceStore struct {
	mu       sync.Mutex
	balances map[uuid.UUID]float64

	// FailAdjust makes Adjust return ErrInjected.
	FailAdjust bool
}

// NewMemoryBalanceStore creates an empty store.
func NewMemoryBalanceStore() *MemoryBalanceStore {
	return &MemoryBalanceStore{balances: make(map[uuid.UUID]float64)}
}

// Balance implements storage.BalanceStore.
func (s *MemoryBalanceStore) Balance(ctx context.Context, player uuid.UUID) (float64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	amount, ok := s.balances[player]
	return amount, ok, nil
}

// Adjust implements storage.BalanceStore.
func (s *MemoryBalanceStore) Adjust(ctx context.Context, player uuid.UUID, delta, initial float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailAdjust {
		return 0, ErrInjected
	}
	amount, ok := s.balances[player]
	if !ok {
		amount = initial
	}
	if amount+delta < 0 {
		return amount, storage.ErrInsufficientFunds
	}
	s.balances[player] = amount + delta
	return amount + delta, nil
}

// Set stores a balance directly.
func (s *MemoryBalanceStore) Set(player uuid.UUID, amount float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[player] = amount
}
