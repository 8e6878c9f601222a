package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/udisondev/homestations/internal/storage"
)

// Store caches profiles in memory on top of a durable LineStore.
// Durable storage is authoritative; the cache only saves reads.
//
// Changes are NOT saved automatically: callers must call Save after every
// mutation, otherwise they are lost when the player is evicted.
//
// Not safe for concurrent use: owned by the scheduler goroutine.
type Store struct {
	lines storage.LineStore
	cache map[uuid.UUID]*Profile
}

// NewStore creates a store backed by lines.
func NewStore(lines storage.LineStore) *Store {
	return &Store{
		lines: lines,
		cache: make(map[uuid.UUID]*Profile),
	}
}

// Get returns the player's profile from the cache, durable storage, or a
// legacy record stored under the player's display name (migrated on the
// spot). A player never seen before gets an empty profile. The result is
// cached.
func (s *Store) Get(ctx context.Context, id uuid.UUID, name string) *Profile {
	if p, ok := s.cache[id]; ok {
		return p
	}

	p := s.load(ctx, id, name)
	s.cache[id] = p
	return p
}

// GetIfExists returns the cached or stored profile without caching it and
// without legacy migration. Meant for one-off lookups.
func (s *Store) GetIfExists(ctx context.Context, id uuid.UUID) (*Profile, bool) {
	if p, ok := s.cache[id]; ok {
		return p, true
	}

	p, err := s.read(ctx, id.String())
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Error("loading player data", "player", id, "error", err)
		}
		return nil, false
	}
	return p, true
}

// Save writes the profile to durable storage.
func (s *Store) Save(ctx context.Context, id uuid.UUID, p *Profile) error {
	if err := s.lines.WriteLines(ctx, id.String(), Encode(p)); err != nil {
		return fmt.Errorf("saving player data %s: %w", id, err)
	}
	return nil
}

// Evict drops the cached profile. Call when the player disconnects.
func (s *Store) Evict(id uuid.UUID) {
	delete(s.cache, id)
}

// Cached reports whether the player's profile is in memory.
func (s *Store) Cached(id uuid.UUID) bool {
	_, ok := s.cache[id]
	return ok
}

func (s *Store) load(ctx context.Context, id uuid.UUID, name string) *Profile {
	p, err := s.read(ctx, id.String())
	if err == nil {
		return p
	}
	if !errors.Is(err, storage.ErrNotFound) {
		slog.Error("loading player data", "player", id, "error", err)
		return &Profile{}
	}

	if name == "" {
		return &Profile{}
	}
	return s.migrateLegacy(ctx, id, name)
}

// migrateLegacy imports a record keyed by the player's name, stores it under
// the player id and removes the old record.
func (s *Store) migrateLegacy(ctx context.Context, id uuid.UUID, name string) *Profile {
	ok, err := s.lines.Exists(ctx, name)
	if err != nil {
		slog.Error("checking legacy player data", "player", id, "name", name, "error", err)
		return &Profile{}
	}
	if !ok {
		return &Profile{}
	}

	p, err := s.read(ctx, name)
	if err != nil {
		slog.Error("loading legacy player data", "player", id, "name", name, "error", err)
		return &Profile{}
	}

	if err := s.Save(ctx, id, p); err != nil {
		// keep the legacy record so the import is retried next time
		slog.Error("migrating legacy player data", "player", id, "name", name, "error", err)
		return p
	}
	if err := s.lines.Delete(ctx, name); err != nil {
		slog.Error("deleting legacy player data", "name", name, "error", err)
	}

	slog.Info("migrated legacy player data", "player", id, "name", name)
	return p
}

func (s *Store) read(ctx context.Context, key string) (*Profile, error) {
	lines, err := s.lines.ReadLines(ctx, key)
	if err != nil {
		return nil, err
	}
	return Decode(key, lines), nil
}
