package station

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/udisondev/homestations/internal/model"
	"github.com/udisondev/homestations/internal/storage"
)

// Registry is the set of spawn stations plus the optional main spawn station.
// Every mutation is persisted immediately.
//
// Not safe for concurrent use: owned by the scheduler goroutine.
type Registry struct {
	store   storage.StationStore
	matcher Matcher

	spawns  map[model.BlockPos]struct{}
	main    model.BlockPos
	hasMain bool
}

// NewRegistry creates an empty registry backed by store.
func NewRegistry(store storage.StationStore, matcher Matcher) *Registry {
	return &Registry{
		store:   store,
		matcher: matcher,
		spawns:  make(map[model.BlockPos]struct{}),
	}
}

// Load replaces the in-memory state with the persisted record.
// Unparseable entries are skipped.
func (r *Registry) Load(ctx context.Context) error {
	rec, err := r.store.LoadStations(ctx)
	if err != nil {
		return fmt.Errorf("loading spawn stations: %w", err)
	}

	r.spawns = make(map[model.BlockPos]struct{}, len(rec.Spawns))
	for _, s := range rec.Spawns {
		pos, ok := model.ParseBlockPos(s)
		if !ok {
			slog.Warn("skipping malformed spawn station", "value", s)
			continue
		}
		r.spawns[pos] = struct{}{}
	}

	r.main, r.hasMain = model.ParseBlockPos(rec.Main)
	if !r.hasMain && rec.Main != "" && rec.Main != storage.NotSet {
		slog.Warn("skipping malformed main spawn station", "value", rec.Main)
	}

	slog.Info("spawn stations loaded", "count", len(r.spawns), "main", r.mainString())
	return nil
}

// AddSpawn adds pos to the spawn stations and persists. Adding an existing
// station is a no-op apart from the write.
func (r *Registry) AddSpawn(ctx context.Context, pos model.BlockPos) error {
	r.spawns[pos] = struct{}{}
	return r.save(ctx)
}

// SetMain makes pos the main spawn station, adding it to the set if needed.
func (r *Registry) SetMain(ctx context.Context, pos model.BlockPos) error {
	r.main = pos
	r.hasMain = true
	r.spawns[pos] = struct{}{}
	return r.save(ctx)
}

// IsSpawn reports whether pos is a registered spawn station.
func (r *Registry) IsSpawn(pos model.BlockPos) bool {
	_, ok := r.spawns[pos]
	return ok
}

// Main returns the main spawn station.
func (r *Registry) Main() (model.BlockPos, bool) {
	return r.main, r.hasMain
}

// Len returns the number of spawn stations.
func (r *Registry) Len() int {
	return len(r.spawns)
}

// Spawns returns the spawn stations in a stable order.
func (r *Registry) Spawns() []model.BlockPos {
	out := make([]model.BlockPos, 0, len(r.spawns))
	for pos := range r.spawns {
		out = append(out, pos)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})
	return out
}

// ValidateAll drops every spawn station that no longer matches in w and
// clears the main station if it is gone. The main station is never replaced
// by another member. Returns the number of removed entries.
//
// Runs once after startup, when the host reports its world data is ready.
func (r *Registry) ValidateAll(ctx context.Context, w WorldQuery) int {
	removed := 0
	mainDropped := false
	for pos := range r.spawns {
		if r.matcher.IsLower(w, pos) {
			continue
		}
		slog.Warn("invalid spawn station found, removing it", "location", pos.String())
		delete(r.spawns, pos)
		removed++
		if r.hasMain && pos == r.main {
			mainDropped = true
		}
	}

	if r.hasMain {
		if !r.matcher.IsLower(w, r.main) {
			slog.Warn("invalid main spawn station, removing it", "location", r.main.String())
			r.main = model.BlockPos{}
			r.hasMain = false
			// a main listed among the spawns is already counted above
			if !mainDropped {
				removed++
			}
		} else {
			r.spawns[r.main] = struct{}{}
		}
	}

	if err := r.save(ctx); err != nil {
		slog.Error("saving spawn stations after validation", "error", err)
	}

	slog.Info("spawn stations validated", "count", len(r.spawns), "removed", removed)
	return removed
}

func (r *Registry) save(ctx context.Context) error {
	rec := storage.StationRecord{Main: r.mainString()}
	for _, pos := range r.Spawns() {
		rec.Spawns = append(rec.Spawns, pos.String())
	}
	if err := r.store.SaveStations(ctx, rec); err != nil {
		return fmt.Errorf("saving spawn stations: %w", err)
	}
	return nil
}

func (r *Registry) mainString() string {
	if !r.hasMain {
		return storage.NotSet
	}
	return r.main.String()
}
