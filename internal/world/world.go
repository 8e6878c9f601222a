// Package world mirrors the block state the game host reports, so station
// checks can run without a round trip to the host.
package world

import (
	"fmt"
	"sync"

	"github.com/udisondev/homestations/internal/model"
)

// Mirror is an in-memory copy of the host worlds, split into chunk regions.
// Safe for concurrent use: the bridge writes while the tick goroutine reads.
type Mirror struct {
	mu     sync.RWMutex
	worlds map[string]*dimension
}

type dimension struct {
	maxHeight int
	regions   map[RegionKey]*Region
}

// NewMirror creates an empty mirror with no known worlds.
func NewMirror() *Mirror {
	return &Mirror{worlds: make(map[string]*dimension)}
}

// SetWorld registers a world or updates its height limit.
func (m *Mirror) SetWorld(name string, maxHeight int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if d, ok := m.worlds[name]; ok {
		d.maxHeight = maxHeight
		return
	}
	m.worlds[name] = &dimension{
		maxHeight: maxHeight,
		regions:   make(map[RegionKey]*Region),
	}
}

// RemoveWorld forgets a world and all its blocks.
func (m *Mirror) RemoveWorld(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.worlds, name)
}

// SetBlock stores the block at pos. The world must be registered first.
func (m *Mirror) SetBlock(pos model.BlockPos, b model.Block) error {
	region, err := m.region(pos, true)
	if err != nil {
		return err
	}
	region.set(pos, b)
	return nil
}

// ClearBlock resets pos to air.
func (m *Mirror) ClearBlock(pos model.BlockPos) error {
	region, err := m.region(pos, false)
	if err != nil {
		return err
	}
	if region != nil {
		region.clear(pos)
	}
	return nil
}

// Block returns the block at pos; unknown blocks are air.
func (m *Mirror) Block(pos model.BlockPos) (model.Block, error) {
	region, err := m.region(pos, false)
	if err != nil {
		return model.Block{}, err
	}
	if region == nil {
		return model.Block{Material: model.MaterialAir}, nil
	}
	return region.get(pos), nil
}

// Material implements station.WorldQuery.
func (m *Mirror) Material(pos model.BlockPos) (model.Material, error) {
	b, err := m.Block(pos)
	if err != nil {
		return "", err
	}
	return b.Material, nil
}

// AttachedFace implements station.WorldQuery.
func (m *Mirror) AttachedFace(pos model.BlockPos) (model.Face, error) {
	b, err := m.Block(pos)
	if err != nil {
		return 0, err
	}
	return b.Attached, nil
}

// MaxHeight returns the build height limit of a world.
func (m *Mirror) MaxHeight(world string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.worlds[world]
	if !ok {
		return 0, fmt.Errorf("unknown world %q", world)
	}
	return d.maxHeight, nil
}

// RegionCount returns the number of populated regions across all worlds.
func (m *Mirror) RegionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, d := range m.worlds {
		n += len(d.regions)
	}
	return n
}

// region returns the region holding pos. With create=false a missing region
// is reported as nil without error.
func (m *Mirror) region(pos model.BlockPos, create bool) (*Region, error) {
	key := RegionKeyOf(pos)

	m.mu.RLock()
	d, ok := m.worlds[pos.World]
	if !ok {
		m.mu.RUnlock()
		return nil, fmt.Errorf("unknown world %q", pos.World)
	}
	region := d.regions[key]
	m.mu.RUnlock()

	if region != nil || !create {
		return region, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// world may have been removed in between
	d, ok = m.worlds[pos.World]
	if !ok {
		return nil, fmt.Errorf("unknown world %q", pos.World)
	}
	if region = d.regions[key]; region == nil {
		region = newRegion()
		d.regions[key] = region
	}
	return region, nil
}
