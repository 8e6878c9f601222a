package world

import (
	"sync"

	"github.com/udisondev/homestations/internal/model"
)

// RegionSize is the edge length of a region column in blocks.
const RegionSize = 16

// RegionKey addresses a region column inside one world.
type RegionKey struct {
	RX int
	RZ int
}

// RegionKeyOf returns the key of the region containing pos.
func RegionKeyOf(pos model.BlockPos) RegionKey {
	return RegionKey{RX: floorDiv(pos.X, RegionSize), RZ: floorDiv(pos.Z, RegionSize)}
}

// Region holds the non-air blocks of one 16×16 column.
type Region struct {
	mu     sync.RWMutex
	blocks map[model.BlockPos]model.Block
}

func newRegion() *Region {
	return &Region{blocks: make(map[model.BlockPos]model.Block)}
}

func (r *Region) get(pos model.BlockPos) model.Block {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.blocks[pos]
	if !ok {
		return model.Block{Material: model.MaterialAir}
	}
	return b
}

func (r *Region) set(pos model.BlockPos, b model.Block) {
	if b.Material == model.MaterialAir || b.Material == "" {
		r.clear(pos)
		return
	}

	r.mu.Lock()
	r.blocks[pos] = b
	r.mu.Unlock()
}

func (r *Region) clear(pos model.BlockPos) {
	r.mu.Lock()
	delete(r.blocks, pos)
	r.mu.Unlock()
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
