package testutil

import (
	"slices"
	"sync"

	"github.com/udisondev/homestations/internal/model"
)

// PlayedFirework records one firework effect.
type PlayedFirework struct {
	At       model.Point
	Firework model.Firework
}

// EffectRecorder records played fireworks. Set Fail to make every call
// return ErrInjected (the call is still recorded).
type EffectRecorder struct {
	mu     sync.Mutex
	played []PlayedFirework

	Fail bool
}

// PlayFirework implements teleport.Effects.
func (r *EffectRecorder) PlayFirework(at model.Point, fw model.Firework) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.played = append(r.played, PlayedFirework{At: at, Firework: fw})
	if r.Fail {
		return ErrInjected
	}
	return nil
}

// Played returns all recorded effects.
func (r *EffectRecorder) Played() []PlayedFirework {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.played)
}
