// Package teleport plays the firework trails of a station teleport and
// moves the player between stations.
package teleport

import (
	"log/slog"
	"math"

	"github.com/udisondev/homestations/internal/model"
)

// Scheduler runs callbacks on later ticks.
type Scheduler interface {
	RunAfter(ticks int, fn func())
}

// Effects plays visual effects in the world.
type Effects interface {
	PlayFirework(at model.Point, fw model.Firework) error
}

// Mover moves one player.
type Mover interface {
	SetVelocity(v model.Vector) error
	Relocate(to model.Point, yaw float32) error
}

// HeightLimiter reports the build height of a world.
type HeightLimiter interface {
	MaxHeight(world string) (int, error)
}

// Settings tunes the animation.
type Settings struct {
	Effect1 model.Firework
	Effect2 model.Firework

	UpVelocity     float64
	DelayTicks     int
	MaxUpRange     float64
	EffectDistance float64

	DownOffset      float64
	TeleportYOffset float64
}

// Animator runs teleports on the scheduler goroutine.
// Chains are never cancelled: triggering again mid-flight starts a second,
// independent chain.
type Animator struct {
	sched   Scheduler
	fx      Effects
	heights HeightLimiter
	cfg     Settings
}

// NewAnimator creates an Animator.
func NewAnimator(sched Scheduler, fx Effects, heights HeightLimiter, cfg Settings) *Animator {
	return &Animator{sched: sched, fx: fx, heights: heights, cfg: cfg}
}

// Teleport launches the player at from and relocates them onto dest after
// the configured delay, facing away from a station that faces facing.
func (a *Animator) Teleport(m Mover, from model.Point, dest model.BlockPos, facing model.Face) {
	to := dest.Center()
	arrival := to.Add(0, a.cfg.TeleportYOffset, 0)
	yaw := model.InvertYaw(facing.Yaw())
	effectStart := to.Add(0, a.cfg.DownOffset, 0)
	floor := to.Y

	a.Ascend(from, a.ceiling(from))
	if err := m.SetVelocity(model.Vector{Y: a.cfg.UpVelocity}); err != nil {
		slog.Warn("setting teleport velocity", "error", err)
	}

	a.sched.RunAfter(a.cfg.DelayTicks, func() {
		if err := m.Relocate(arrival, yaw); err != nil {
			slog.Warn("relocating player", "destination", dest, "error", err)
			return
		}
		a.Descend(effectStart, floor)
	})
}

// Ascend plays an upward trail from start until ceiling.
func (a *Animator) Ascend(start model.Point, ceiling float64) {
	a.run(NewAscent(start, ceiling, a.cfg.EffectDistance, a.cfg.Effect1, a.cfg.Effect2))
}

// Descend plays a downward trail from start down to floor.
func (a *Animator) Descend(start model.Point, floor float64) {
	a.run(NewDescent(start, floor, a.cfg.Effect2, a.cfg.Effect1))
}

func (a *Animator) run(t *Trail) {
	a.play(t.Cursor(), t.lead)
	a.sched.RunAfter(1, func() {
		at, more := t.Advance()
		a.play(at, t.follow)
		if more {
			a.sched.RunAfter(1, func() { a.run(t) })
		}
	})
}

func (a *Animator) ceiling(from model.Point) float64 {
	limit := from.Y + a.cfg.MaxUpRange
	if a.heights == nil {
		return limit
	}
	h, err := a.heights.MaxHeight(from.World)
	if err != nil {
		slog.Debug("world height unknown", "world", from.World, "error", err)
		return limit
	}
	return math.Min(limit, float64(h))
}

func (a *Animator) play(at model.Point, fw model.Firework) {
	if err := a.fx.PlayFirework(at, fw); err != nil {
		slog.Debug("firework effect failed", "at", at, "error", err)
	}
}
