package teleport

import "github.com/udisondev/homestations/internal/model"

// Direction of a trail.
type Direction int8

const (
	Up   Direction = 1
	Down Direction = -1
)

// Trail is the state of one running effect sequence. Each cycle plays the
// lead effect at the cursor, then one tick later advances the cursor and
// plays the follow effect there.
type Trail struct {
	cursor model.Point
	bound  float64
	step   float64
	dir    Direction
	lead   model.Firework
	follow model.Firework
}

// NewAscent creates an upward trail from start that stops once the cursor
// reaches ceiling.
func NewAscent(start model.Point, ceiling, step float64, lead, follow model.Firework) *Trail {
	return &Trail{cursor: start, bound: ceiling, step: step, dir: Up, lead: lead, follow: follow}
}

// NewDescent creates a downward trail moving one block per cycle that
// continues while the cursor stays at or above floor.
func NewDescent(start model.Point, floor float64, lead, follow model.Firework) *Trail {
	return &Trail{cursor: start, bound: floor, step: 1, dir: Down, lead: lead, follow: follow}
}

// Cursor returns the current position.
func (t *Trail) Cursor() model.Point {
	return t.cursor
}

// Advance moves the cursor one step and reports whether another cycle follows.
func (t *Trail) Advance() (model.Point, bool) {
	t.cursor = t.cursor.Add(0, float64(t.dir)*t.step, 0)
	if t.dir == Up {
		return t.cursor, t.cursor.Y < t.bound
	}
	return t.cursor, t.cursor.Y >= t.bound
}
