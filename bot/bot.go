// Package bot picks a landing spot for the falling pair and steers it
// there. It plays headless simulations and is deliberately simple: one
// pair of lookahead, no chain planning.
package bot

import (
	"math"

	"github.com/wricardo/meanbean/game/engine"
)

const rows = engine.GridHeight + engine.HiddenRows

// Controls is the subset of the engine a bot drives.
type Controls interface {
	Move(dir engine.Direction) bool
	Rotate(spin engine.Spin) bool
	Snapshot() engine.Snapshot
}

// Placement is where the bot wants the pair: the column of bean A and
// the direction of bean B from A.
type Placement struct {
	Col         int
	Orientation engine.Direction
	Score       float64
}

// Weights tune the greedy evaluation.
type Weights struct {
	Group  float64 // per bean squared of the resulting group size
	Clear  float64 // per bean in a group that reaches the threshold
	Height float64 // per row above the floor
	Hidden float64 // per bean left in a hidden row
}

// DefaultWeights favour building groups low in the well.
func DefaultWeights() Weights {
	return Weights{Group: 1, Clear: 25, Height: 1.5, Hidden: 500}
}

// Greedy scores every reachable placement of the current pair.
type Greedy struct {
	Weights Weights
}

func NewGreedy() *Greedy {
	return &Greedy{Weights: DefaultWeights()}
}

type well [rows][engine.GridWidth]engine.Color

func wellFrom(snap engine.Snapshot) well {
	var w well
	for r, row := range snap.Grid {
		for c, cell := range row {
			w[r][c] = cell.Color
		}
	}
	if p := snap.Current; p != nil {
		w[p.A.Row+engine.HiddenRows][p.A.Col] = ""
		w[p.B.Row+engine.HiddenRows][p.B.Col] = ""
	}
	return w
}

// landing returns the grid index a bean dropped into col comes to rest
// on, or -1 when the column is full.
func (w *well) landing(col int) int {
	r := -1
	for i := 0; i < rows && w[i][col] == ""; i++ {
		r = i
	}
	return r
}

var orientations = [...]engine.Direction{engine.Up, engine.Right, engine.Down, engine.Left}

// Choose returns the best placement, ok false when there is no pair.
func (g *Greedy) Choose(snap engine.Snapshot) (Placement, bool) {
	p := snap.Current
	if p == nil {
		return Placement{}, false
	}
	base := wellFrom(snap)
	best := Placement{Score: math.Inf(-1)}
	for _, o := range orientations {
		for col := 0; col < engine.GridWidth; col++ {
			w := base
			score, ok := g.evaluate(&w, col, o, p.ColorA, p.ColorB)
			if ok && score > best.Score {
				best = Placement{Col: col, Orientation: o, Score: score}
			}
		}
	}
	return best, !math.IsInf(best.Score, -1)
}

type cell struct{ r, c int }

func (g *Greedy) evaluate(w *well, col int, o engine.Direction, a, b engine.Color) (float64, bool) {
	var placed [2]cell
	switch o {
	case engine.Up, engine.Down:
		h := w.landing(col)
		if h < 1 {
			return 0, false
		}
		lower, upper := cell{h, col}, cell{h - 1, col}
		if o == engine.Up {
			placed = [2]cell{lower, upper}
		} else {
			placed = [2]cell{upper, lower}
		}
		w[placed[0].r][col] = a
		w[placed[1].r][col] = b
	case engine.Right, engine.Left:
		other := col + 1
		if o == engine.Left {
			other = col - 1
		}
		if other < 0 || other >= engine.GridWidth {
			return 0, false
		}
		ha, hb := w.landing(col), w.landing(other)
		if ha < 0 || hb < 0 {
			return 0, false
		}
		placed = [2]cell{{ha, col}, {hb, other}}
		w[ha][col] = a
		w[hb][other] = b
	}

	score := 0.0
	cleared := false
	for _, p := range placed {
		size := w.groupSize(p)
		score += g.Weights.Group * float64(size*size)
		if size >= engine.GroupThreshold {
			score += g.Weights.Clear * float64(size)
			cleared = true
		}
		score -= g.Weights.Height * float64(rows-1-p.r)
		if p.r < engine.HiddenRows {
			score -= g.Weights.Hidden
		}
	}
	if !cleared && w[engine.HiddenRows+engine.DropRow][engine.DropColumn] != "" {
		score -= g.Weights.Hidden * 10
	}
	return score, true
}

// groupSize counts same-colored beans orthogonally connected to start.
func (w *well) groupSize(start cell) int {
	color := w[start.r][start.c]
	if color == "" {
		return 0
	}
	seen := map[cell]bool{start: true}
	stack := []cell{start}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, d := range [...]cell{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
			n := cell{cur.r + d.r, cur.c + d.c}
			if n.r < engine.HiddenRows || n.r >= rows || n.c < 0 || n.c >= engine.GridWidth {
				continue
			}
			if seen[n] || w[n.r][n.c] != color {
				continue
			}
			seen[n] = true
			stack = append(stack, n)
		}
	}
	return len(seen)
}

// spins returns the rotations that turn a freshly spawned pair (B above
// A) to o.
func spins(o engine.Direction) []engine.Spin {
	switch o {
	case engine.Right:
		return []engine.Spin{engine.Clockwise}
	case engine.Down:
		return []engine.Spin{engine.Clockwise, engine.Clockwise}
	case engine.Left:
		return []engine.Spin{engine.CounterClockwise}
	}
	return nil
}

// Execute steers the current pair to p and drops it. It returns false
// when the pair could not reach the target column; the pair is dropped
// wherever it ended up.
func Execute(ctl Controls, p Placement) bool {
	for _, s := range spins(p.Orientation) {
		ctl.Rotate(s)
	}
	reached := false
	for range engine.GridWidth {
		cur := ctl.Snapshot().Current
		if cur == nil {
			return false
		}
		if cur.A.Col == p.Col {
			reached = true
			break
		}
		dir := engine.Right
		if cur.A.Col > p.Col {
			dir = engine.Left
		}
		if !ctl.Move(dir) {
			break
		}
	}
	for range rows + 1 {
		if !ctl.Move(engine.Down) {
			break
		}
	}
	return reached
}
