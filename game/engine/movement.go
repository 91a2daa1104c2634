package engine

type rotation struct {
	dCol, dRow int
	next       Direction
}

// rotationTable[orientation][spin] moves piece B around piece A.
var rotationTable = [4][2]rotation{
	Up: {
		Clockwise:        {dCol: +1, dRow: +1, next: Right},
		CounterClockwise: {dCol: -1, dRow: +1, next: Left},
	},
	Right: {
		Clockwise:        {dCol: -1, dRow: +1, next: Down},
		CounterClockwise: {dCol: -1, dRow: -1, next: Up},
	},
	Down: {
		Clockwise:        {dCol: -1, dRow: -1, next: Left},
		CounterClockwise: {dCol: +1, dRow: -1, next: Right},
	},
	Left: {
		Clockwise:        {dCol: +1, dRow: -1, next: Up},
		CounterClockwise: {dCol: +1, dRow: +1, next: Down},
	},
}

// Move shifts the falling pair one cell. A blocked down move lands the
// pair. It reports whether the pair moved.
func (e *GameEngine) Move(dir Direction) bool {
	if e.state != StateInteractive || e.current == nil {
		return false
	}
	pair := e.current
	a, b := pair.A, pair.B

	e.lift(pair)
	moved, land := false, false
	switch dir {
	case Left:
		if a.Col > 0 && b.Col > 0 && e.canShift(pair, Left, -1, 0) {
			a.Col--
			b.Col--
			moved = true
		}
	case Right:
		if a.Col < GridWidth-1 && b.Col < GridWidth-1 && e.canShift(pair, Right, +1, 0) {
			a.Col++
			b.Col++
			moved = true
		}
	case Down:
		if a.Row < GridHeight-1 && b.Row < GridHeight-1 && e.canShift(pair, Down, 0, +1) {
			a.Row++
			b.Row++
			moved = true
		} else {
			land = true
		}
	case Up:
		// pairs never move up
	}
	e.place(pair)

	if land {
		e.pushDown(pair)
	}
	return moved
}

// canShift checks the destination cells of a shift. When one half leads
// in the direction of travel only its destination matters: the other half
// moves into the cell the leader leaves.
func (e *GameEngine) canShift(pair *Pair, dir Direction, dCol, dRow int) bool {
	a, b := pair.A, pair.B
	aFree := e.board.Free(a.Col+dCol, a.Row+dRow)
	bFree := e.board.Free(b.Col+dCol, b.Row+dRow)
	switch pair.Orientation {
	case dir:
		return bFree
	case opposite(dir):
		return aFree
	}
	return aFree && bFree
}

func opposite(d Direction) Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	case Right:
		return Left
	}
	panic(invariant("opposite", "unknown direction %d", int(d)))
}

// Rotate turns B around A using the rotation table, falling back to a
// floor or wall kick of A. It reports whether the pair rotated.
func (e *GameEngine) Rotate(spin Spin) bool {
	if e.state != StateInteractive || e.current == nil {
		return false
	}
	if spin != Clockwise && spin != CounterClockwise {
		return false
	}
	pair := e.current
	a, b := pair.A, pair.B
	rot := rotationTable[pair.Orientation][spin]

	e.lift(pair)
	rotated := false
	if col, row := b.Col+rot.dCol, b.Row+rot.dRow; e.board.Free(col, row) {
		b.MoveTo(col, row)
		rotated = true
	} else {
		col, row := a.Col, a.Row
		if rot.next.Vertical() {
			row -= rot.dRow
		} else {
			col -= rot.dCol
		}
		if e.board.Free(col, row) {
			b.MoveTo(a.Col, a.Row)
			a.MoveTo(col, row)
			rotated = true
		}
	}
	if rotated {
		pair.Orientation = rot.next
		e.audio.PlayClip("rotate")
	}
	e.place(pair)
	return rotated
}

// lift takes both halves of the pair off the grid.
func (e *GameEngine) lift(pair *Pair) {
	for _, p := range [...]*Piece{pair.A, pair.B} {
		if e.board.At(p.Col, p.Row) == p {
			e.board.Clear(p.Col, p.Row)
		}
	}
}

// place writes both halves back at their current coordinates.
func (e *GameEngine) place(pair *Pair) {
	for _, p := range [...]*Piece{pair.A, pair.B} {
		p.NormalizeDisplayPosition()
		e.board.Set(p)
	}
}

// pushDown lands the pair: any half with an empty cell below falls, then
// resolution starts after the land delay.
func (e *GameEngine) pushDown(pair *Pair) {
	for _, p := range [...]*Piece{pair.A, pair.B} {
		if p.Row < GridHeight-1 && e.board.At(p.Col, p.Row+1) == nil {
			e.letFall(p)
		}
	}
	e.audio.PlayClip("land")
	e.state = StateResolving
	e.timer.After(Frames(e.config.Timings.LandDelayFrames), func() {
		e.Resolve(0)
	})
}

// letFall drops p and the contiguous stack above it onto the next piece
// or the floor. Every moved piece leaves its group.
func (e *GameEngine) letFall(p *Piece) {
	col := p.Col
	dist := 0
	for row := p.Row + 1; row < GridHeight && e.board.At(col, row) == nil; row++ {
		dist++
	}

	for cur := p; cur != nil; {
		if g := cur.group; g != nil {
			g.RemoveBean(cur)
		}
		oldRow := cur.Row
		e.board.Clear(col, oldRow)
		cur.MoveTo(col, oldRow+dist)
		cur.NormalizeDisplayPosition()
		e.board.Set(cur)
		cur = e.board.At(col, oldRow-1)
	}
}
