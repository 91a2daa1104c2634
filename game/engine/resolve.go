package engine

import (
	"cmp"
	"fmt"
	"slices"
	"time"
)

// Resolve runs one pass of the chain machine at the given level: sweep
// the grid into groups, then animate, remove and drop the doomed ones.
// Every step scheduled here is a no-op once the game is over.
func (e *GameEngine) Resolve(level int) {
	if e.state == StateGameOver {
		return
	}
	e.state = StateResolving
	e.phase = PhaseScanning
	e.chainLevel = level
	e.hovering = nil
	if e.current != nil {
		e.current.A.Visual = VisualStatic
	}
	e.logger.Printf("resolve chain %d\n%s", level, e.Dump())

	e.doomed = nil
	for _, g := range e.sweep() {
		if g.Len() >= GroupThreshold {
			e.doomed = append(e.doomed, g)
		}
	}
	if len(e.doomed) == 0 {
		e.logger.Printf("- no groups to remove, end")
		e.finishResolution()
		return
	}

	t := e.config.Timings
	e.phase = PhaseFlashing
	for n := t.FlashStartFrame; n < t.FlashEndFrame; n += 2 {
		e.after(Frames(n), func() { e.setDoomedVisual(VisualInvisible) })
		e.after(Frames(n+1), func() { e.setDoomedVisual(VisualFlashing) })
	}
	e.after(Frames(t.PopFrame), func() {
		e.phase = PhasePopping
		e.audio.PlayClip(fmt.Sprintf("chain%d", level))
		e.setDoomedVisual(VisualPopping)
	})
	e.after(Frames(t.RemoveFrame), func() {
		e.removeDoomed(level)
	})
}

// after schedules fn unless the game ends first.
func (e *GameEngine) after(delay time.Duration, fn func()) {
	e.timer.After(delay, func() {
		if e.state == StateGameOver {
			return
		}
		fn()
	})
}

// sweep rebuilds every group from the visible grid. Rows are scanned
// bottom to top and columns right to left; each piece is compared with
// its left then its upper neighbour.
func (e *GameEngine) sweep() []*Group {
	e.board.Each(func(p *Piece) {
		if g := p.group; g != nil {
			g.RemoveBean(p)
		}
	})

	for row := GridHeight - 1; row >= 0; row-- {
		for col := GridWidth - 1; col >= 0; col-- {
			p := e.board.At(col, row)
			if p == nil {
				continue
			}
			adjacent := [2]*Piece{e.board.At(col-1, row)}
			if row > 0 {
				adjacent[1] = e.board.At(col, row-1)
			}
			for _, adj := range adjacent {
				if adj != nil && adj.Color == p.Color {
					e.join(p, adj)
				}
			}
		}
	}

	var groups []*Group
	for row := GridHeight - 1; row >= 0; row-- {
		for col := GridWidth - 1; col >= 0; col-- {
			p := e.board.At(col, row)
			if p != nil && p.group != nil && !slices.Contains(groups, p.group) {
				groups = append(groups, p.group)
			}
		}
	}
	return groups
}

// join puts two adjacent same-color pieces in one group. Merges move the
// smaller group into the larger; on a tie p's group joins adj's.
func (e *GameEngine) join(p, adj *Piece) {
	pg, ag := p.group, adj.group
	switch {
	case pg != nil && ag != nil:
		if pg == ag {
			return
		}
		from, into := pg, ag
		if len(pg.beans) > len(ag.beans) {
			from, into = ag, pg
		}
		from.ForEachBean(into.AddBean)
	case ag != nil:
		ag.AddBean(p)
	case pg != nil:
		pg.AddBean(adj)
	default:
		e.lastGroupID++
		g := NewGroup(e.lastGroupID, p, adj)
		e.logger.Printf("group created: %s", g)
	}
}

func (e *GameEngine) setDoomedVisual(v VisualState) {
	for _, g := range e.doomed {
		g.ForEachBean(func(p *Piece) { p.Visual = v })
	}
}

// removeDoomed clears the doomed groups and collects the pieces left
// hovering above the emptied cells.
func (e *GameEngine) removeDoomed(level int) {
	e.logger.Printf("- groups will be removed now")
	var emptied []Position
	pieces := 0
	for _, g := range e.doomed {
		e.logger.Printf("removing group %s", g)
		g.ForEachBean(func(p *Piece) {
			emptied = append(emptied, p.Position())
			e.removeBean(p)
			pieces++
		})
	}
	points := e.score.record(level, pieces, len(e.doomed))
	e.logger.Printf("chain step = %d -> power = %d, +%d points", level, ChainPower(level), points)
	e.doomed = nil

	var hovering []*Piece
	for _, pos := range emptied {
		above := e.board.At(pos.Col, pos.Row-1)
		if above != nil && !above.Removed && !slices.Contains(hovering, above) {
			hovering = append(hovering, above)
		}
	}
	if len(hovering) == 0 {
		e.logger.Printf("-- no hovering beans, end")
		e.finishResolution()
		return
	}

	// bottom-up so each stack lands before the pieces resting on it
	slices.SortStableFunc(hovering, func(a, b *Piece) int {
		return cmp.Compare(b.Row, a.Row)
	})
	e.hovering = hovering
	e.phase = PhaseFalling
	e.after(time.Duration(e.config.Timings.FallDelayMS)*time.Millisecond, func() {
		e.logger.Printf("-- beans will fall now")
		for _, p := range e.hovering {
			if !p.Removed {
				e.letFall(p)
			}
		}
		e.hovering = nil
		e.Resolve(level + 1)
	})
}

func (e *GameEngine) finishResolution() {
	e.phase = PhaseDone
	e.doomed = nil
	e.hovering = nil
	e.state = StateInteractive
	e.SpawnNextPair()
}
