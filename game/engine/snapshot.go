package engine

// Snapshot returns a serialisable copy of the board.
func (e *GameEngine) Snapshot() Snapshot {
	snap := Snapshot{
		ConfigName: e.config.Name,
		State:      e.state,
		Phase:      e.phase,
		ChainLevel: e.chainLevel,
		Rounds:     e.rounds,
		Grid:       make([][]Cell, GridHeight+HiddenRows),
		Rows:       make([]string, GridHeight+HiddenRows),
		Current:    e.current.view(),
		Next:       e.next.view(),
		Score:      e.score,
	}
	if e.state == StateGameOver {
		snap.Current = nil
	}
	for r := range snap.Grid {
		row := r - HiddenRows
		cells := make([]Cell, GridWidth)
		letters := make([]byte, GridWidth)
		for col := range cells {
			letters[col] = '.'
			p := e.board.At(col, row)
			if p == nil {
				continue
			}
			cells[col] = Cell{ID: p.ID, Color: p.Color, Bonds: p.Bonds, Visual: p.Visual}
			letters[col] = p.Color.Letter()[0]
		}
		snap.Grid[r] = cells
		snap.Rows[r] = string(letters)
	}
	return snap
}
