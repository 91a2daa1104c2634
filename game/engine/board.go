package engine

// Board is the grid, hidden rows included. Cells are addressed with board
// coordinates: columns 0..GridWidth-1, rows -HiddenRows..GridHeight-1.
type Board struct {
	cells [GridHeight + HiddenRows][GridWidth]*Piece
}

// InBounds reports whether (col, row) is a board cell.
func InBounds(col, row int) bool {
	return col >= 0 && col < GridWidth && row >= -HiddenRows && row < GridHeight
}

// At returns the piece at (col, row), or nil when the cell is empty or
// outside the board.
func (b *Board) At(col, row int) *Piece {
	if !InBounds(col, row) {
		return nil
	}
	return b.cells[row+HiddenRows][col]
}

// Free reports whether (col, row) is on the board and empty.
func (b *Board) Free(col, row int) bool {
	return InBounds(col, row) && b.cells[row+HiddenRows][col] == nil
}

// Set writes p at its own coordinates.
func (b *Board) Set(p *Piece) {
	if !InBounds(p.Col, p.Row) {
		panic(invariant("Board.Set", "%s out of bounds", p))
	}
	b.cells[p.Row+HiddenRows][p.Col] = p
}

func (b *Board) Clear(col, row int) {
	if InBounds(col, row) {
		b.cells[row+HiddenRows][col] = nil
	}
}

// Each visits every occupied cell from the top hidden row down.
func (b *Board) Each(fn func(p *Piece)) {
	for r := range b.cells {
		for _, p := range b.cells[r] {
			if p != nil {
				fn(p)
			}
		}
	}
}

// Count returns the number of occupied cells.
func (b *Board) Count() int {
	n := 0
	b.Each(func(*Piece) { n++ })
	return n
}
