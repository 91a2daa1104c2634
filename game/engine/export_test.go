package engine

// Board exposes the grid to tests that need to seed or inspect cells.
func (e *GameEngine) Board() *Board { return &e.board }
