package engine

import "fmt"

// Piece is a single bean. Its logical coordinates are authoritative only
// while the engine's grid holds it; Col is -1 until it is placed.
type Piece struct {
	ID       int         `json:"id"`
	Color    Color       `json:"color"`
	Col      int         `json:"col"`
	Row      int         `json:"row"`
	DisplayX float64     `json:"display_x"`
	DisplayY float64     `json:"display_y"`
	Bonds    Bond        `json:"bonds"`
	Visual   VisualState `json:"visual"`
	Removed  bool        `json:"removed"`
	Slot     Slot        `json:"slot"`

	group *Group
}

// NewPiece creates an unplaced piece on the player board.
func NewPiece(id int, color Color) *Piece {
	return &Piece{
		ID:    id,
		Color: color,
		Col:   -1,
		Row:   -1,
		Slot:  SlotPlayer,
	}
}

func (p *Piece) MoveTo(col, row int) {
	p.Col = col
	p.Row = row
}

func (p *Piece) Position() Position {
	return Position{Col: p.Col, Row: p.Row}
}

// Group returns the owning group, or nil.
func (p *Piece) Group() *Group {
	return p.group
}

func (p *Piece) SetDisplayPosition(x, y float64) {
	p.DisplayX = x
	p.DisplayY = y
}

// NormalizeDisplayPosition derives the display position from the
// logical coordinates and the board slot.
func (p *Piece) NormalizeDisplayPosition() {
	ox, oy := SlotOffset(p.Slot)
	p.DisplayX = ox + float64(p.Col*GridPitch)
	p.DisplayY = oy + float64(p.Row*GridPitch)
}

func (p *Piece) String() string {
	s := fmt.Sprintf("Bean{#%d %s", p.ID, p.Color)
	if p.Col >= 0 {
		s += fmt.Sprintf(" %d,%d", p.Col, p.Row)
	}
	if p.Removed {
		return s + "*}"
	}
	return s + "}"
}

// Pair is the falling (or previewed) couple of pieces.
type Pair struct {
	A           *Piece
	B           *Piece
	Orientation Direction
}

// NewPair creates a pair with B above A.
func NewPair(a, b *Piece) *Pair {
	return &Pair{A: a, B: b, Orientation: Up}
}

func (p *Pair) view() *PairView {
	if p == nil {
		return nil
	}
	return &PairView{
		A:           p.A.Position(),
		B:           p.B.Position(),
		ColorA:      p.A.Color,
		ColorB:      p.B.Color,
		Orientation: p.Orientation,
	}
}
