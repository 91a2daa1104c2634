package engine

import (
	"fmt"
	"strings"
	"time"
)

const (
	GridWidth  = 6
	GridHeight = 12
	// HiddenRows sit above row 0 and hold the pair while it spawns.
	HiddenRows = 2
	GridPitch  = 24

	DropColumn = (GridWidth - 1) / 2
	DropRow    = 0

	// GroupThreshold is the member count at which a group is cleared.
	GroupThreshold = 4

	// Frame is one animation frame at 60 Hz.
	Frame = time.Second / 60

	MinDifficulty        = 1
	MaxDifficulty        = 9
	MinGravityIntervalMS = 50
	MaxGravityIntervalMS = 10000
)

// Direction is both a move command and a pair orientation
// (the direction of piece B as seen from piece A).
type Direction int

const (
	Up Direction = iota
	Right
	Down
	Left
)

var directionNames = [...]string{Up: "up", Right: "right", Down: "down", Left: "left"}

func (d Direction) String() string {
	if d < Up || d > Left {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return directionNames[d]
}

// Vertical reports whether the direction is up or down.
func (d Direction) Vertical() bool {
	return d == Up || d == Down
}

func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDirection converts "up", "down", "left" or "right" (any case).
func ParseDirection(s string) (Direction, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for d, n := range directionNames {
		if n == name {
			return Direction(d), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// Spin is a rotation command.
type Spin int

const (
	Clockwise Spin = iota
	CounterClockwise
)

func (s Spin) String() string {
	switch s {
	case Clockwise:
		return "cw"
	case CounterClockwise:
		return "ccw"
	}
	return fmt.Sprintf("Spin(%d)", int(s))
}

func (s Spin) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Spin) UnmarshalText(text []byte) error {
	parsed, err := ParseSpin(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSpin accepts "cw"/"clockwise" and "ccw"/"counterclockwise".
func ParseSpin(s string) (Spin, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cw", "clockwise":
		return Clockwise, nil
	case "ccw", "counterclockwise", "counter-clockwise":
		return CounterClockwise, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidSpin, s)
}

// State is the engine lifecycle state.
type State int

const (
	StateUninitialized State = iota
	StateInteractive
	StateResolving
	StatePaused
	StateGameOver
)

var stateNames = [...]string{
	StateUninitialized: "uninitialized",
	StateInteractive:   "interactive",
	StateResolving:     "resolving",
	StatePaused:        "paused",
	StateGameOver:      "game_over",
}

func (s State) String() string {
	if s < StateUninitialized || s > StateGameOver {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	for i, n := range stateNames {
		if n == string(text) {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", text)
}

// Phase is the step of the chain-resolution state machine.
type Phase int

const (
	PhaseDone Phase = iota
	PhaseScanning
	PhaseFlashing
	PhasePopping
	PhaseFalling
)

var phaseNames = [...]string{
	PhaseDone:     "done",
	PhaseScanning: "scanning",
	PhaseFlashing: "flashing",
	PhasePopping:  "popping",
	PhaseFalling:  "falling",
}

func (p Phase) String() string {
	if p < PhaseDone || p > PhaseFalling {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	return phaseNames[p]
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	for i, n := range phaseNames {
		if n == string(text) {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

// Color is a bean color from the fixed palette.
type Color string

const (
	Red    Color = "red"
	Yellow Color = "yellow"
	Green  Color = "green"
	Violet Color = "violet"
	Blue   Color = "blue"
	Dark   Color = "dark"
)

// Palette is ordered; the piece source draws from a prefix of it.
var Palette = [...]Color{Red, Yellow, Green, Violet, Blue, Dark}

// Index returns the palette position of c, or -1.
func (c Color) Index() int {
	for i, p := range Palette {
		if p == c {
			return i
		}
	}
	return -1
}

// Letter is the upper-case initial used in text dumps.
func (c Color) Letter() string {
	if c == "" {
		return "."
	}
	return strings.ToUpper(string(c[:1]))
}

// Bond is a bitmask of same-group neighbours. The bit values follow the
// sprite sheet layout, so OR-ing bonds yields the sprite column.
type Bond uint8

const (
	BondNone  Bond = 0
	BondDown  Bond = 1
	BondUp    Bond = 2
	BondRight Bond = 4
	BondLeft  Bond = 8
)

func (b Bond) Has(other Bond) bool {
	return b&other == other
}

// VisualState tells the presentation surface how to draw a piece.
type VisualState int

const (
	VisualStatic VisualState = iota
	VisualLeading
	VisualFlashing
	VisualPopping
	VisualInvisible
)

var visualNames = [...]string{
	VisualStatic:    "static",
	VisualLeading:   "leading",
	VisualFlashing:  "flashing",
	VisualPopping:   "popping",
	VisualInvisible: "invisible",
}

func (v VisualState) String() string {
	if v < VisualStatic || v > VisualInvisible {
		return fmt.Sprintf("VisualState(%d)", int(v))
	}
	return visualNames[v]
}

func (v VisualState) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *VisualState) UnmarshalText(text []byte) error {
	for i, n := range visualNames {
		if n == string(text) {
			*v = VisualState(i)
			return nil
		}
	}
	return fmt.Errorf("unknown visual state %q", text)
}

// Slot identifies which board a piece is drawn on. Only SlotPlayer is
// ever simulated.
type Slot int

const (
	SlotPlayer Slot = iota
	SlotOpponent
)

// SlotOffset returns the top-left display offset of a board slot.
func SlotOffset(s Slot) (x, y float64) {
	switch s {
	case SlotPlayer:
		return GridPitch * 1, GridPitch * 1
	case SlotOpponent:
		return GridPitch * 13, GridPitch * 1
	}
	panic(invariant("SlotOffset", "unknown slot %d", int(s)))
}

// Position is a logical grid coordinate.
type Position struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// Cell is one grid cell as exposed in snapshots.
type Cell struct {
	ID     int         `json:"id,omitempty"`
	Color  Color       `json:"color,omitempty"`
	Bonds  Bond        `json:"bonds,omitempty"`
	Visual VisualState `json:"visual,omitempty"`
}

// PairView describes a pair in snapshots.
type PairView struct {
	A           Position  `json:"a"`
	B           Position  `json:"b"`
	ColorA      Color     `json:"color_a"`
	ColorB      Color     `json:"color_b"`
	Orientation Direction `json:"orientation"`
}

// Snapshot is a serialisable copy of the board.
type Snapshot struct {
	ConfigName string    `json:"config_name"`
	State      State     `json:"state"`
	Phase      Phase     `json:"phase"`
	ChainLevel int       `json:"chain_level"`
	Rounds     int       `json:"rounds"`
	Grid       [][]Cell  `json:"grid"` // Grid[row+HiddenRows][col]
	Rows       []string  `json:"rows"`
	Current    *PairView `json:"current,omitempty"`
	Next       *PairView `json:"next,omitempty"`
	Score      Score     `json:"score"`
}

// CellAt reads a cell using board coordinates (row may be negative).
func (s *Snapshot) CellAt(col, row int) Cell {
	r := row + HiddenRows
	if r < 0 || r >= len(s.Grid) || col < 0 || col >= len(s.Grid[r]) {
		return Cell{}
	}
	return s.Grid[r][col]
}
