package engine

import (
	"io"
	"log"
	"time"
)

// PieceSource hands out new pairs. Implementations assign piece ids.
type PieceSource interface {
	RequestPair() *Pair
}

// Display is notified whenever a piece becomes visible or is removed.
type Display interface {
	RegisterBean(p *Piece)
	UnregisterBean(p *Piece)
}

// ClipPlayer plays named sound clips ("land", "rotate", "chain0", ...).
type ClipPlayer interface {
	PlayClip(name string)
}

// Timer runs fn once after delay, on the same goroutine that drives the
// engine.
type Timer interface {
	After(delay time.Duration, fn func())
}

// Logger receives the round, group and chain trace.
type Logger interface {
	Printf(format string, args ...any)
}

// Options carries the collaborators of a GameEngine. Source and Timer
// are required.
type Options struct {
	Source  PieceSource
	Display Display
	Audio   ClipPlayer
	Timer   Timer
	Logger  Logger
}

type nopDisplay struct{}

func (nopDisplay) RegisterBean(*Piece)   {}
func (nopDisplay) UnregisterBean(*Piece) {}

type nopAudio struct{}

func (nopAudio) PlayClip(string) {}

var discardLogger = log.New(io.Discard, "", 0)
