// Package arena wires one engine to its scheduler and collaborators.
//
// An Arena owns the logical clock: gravity is an interval task calling
// Engine.Tick, and every chain animation step is a timeout on the same
// scheduler. Advance moves the clock; nothing else does.
package arena

import (
	"time"

	"github.com/wricardo/meanbean/game/display"
	"github.com/wricardo/meanbean/game/engine"
	"github.com/wricardo/meanbean/game/scheduler"
	"github.com/wricardo/meanbean/game/source"
)

// Options selects the collaborators. Zero values pick a seeded or random
// server, a silent player and no logging.
type Options struct {
	Source engine.PieceSource
	Audio  engine.ClipPlayer
	Logger engine.Logger
}

// Arena is one playable board. It is not safe for concurrent use.
type Arena struct {
	Engine    *engine.GameEngine
	Scheduler *scheduler.Scheduler
	Display   *display.Registry

	gravity *scheduler.Task
	frames  int64
}

// New builds an arena for cfg. The engine is not started.
func New(cfg *engine.Config, opts Options) (*Arena, error) {
	if cfg == nil {
		cfg = engine.DefaultConfig()
	}
	src := opts.Source
	if src == nil {
		if cfg.Seed != 0 {
			src = source.NewSeededServer(cfg.Difficulty, cfg.Seed)
		} else {
			src = source.NewServer(cfg.Difficulty, nil)
		}
	}

	a := &Arena{
		Scheduler: scheduler.New(),
		Display:   display.NewRegistry(),
	}
	eng, err := engine.NewEngine(cfg, engine.Options{
		Source:  src,
		Display: a.Display,
		Audio:   opts.Audio,
		Timer:   a.Scheduler,
		Logger:  opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	a.Engine = eng
	eng.OnGameOver(a.Display.Stop)
	a.Scheduler.EachFrame(func(time.Duration) { a.frames++ })
	return a, nil
}

// Start starts the engine and the gravity interval.
func (a *Arena) Start() bool {
	if !a.Engine.Start() {
		return false
	}
	a.gravity = a.Scheduler.Every(a.Engine.Config().GravityInterval(), a.Engine.Tick)
	return true
}

// Advance moves the clock forward by d.
func (a *Arena) Advance(d time.Duration) {
	a.Scheduler.Advance(d)
}

// AdvanceFrames advances the clock n frames, one tick per frame.
func (a *Arena) AdvanceFrames(n int) {
	for range n {
		a.Scheduler.Advance(engine.Frame)
	}
}

// Settle advances frame by frame until the engine accepts input again or
// the game ends, giving up after limit.
func (a *Arena) Settle(limit time.Duration) bool {
	for elapsed := time.Duration(0); elapsed < limit; elapsed += engine.Frame {
		if a.Engine.State() != engine.StateResolving {
			return true
		}
		a.Scheduler.Advance(engine.Frame)
	}
	return a.Engine.State() != engine.StateResolving
}

// HardDrop moves the falling pair down until it lands.
func (a *Arena) HardDrop() {
	for i := 0; i <= engine.GridHeight+engine.HiddenRows && a.Engine.State() == engine.StateInteractive; i++ {
		a.Engine.Move(engine.Down)
	}
}

// Frames returns the number of ticks seen so far.
func (a *Arena) Frames() int64 { return a.frames }

// Now returns the arena clock.
func (a *Arena) Now() time.Duration { return a.Scheduler.Now() }

// Snapshot returns the board plus the arena clock.
func (a *Arena) Snapshot() Snapshot {
	return Snapshot{
		Snapshot: a.Engine.Snapshot(),
		Clock:    a.Scheduler.Now(),
		Sprites:  a.Display.Frame(),
	}
}

// Snapshot is an engine snapshot plus what the arena adds.
type Snapshot struct {
	engine.Snapshot
	Clock   time.Duration    `json:"clock_ns"`
	Sprites []display.Sprite `json:"sprites,omitempty"`
}
