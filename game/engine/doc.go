// Package engine provides the core rules of the Mean Bean puzzle.
//
// The engine package implements the board simulation including:
//   - The 6x12 grid with two hidden rows used for spawning
//   - Pair movement, table-driven rotation and floor/wall kicks
//   - Connected same-color groups and their bond bitmasks
//   - Gravity for pieces left hovering after a clear
//   - The chain-resolution state machine and its timing
//
// Core Types:
//
// GameEngine owns the grid, the falling pair and every Group. Piece and Pair
// are the units moved around the grid; Group is a connected same-color
// cluster. Config holds the rule set (difficulty, gravity speed and the
// animation timings) loaded from JSON files.
//
// Collaborators:
//
// The engine never renders, plays sounds or generates colors itself. It
// talks to a PieceSource, a Display, a ClipPlayer and a Timer through the
// interfaces in collaborators.go; the game/source, game/display,
// game/audio and game/scheduler packages provide implementations.
//
// Usage:
//
//	sched := scheduler.New()
//	eng, err := engine.NewEngine(engine.DefaultConfig(), engine.Options{
//		Source: source.NewServer(2, nil),
//		Timer:  sched,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	eng.Start()
//	eng.Move(engine.Left)
//	eng.Rotate(engine.Clockwise)
//	sched.Tick(time.Second)
//
// Invariant violations (a piece in two groups, removing a piece twice,
// reusing a retired group) are programming errors and panic with an
// *InvariantError. Game over is an ordinary state transition.
package engine
