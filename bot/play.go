package bot

import (
	"time"

	"github.com/wricardo/meanbean/game/arena"
	"github.com/wricardo/meanbean/game/engine"
)

// settleLimit bounds the wait for one chain to resolve.
const settleLimit = 30 * time.Second

// Result summarises one bot game.
type Result struct {
	Rounds   int           `json:"rounds"`
	Score    engine.Score  `json:"score"`
	GameOver bool          `json:"game_over"`
	Missed   int           `json:"missed"`
	Clock    time.Duration `json:"clock_ns"`
}

// Play starts a (if needed) and places pairs until the game ends or
// maxRounds pairs have spawned. maxRounds <= 0 plays to game over.
func (g *Greedy) Play(a *arena.Arena, maxRounds int) Result {
	if a.Engine.State() == engine.StateUninitialized {
		a.Start()
	}
	var res Result
	for a.Engine.State() != engine.StateGameOver {
		snap := a.Engine.Snapshot()
		if maxRounds > 0 && snap.Rounds > maxRounds {
			break
		}
		if a.Engine.State() == engine.StateInteractive {
			p, ok := g.Choose(snap)
			if !ok {
				break
			}
			if !Execute(a.Engine, p) {
				res.Missed++
			}
		}
		if !a.Settle(settleLimit) {
			break
		}
		if a.Engine.State() == engine.StatePaused {
			break
		}
	}
	snap := a.Engine.Snapshot()
	res.Rounds = snap.Rounds
	res.Score = snap.Score
	res.GameOver = snap.State == engine.StateGameOver
	res.Clock = a.Now()
	return res
}
