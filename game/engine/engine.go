package engine

import (
	"fmt"
	"time"
)

// GameEngine plays one board. It owns the grid, the falling pair and
// every group; nothing else mutates them.
type GameEngine struct {
	config  *Config
	source  PieceSource
	display Display
	audio   ClipPlayer
	timer   Timer
	logger  Logger

	board   Board
	current *Pair
	next    *Pair

	state      State
	phase      Phase
	chainLevel int
	doomed     []*Group
	hovering   []*Piece

	lastGroupID int
	rounds      int
	score       Score
	gameOverFns []func()
}

// NewEngine creates a new game engine with the provided rule set
func NewEngine(config *Config, opts Options) (*GameEngine, error) {
	if config == nil {
		config = DefaultConfig()
	}
	config = config.WithDefaults()
	if err := ValidateConfig(config); err != nil {
		return nil, err
	}
	if opts.Source == nil {
		return nil, fmt.Errorf("engine: piece source is required")
	}
	if opts.Timer == nil {
		return nil, fmt.Errorf("engine: timer is required")
	}

	e := &GameEngine{
		config:  config,
		source:  opts.Source,
		display: opts.Display,
		audio:   opts.Audio,
		timer:   opts.Timer,
		logger:  opts.Logger,
	}
	if e.display == nil {
		e.display = nopDisplay{}
	}
	if e.audio == nil {
		e.audio = nopAudio{}
	}
	if e.logger == nil {
		e.logger = discardLogger
	}
	return e, nil
}

// Start moves an uninitialized engine to interactive and drops the first
// pair.
func (e *GameEngine) Start() bool {
	if e.state != StateUninitialized {
		return false
	}
	e.state = StateInteractive
	e.SpawnNextPair()
	return true
}

// Tick applies one gravity step to the falling pair.
func (e *GameEngine) Tick(now time.Duration) {
	if e.state == StateInteractive {
		e.Move(Down)
	}
}

func (e *GameEngine) Pause() bool {
	if e.state != StateInteractive {
		return false
	}
	e.state = StatePaused
	return true
}

func (e *GameEngine) Resume() bool {
	if e.state != StatePaused {
		return false
	}
	e.state = StateInteractive
	return true
}

// OnGameOver registers fn to run once the engine reaches game over.
func (e *GameEngine) OnGameOver(fn func()) {
	e.gameOverFns = append(e.gameOverFns, fn)
}

// SpawnNextPair promotes the preview pair to the drop position, or ends
// the game when the drop area is blocked.
func (e *GameEngine) SpawnNextPair() {
	if e.state == StateGameOver {
		return
	}
	if e.board.At(DropColumn, DropRow) != nil {
		e.GameOver()
		return
	}
	for col := 0; col < GridWidth; col++ {
		if e.board.At(col, -HiddenRows) != nil {
			e.GameOver()
			return
		}
	}

	pair := e.nextPair()
	e.rounds++
	e.logger.Printf("=== new round: %s %s ===", pair.A, pair.B)

	pair.A.MoveTo(DropColumn, DropRow-1)
	pair.B.MoveTo(DropColumn, DropRow-2)
	pair.Orientation = Up
	pair.A.Visual = VisualLeading
	e.current = pair
	e.place(pair)
}

func (e *GameEngine) nextPair() *Pair {
	if e.next == nil {
		e.next = e.requestPreview()
	}
	pair := e.next
	e.next = e.requestPreview()
	return pair
}

func (e *GameEngine) requestPreview() *Pair {
	pair := e.source.RequestPair()
	if pair == nil || pair.A == nil || pair.B == nil {
		panic(invariant("SpawnNextPair", "piece source returned an incomplete pair"))
	}
	pair.A.SetDisplayPosition(8*GridPitch, 2.5*GridPitch)
	pair.B.SetDisplayPosition(8*GridPitch, 3.5*GridPitch)
	e.display.RegisterBean(pair.A)
	e.display.RegisterBean(pair.B)
	return pair
}

// GameOver removes every piece from the grid, hidden rows included, and
// makes every later command a no-op.
func (e *GameEngine) GameOver() {
	if e.state == StateGameOver {
		return
	}
	e.logger.Printf("======= Game Over =======")
	e.state = StateGameOver
	e.phase = PhaseDone
	e.doomed = nil
	e.hovering = nil
	e.board.Each(e.removeBean)
	for _, fn := range e.gameOverFns {
		fn()
	}
}

func (e *GameEngine) removeBean(p *Piece) {
	if p.Removed {
		panic(invariant("removeBean", "%s already removed", p))
	}
	if e.board.At(p.Col, p.Row) == p {
		e.board.Clear(p.Col, p.Row)
	}
	if g := p.group; g != nil {
		g.RemoveBean(p)
	}
	p.Removed = true
	e.display.UnregisterBean(p)
}

func (e *GameEngine) State() State { return e.state }
func (e *GameEngine) Phase() Phase { return e.phase }
func (e *GameEngine) ChainLevel() int { return e.chainLevel }
func (e *GameEngine) Score() Score { return e.score }
func (e *GameEngine) Config() *Config { return e.config }
func (e *GameEngine) Rounds() int { return e.rounds }
func (e *GameEngine) CurrentPair() *Pair { return e.current }
func (e *GameEngine) NextPair() *Pair { return e.next }
func (e *GameEngine) Doomed() []*Group { return e.doomed }
func (e *GameEngine) HoveringBeans() []*Piece { return e.hovering }
