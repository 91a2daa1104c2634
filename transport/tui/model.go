// Package tui plays one arena in the terminal.
package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wricardo/meanbean/game/arena"
	"github.com/wricardo/meanbean/game/engine"
)

type tickMsg struct{}

// Options configures a terminal game.
type Options struct {
	Config *engine.Config
	// Source overrides the random piece server.
	Source engine.PieceSource
	// Audio is shared across restarts. Nil plays nothing.
	Audio  engine.ClipPlayer
	Logger engine.Logger
	// Step is the arena time added per tick. Defaults to one frame.
	Step time.Duration
}

// Model is the bubbletea model for a single local game.
type Model struct {
	opts     Options
	arena    *arena.Arena
	width    int
	height   int
	lastKey  string
	quitting bool
}

// NewModel builds a started game.
func NewModel(opts Options) (Model, error) {
	if opts.Config == nil {
		opts.Config = engine.DefaultConfig()
	}
	if opts.Step <= 0 {
		opts.Step = engine.Frame
	}
	m := Model{opts: opts}
	if err := m.restart(); err != nil {
		return Model{}, err
	}
	return m, nil
}

func (m *Model) restart() error {
	a, err := arena.New(m.opts.Config, arena.Options{Source: m.opts.Source, Audio: m.opts.Audio, Logger: m.opts.Logger})
	if err != nil {
		return fmt.Errorf("new arena: %w", err)
	}
	a.Start()
	m.arena = a
	m.lastKey = ""
	return nil
}

// Arena exposes the running arena.
func (m Model) Arena() *arena.Arena { return m.arena }

func (m Model) Init() tea.Cmd {
	return tickCmd(m.opts.Step)
}

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg { return tickMsg{} })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if m.quitting {
			return m, nil
		}
		m.arena.Advance(m.opts.Step)
		return m, tickCmd(m.opts.Step)
	case tea.KeyMsg:
		return m.handleKey(msg.String())
	}
	return m, nil
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	eng := m.arena.Engine
	m.lastKey = key
	switch key {
	case "esc", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "q", "a":
		eng.Move(engine.Left)
	case "d", "i":
		eng.Move(engine.Right)
	case "s", "u":
		eng.Move(engine.Down)
	case "left":
		eng.Rotate(engine.CounterClockwise)
	case "right":
		eng.Rotate(engine.Clockwise)
	case " ":
		m.arena.HardDrop()
	case "p":
		if !eng.Pause() {
			eng.Resume()
		}
	case "n", "enter":
		if eng.State() == engine.StateGameOver {
			if err := m.restart(); err != nil {
				m.lastKey = err.Error()
			}
		}
	}
	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return render(m.arena.Snapshot(), m.lastKey)
}

// Run plays in the terminal until the player quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	m, err := NewModel(opts)
	if err != nil {
		return err
	}
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("terminal program: %w", err)
	}
	return nil
}
