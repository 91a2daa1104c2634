package engine_test

import (
	"slices"
	"testing"
	"time"

	"github.com/wricardo/meanbean/game/audio"
	"github.com/wricardo/meanbean/game/display"
	"github.com/wricardo/meanbean/game/engine"
	"github.com/wricardo/meanbean/game/scheduler"
	"github.com/wricardo/meanbean/game/source"
)

type harness struct {
	eng     *engine.GameEngine
	sched   *scheduler.Scheduler
	clips   *audio.Recorder
	display *display.Registry
	nextID  int

	// onClip, when set, runs after each clip is recorded.
	onClip func(name string)
}

// newHarness builds an engine fed by a color script; the engine is not
// started.
func newHarness(t *testing.T, colors ...engine.Color) *harness {
	t.Helper()
	if len(colors) == 0 {
		colors = []engine.Color{engine.Yellow, engine.Violet}
	}
	h := &harness{
		sched:   scheduler.New(),
		clips:   &audio.Recorder{},
		display: display.NewRegistry(),
		nextID:  1000,
	}
	eng, err := engine.NewEngine(engine.DefaultConfig(), engine.Options{
		Source:  source.NewScript(colors...),
		Display: h.display,
		Audio:   h,
		Timer:   h.sched,
	})
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	h.eng = eng
	return h
}

func (h *harness) PlayClip(name string) {
	h.clips.PlayClip(name)
	if h.onClip != nil {
		h.onClip(name)
	}
}

// put places a settled piece directly on the board.
func (h *harness) put(col, row int, c engine.Color) *engine.Piece {
	h.nextID++
	p := engine.NewPiece(h.nextID, c)
	p.MoveTo(col, row)
	p.NormalizeDisplayPosition()
	h.eng.Board().Set(p)
	h.display.RegisterBean(p)
	return p
}

// drop pushes the falling pair down until it lands.
func (h *harness) drop() {
	for i := 0; i < 20 && h.eng.State() == engine.StateInteractive; i++ {
		h.eng.Move(engine.Down)
	}
}

// settle advances the clock frame by frame until resolution finishes.
func (h *harness) settle(t *testing.T) {
	t.Helper()
	for i := 0; i < 20*60; i++ {
		if h.eng.State() != engine.StateResolving {
			return
		}
		h.sched.Advance(engine.Frame)
	}
	t.Fatalf("resolution did not finish, phase %s", h.eng.Phase())
}

// step advances the clock by d in whole frames.
func (h *harness) step(d time.Duration) {
	for elapsed := time.Duration(0); elapsed < d; elapsed += engine.Frame {
		h.sched.Advance(engine.Frame)
	}
}

func (h *harness) colorAt(col, row int) engine.Color {
	p := h.eng.Board().At(col, row)
	if p == nil {
		return ""
	}
	return p.Color
}

func expectState(t *testing.T, eng *engine.GameEngine, want engine.State) {
	t.Helper()
	if got := eng.State(); got != want {
		t.Errorf("Expected state %s, got %s", want, got)
	}
}

func expectPos(t *testing.T, name string, p *engine.Piece, col, row int) {
	t.Helper()
	if got := p.Position(); got.Col != col || got.Row != row {
		t.Errorf("Expected %s at %d,%d, got %d,%d", name, col, row, got.Col, got.Row)
	}
}

// expectClips checks the exact clip sequence played so far.
func expectClips(t *testing.T, h *harness, want ...string) {
	t.Helper()
	if got := h.clips.Clips(); !slices.Equal(got, want) {
		t.Errorf("Expected clips %v, got %v", want, got)
	}
}
