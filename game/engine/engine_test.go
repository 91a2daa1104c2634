package engine_test

import (
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/wricardo/meanbean/game/engine"
	"github.com/wricardo/meanbean/game/scheduler"
	"github.com/wricardo/meanbean/game/source"
)

func TestNewEngine(t *testing.T) {
	t.Run("requires a source and a timer", func(t *testing.T) {
		if _, err := engine.NewEngine(nil, engine.Options{Timer: scheduler.New()}); err == nil {
			t.Error("Expected error without a source")
		}
		if _, err := engine.NewEngine(nil, engine.Options{Source: source.NewServer(1, nil)}); err == nil {
			t.Error("Expected error without a timer")
		}
	})

	t.Run("rejects an invalid config", func(t *testing.T) {
		cfg := engine.DefaultConfig()
		cfg.Difficulty = 0
		_, err := engine.NewEngine(cfg, engine.Options{Source: source.NewServer(1, nil), Timer: scheduler.New()})
		if err == nil || !strings.Contains(err.Error(), "difficulty") {
			t.Errorf("Expected difficulty error, got %v", err)
		}
	})

	t.Run("nil config uses the classic rules", func(t *testing.T) {
		eng, err := engine.NewEngine(nil, engine.Options{Source: source.NewServer(1, nil), Timer: scheduler.New()})
		if err != nil {
			t.Fatalf("NewEngine failed: %v", err)
		}
		if eng.Config().Name != "classic" {
			t.Errorf("Expected classic rules, got %s", eng.Config().Name)
		}
		expectState(t, eng, engine.StateUninitialized)
	})
}

func TestStart(t *testing.T) {
	h := newHarness(t, engine.Red, engine.Green, engine.Blue, engine.Yellow)
	if !h.eng.Start() {
		t.Fatal("Expected first Start to succeed")
	}
	if h.eng.Start() {
		t.Error("Expected second Start to be refused")
	}
	expectState(t, h.eng, engine.StateInteractive)

	pair := h.eng.CurrentPair()
	if pair == nil {
		t.Fatal("Expected a falling pair")
	}
	expectPos(t, "A", pair.A, 2, -1)
	expectPos(t, "B", pair.B, 2, -2)
	if pair.Orientation != engine.Up {
		t.Errorf("Expected up orientation, got %s", pair.Orientation)
	}
	if pair.A.Visual != engine.VisualLeading {
		t.Errorf("Expected leading pivot, got %s", pair.A.Visual)
	}
	if pair.A.Color != engine.Red || pair.B.Color != engine.Green {
		t.Errorf("Expected red/green pair, got %s/%s", pair.A.Color, pair.B.Color)
	}
	if h.eng.Board().At(2, -1) != pair.A {
		t.Error("Expected the pair written to the grid")
	}

	next := h.eng.NextPair()
	if next == nil {
		t.Fatal("Expected a preview pair")
	}
	if next.A.Color != engine.Blue {
		t.Errorf("Expected blue preview, got %s", next.A.Color)
	}
	if next.A.DisplayX != float64(8*engine.GridPitch) || next.A.DisplayY != 2.5*engine.GridPitch || next.B.DisplayY != 3.5*engine.GridPitch {
		t.Errorf("Unexpected preview position %v,%v / %v", next.A.DisplayX, next.A.DisplayY, next.B.DisplayY)
	}
	if h.display.Len() != 4 {
		t.Errorf("Expected 4 registered beans, got %d", h.display.Len())
	}
	if h.eng.Rounds() != 1 {
		t.Errorf("Expected round 1, got %d", h.eng.Rounds())
	}
}

func TestCommandsRequireInteractive(t *testing.T) {
	h := newHarness(t)
	if h.eng.Move(engine.Left) || h.eng.Rotate(engine.Clockwise) {
		t.Error("Expected commands refused before Start")
	}
	h.eng.Tick(time.Second)
	if h.eng.CurrentPair() != nil {
		t.Error("Expected no pair before Start")
	}

	h.eng.Start()
	if !h.eng.Pause() {
		t.Fatal("Expected Pause to succeed")
	}
	if h.eng.Move(engine.Left) {
		t.Error("Expected Move refused while paused")
	}
	h.eng.Tick(time.Second)
	if row := h.eng.CurrentPair().A.Row; row != -1 {
		t.Errorf("Expected gravity ignored while paused, pivot at row %d", row)
	}
	if h.eng.Pause() {
		t.Error("Expected second Pause to be refused")
	}

	if !h.eng.Resume() {
		t.Fatal("Expected Resume to succeed")
	}
	if h.eng.Resume() {
		t.Error("Expected second Resume to be refused")
	}
	h.eng.Tick(time.Second)
	if row := h.eng.CurrentPair().A.Row; row != 0 {
		t.Errorf("Expected gravity after Resume, pivot at row %d", row)
	}
}

func TestMove(t *testing.T) {
	t.Run("left and right stop at the walls", func(t *testing.T) {
		h := newHarness(t)
		h.eng.Start()
		if !h.eng.Move(engine.Left) || !h.eng.Move(engine.Left) {
			t.Fatal("Expected two moves left")
		}
		if h.eng.Move(engine.Left) {
			t.Error("Expected the left wall to block")
		}
		if col := h.eng.CurrentPair().A.Col; col != 0 {
			t.Errorf("Expected column 0, got %d", col)
		}

		for i := range 5 {
			if !h.eng.Move(engine.Right) {
				t.Fatalf("Move right %d refused", i)
			}
		}
		if h.eng.Move(engine.Right) {
			t.Error("Expected the right wall to block")
		}
		pair := h.eng.CurrentPair()
		if pair.A.Col != 5 || pair.B.Col != 5 {
			t.Errorf("Expected column 5, got %d/%d", pair.A.Col, pair.B.Col)
		}
		if h.eng.Board().At(5, -2) != pair.B || h.eng.Board().At(2, -1) != nil {
			t.Error("Expected the grid to follow the pair")
		}
	})

	t.Run("up is never a move", func(t *testing.T) {
		h := newHarness(t)
		h.eng.Start()
		h.eng.Move(engine.Down)
		if h.eng.Move(engine.Up) {
			t.Error("Expected Up refused")
		}
		if row := h.eng.CurrentPair().A.Row; row != 0 {
			t.Errorf("Expected row 0, got %d", row)
		}
	})

	t.Run("horizontal pair checks the leading half", func(t *testing.T) {
		h := newHarness(t)
		h.eng.Start()
		if !h.eng.Rotate(engine.Clockwise) {
			t.Fatal("Rotate refused")
		}
		h.eng.Move(engine.Down)
		h.eng.Move(engine.Down)
		// A at (2,1), B at (3,1)
		h.put(4, 1, engine.Red)
		if h.eng.Move(engine.Right) {
			t.Error("Expected B blocked on the right")
		}

		h.put(1, 1, engine.Red)
		if h.eng.Move(engine.Left) {
			t.Error("Expected A blocked on the left")
		}
		if col := h.eng.CurrentPair().A.Col; col != 2 {
			t.Errorf("Expected column 2, got %d", col)
		}
	})

	t.Run("vertical pair checks both halves", func(t *testing.T) {
		h := newHarness(t)
		h.eng.Start()
		h.eng.Move(engine.Down)
		// A at (2,0), B at (2,-1)
		h.put(1, -1, engine.Red)
		if h.eng.Move(engine.Left) {
			t.Error("Expected B blocked on the left")
		}
		if !h.eng.Move(engine.Right) {
			t.Error("Expected the right side free")
		}
	})

	t.Run("down stops on the floor and lands", func(t *testing.T) {
		h := newHarness(t)
		h.eng.Start()
		for i := range 12 {
			if !h.eng.Move(engine.Down) {
				t.Fatalf("Move down %d refused", i)
			}
		}
		pair := h.eng.CurrentPair()
		if pair.A.Row != 11 || pair.B.Row != 10 {
			t.Errorf("Expected rows 11/10, got %d/%d", pair.A.Row, pair.B.Row)
		}

		if h.eng.Move(engine.Down) {
			t.Error("Expected the floor to block")
		}
		expectState(t, h.eng, engine.StateResolving)
		expectClips(t, h, "land")
	})
}

func TestRotate(t *testing.T) {
	t.Run("direct rotation follows the table", func(t *testing.T) {
		h := newHarness(t)
		h.eng.Start()
		for range 3 {
			h.eng.Move(engine.Down)
		}
		pair := h.eng.CurrentPair()
		// A at (2,2)
		steps := []struct {
			spin engine.Spin
			b    engine.Position
			ori  engine.Direction
		}{
			{engine.Clockwise, engine.Position{Col: 3, Row: 2}, engine.Right},
			{engine.Clockwise, engine.Position{Col: 2, Row: 3}, engine.Down},
			{engine.Clockwise, engine.Position{Col: 1, Row: 2}, engine.Left},
			{engine.Clockwise, engine.Position{Col: 2, Row: 1}, engine.Up},
			{engine.CounterClockwise, engine.Position{Col: 1, Row: 2}, engine.Left},
			{engine.CounterClockwise, engine.Position{Col: 2, Row: 3}, engine.Down},
			{engine.CounterClockwise, engine.Position{Col: 3, Row: 2}, engine.Right},
			{engine.CounterClockwise, engine.Position{Col: 2, Row: 1}, engine.Up},
		}
		for i, step := range steps {
			if !h.eng.Rotate(step.spin) {
				t.Fatalf("step %d: rotation refused", i)
			}
			expectPos(t, "A", pair.A, 2, 2)
			expectPos(t, "B", pair.B, step.b.Col, step.b.Row)
			if pair.Orientation != step.ori {
				t.Errorf("step %d: expected %s, got %s", i, step.ori, pair.Orientation)
			}
			if h.eng.Board().At(step.b.Col, step.b.Row) != pair.B {
				t.Errorf("step %d: grid does not hold B at %v", i, step.b)
			}
		}
		if n := len(h.clips.Clips()); n != 8 {
			t.Errorf("Expected 8 rotate clips, got %d", n)
		}
	})

	t.Run("wall kick shifts the pivot away from the wall", func(t *testing.T) {
		h := newHarness(t)
		h.eng.Start()
		for range 3 {
			h.eng.Move(engine.Right)
		}
		if !h.eng.Rotate(engine.Clockwise) {
			t.Fatal("Rotate refused")
		}
		pair := h.eng.CurrentPair()
		expectPos(t, "A", pair.A, 4, -1)
		expectPos(t, "B", pair.B, 5, -1)
		if pair.Orientation != engine.Right {
			t.Errorf("Expected right, got %s", pair.Orientation)
		}
		if h.eng.Board().At(5, -2) != nil {
			t.Error("Expected the old B cell cleared")
		}
		expectClips(t, h, "rotate")
	})

	t.Run("wall kick against a piece", func(t *testing.T) {
		h := newHarness(t)
		h.eng.Start()
		h.put(3, -1, engine.Red)
		if !h.eng.Rotate(engine.Clockwise) {
			t.Fatal("Rotate refused")
		}
		pair := h.eng.CurrentPair()
		expectPos(t, "A", pair.A, 1, -1)
		expectPos(t, "B", pair.B, 2, -1)
	})

	t.Run("floor kick lifts the pivot", func(t *testing.T) {
		h := newHarness(t)
		h.eng.Start()
		for range 12 {
			h.eng.Move(engine.Down)
		}
		if !h.eng.Rotate(engine.Clockwise) || !h.eng.Rotate(engine.Clockwise) {
			t.Fatal("Rotate refused")
		}
		pair := h.eng.CurrentPair()
		expectPos(t, "A", pair.A, 2, 10)
		expectPos(t, "B", pair.B, 2, 11)
		if pair.Orientation != engine.Down {
			t.Errorf("Expected down, got %s", pair.Orientation)
		}
	})

	t.Run("blocked kick is a no-op", func(t *testing.T) {
		h := newHarness(t)
		h.eng.Start()
		h.put(3, -1, engine.Red)
		h.put(1, -1, engine.Red)
		if h.eng.Rotate(engine.Clockwise) {
			t.Error("Expected rotation refused")
		}
		pair := h.eng.CurrentPair()
		if pair.Orientation != engine.Up {
			t.Errorf("Expected up, got %s", pair.Orientation)
		}
		if h.eng.Board().At(2, -1) != pair.A || h.eng.Board().At(2, -2) != pair.B {
			t.Error("Expected the pair unchanged on the grid")
		}
		expectClips(t, h)
	})

	t.Run("kicks never leave the hidden rows", func(t *testing.T) {
		h := newHarness(t)
		h.eng.Start()
		h.put(2, 0, engine.Red)
		if !h.eng.Rotate(engine.Clockwise) {
			t.Fatal("Rotate refused")
		}
		// floor kick from the top of the board
		if !h.eng.Rotate(engine.Clockwise) {
			t.Fatal("Floor kick refused")
		}
		pair := h.eng.CurrentPair()
		expectPos(t, "A", pair.A, 2, -2)
		if pair.Orientation != engine.Down {
			t.Errorf("Expected down, got %s", pair.Orientation)
		}

		if !h.eng.Rotate(engine.CounterClockwise) {
			t.Fatal("Rotate back refused")
		}
		expectPos(t, "B", pair.B, 3, -2)
		h.put(2, -1, engine.Red)
		// the kick would need row -3
		if h.eng.Rotate(engine.Clockwise) {
			t.Error("Expected a kick above the hidden rows refused")
		}
		if pair.Orientation != engine.Right {
			t.Errorf("Expected right, got %s", pair.Orientation)
		}
		expectPos(t, "A", pair.A, 2, -2)
	})
}

func TestLanding(t *testing.T) {
	t.Run("split pair halves fall separately", func(t *testing.T) {
		h := newHarness(t, engine.Red, engine.Green, engine.Blue, engine.Yellow)
		h.eng.Start()
		for row := 11; row >= 6; row-- {
			h.put(3, row, []engine.Color{engine.Violet, engine.Blue}[row%2])
		}
		if !h.eng.Rotate(engine.Clockwise) {
			t.Fatal("Rotate refused")
		}
		// A (2,-1), B (3,-1); B is blocked at row 5
		h.drop()
		expectState(t, h.eng, engine.StateResolving)
		if c := h.colorAt(2, 11); c != engine.Red {
			t.Errorf("Expected red on the floor, got %q", c)
		}
		if c := h.colorAt(3, 5); c != engine.Green {
			t.Errorf("Expected green on the stack, got %q", c)
		}
	})

	t.Run("pair resolves then the next pair spawns", func(t *testing.T) {
		h := newHarness(t, engine.Red, engine.Green, engine.Blue, engine.Yellow)
		h.eng.Start()
		h.drop()
		expectState(t, h.eng, engine.StateResolving)

		h.step(engine.Frames(19))
		expectState(t, h.eng, engine.StateResolving)
		h.step(engine.Frames(2))
		expectState(t, h.eng, engine.StateInteractive)
		if h.eng.Phase() != engine.PhaseDone {
			t.Errorf("Expected done phase, got %s", h.eng.Phase())
		}
		if h.eng.Rounds() != 2 {
			t.Errorf("Expected round 2, got %d", h.eng.Rounds())
		}
		if v := h.eng.Board().At(2, 11).Visual; v != engine.VisualStatic {
			t.Errorf("Expected landed pivot static, got %s", v)
		}
		if c := h.eng.CurrentPair().A.Color; c != engine.Blue {
			t.Errorf("Expected blue pair next, got %s", c)
		}
	})

	t.Run("gravity tick lands the pair", func(t *testing.T) {
		h := newHarness(t)
		h.eng.Start()
		for i := range 13 {
			h.eng.Tick(time.Duration(i) * time.Second)
		}
		expectState(t, h.eng, engine.StateResolving)
	})
}

func TestSweep(t *testing.T) {
	t.Run("bonds follow group adjacency", func(t *testing.T) {
		h := newHarness(t)
		// . G G
		// . G R
		// R R R
		g1 := h.put(1, 9, engine.Green)
		g2 := h.put(2, 9, engine.Green)
		g3 := h.put(1, 10, engine.Green)
		r1 := h.put(2, 10, engine.Red)
		r2 := h.put(0, 11, engine.Red)
		r3 := h.put(1, 11, engine.Red)
		r4 := h.put(2, 11, engine.Red)

		h.eng.Resolve(0)

		bonds := []struct {
			p    *engine.Piece
			want engine.Bond
		}{
			{g1, engine.BondRight | engine.BondDown},
			{g2, engine.BondLeft},
			{g3, engine.BondUp},
			{r1, engine.BondDown},
			{r2, engine.BondRight},
			{r3, engine.BondLeft | engine.BondRight},
			{r4, engine.BondLeft | engine.BondUp},
		}
		for _, b := range bonds {
			if b.p.Bonds != b.want {
				t.Errorf("%s: expected bonds %v, got %v", b.p, b.want, b.p.Bonds)
			}
		}

		doomed := h.eng.Doomed()
		if len(doomed) != 1 || doomed[0].Color() != engine.Red {
			t.Fatalf("Expected only the red group doomed, got %v", doomed)
		}
		if g1.Group() != g3.Group() || g1.Group().Len() != 3 {
			t.Errorf("Expected one green group of 3, got %s", g1.Group())
		}
	})

	t.Run("sweep is idempotent", func(t *testing.T) {
		h := newHarness(t)
		a := h.put(0, 11, engine.Blue)
		b := h.put(1, 11, engine.Blue)
		c := h.put(1, 10, engine.Blue)
		h.put(2, 11, engine.Red)

		h.eng.Resolve(0)
		h.settle(t)
		first := a.Group()
		if first == nil {
			t.Fatal("Expected a blue group")
		}
		bonds := []engine.Bond{a.Bonds, b.Bonds, c.Bonds}

		// park the new pair out of the way so the next spawn succeeds
		for range 3 {
			h.eng.Move(engine.Right)
		}
		h.eng.Move(engine.Down)
		h.eng.Move(engine.Down)
		h.eng.Resolve(0)
		h.settle(t)
		if a.Group() == nil || a.Group() != c.Group() || a.Group().Len() != 3 {
			t.Fatalf("Expected the blue group rebuilt, got %s", a.Group())
		}
		if !first.Retired() {
			t.Error("Expected the previous group retired")
		}
		if again := []engine.Bond{a.Bonds, b.Bonds, c.Bonds}; !slices.Equal(bonds, again) {
			t.Errorf("Expected bonds %v, got %v", bonds, again)
		}
	})

	t.Run("groups below the threshold are never removed", func(t *testing.T) {
		h := newHarness(t)
		h.put(0, 11, engine.Red)
		h.put(1, 11, engine.Red)
		h.put(1, 10, engine.Red)
		h.put(3, 11, engine.Green)
		h.put(3, 10, engine.Green)
		h.put(3, 9, engine.Green)

		h.eng.Resolve(0)
		if len(h.eng.Doomed()) != 0 {
			t.Errorf("Expected nothing doomed, got %v", h.eng.Doomed())
		}
		expectState(t, h.eng, engine.StateInteractive)
		h.step(2 * time.Second)
		// six settled pieces plus the freshly spawned pair
		if n := h.eng.Board().Count(); n != 8 {
			t.Errorf("Expected 8 pieces, got %d", n)
		}
	})

	t.Run("hidden rows take no part in grouping", func(t *testing.T) {
		h := newHarness(t)
		h.put(0, 0, engine.Red)
		h.put(0, 1, engine.Red)
		h.put(0, 2, engine.Red)
		h.put(0, -1, engine.Red)

		h.eng.Resolve(0)
		if len(h.eng.Doomed()) != 0 {
			t.Errorf("Expected nothing doomed, got %v", h.eng.Doomed())
		}
	})
}

// chainScript feeds two settled pairs and a green pair that stack up as
//
//	. . G
//	. . R
//	. G R
//	. G R
//
// so the next red/green pair dropped in column 3 clears the reds, and
// the greens that fall after it clear as chain level 1.
var chainScript = []engine.Color{
	engine.Red, engine.Red,
	engine.Red, engine.Green,
	engine.Green, engine.Green,
	engine.Red, engine.Green,
	engine.Yellow, engine.Blue,
}

func buildChain(t *testing.T, h *harness) {
	t.Helper()
	h.eng.Start()
	h.drop()
	h.settle(t)
	h.drop()
	h.settle(t)
	h.eng.Move(engine.Left)
	h.drop()
	h.settle(t)
	want := "    0 1 2 3 4 5\n" +
		" 8  . . G . . .\n" +
		" 9  . . R . . .\n" +
		"10  . G R . . .\n" +
		"11  . G R . . .\n"
	if got := h.eng.Dump(); got != want {
		t.Fatalf("Unexpected stack:\n%s", got)
	}
}

func TestChainResolution(t *testing.T) {
	t.Run("four in a column clear", func(t *testing.T) {
		h := newHarness(t, engine.Red, engine.Red, engine.Red, engine.Red, engine.Blue, engine.Yellow)
		h.eng.Start()
		h.drop()
		h.settle(t)
		h.drop()

		h.step(engine.Frames(20))
		if h.eng.Phase() != engine.PhaseFlashing {
			t.Errorf("Expected flashing, got %s", h.eng.Phase())
		}
		if len(h.eng.Doomed()) != 1 {
			t.Fatalf("Expected one doomed group, got %d", len(h.eng.Doomed()))
		}
		doomed := h.eng.Doomed()[0].Beans()

		h.step(engine.Frames(5))
		if doomed[0].Visual != engine.VisualInvisible {
			t.Errorf("Expected invisible frame, got %s", doomed[0].Visual)
		}
		h.step(engine.Frames(1))
		if doomed[0].Visual != engine.VisualFlashing {
			t.Errorf("Expected flashing frame, got %s", doomed[0].Visual)
		}

		h.step(engine.Frames(23))
		if h.eng.Phase() != engine.PhasePopping || doomed[0].Visual != engine.VisualPopping {
			t.Errorf("Expected popping, got phase %s visual %s", h.eng.Phase(), doomed[0].Visual)
		}
		if !slices.Contains(h.clips.Clips(), "chain0") {
			t.Errorf("Expected chain0 clip, got %v", h.clips.Clips())
		}

		h.settle(t)
		for _, p := range doomed {
			if !p.Removed || h.display.Contains(p) {
				t.Errorf("Expected %s removed and unregistered", p)
			}
		}
		if got := h.eng.Dump(); got != "    0 1 2 3 4 5\n" {
			t.Errorf("Expected an empty board, got:\n%s", got)
		}
		want := engine.Score{Points: 40, PiecesCleared: 4, GroupsCleared: 1, LongestChain: 1}
		if h.eng.Score() != want {
			t.Errorf("Expected %+v, got %+v", want, h.eng.Score())
		}
	})

	t.Run("falling pieces trigger a second chain level", func(t *testing.T) {
		h := newHarness(t, chainScript...)
		buildChain(t, h)

		h.eng.Move(engine.Right)
		h.drop()
		h.settle(t)

		clips := h.clips.Clips()
		first, second := slices.Index(clips, "chain0"), slices.Index(clips, "chain1")
		if first < 0 || second < 0 || first > second {
			t.Errorf("Expected chain0 then chain1, got %v", clips)
		}

		expectState(t, h.eng, engine.StateInteractive)
		if h.eng.ChainLevel() != 1 {
			t.Errorf("Expected chain level 1, got %d", h.eng.ChainLevel())
		}
		if got := h.eng.Dump(); got != "    0 1 2 3 4 5\n" {
			t.Errorf("Expected an empty board, got:\n%s", got)
		}
		score := h.eng.Score()
		if score.Points != 40+4*10*8 || score.LongestChain != 2 || score.ChainPower != 8 {
			t.Errorf("Unexpected score %+v", score)
		}
		if c := h.eng.CurrentPair().A.Color; c != engine.Yellow {
			t.Errorf("Expected the yellow pair next, got %s", c)
		}
	})

	t.Run("chain clip plays before its groups are removed", func(t *testing.T) {
		h := newHarness(t, chainScript...)
		buildChain(t, h)

		greens := []engine.Position{{Col: 1, Row: 10}, {Col: 1, Row: 11}, {Col: 2, Row: 11}, {Col: 3, Row: 11}}
		played := false
		h.onClip = func(name string) {
			if name != "chain1" {
				return
			}
			played = true
			if h.eng.Phase() != engine.PhasePopping {
				t.Errorf("Expected popping phase at chain1, got %s", h.eng.Phase())
			}
			if n := len(h.eng.Doomed()); n != 1 {
				t.Errorf("Expected one doomed group at chain1, got %d", n)
			}
			for _, pos := range greens {
				p := h.eng.Board().At(pos.Col, pos.Row)
				if p == nil || p.Color != engine.Green || p.Removed {
					t.Errorf("Expected a green still on the board at %v, got %v", pos, p)
				}
			}
		}

		h.eng.Move(engine.Right)
		h.drop()
		h.settle(t)

		if !played {
			t.Fatal("chain1 clip never played")
		}
		if got := h.eng.Dump(); got != "    0 1 2 3 4 5\n" {
			t.Errorf("Expected the greens removed afterwards, got:\n%s", got)
		}
	})

	t.Run("hovering pieces fall the full gap", func(t *testing.T) {
		h := newHarness(t)
		h.put(0, 11, engine.Blue)
		for row := 10; row >= 7; row-- {
			h.put(0, row, engine.Red)
		}
		top := h.put(0, 6, engine.Green)
		over := h.put(0, 5, engine.Yellow)

		h.eng.Resolve(0)
		h.step(engine.Frames(61))
		if h.eng.Phase() != engine.PhaseFalling {
			t.Errorf("Expected falling, got %s", h.eng.Phase())
		}
		if hov := h.eng.HoveringBeans(); len(hov) != 1 || hov[0] != top {
			t.Errorf("Expected only the green hovering, got %v", hov)
		}

		h.settle(t)
		expectPos(t, "green", top, 0, 10)
		expectPos(t, "yellow", over, 0, 9)
		if h.eng.Board().At(0, 5) != nil {
			t.Error("Expected row 5 cleared")
		}
	})
}

func TestGameOver(t *testing.T) {
	t.Run("blocked drop cell ends the game", func(t *testing.T) {
		h := newHarness(t)
		h.eng.Start()
		ended := 0
		h.eng.OnGameOver(func() { ended++ })
		h.eng.OnGameOver(h.display.Stop)

		h.put(2, 0, engine.Red)
		h.put(5, 11, engine.Red)
		h.drop()
		h.settle(t)

		expectState(t, h.eng, engine.StateGameOver)
		if ended != 1 {
			t.Errorf("Expected one game over callback, got %d", ended)
		}
		if n := h.eng.Board().Count(); n != 0 {
			t.Errorf("Expected an emptied grid, got %d pieces", n)
		}
		if h.display.Frame() != nil {
			t.Error("Expected the display stopped")
		}

		if h.eng.Move(engine.Left) || h.eng.Rotate(engine.Clockwise) || h.eng.Start() {
			t.Error("Expected commands refused after game over")
		}
		h.eng.GameOver()
		if ended != 1 {
			t.Errorf("Expected GameOver to be idempotent, got %d callbacks", ended)
		}
	})

	t.Run("occupied top hidden row ends the game", func(t *testing.T) {
		h := newHarness(t)
		h.eng.Start()
		for range 4 {
			h.eng.Move(engine.Left)
		}
		h.put(4, -2, engine.Green)
		h.put(4, -1, engine.Green)
		for row := 0; row < engine.GridHeight; row++ {
			h.put(4, row, []engine.Color{engine.Red, engine.Blue}[row%2])
		}
		h.drop()
		h.settle(t)
		expectState(t, h.eng, engine.StateGameOver)
		if n := h.eng.Board().Count(); n != 0 {
			t.Errorf("Expected an emptied grid, got %d pieces", n)
		}
	})

	t.Run("scheduled chain steps are suppressed after game over", func(t *testing.T) {
		h := newHarness(t)
		h.eng.Start()
		for row := 11; row >= 8; row-- {
			h.put(0, row, engine.Red)
		}
		h.eng.Resolve(0)
		if len(h.eng.Doomed()) != 1 {
			t.Fatalf("Expected one doomed group, got %d", len(h.eng.Doomed()))
		}
		h.step(engine.Frames(10))

		h.eng.GameOver()
		h.step(2 * time.Second)
		if slices.Contains(h.clips.Clips(), "chain0") {
			t.Error("Expected the chain clip suppressed")
		}
		expectState(t, h.eng, engine.StateGameOver)
		if h.eng.Score().Points != 0 {
			t.Errorf("Expected no points, got %d", h.eng.Score().Points)
		}
		if n := h.eng.Board().Count(); n != 0 {
			t.Errorf("Expected an emptied grid, got %d pieces", n)
		}
	})
}

func TestSnapshot(t *testing.T) {
	h := newHarness(t, engine.Red, engine.Green, engine.Blue, engine.Yellow)
	h.eng.Start()
	h.put(0, 11, engine.Violet)

	snap := h.eng.Snapshot()
	if snap.ConfigName != "classic" || snap.State != engine.StateInteractive {
		t.Errorf("Unexpected header %s/%s", snap.ConfigName, snap.State)
	}
	if len(snap.Grid) != engine.GridHeight+engine.HiddenRows {
		t.Fatalf("Expected %d grid rows, got %d", engine.GridHeight+engine.HiddenRows, len(snap.Grid))
	}
	if c := snap.CellAt(0, 11).Color; c != engine.Violet {
		t.Errorf("Expected violet at 0,11, got %q", c)
	}
	if cell := snap.CellAt(2, -1); cell.Color != engine.Red || cell.Visual != engine.VisualLeading {
		t.Errorf("Expected the leading red pivot at 2,-1, got %+v", cell)
	}
	if snap.Rows[0] != "..G..." || snap.Rows[len(snap.Rows)-1] != "V....." {
		t.Errorf("Unexpected rows %q ... %q", snap.Rows[0], snap.Rows[len(snap.Rows)-1])
	}
	if cell := snap.CellAt(9, 9); cell != (engine.Cell{}) {
		t.Errorf("Expected an empty cell off the grid, got %+v", cell)
	}
	if snap.Current == nil || snap.Current.B != (engine.Position{Col: 2, Row: -2}) {
		t.Errorf("Unexpected current pair %+v", snap.Current)
	}
	if snap.Next == nil || snap.Next.ColorA != engine.Blue {
		t.Errorf("Unexpected next pair %+v", snap.Next)
	}
}
