// Package source generates the pairs fed to the engine.
package source

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/wricardo/meanbean/game/engine"
)

var ErrInvalidDifficulty = errors.New("invalid difficulty")

// IntNSource is the subset of *rand.Rand the server draws from.
type IntNSource interface {
	IntN(int) int
}

// Server hands out randomly colored pairs. The palette prefix it draws
// from widens with the difficulty.
type Server struct {
	Rand IntNSource

	difficulty int
	lastID     int
}

// NewServer creates a server with the given difficulty. A nil rng is
// replaced by a ChaCha8 generator seeded from crypto/rand.
func NewServer(difficulty int, rng IntNSource) *Server {
	if rng == nil {
		var seed [32]byte
		_, _ = crand.Read(seed[:])
		rng = rand.New(rand.NewChaCha8(seed))
	}
	s := &Server{Rand: rng}
	if difficulty > 0 {
		s.difficulty = difficulty
	}
	return s
}

// NewSeededServer creates a server whose sequence is fixed by seed.
func NewSeededServer(difficulty int, seed uint64) *Server {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:], seed)
	return NewServer(difficulty, rand.New(rand.NewChaCha8(key)))
}

func (s *Server) SetDifficulty(difficulty int) error {
	if difficulty < engine.MinDifficulty {
		return fmt.Errorf("%w: %d", ErrInvalidDifficulty, difficulty)
	}
	s.difficulty = difficulty
	return nil
}

func (s *Server) Difficulty() int { return s.difficulty }

// ColorCount is 5 above difficulty 1, otherwise 4.
func (s *Server) ColorCount() int {
	if s.difficulty > 1 {
		return 5
	}
	return 4
}

// RequestPair panics when the difficulty was never set.
func (s *Server) RequestPair() *engine.Pair {
	if s.difficulty == 0 {
		panic(&engine.InvariantError{Op: "RequestPair", Msg: "difficulty not set"})
	}
	n := s.ColorCount()
	a := s.newPiece(engine.Palette[s.Rand.IntN(n)])
	b := s.newPiece(engine.Palette[s.Rand.IntN(n)])
	return engine.NewPair(a, b)
}

func (s *Server) newPiece(c engine.Color) *engine.Piece {
	s.lastID++
	return engine.NewPiece(s.lastID, c)
}

// Script replays a fixed color list, two colors per pair (A then B),
// starting over once exhausted.
type Script struct {
	colors []engine.Color
	pos    int
	lastID int
}

func NewScript(colors ...engine.Color) *Script {
	if len(colors) == 0 {
		panic(&engine.InvariantError{Op: "NewScript", Msg: "empty color script"})
	}
	return &Script{colors: colors}
}

func (s *Script) RequestPair() *engine.Pair {
	a := s.next()
	b := s.next()
	return engine.NewPair(a, b)
}

func (s *Script) next() *engine.Piece {
	c := s.colors[s.pos%len(s.colors)]
	s.pos++
	s.lastID++
	return engine.NewPiece(s.lastID, c)
}

// Served returns how many pieces the script has handed out.
func (s *Script) Served() int { return s.pos }
