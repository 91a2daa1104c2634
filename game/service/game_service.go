package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/wricardo/meanbean/game/arena"
	"github.com/wricardo/meanbean/game/engine"
	"github.com/wricardo/meanbean/game/scheduler"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionFaulted  = errors.New("session faulted")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Player commands
	Move(ctx context.Context, sessionID, direction string) (*CommandResult, error)
	Rotate(ctx context.Context, sessionID, spin string) (*CommandResult, error)
	Drop(ctx context.Context, sessionID string) (*CommandResult, error)
	Pause(ctx context.Context, sessionID string) (*CommandResult, error)
	Resume(ctx context.Context, sessionID string) (*CommandResult, error)

	// Game State
	GetBoard(ctx context.Context, sessionID string) (*arena.Snapshot, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.Config, error)
	SaveConfig(ctx context.Context, configName string, config *engine.Config) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id, configID string, config *engine.Config) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles rule set loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.Config, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.Config
	SaveConfig(name string, config *engine.Config) error
}

// Session represents an active game session. Every access to Arena goes
// through Do or Run, which hold the session lock.
type Session struct {
	ID             string
	ConfigID       string
	Config         *engine.Config
	Arena          *arena.Arena
	CreatedAt      time.Time
	LastAccessedAt time.Time

	mu      sync.Mutex
	faulted error
	lastSig string
}

// NewSession wraps a started or unstarted arena.
func NewSession(id, configID string, config *engine.Config, a *arena.Arena) *Session {
	now := time.Now()
	return &Session{
		ID:             id,
		ConfigID:       configID,
		Config:         config,
		Arena:          a,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
}

// Do runs fn with exclusive access to the arena. A panic inside fn marks
// the session faulted; a faulted session refuses every later call.
func (s *Session) Do(fn func(a *arena.Arena)) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.faulted != nil {
		return s.faulted
	}
	defer func() {
		if r := recover(); r != nil {
			s.faulted = faultError(s.ID, r)
			err = s.faulted
		}
	}()
	fn(s.Arena)
	return nil
}

// Run advances the arena in real time until ctx is done or the session
// faults. Each tick goes through Do, so a fault recorded by a command
// stops the runner on its next tick.
func (s *Session) Run(ctx context.Context, interval time.Duration) error {
	return scheduler.Drive(ctx, interval, func(dt time.Duration) error {
		return s.Do(func(a *arena.Arena) { a.Advance(dt) })
	})
}

// Faulted returns the fault that stopped the session, if any.
func (s *Session) Faulted() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.faulted
}

// Watch calls fn from the arena clock whenever the visible board changes.
// fn runs with the session lock held and must not block.
func (s *Session) Watch(fn func(snap *arena.Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Arena.Scheduler.EachFrame(func(time.Duration) {
		snap := s.Arena.Snapshot()
		sig := signature(&snap)
		if sig == s.lastSig {
			return
		}
		s.lastSig = sig
		fn(&snap)
	})
}

func signature(snap *arena.Snapshot) string {
	sig := fmt.Sprintf("%s/%s/%d/%d/%d", snap.State, snap.Phase, snap.ChainLevel, snap.Rounds, snap.Score.Points)
	for _, row := range snap.Rows {
		sig += "|" + row
	}
	return sig
}

func faultError(id string, r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("%w: %s: %w", ErrSessionFaulted, id, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrSessionFaulted, id, r)
}
