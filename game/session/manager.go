package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/meanbean/game/arena"
	"github.com/wricardo/meanbean/game/engine"
	"github.com/wricardo/meanbean/game/service"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

// Options configures a Manager. The zero value keeps sessions on a
// logical clock that only moves when something calls Advance.
type Options struct {
	// Realtime starts a runner goroutine per session that advances its
	// arena by the wall time elapsed.
	Realtime     bool
	TickInterval time.Duration

	// OnUpdate is called from the arena clock whenever a board changes.
	// It runs under the session lock and must not block.
	OnUpdate func(sessionID string, snap *arena.Snapshot)

	// Audio builds the clip player for each new arena.
	Audio func() engine.ClipPlayer
	// EngineLog receives each engine's round, group and chain trace.
	EngineLog *log.Logger
}

// Manager handles game session lifecycle
type Manager struct {
	opts     Options
	sessions map[string]*service.Session
	runners  map[string]context.CancelFunc
	wg       sync.WaitGroup
	mu       sync.RWMutex
}

// NewManager creates a session manager without real-time runners
func NewManager() *Manager {
	return NewManagerWithOptions(Options{})
}

// NewManagerWithOptions creates a session manager
func NewManagerWithOptions(opts Options) *Manager {
	if opts.TickInterval <= 0 {
		opts.TickInterval = engine.Frame
	}
	return &Manager{
		opts:     opts,
		sessions: make(map[string]*service.Session),
		runners:  make(map[string]context.CancelFunc),
	}
}

// Create creates a new session with the given ID and rule set. IDs are
// stored lower-case. The arena is built but not started.
func (m *Manager) Create(id, configID string, config *engine.Config) (*service.Session, error) {
	if strings.ContainsAny(id, "/ \t\n") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSessionID, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = m.generateSessionID()
	}
	id = strings.ToLower(id)
	key := id
	if _, exists := m.sessions[key]; exists {
		return nil, ErrSessionAlreadyExists
	}

	opts := arena.Options{}
	if m.opts.Audio != nil {
		opts.Audio = m.opts.Audio()
	}
	if m.opts.EngineLog != nil {
		opts.Logger = m.opts.EngineLog
	}
	a, err := arena.New(config, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create arena: %w", err)
	}

	session := service.NewSession(id, configID, a.Engine.Config(), a)
	if fn := m.opts.OnUpdate; fn != nil {
		session.Watch(func(snap *arena.Snapshot) { fn(id, snap) })
	}
	m.sessions[key] = session

	if m.opts.Realtime {
		ctx, cancel := context.WithCancel(context.Background())
		m.runners[key] = cancel
		m.wg.Add(1)
		go m.run(ctx, session)
	}
	return session, nil
}

func (m *Manager) run(ctx context.Context, session *service.Session) {
	defer m.wg.Done()
	err := session.Run(ctx, m.opts.TickInterval)
	if errors.Is(err, service.ErrSessionFaulted) {
		log.Printf("session %s stopped: %v", session.ID, err)
	}
}

// Get retrieves a session by ID (case-insensitive)
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// List returns all active sessions, oldest first
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	sortByCreation(result)
	return result
}

// Delete removes a session and stops its runner
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(id)
	if _, exists := m.sessions[key]; !exists {
		return ErrSessionNotFound
	}
	m.remove(key)
	return nil
}

// remove drops a session. Callers hold m.mu.
func (m *Manager) remove(key string) {
	delete(m.sessions, key)
	if cancel, ok := m.runners[key]; ok {
		cancel()
		delete(m.runners, key)
	}
}

// UpdateLastAccessed updates the last accessed time for a session
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return ErrSessionNotFound
	}
	session.LastAccessedAt = time.Now()
	return nil
}

// Advance moves every session's clock forward by d. Faulted sessions
// are skipped.
func (m *Manager) Advance(d time.Duration) {
	for _, session := range m.List() {
		session.Do(func(a *arena.Arena) { a.Advance(d) })
	}
}

// CleanupExpiredSessions removes sessions that haven't been accessed in the given duration
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for key, session := range m.sessions {
		if session.LastAccessedAt.Before(cutoff) {
			m.remove(key)
			removed++
		}
	}
	return removed
}

// StartJanitor removes expired sessions every interval until ctx is done.
func (m *Manager) StartJanitor(ctx context.Context, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := m.CleanupExpiredSessions(maxAge); n > 0 {
					log.Printf("Removed %d expired sessions", n)
				}
			}
		}
	}()
}

// Close stops every runner and waits for them to exit.
func (m *Manager) Close() {
	m.mu.Lock()
	for key, cancel := range m.runners {
		cancel()
		delete(m.runners, key)
	}
	m.mu.Unlock()
	m.wg.Wait()
}

// Count returns the number of active sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// generateSessionID generates a random unused 4-character session ID.
// Callers hold m.mu.
func (m *Manager) generateSessionID() string {
	bytes := make([]byte, 2)
	for {
		rand.Read(bytes)
		id := hex.EncodeToString(bytes)
		if _, exists := m.sessions[id]; !exists {
			return id
		}
	}
}

func sortByCreation(sessions []*service.Session) {
	slices.SortStableFunc(sessions, func(a, b *service.Session) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
}
