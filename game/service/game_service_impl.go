package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wricardo/meanbean/game/arena"
	"github.com/wricardo/meanbean/game/engine"
)

var tracer = otel.Tracer("github.com/wricardo/meanbean/game/service")

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

func startSpan(ctx context.Context, name, sessionID string) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, name)
	if sessionID != "" {
		span.SetAttributes(attribute.String("meanbean.session_id", sessionID))
	}
	return ctx, span
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

// CreateSession creates a new game session and starts its engine
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (info *SessionInfo, err error) {
	_, span := startSpan(ctx, "GameService.CreateSession", "")
	span.SetAttributes(attribute.String("meanbean.config", configName))
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.Config
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			return nil, s.configError(configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", configID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	if err := sess.Do(func(a *arena.Arena) { a.Start() }); err != nil {
		return nil, err
	}
	return sessionInfo(sess)
}

func (s *gameServiceImpl) configError(configName string, err error) error {
	if !strings.Contains(err.Error(), "configuration not found") {
		return fmt.Errorf("failed to load config %s: %w", configName, err)
	}
	availableConfigs, listErr := s.configs.ListConfigs()
	if listErr == nil && len(availableConfigs) > 0 {
		var configIDs []string
		for _, cfg := range availableConfigs {
			configIDs = append(configIDs, cfg.ConfigID)
		}
		return fmt.Errorf("config '%s' not found. Available configs: %v: %w", configName, configIDs, err)
	}
	return fmt.Errorf("config '%s' not found. Use /api/configs to list available configurations: %w", configName, err)
}

func sessionInfo(sess *Session) (*SessionInfo, error) {
	info := &SessionInfo{
		ID:             sess.ID,
		ConfigName:     sess.ConfigID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameConfig:     sess.Config,
	}
	err := sess.Do(func(a *arena.Arena) {
		snap := a.Snapshot()
		info.Board = &snap
	})
	if err != nil {
		info.Faulted = err.Error()
	}
	return info, nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (info *SessionInfo, err error) {
	_, span := startSpan(ctx, "GameService.GetSession", sessionID)
	defer func() { endSpan(span, err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	return sessionInfo(sess)
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	_, span := startSpan(ctx, "GameService.ListSessions", "")
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		info, _ := sessionInfo(sess)
		result = append(result, info)
	}
	span.SetAttributes(attribute.Int("meanbean.sessions", len(result)))
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) (err error) {
	_, span := startSpan(ctx, "GameService.DeleteSession", sessionID)
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return nil
}

// lookup fetches a session and touches its access time. Callers hold s.mu.
func (s *gameServiceImpl) lookup(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// command runs one player command against a session's arena.
func (s *gameServiceImpl) command(ctx context.Context, sessionID, action string, fn func(a *arena.Arena) (bool, string)) (result *CommandResult, err error) {
	_, span := startSpan(ctx, "GameService."+action, sessionID)
	defer func() { endSpan(span, err) }()

	s.mu.RLock()
	sess, err := s.lookup(sessionID)
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	result = &CommandResult{Action: action}
	err = sess.Do(func(a *arena.Arena) {
		result.Success, result.Message = fn(a)
		snap := a.Snapshot()
		result.Board = &snap
	})
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Bool("meanbean.success", result.Success))
	return result, nil
}

// Move shifts the falling pair left, right or down
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string) (*CommandResult, error) {
	dir, err := engine.ParseDirection(direction)
	if err != nil {
		return nil, err
	}
	if dir == engine.Up {
		return nil, fmt.Errorf("%w: pairs cannot move up", engine.ErrInvalidDirection)
	}
	return s.command(ctx, sessionID, "move", func(a *arena.Arena) (bool, string) {
		before := a.Engine.State()
		if a.Engine.Move(dir) {
			return true, fmt.Sprintf("moved %s", dir)
		}
		if dir == engine.Down && before == engine.StateInteractive {
			return true, "pair landed"
		}
		return false, blockedMessage(a.Engine.State(), "move "+dir.String())
	})
}

// Rotate turns the falling pair
func (s *gameServiceImpl) Rotate(ctx context.Context, sessionID, spin string) (*CommandResult, error) {
	sp, err := engine.ParseSpin(spin)
	if err != nil {
		return nil, err
	}
	return s.command(ctx, sessionID, "rotate", func(a *arena.Arena) (bool, string) {
		if a.Engine.Rotate(sp) {
			return true, fmt.Sprintf("rotated %s, pair now points %s", sp, a.Engine.CurrentPair().Orientation)
		}
		return false, blockedMessage(a.Engine.State(), "rotate "+sp.String())
	})
}

// Drop moves the falling pair down until it lands
func (s *gameServiceImpl) Drop(ctx context.Context, sessionID string) (*CommandResult, error) {
	return s.command(ctx, sessionID, "drop", func(a *arena.Arena) (bool, string) {
		if a.Engine.State() != engine.StateInteractive {
			return false, blockedMessage(a.Engine.State(), "drop")
		}
		a.HardDrop()
		return true, "pair landed"
	})
}

func (s *gameServiceImpl) Pause(ctx context.Context, sessionID string) (*CommandResult, error) {
	return s.command(ctx, sessionID, "pause", func(a *arena.Arena) (bool, string) {
		if a.Engine.Pause() {
			return true, "paused"
		}
		return false, blockedMessage(a.Engine.State(), "pause")
	})
}

func (s *gameServiceImpl) Resume(ctx context.Context, sessionID string) (*CommandResult, error) {
	return s.command(ctx, sessionID, "resume", func(a *arena.Arena) (bool, string) {
		if a.Engine.Resume() {
			return true, "resumed"
		}
		return false, blockedMessage(a.Engine.State(), "resume")
	})
}

func blockedMessage(state engine.State, action string) string {
	switch state {
	case engine.StateInteractive:
		return fmt.Sprintf("cannot %s: blocked", action)
	case engine.StateResolving:
		return fmt.Sprintf("cannot %s: chain resolving", action)
	case engine.StatePaused:
		return fmt.Sprintf("cannot %s: game paused", action)
	case engine.StateGameOver:
		return fmt.Sprintf("cannot %s: game over", action)
	}
	return fmt.Sprintf("cannot %s: game not started", action)
}

// GetBoard returns the current board of a session
func (s *gameServiceImpl) GetBoard(ctx context.Context, sessionID string) (snap *arena.Snapshot, err error) {
	_, span := startSpan(ctx, "GameService.GetBoard", sessionID)
	defer func() { endSpan(span, err) }()

	s.mu.RLock()
	sess, err := s.lookup(sessionID)
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	err = sess.Do(func(a *arena.Arena) {
		b := a.Snapshot()
		snap = &b
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// ListConfigs returns available rule sets
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	_, span := startSpan(ctx, "GameService.ListConfigs", "")
	defer span.End()
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific rule set
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (config *engine.Config, err error) {
	_, span := startSpan(ctx, "GameService.LoadConfig", "")
	defer func() { endSpan(span, err) }()
	config, err = s.configs.LoadConfig(configName)
	if err != nil {
		return nil, s.configError(configName, err)
	}
	return config, nil
}

// SaveConfig validates and stores a rule set
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.Config) (err error) {
	_, span := startSpan(ctx, "GameService.SaveConfig", "")
	defer func() { endSpan(span, err) }()
	if configName == "" {
		return errors.New("config name is required")
	}
	return s.configs.SaveConfig(configName, config)
}
