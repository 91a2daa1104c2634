package service

import (
	"time"

	"github.com/wricardo/meanbean/game/arena"
	"github.com/wricardo/meanbean/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string          `json:"id"`
	ConfigName     string          `json:"config_name"`
	CreatedAt      time.Time       `json:"created_at"`
	LastAccessedAt time.Time       `json:"last_accessed_at"`
	Faulted        string          `json:"faulted,omitempty"`
	Board          *arena.Snapshot `json:"board"`
	GameConfig     *engine.Config  `json:"game_config"`
}

// CommandResult is returned by every player command
type CommandResult struct {
	Success bool            `json:"success"`
	Action  string          `json:"action"`
	Message string          `json:"message"`
	Board   *arena.Snapshot `json:"board"`
}

// ConfigInfo provides information about a rule set
type ConfigInfo struct {
	Filename          string `json:"filename"`
	ConfigID          string `json:"config_id"` // The identifier to use for session creation
	Name              string `json:"name"`      // Display name
	Description       string `json:"description"`
	Difficulty        int    `json:"difficulty"`
	GravityIntervalMS int    `json:"gravity_interval_ms"`
}
