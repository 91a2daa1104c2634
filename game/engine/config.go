package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config is a rule set: piece variety, gravity speed and the chain
// animation timings.
type Config struct {
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	Difficulty        int     `json:"difficulty"`
	GravityIntervalMS int     `json:"gravity_interval_ms"`
	Seed              uint64  `json:"seed,omitempty"`
	Timings           Timings `json:"timings"`
}

// Timings are counted in 60 Hz frames unless the name says otherwise.
type Timings struct {
	LandDelayFrames int `json:"land_delay_frames"`
	FlashStartFrame int `json:"flash_start_frame"`
	// FlashEndFrame is exclusive.
	FlashEndFrame int `json:"flash_end_frame"`
	PopFrame      int `json:"pop_frame"`
	RemoveFrame   int `json:"remove_frame"`
	FallDelayMS   int `json:"fall_delay_ms"`
}

// DefaultTimings returns the classic animation timings.
func DefaultTimings() Timings {
	return Timings{
		LandDelayFrames: 20,
		FlashStartFrame: 5,
		FlashEndFrame:   27,
		PopFrame:        29,
		RemoveFrame:     60,
		FallDelayMS:     350,
	}
}

// DefaultConfig returns the classic rule set.
func DefaultConfig() *Config {
	return &Config{
		Name:              "classic",
		Description:       "Five colors, one row per second",
		Difficulty:        2,
		GravityIntervalMS: 1000,
		Timings:           DefaultTimings(),
	}
}

// Frames converts a frame count to a duration.
func Frames(n int) time.Duration {
	return time.Duration(n) * Frame
}

// GravityInterval is the delay between automatic down moves.
func (c *Config) GravityInterval() time.Duration {
	return time.Duration(c.GravityIntervalMS) * time.Millisecond
}

// WithDefaults returns a copy of c with unset timings filled in.
func (c *Config) WithDefaults() *Config {
	out := *c
	if out.Timings == (Timings{}) {
		out.Timings = DefaultTimings()
	}
	return &out
}

// ValidateConfig validates a rule set for correctness and playability
func ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Difficulty < MinDifficulty || config.Difficulty > MaxDifficulty {
		return fmt.Errorf("config validation: difficulty must be between %d and %d, got %d",
			MinDifficulty, MaxDifficulty, config.Difficulty)
	}
	if config.GravityIntervalMS < MinGravityIntervalMS || config.GravityIntervalMS > MaxGravityIntervalMS {
		return fmt.Errorf("config validation: gravity_interval_ms must be between %d and %d, got %d",
			MinGravityIntervalMS, MaxGravityIntervalMS, config.GravityIntervalMS)
	}

	t := config.Timings
	if t.LandDelayFrames < 0 {
		return fmt.Errorf("config validation: timings.land_delay_frames must not be negative, got %d", t.LandDelayFrames)
	}
	if t.FlashStartFrame < 1 {
		return fmt.Errorf("config validation: timings.flash_start_frame must be at least 1, got %d", t.FlashStartFrame)
	}
	if t.FlashEndFrame < t.FlashStartFrame {
		return fmt.Errorf("config validation: timings.flash_end_frame (%d) must not be before flash_start_frame (%d)",
			t.FlashEndFrame, t.FlashStartFrame)
	}
	if t.PopFrame < t.FlashEndFrame {
		return fmt.Errorf("config validation: timings.pop_frame (%d) must not be before flash_end_frame (%d)",
			t.PopFrame, t.FlashEndFrame)
	}
	if t.RemoveFrame <= t.PopFrame {
		return fmt.Errorf("config validation: timings.remove_frame (%d) must be after pop_frame (%d)",
			t.RemoveFrame, t.PopFrame)
	}
	if t.FallDelayMS < 0 {
		return fmt.Errorf("config validation: timings.fall_delay_ms must not be negative, got %d", t.FallDelayMS)
	}
	return nil
}

// LoadConfig loads a rule set from a JSON file
func LoadConfig(filename string) (*Config, error) {
	// CONFIG_DIR replaces the default configs/ directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	return ParseConfig(data)
}

// ParseConfig decodes, defaults and validates a JSON rule set.
func ParseConfig(data []byte) (*Config, error) {
	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	cfg := config.WithDefaults()
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigByName loads a rule set by name from the configs directory
func LoadConfigByName(configName string) (*Config, error) {
	if !strings.HasSuffix(configName, ".json") {
		configName = configName + ".json"
	}

	config, err := LoadConfig(filepath.Join("configs", configName))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("config file '%s' not found", configName)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid config '%s': %w", configName, err)
	}
	return config, nil
}
