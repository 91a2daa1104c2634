package main

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/meanbean/telemetry"
)

// Settings are the process settings. Environment variables set the
// defaults and command line flags override them.
type Settings struct {
	Host      string `env:"MEANBEAN_HOST" envDefault:"localhost"`
	Port      int    `env:"MEANBEAN_PORT" envDefault:"8080"`
	ConfigDir string `env:"MEANBEAN_CONFIG_DIR" envDefault:"configs"`
	Debug     bool   `env:"MEANBEAN_DEBUG"`
	Sound     bool   `env:"MEANBEAN_SOUND" envDefault:"true"`

	// APIURL is probed by the stdio MCP server before it starts its own.
	APIURL string `env:"MEANBEAN_API_URL" envDefault:"http://localhost:8080"`

	SessionTTL      time.Duration `env:"MEANBEAN_SESSION_TTL" envDefault:"24h"`
	JanitorInterval time.Duration `env:"MEANBEAN_JANITOR_INTERVAL" envDefault:"1h"`

	Ngrok     NgrokSettings
	Telemetry telemetry.Settings
}

// NgrokSettings configure the optional public tunnel.
type NgrokSettings struct {
	Enabled   bool   `env:"NGROK_ENABLED"`
	AuthToken string `env:"NGROK_AUTHTOKEN"`
	Domain    string `env:"NGROK_DOMAIN"`
}

func parseSettings() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("parse env: %w", err)
	}
	return s, nil
}

// loadSettings reads the environment and applies the flags the user set.
func loadSettings(cmd *cli.Command) (Settings, error) {
	s, err := parseSettings()
	if err != nil {
		return Settings{}, err
	}
	if cmd.IsSet("host") {
		s.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		s.Port = int(cmd.Int("port"))
	}
	if cmd.IsSet("config-dir") {
		s.ConfigDir = cmd.String("config-dir")
	}
	if cmd.IsSet("debug") {
		s.Debug = cmd.Bool("debug")
	}
	if cmd.IsSet("ngrok") {
		s.Ngrok.Enabled = cmd.Bool("ngrok")
	}
	if cmd.IsSet("ngrok-domain") {
		s.Ngrok.Domain = cmd.String("ngrok-domain")
	}
	if cmd.IsSet("sound") {
		s.Sound = cmd.Bool("sound")
	}
	if s.Port <= 0 || s.Port > 65535 {
		return Settings{}, fmt.Errorf("invalid port %d", s.Port)
	}
	return s, nil
}
