package main

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/wricardo/meanbean/game/audio"
	"github.com/wricardo/meanbean/game/config"
	"github.com/wricardo/meanbean/game/engine"
	"github.com/wricardo/meanbean/transport/tui"
)

// loadRuleSet returns the named rule set from dir, or the default one
// when name is empty.
func loadRuleSet(dir, name string) (*engine.Config, error) {
	configs, err := config.NewManager(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}
	if name == "" {
		return configs.GetDefault(), nil
	}
	cfg, err := configs.LoadConfig(name)
	if err != nil {
		return nil, fmt.Errorf("load rule set %q: %w", name, err)
	}
	return cfg, nil
}

func runPlay(ctx context.Context, s Settings, configName string) error {
	cfg, err := loadRuleSet(s.ConfigDir, configName)
	if err != nil {
		return err
	}

	// the terminal owns stdout and stderr while the game runs
	log.SetOutput(io.Discard)

	opts := tui.Options{Config: cfg}
	if s.Sound {
		synth, err := audio.NewSynth(true)
		if err == nil {
			opts.Audio = synth
		}
	}
	return tui.Run(ctx, opts)
}
