// Package config provides rule set management for Mean Bean.
//
// Rule sets are JSON files in a configs directory. Each one names a
// difficulty (how many bean colors the server deals), the gravity
// interval, and optionally a seed and the chain animation timings:
//
//	{
//	  "name": "Classic",
//	  "difficulty": 2,
//	  "gravity_interval_ms": 1000,
//	  "timings": {"land_delay_frames": 20, "pop_frame": 29, ...}
//	}
//
// Missing timings default to the classic values. Every file is validated
// by engine.ValidateConfig before it is cached.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//	rules, err := manager.LoadConfig("fast")
//	configs, err := manager.ListConfigs()
//
// The default rule set is classic.json when present, otherwise the first
// valid file, otherwise the built-in classic rules.
package config
