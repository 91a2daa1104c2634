// Command rulecheck validates the rule set JSON files in a directory and
// prints what each one means for play. It checks:
//   - JSON structure, with unknown fields reported
//   - difficulty and gravity ranges
//   - that the clear animation timings are in order
//   - that names are unique across files
//
// Warnings flag playable but suspicious rule sets; --strict fails on them.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/meanbean/game/engine"
)

// ValidationResult captures the outcome of checking a single file.
type ValidationResult struct {
	File     string
	Name     string
	Valid    bool
	Errors   []string
	Warnings []string
	Notes    []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) note(format string, args ...any) {
	r.Notes = append(r.Notes, fmt.Sprintf(format, args...))
}

func ms(d time.Duration) int64 { return d.Milliseconds() }

// checkRuleSet loads and validates a single rule set file.
func checkRuleSet(filePath string) ValidationResult {
	result := ValidationResult{File: filepath.Base(filePath), Valid: true}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var raw engine.Config
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		if strings.Contains(err.Error(), "unknown field") {
			result.fail("Unknown field: %v", err)
		} else {
			result.fail("Invalid JSON: %v", err)
		}
		return result
	}
	result.Name = raw.Name

	cfg := raw.WithDefaults()
	if err := engine.ValidateConfig(cfg); err != nil {
		result.fail("%v", err)
		return result
	}

	if raw.Timings == (engine.Timings{}) {
		result.note("Timings: not set, classic timings used")
	}

	colors := 4
	if cfg.Difficulty > 1 {
		colors = 5
	}
	result.note("Colors: %d (difficulty %d)", colors, cfg.Difficulty)

	gravity := cfg.GravityInterval()
	fall := gravity * engine.GridHeight
	result.note("Gravity: one row every %dms, %.1fs from spawn to floor", ms(gravity), fall.Seconds())

	t := cfg.Timings
	result.note("Clear: flashes %dms, pops at %dms, removed at %dms, fall step %dms",
		ms(engine.Frames(t.FlashEndFrame-t.FlashStartFrame)), ms(engine.Frames(t.PopFrame)),
		ms(engine.Frames(t.RemoveFrame)), t.FallDelayMS)

	if cfg.Seed != 0 {
		result.note("Seed: %d, the piece sequence repeats every game", cfg.Seed)
	}

	if land := engine.Frames(t.LandDelayFrames); land > gravity {
		result.warn("land delay %dms is longer than one gravity step %dms", ms(land), ms(gravity))
	}
	if cfg.Description == "" {
		result.warn("no description; list_configs will show the name only")
	}
	return result
}

// checkDir checks every *.json file in dir and writes a report. It
// returns false when any file failed, or warned under strict.
func checkDir(w io.Writer, dir string, strict bool) (bool, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return false, fmt.Errorf("finding rule sets: %w", err)
	}
	if len(files) == 0 {
		return false, fmt.Errorf("no rule sets in %s", dir)
	}

	allValid := true
	names := make(map[string]string)
	for _, file := range files {
		result := checkRuleSet(file)
		if result.Name != "" {
			key := strings.ToLower(result.Name)
			if other, ok := names[key]; ok {
				result.fail("Name %q already used by %s", result.Name, other)
			}
			names[key] = result.File
		}

		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)
		if !result.Valid {
			allValid = false
			fmt.Fprintln(w, "❌ INVALID")
			for _, e := range result.Errors {
				fmt.Fprintln(w, "  ❌ "+e)
			}
			continue
		}

		fmt.Fprintf(w, "✅ VALID (%s)\n", result.Name)
		for _, n := range result.Notes {
			fmt.Fprintln(w, "  ✓ "+n)
		}
		for _, warning := range result.Warnings {
			fmt.Fprintln(w, "  ⚠️  "+warning)
		}
		if strict && len(result.Warnings) > 0 {
			allValid = false
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(w, "✅ All rule sets are valid!")
	} else {
		fmt.Fprintln(w, "❌ Some rule sets have errors")
	}
	return allValid, nil
}

func main() {
	cmd := &cli.Command{
		Name:      "rulecheck",
		Usage:     "validate Mean Bean rule sets",
		ArgsUsage: "[dir]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "strict", Usage: "treat warnings as errors"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir := "configs"
			if cmd.Args().Present() {
				dir = cmd.Args().First()
			}
			ok, err := checkDir(os.Stdout, dir, cmd.Bool("strict"))
			if err != nil {
				return err
			}
			if !ok {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
