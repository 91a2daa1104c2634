package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/wricardo/meanbean/bot"
	"github.com/wricardo/meanbean/game/arena"
)

type simulateOptions struct {
	Config    string
	Games     int
	Seed      uint64
	MaxRounds int
	JSON      bool
}

type simulateRecord struct {
	Game int    `json:"game"`
	Seed uint64 `json:"seed"`
	bot.Result
}

// runSimulate plays opts.Games seeded games with the greedy bot and
// writes one line per game plus a summary.
func runSimulate(ctx context.Context, w io.Writer, s Settings, opts simulateOptions) error {
	base, err := loadRuleSet(s.ConfigDir, opts.Config)
	if err != nil {
		return err
	}
	if opts.Games <= 0 {
		return fmt.Errorf("games must be positive, got %d", opts.Games)
	}

	player := bot.NewGreedy()
	enc := json.NewEncoder(w)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if !opts.JSON {
		fmt.Fprintf(tw, "game\tseed\trounds\tscore\tbeans\tbest chain\tend\n")
	}

	var total, best int
	for i := range opts.Games {
		if err := ctx.Err(); err != nil {
			return err
		}
		cfg := *base
		cfg.Seed = opts.Seed + uint64(i)
		a, err := arena.New(&cfg, arena.Options{})
		if err != nil {
			return fmt.Errorf("game %d: %w", i, err)
		}
		rec := simulateRecord{Game: i, Seed: cfg.Seed, Result: player.Play(a, opts.MaxRounds)}
		total += rec.Score.Points
		best = max(best, rec.Score.Points)

		if opts.JSON {
			if err := enc.Encode(rec); err != nil {
				return err
			}
			continue
		}
		end := "round limit"
		if rec.GameOver {
			end = "game over"
		}
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\t%d\t%s\n",
			rec.Game, rec.Seed, rec.Rounds, rec.Score.Points, rec.Score.PiecesCleared, rec.Score.LongestChain, end)
	}

	if opts.JSON {
		return nil
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "\n%s: %d games, mean score %d, best %d\n", base.Name, opts.Games, total/opts.Games, best)
	return err
}
