package main

import (
	"context"
	"fmt"
	"io"

	"github.com/wricardo/meanbean/game/arena"
	"github.com/wricardo/meanbean/game/engine"
	"github.com/wricardo/meanbean/transport/websocket"
)

// printBoard writes one frame of a watched session as text.
func printBoard(w io.Writer, board *arena.Snapshot) {
	fmt.Fprintf(w, "\n[%s] state=%s phase=%s chain=%d score=%d round=%d\n",
		board.ConfigName, board.State, board.Phase, board.ChainLevel, board.Score.Points, board.Rounds)
	for i, row := range board.Rows {
		fmt.Fprintf(w, "%3d %s\n", i-engine.HiddenRows, row)
	}
}

// runWatch prints every board pushed for sessionID until the game ends.
func runWatch(ctx context.Context, w io.Writer, baseURL, sessionID string) error {
	return websocket.Watch(ctx, baseURL, sessionID, func(m *websocket.Message) bool {
		if m.Board != nil {
			printBoard(w, m.Board)
		}
		if m.Event == websocket.EventGameOver {
			fmt.Fprintln(w, "game over")
			return false
		}
		return true
	})
}
