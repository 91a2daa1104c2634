package engine

import (
	"fmt"
	"strings"
)

// Dump renders the visible grid as text, one letter per piece. Only rows
// holding at least one piece are printed.
func (e *GameEngine) Dump() string {
	return dumpBoard(&e.board)
}

// dumpBoard renders b the way Dump does.
func dumpBoard(b *Board) string {
	var sb strings.Builder
	sb.WriteString("    0 1 2 3 4 5\n")
	for row := 0; row < GridHeight; row++ {
		line := fmt.Sprintf("%2d ", row)
		populated := false
		for col := 0; col < GridWidth; col++ {
			symbol := "."
			if p := b.At(col, row); p != nil {
				populated = true
				symbol = p.Color.Letter()
			}
			line += " " + symbol
		}
		if populated {
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
