package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wricardo/meanbean/game/arena"
	"github.com/wricardo/meanbean/game/engine"
)

var beanColors = map[engine.Color]lipgloss.Color{
	engine.Red:    lipgloss.Color("196"),
	engine.Yellow: lipgloss.Color("226"),
	engine.Green:  lipgloss.Color("46"),
	engine.Violet: lipgloss.Color("129"),
	engine.Blue:   lipgloss.Color("33"),
	engine.Dark:   lipgloss.Color("240"),
}

var (
	wellStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("250"))
	panelStyle  = lipgloss.NewStyle().PaddingLeft(2)
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	hiddenStyle = lipgloss.NewStyle().Faint(true)
	flashStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
	bannerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
)

const emptyCell = " ·"

func beanCell(cell engine.Cell) string {
	if cell.Color == "" || cell.Visual == engine.VisualInvisible {
		return emptyCell
	}
	switch cell.Visual {
	case engine.VisualFlashing:
		return flashStyle.Render(" ●")
	case engine.VisualPopping:
		return lipgloss.NewStyle().Foreground(beanColors[cell.Color]).Render(" ○")
	}
	return lipgloss.NewStyle().Foreground(beanColors[cell.Color]).Render(" ●")
}

func renderWell(snap arena.Snapshot) string {
	var sb strings.Builder
	for i, row := range snap.Grid {
		if i > 0 {
			sb.WriteByte('\n')
		}
		var line strings.Builder
		for _, cell := range row {
			line.WriteString(beanCell(cell))
		}
		if i < engine.HiddenRows {
			sb.WriteString(hiddenStyle.Render(line.String()))
			continue
		}
		sb.WriteString(line.String())
	}
	return wellStyle.Render(sb.String())
}

func renderPair(p *engine.PairView) string {
	if p == nil {
		return emptyCell + "\n" + emptyCell
	}
	return beanCell(engine.Cell{Color: p.ColorB}) + "\n" + beanCell(engine.Cell{Color: p.ColorA})
}

func renderPanel(snap arena.Snapshot, lastKey string) string {
	lines := []string{
		titleStyle.Render("MEAN BEAN"),
		labelStyle.Render(snap.ConfigName),
		"",
		labelStyle.Render("next"),
		renderPair(snap.Next),
		"",
		fmt.Sprintf("%s %d", labelStyle.Render("score"), snap.Score.Points),
		fmt.Sprintf("%s %d", labelStyle.Render("beans"), snap.Score.PiecesCleared),
		fmt.Sprintf("%s %d", labelStyle.Render("chain"), snap.ChainLevel),
		fmt.Sprintf("%s %d", labelStyle.Render("best "), snap.Score.LongestChain),
		fmt.Sprintf("%s %d", labelStyle.Render("round"), snap.Rounds),
		"",
	}
	switch snap.State {
	case engine.StatePaused:
		lines = append(lines, bannerStyle.Render("PAUSED"))
	case engine.StateGameOver:
		lines = append(lines, bannerStyle.Render("GAME OVER"), labelStyle.Render("n: new game"))
	default:
		lines = append(lines, labelStyle.Render(snap.State.String()))
	}
	lines = append(lines,
		"",
		labelStyle.Render("q/a left  d/i right"),
		labelStyle.Render("s/u down  space drop"),
		labelStyle.Render("←/→ rotate  p pause"),
		labelStyle.Render("esc quit"),
	)
	if lastKey != "" {
		lines = append(lines, labelStyle.Render("key: "+lastKey))
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func render(snap arena.Snapshot, lastKey string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, renderWell(snap), renderPanel(snap, lastKey))
}
