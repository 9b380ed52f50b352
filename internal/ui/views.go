package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"levelset/internal/normalize"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#005F87"))

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	okIcon     = lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")).Render("✓")
	activeIcon = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500")).Render("⚙")
	skipIcon   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Render("−")
	failIcon   = lipgloss.NewStyle().Foreground(lipgloss.Color("#A40000")).Render("✗")
	queueIcon  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Render("○")
)

// renderRunView renders the whole normalization run
func renderRunView(m Model) string {
	var b strings.Builder

	b.WriteString(renderHeader(m))
	b.WriteString("\n\n")

	for i := range m.Groups {
		b.WriteString(renderGroupEntry(m.Groups[i], i == m.CurrentIndex))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(renderFooter(m))

	return b.String()
}

func renderHeader(m Model) string {
	title := headerStyle.Render("Levelset 🎚 - Group Loudness Normalizer")
	subtitle := subtitleStyle.Render(
		fmt.Sprintf("Target %.1f LUFS | %d group(s)", m.Target, len(m.Groups)))
	return title + "\n" + subtitle
}

// renderGroupEntry renders one group line with its status
func renderGroupEntry(g GroupProgress, active bool) string {
	label := g.Key
	if g.Segments > 1 {
		label = fmt.Sprintf("%s (%d segments)", g.Key, g.Segments)
	}

	switch g.Status {
	case StatusNormalised:
		summary := fmt.Sprintf("%.1f LUFS | gain %+.1f dB",
			g.Result.Loudness, g.Result.GainDB)
		return fmt.Sprintf(" %s %s\n   %s", okIcon, label, summary)

	case StatusMeasuring:
		return fmt.Sprintf(" %s %s\n   %s %3.0f%%  %.1fs",
			activeIcon, label,
			renderProgressBar(g.Progress, 30), g.Progress*100,
			g.Elapsed.Seconds())

	case StatusSkipped:
		return fmt.Sprintf(" %s %s\n   skipped: %s | measured %s",
			skipIcon, label, g.Result.Skipped, formatLoudness(g.Result))

	case StatusFailed:
		return fmt.Sprintf(" %s %s\n   %v", failIcon, label, g.Result.Err)

	default:
		return fmt.Sprintf(" %s %s\n   Queued...", queueIcon, label)
	}
}

func renderFooter(m Model) string {
	if m.Done {
		return subtitleStyle.Render(fmt.Sprintf(
			"Done: %d normalised, %d skipped, %d failed in %.1fs",
			m.Completed, m.SkippedCount, m.FailedCount,
			timeSince(m)))
	}
	return subtitleStyle.Render("press q to abort display")
}

func timeSince(m Model) float64 {
	var total float64
	for _, g := range m.Groups {
		total += g.Elapsed.Seconds()
	}
	return total
}

// renderProgressBar renders an ASCII progress bar of the given width
func renderProgressBar(progress float64, width int) string {
	if progress < 0 {
		progress = 0
	} else if progress > 1 {
		progress = 1
	}
	filled := int(progress * float64(width))
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}

func formatLoudness(r normalize.Result) string {
	switch {
	case !r.Measurable:
		return "nothing"
	case math.IsInf(r.Loudness, -1):
		return "-inf LUFS"
	default:
		return fmt.Sprintf("%.1f LUFS", r.Loudness)
	}
}
