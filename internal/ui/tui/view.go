package tui

import (
	"fmt"
	"strings"
	"time"

	"restcycle/internal/core/cycle"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	timerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("214")).
			Padding(0, 1)

	breakStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("220")).
			Padding(1, 4)

	phaseStyles = map[cycle.Phase]lipgloss.Style{
		cycle.PhaseActive:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		cycle.PhasePaused:  lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		cycle.PhaseOnBreak: lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
	}
)

func (m Model) View() string {
	if m.onBreak {
		return m.breakView()
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("RestCycle"))
	if m.snapshot.DebugMode {
		b.WriteString(" " + mutedStyle.Render("[debug]"))
	}
	b.WriteString("\n\n")

	b.WriteString(phaseStyles[m.snapshot.Phase].Render(phaseLabel(m.snapshot)))
	b.WriteString("\n")
	b.WriteString(timerStyle.Render(cycle.FormatRemaining(m.snapshot.Remaining)))
	b.WriteString(mutedStyle.Render(" until the next break"))
	b.WriteString("\n\n")
	b.WriteString(m.progress.ViewAs(workFraction(m.snapshot.Remaining, m.controller.WorkDuration())))
	b.WriteString("\n\n")

	if m.banner != "" {
		b.WriteString(bannerStyle.Render(m.banner))
		b.WriteString("\n\n")
	}

	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) breakView() string {
	total := m.controller.BreakDuration()
	body := lipgloss.JoinVertical(lipgloss.Center,
		titleStyle.Render("Time for a break"),
		"",
		"Look at something 20 feet away.",
		"",
		timerStyle.Render(cycle.FormatRemaining(m.breakRemaining)),
		"",
		m.progress.ViewAs(workFraction(m.breakRemaining, total)),
	)
	return breakStyle.Render(body) + "\n\n" + m.help.View(breakKeyMap{keys: m.keys})
}

func phaseLabel(snapshot cycle.Snapshot) string {
	switch snapshot.Phase {
	case cycle.PhasePaused:
		if !snapshot.PauseUntil.IsZero() {
			return fmt.Sprintf("Paused until %s", snapshot.PauseUntil.Format("15:04"))
		}
		return "Paused"
	case cycle.PhaseOnBreak:
		return "On break"
	default:
		return "Working"
	}
}

// workFraction is the elapsed share of an interval, in [0, 1].
func workFraction(remaining, total time.Duration) float64 {
	if total <= 0 {
		return 1
	}
	if remaining < 0 {
		remaining = 0
	}
	if remaining > total {
		return 0
	}
	return float64(total-remaining) / float64(total)
}
