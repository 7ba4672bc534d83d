package root

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	IconSparkle = "✨"
	IconDone    = "✅"
	IconGold    = "🪙"
	IconBoss    = "🐉"
	IconWarn    = "⚠️"
	IconError   = "🧨"
	IconBox     = "📦"
)

var (
	cPrimary = lipgloss.Color("63")
	cAccent  = lipgloss.Color("205")
	cGood    = lipgloss.Color("42")
	cWarn    = lipgloss.Color("214")
	cBad     = lipgloss.Color("196")
	cMuted   = lipgloss.Color("244")
	cGold    = lipgloss.Color("220")
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)

	Panel = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
)

func Heading(icon, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

// Bar draws a vital as a ten-cell gauge.
func Bar(v, maxV int) string {
	if maxV <= 0 {
		maxV = 1
	}
	filled := min(10, max(0, v*10/maxV))
	style := Good
	switch {
	case v <= 0:
		style = Bad
	case filled <= 3:
		style = Warn
	}
	return style.Render(strings.Repeat("█", filled)) + Muted.Render(strings.Repeat("░", 10-filled)) + fmt.Sprintf(" %d", v)
}
