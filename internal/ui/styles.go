package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Palette
var (
	Primary = lipgloss.Color("#22d3ee") // cyan
	Good    = lipgloss.Color("#10B981") // emerald
	Caution = lipgloss.Color("#F59E0B") // amber
	Bad     = lipgloss.Color("#EF4444") // red
	Muted   = lipgloss.Color("#6B7280") // gray
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			MarginBottom(1)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Background(lipgloss.Color("#1F2937")).
			Padding(0, 2).
			MarginBottom(1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(Muted).
			MarginTop(1)

	SuccessStyle = lipgloss.NewStyle().Foreground(Good).Bold(true)
	ErrorStyle   = lipgloss.NewStyle().Foreground(Bad).Bold(true)
	WarningStyle = lipgloss.NewStyle().Foreground(Caution)
	MutedStyle   = lipgloss.NewStyle().Foreground(Muted)
	SpinnerStyle = lipgloss.NewStyle().Foreground(Primary)
)

var (
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(Primary).
				Align(lipgloss.Center)

	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
	TableRowStyle    = tableCellStyle.Foreground(lipgloss.Color("255"))
	TableRowAltStyle = tableCellStyle.Foreground(lipgloss.Color("245"))
)

// StateStyle colors a room state: amber while a caller waits, green once
// the call is active.
func StateStyle(state string) lipgloss.Style {
	switch state {
	case "WAITING":
		return tableCellStyle.Foreground(Caution)
	case "ACTIVE":
		return tableCellStyle.Foreground(Good)
	default:
		return tableCellStyle.Foreground(Muted)
	}
}

const (
	IconSuccess = "✅"
	IconError   = "❌"
	IconWarning = "⚠️"
	IconInfo    = "ℹ️"
	IconRoom    = "🚪"
	IconSignal  = "📡"
)

// PrintError writes to stderr so piped stats output stays clean.
func PrintError(msg string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", ErrorStyle.Render(IconError), ErrorStyle.Render(msg))
}

func PrintSuccessf(format string, args ...any) {
	fmt.Printf("%s %s\n", SuccessStyle.Render(IconSuccess), fmt.Sprintf(format, args...))
}

func PrintInfof(format string, args ...any) {
	fmt.Printf("%s %s\n", IconInfo, fmt.Sprintf(format, args...))
}
