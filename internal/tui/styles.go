package tui

import "github.com/charmbracelet/lipgloss"

// Theme holds the dashboard styles.
type Theme struct {
	Title     lipgloss.Style
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
	Label     lipgloss.Style
	Value     lipgloss.Style
	Focused   lipgloss.Style
	Muted     lipgloss.Style
	Box       lipgloss.Style
	Header    lipgloss.Style
	Selected  lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Footer    lipgloss.Style
}

// NewTheme returns the default palette.
func NewTheme() *Theme {
	primary := lipgloss.Color("#2563EB")
	muted := lipgloss.Color("#6B7280")
	warn := lipgloss.Color("#D97706")
	errColor := lipgloss.Color("#DC2626")
	ok := lipgloss.Color("#16A34A")

	return &Theme{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(primary),
		Tab:       lipgloss.NewStyle().Padding(0, 1).Foreground(muted),
		ActiveTab: lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(primary),
		Label:     lipgloss.NewStyle().Width(16).Foreground(muted),
		Value:     lipgloss.NewStyle(),
		Focused:   lipgloss.NewStyle().Foreground(primary).Underline(true),
		Muted:     lipgloss.NewStyle().Foreground(muted),
		Box:       lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(muted).Padding(0, 1),
		Header:    lipgloss.NewStyle().Bold(true),
		Selected:  lipgloss.NewStyle().Bold(true).Foreground(primary),
		Warning:   lipgloss.NewStyle().Foreground(warn),
		Error:     lipgloss.NewStyle().Foreground(errColor),
		Success:   lipgloss.NewStyle().Foreground(ok),
		Footer:    lipgloss.NewStyle().Foreground(muted).MarginTop(1),
	}
}
