package tui

import "github.com/charmbracelet/lipgloss"

// Styles contains the lipgloss styles shared by the resolver views.
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Selected lipgloss.Style
	Resolved lipgloss.Style
	Pending  lipgloss.Style
	Error    lipgloss.Style
	Muted    lipgloss.Style
	Border   lipgloss.Style
	Key      lipgloss.Style
	KeyDesc  lipgloss.Style
}

// DefaultStyles returns the default resolver styles.
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")).
			MarginBottom(1),
		Subtitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")),
		Resolved: lipgloss.NewStyle().
			Foreground(lipgloss.Color("46")),
		Pending: lipgloss.NewStyle().
			Foreground(lipgloss.Color("226")),
		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(1, 2),
		Key: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")),
		KeyDesc: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
	}
}
