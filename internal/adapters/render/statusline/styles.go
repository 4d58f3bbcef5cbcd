package statusline

import "github.com/charmbracelet/lipgloss"

type styles struct {
	usageLow  lipgloss.Style
	usageWarn lipgloss.Style
	usageHigh lipgloss.Style
	watch     lipgloss.Style
	firing    lipgloss.Style
	fired     lipgloss.Style
	unknown   lipgloss.Style
}

func newStyles() styles {
	return styles{
		usageLow:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		usageWarn: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		usageHigh: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		watch:     lipgloss.NewStyle().Faint(true),
		firing:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		fired:     lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		unknown:   lipgloss.NewStyle().Faint(true),
	}
}
