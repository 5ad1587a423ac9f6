package chat

import "github.com/charmbracelet/lipgloss"

type styles struct {
	banner      lipgloss.Style
	header      lipgloss.Style
	user        lipgloss.Style
	agent       lipgloss.Style
	modelSuffix lipgloss.Style
	tool        lipgloss.Style
	alert       lipgloss.Style
	system      lipgloss.Style
	failure     lipgloss.Style
	hint        lipgloss.Style
	empty       lipgloss.Style
	member      lipgloss.Style
	spinner     lipgloss.Style
}

func newStyles() styles {
	return styles{
		banner:      lipgloss.NewStyle().Bold(true).Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("39")).Padding(0, 2),
		header:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		user:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252")),
		agent:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		modelSuffix: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		tool:        lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
		alert:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		system:      lipgloss.NewStyle().Foreground(lipgloss.Color("69")),
		failure:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		hint:        lipgloss.NewStyle().Faint(true),
		empty:       lipgloss.NewStyle().Faint(true),
		member:      lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		spinner:     lipgloss.NewStyle().Foreground(lipgloss.Color("69")),
	}
}
