package ui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205")).
		Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42"))

	errStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("196"))

	warnStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("214"))

	dimStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("244"))

	labelStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39"))
)
