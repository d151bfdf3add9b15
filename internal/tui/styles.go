package tui

import "github.com/charmbracelet/lipgloss"

var (
	userLabelStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	botLabelStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	reminderLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	bannerStyle        = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("11")).Padding(0, 1)
	statusStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)
