package main

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dirStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	faintStyle = lipgloss.NewStyle().Faint(true)
)
