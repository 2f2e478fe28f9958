package main

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("#FF79C6")
	colorInfo    = lipgloss.Color("#8BE9FD")
	colorSuccess = lipgloss.Color("#50FA7B")
	colorError   = lipgloss.Color("#FF5555")
	colorWarning = lipgloss.Color("#FFB86C")
	colorMuted   = lipgloss.Color("#6272A4")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	infoStyle = lipgloss.NewStyle().
			Foreground(colorInfo)

	successStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorSuccess)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorError)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	promptStyle = lipgloss.NewStyle().
			Foreground(colorInfo).
			Bold(true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "⚠"
	iconInfo    = "ℹ"
	iconPointer = "❯"
)
