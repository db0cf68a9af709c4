package cli

import "github.com/charmbracelet/lipgloss"

var (
	// Diagnostic severity styling
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555")).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F1FA8C")).
			Bold(true)

	NoteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8BE9FD"))

	// Dependency tree annotations
	DuplicatedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F1FA8C"))

	OutdatedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555"))

	VersionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	// Subtle text styling (status lines, dep-kind suffixes)
	SubtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	// Success styling
	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true)
)
