package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Base styles for captrans TUI components
var (
	// Header style for titles and section headers
	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			MarginBottom(1)

	// Label style for summary field labels
	StyleLabel = lipgloss.NewStyle().
			Foreground(ColorText).
			Bold(true)

	// Success style for positive feedback
	StyleSuccess = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// Error style for error messages
	StyleError = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	// Warning style for warnings
	StyleWarning = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// Muted style for secondary text
	StyleMuted = lipgloss.NewStyle().
			Foreground(ColorMuted)
)

const logoASCII = `
                 _
  ___ __ _ _ __ | |_ _ __ __ _ _ __  ___
 / __/ _' | '_ \| __| '__/ _' | '_ \/ __|
| (_| (_| | |_) | |_| | | (_| | | | \__ \
 \___\__,_| .__/ \__|_|  \__,_|_| |_|___/
          |_|                            `

// Logo returns the captrans ASCII art
func Logo() string {
	return StyleHeader.Render(strings.Trim(logoASCII, "\n"))
}
