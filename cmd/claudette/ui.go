package main

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Styles used by list/status/doctor output. Color codes match the standard
// 16-color palette so they degrade cleanly on basic terminals.
var (
	styleHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	styleGood   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleWarn   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	styleBad    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	styleMuted  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// isStdoutTTY reports whether stdout is an interactive terminal. Styled
// output is reserved for humans; pipes get plain text.
func isStdoutTTY() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// render applies style to s when stdout is a TTY, otherwise returns s as-is.
func render(style lipgloss.Style, s string) string {
	if !isStdoutTTY() {
		return s
	}
	return style.Render(s)
}
