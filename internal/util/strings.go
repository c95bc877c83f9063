// Package util provides shared utility functions used across the codebase.
package util

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Truncate shortens s to maxLen runes, appending "..." when content is cut.
// It does not account for ANSI escape codes; for styled terminal output use
// TruncateWidth.
func Truncate(s string, maxLen int) string {
	if maxLen <= 3 {
		return "..."
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}

// TruncateWidth shortens s to maxWidth visual columns, appending "..." when
// content is cut. ANSI escape sequences and wide characters are handled
// correctly, so it is safe for lipgloss-styled lines.
func TruncateWidth(s string, maxWidth int) string {
	if maxWidth <= 3 {
		return "..."
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	return ansi.Truncate(s, maxWidth, "...")
}
