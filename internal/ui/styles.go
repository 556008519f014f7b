// Package ui holds the small amount of terminal styling the CLI uses to
// format success/failure banners. It does not run an interactive program.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
)

// Success renders a one-line success banner.
func Success(msg string) string {
	return successStyle.Render("✓ ") + msg
}

// Failure renders a one-line failure banner, passing msg through
// formatUserError first so common `gh`/network failures read as
// actionable sentences instead of raw error text.
func Failure(msg string) string {
	return errorStyle.Render("✗ ") + formatUserError(msg)
}

// Info renders a one-line informational banner.
func Info(msg string) string {
	return infoStyle.Render("→ ") + msg
}

// Path highlights a filesystem path in CLI output, e.g. the review file
// path printed by `prr get`.
func Path(p string) string {
	return pathStyle.Render(p)
}

// formatUserError rewrites common gh-CLI and network failure substrings
// into plain-English sentences. Anything unrecognized passes through
// unchanged.
func formatUserError(msg string) string {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "gh cli not found"):
		return "GitHub CLI (gh) not found. Install it from https://cli.github.com"
	case strings.Contains(lower, "not authenticated"), strings.Contains(lower, "auth login"):
		return "Not authenticated. Run 'gh auth login' or set a token in your config."
	case strings.Contains(lower, "rate limit"):
		return "API rate limit reached. Wait a while and try again."
	case strings.Contains(lower, "deadline exceeded"), strings.Contains(lower, "timeout"):
		return "Request timed out."
	case strings.Contains(lower, "no such host"), strings.Contains(lower, "connection refused"):
		return "Network error: could not reach the forge."
	default:
		return msg
	}
}
