package ui

import (
	"strings"
	"testing"
)

func TestSuccess(t *testing.T) {
	got := Success("Review file ready:")
	if !strings.Contains(got, "Review file ready:") {
		t.Errorf("Success() = %q, want to contain message", got)
	}
}

func TestFailureFormatsKnownError(t *testing.T) {
	got := Failure("gh CLI not found in PATH")
	if !strings.Contains(got, "GitHub CLI (gh) not found") {
		t.Errorf("Failure() = %q, want rewritten gh-not-found message", got)
	}
}

func TestFailurePassesThroughUnknownError(t *testing.T) {
	got := Failure("something weird happened")
	if !strings.Contains(got, "something weird happened") {
		t.Errorf("Failure() = %q, want original message unchanged", got)
	}
}

func TestInfo(t *testing.T) {
	got := Info("fetching diff")
	if !strings.Contains(got, "fetching diff") {
		t.Errorf("Info() = %q, want to contain message", got)
	}
}

func TestPath(t *testing.T) {
	got := Path("/home/alice/.local/share/prr/github/24.prr")
	if !strings.Contains(got, "/home/alice/.local/share/prr/github/24.prr") {
		t.Errorf("Path() = %q, want to contain the path", got)
	}
}

func TestFormatUserError(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains string
	}{
		{"gh cli not found", "gh CLI not found in PATH", "GitHub CLI (gh) not found"},
		{"not authenticated", "not authenticated with github", "Not authenticated"},
		{"auth login variant", "run gh auth login first", "Not authenticated"},
		{"rate limit", "rate limit exceeded", "rate limit reached"},
		{"timeout", "context deadline exceeded", "timed out"},
		{"generic timeout", "request timeout after 30s", "timed out"},
		{"no such host", "dial tcp: no such host", "Network error"},
		{"connection refused", "connection refused", "Network error"},
		{"unknown error passthrough", "something weird happened", "something weird happened"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatUserError(tt.input)
			if !strings.Contains(got, tt.contains) {
				t.Errorf("formatUserError(%q) = %q, want to contain %q", tt.input, got, tt.contains)
			}
		})
	}
}
