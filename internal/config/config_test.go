package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfigFile(t, `
token = "ghp_abc123"
workdir = "/home/alice/.prr"

[logging]
level = "debug"
format = "json"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Token != "ghp_abc123" {
		t.Errorf("Token = %q, want ghp_abc123", cfg.Token)
	}
	if cfg.Workdir != "/home/alice/.prr" {
		t.Errorf("Workdir = %q", cfg.Workdir)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestLoadAppliesLoggingDefaults(t *testing.T) {
	path := writeConfigFile(t, `token = "ghp_abc123"`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Logging.Format = %q, want text", cfg.Logging.Format)
	}
}

func TestLoadMissingTokenFails(t *testing.T) {
	path := writeConfigFile(t, `workdir = "/tmp/reviews"`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for missing token")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfigFile(t, `token = "from-file"`)

	t.Setenv("PRR_TOKEN", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Token != "from-env" {
		t.Errorf("Token = %q, want from-env (env override)", cfg.Token)
	}
}

func TestReviewWorkdirConfigured(t *testing.T) {
	cfg := &Config{Workdir: "/home/alice/.prr"}
	got, err := cfg.ReviewWorkdir("github")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := filepath.Join("/home/alice/.prr", "github")
	if got != want {
		t.Errorf("ReviewWorkdir = %q, want %q", got, want)
	}
}

func TestReviewWorkdirRejectsTilde(t *testing.T) {
	cfg := &Config{Workdir: "~/repos"}
	if _, err := cfg.ReviewWorkdir("github"); err == nil {
		t.Fatal("expected error for workdir starting with ~")
	}
}

func TestReviewWorkdirDefaultsToXDGDataHome(t *testing.T) {
	cfg := &Config{}
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_DATA_HOME", "")

	got, err := cfg.ReviewWorkdir("gitlab")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := filepath.Join(home, ".local", "share", "prr", "gitlab")
	if got != want {
		t.Errorf("ReviewWorkdir = %q, want %q", got, want)
	}
}
