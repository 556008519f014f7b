// Package config loads prr's configuration: the forge API token, the
// review-file working directory, and the nested logger settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/danobi/prr/internal/logging"
)

// Config is prr's top-level configuration, loaded from config.toml with
// PRR_-prefixed environment overrides.
type Config struct {
	Token   string         `mapstructure:"token"`
	Workdir string         `mapstructure:"workdir"`
	URL     string         `mapstructure:"url"`
	Logging logging.Config `mapstructure:"logging"`
}

// Load reads configPath (or the default XDG location if empty) through
// viper, applying PRR_TOKEN / PRR_WORKDIR / PRR_URL environment overrides.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetEnvPrefix("prr")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(DefaultConfigDir())
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Token == "" {
		return nil, fmt.Errorf("config is missing required 'token' field")
	}

	return &cfg, nil
}

// DefaultConfigDir returns the platform-appropriate config directory,
// honoring XDG_CONFIG_HOME on Linux.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "prr")
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "prr")
	}
	return filepath.Join(home, ".config", "prr")
}

// ReviewWorkdir returns the directory under which review files for the
// given forge host are stored: Workdir joined with host if Workdir is set
// (it may not start with "~"), otherwise <XDG data home>/prr/<host>.
func (c *Config) ReviewWorkdir(host string) (string, error) {
	if c.Workdir != "" {
		if strings.HasPrefix(c.Workdir, "~") {
			return "", fmt.Errorf("workdir may not use '~' to denote home directory")
		}
		return filepath.Join(c.Workdir, host), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "prr", host), nil
}
