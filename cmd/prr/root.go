package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/danobi/prr/internal/config"
	"github.com/danobi/prr/internal/logging"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "prr",
	Short: "prr reviews pull/merge requests as plain text files",
	Long: `prr fetches a pull or merge request's diff into a local text file,
lets you annotate it with inline comments and an overall verdict using your
editor of choice, and submits the finished review back to the forge.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.toml (default: $XDG_CONFIG_HOME/prr/config.toml)")
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfigAndLogger loads config.Config and builds the process logger
// from its nested logging settings, the shared setup step every
// subcommand besides "version" needs.
func loadConfigAndLogger() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	log := logging.New(cfg.Logging, nil)
	return cfg, log, nil
}
