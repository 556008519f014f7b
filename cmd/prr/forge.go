package main

import (
	"fmt"

	"github.com/danobi/prr/internal/config"
	"github.com/danobi/prr/internal/forge"
)

// buildForge constructs the Forge implementation for ref.Host from cfg.
func buildForge(cfg *config.Config, host forge.Host) (forge.Forge, error) {
	switch host {
	case forge.HostGithub:
		return forge.NewGithubForge(cfg.Token)
	case forge.HostGitlab:
		return forge.NewGitlabForge(cfg.URL, cfg.Token), nil
	default:
		return nil, fmt.Errorf("unsupported forge host %v", host)
	}
}
