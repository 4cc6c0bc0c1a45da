package main

import (
	"fmt"

	"github.com/mattsolo1/moxxy/internal/config"
	"github.com/mattsolo1/moxxy/internal/orchestrator"
	"github.com/mattsolo1/moxxy/internal/provider"
	"github.com/mattsolo1/moxxy/internal/store"
)

// cliContext bundles the subsystems a one-shot CLI invocation needs. Unlike
// serve's lifecycle-managed registryComponent, these are opened fresh per
// command and never kept running.
type cliContext struct {
	Config    *config.Config
	Registry  *store.Registry
	Providers *provider.Registry
	Swarm     *store.Store
}

func newCliContext() (*cliContext, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	registry := store.NewRegistry(cfg.DataDir)
	providers, err := provider.Load(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("load provider registry: %w", err)
	}
	swarm, err := registry.Swarm()
	if err != nil {
		return nil, fmt.Errorf("open swarm store: %w", err)
	}
	return &cliContext{Config: cfg, Registry: registry, Providers: providers, Swarm: swarm}, nil
}

func (c *cliContext) close() {
	_ = c.Registry.CloseAll()
}

func (c *cliContext) runner() *orchestrator.Runner {
	return orchestrator.NewRunner(c.Registry, c.Providers, c.Config.DataDir)
}
