package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/moxxy/internal/lifecycle"
	"github.com/mattsolo1/moxxy/internal/logging"
	"github.com/mattsolo1/moxxy/internal/provider"
	"github.com/mattsolo1/moxxy/internal/store"
)

var log = logging.New("moxxyd")

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the moxxy daemon",
	Long:  `Start the orchestration core and block until interrupted.`,
	RunE:  runServe,
}

// registryComponent owns the lifetime of the store.Registry and the
// provider.Registry, opening both on OnInit and closing the store on
// OnShutdown. It satisfies lifecycle.Component.
type registryComponent struct {
	lifecycle.NoopComponent
	dataDir  string
	registry *store.Registry
	provider *provider.Registry
}

func (c *registryComponent) OnInit(ctx context.Context) error {
	c.registry = store.NewRegistry(c.dataDir)
	reg, err := provider.Load(c.dataDir)
	if err != nil {
		return fmt.Errorf("load provider registry: %w", err)
	}
	c.provider = reg
	if _, err := c.registry.Swarm(); err != nil {
		return fmt.Errorf("open swarm store: %w", err)
	}
	return nil
}

func (c *registryComponent) OnShutdown(ctx context.Context) error {
	return c.registry.CloseAll()
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	mgr := lifecycle.New()
	registries := &registryComponent{dataDir: cfg.DataDir}
	mgr.Attach(registries)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := mgr.Start(ctx); err != nil {
		return fmt.Errorf("start lifecycle: %w", err)
	}
	color.Green("moxxyd listening (data dir %s, listen addr %s)", cfg.DataDir, cfg.Server.ListenAddr)
	log.WithField("state", mgr.State()).Info("daemon ready")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	color.Yellow("shutting down")
	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())
	defer shutdownCancel()
	mgr.Shutdown(shutdownCtx)
	return nil
}
