// Command moxxyd is the moxxy daemon and CLI: it serves the orchestration
// core over its lifecycle-managed subsystems and exposes agent, job,
// token, vault, and provider management as cobra subcommands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/moxxy/internal/config"
	"github.com/mattsolo1/moxxy/internal/logging"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "moxxyd",
	Short: "moxxy orchestration daemon and CLI",
	Long:  `moxxyd hosts autonomous agents and their orchestration jobs on a local SQLite-backed store.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "directory to search for config.yaml (the current directory is also searched)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(agentCmd)
	rootCmd.AddCommand(jobCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(vaultCmd)
	rootCmd.AddCommand(providerCmd)
	rootCmd.AddCommand(statusCmd)
}

// loadConfig loads the daemon config and applies its logging level, the
// one piece of config every subcommand (not just serve) needs before it
// touches a store.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logging.SetLevel(cfg.Logging.Level)
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
