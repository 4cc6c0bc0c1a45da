package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/moxxy/internal/worker"
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Manage orchestrator agents",
}

var agentCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create (or re-open) an agent's store with default config",
	Args:  cobra.ExactArgs(1),
	RunE:  runAgentCreate,
}

var agentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known agents",
	RunE:  runAgentList,
}

var agentDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete an agent's store and data directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runAgentDelete,
}

func init() {
	agentCmd.AddCommand(agentCreateCmd, agentListCmd, agentDeleteCmd)
}

func runAgentCreate(cmd *cobra.Command, args []string) error {
	name := args[0]
	ctx, err := newCliContext()
	if err != nil {
		return err
	}
	defer ctx.close()

	s, err := ctx.Registry.Agent(name)
	if err != nil {
		return fmt.Errorf("open agent store: %w", err)
	}
	if err := s.SaveAgentConfig(name, worker.DefaultAgentConfig()); err != nil {
		return fmt.Errorf("save default agent config: %w", err)
	}
	color.Green("agent %q ready at %s", name, s.Path())
	return nil
}

func runAgentList(cmd *cobra.Command, args []string) error {
	ctx, err := newCliContext()
	if err != nil {
		return err
	}
	defer ctx.close()

	agentsDir := filepath.Join(ctx.Config.DataDir, "agents")
	entries, err := os.ReadDir(agentsDir)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("no agents yet")
			return nil
		}
		return fmt.Errorf("list agents dir: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDEFAULT MODE\tDEFAULT TEMPLATE")
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		s, err := ctx.Registry.Agent(e.Name())
		if err != nil {
			continue
		}
		cfg, err := s.GetAgentConfig(e.Name())
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Name(), cfg.DefaultWorkerMode, cfg.DefaultTemplateID)
	}
	return w.Flush()
}

func runAgentDelete(cmd *cobra.Command, args []string) error {
	name := args[0]
	ctx, err := newCliContext()
	if err != nil {
		return err
	}
	defer ctx.close()

	agentDir := filepath.Join(ctx.Config.DataDir, "agents", name)
	if _, err := os.Stat(agentDir); os.IsNotExist(err) {
		return fmt.Errorf("agent %q not found", name)
	}
	if err := os.RemoveAll(agentDir); err != nil {
		return fmt.Errorf("delete agent dir: %w", err)
	}
	color.Yellow("agent %q deleted", name)
	return nil
}
