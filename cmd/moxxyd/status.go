package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/moxxy/cmd/status_tui"
)

var statusCmd = &cobra.Command{
	Use:   "status <agent> <job-id>",
	Short: "Watch a job's task graph status live in the terminal",
	Args:  cobra.ExactArgs(2),
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	agentName, jobID := args[0], args[1]
	ctx, err := newCliContext()
	if err != nil {
		return err
	}
	defer ctx.close()

	s, err := ctx.Registry.Agent(agentName)
	if err != nil {
		return err
	}

	p := tea.NewProgram(status_tui.New(s, jobID))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run status tui: %w", err)
	}
	return nil
}
