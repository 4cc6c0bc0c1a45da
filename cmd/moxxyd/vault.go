package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/moxxy/internal/vault"
)

var vaultCmd = &cobra.Command{
	Use:   "vault",
	Short: "Manage an agent's secret vault",
}

var vaultSetCmd = &cobra.Command{
	Use:   "set <agent> <key> <value>",
	Short: "Store a secret under key in an agent's vault",
	Args:  cobra.ExactArgs(3),
	RunE:  runVaultSet,
}

var vaultListCmd = &cobra.Command{
	Use:   "list <agent>",
	Short: "List an agent's vault keys (never the values)",
	Args:  cobra.ExactArgs(1),
	RunE:  runVaultList,
}

func init() {
	vaultCmd.AddCommand(vaultSetCmd, vaultListCmd)
}

func runVaultSet(cmd *cobra.Command, args []string) error {
	agentName, key, value := args[0], args[1], args[2]
	ctx, err := newCliContext()
	if err != nil {
		return err
	}
	defer ctx.close()

	s, err := ctx.Registry.Agent(agentName)
	if err != nil {
		return err
	}
	v := vault.New(s.DB())
	if err := v.Set(key, value); err != nil {
		return err
	}
	color.Green("stored vault key %q for agent %q", key, agentName)
	return nil
}

func runVaultList(cmd *cobra.Command, args []string) error {
	agentName := args[0]
	ctx, err := newCliContext()
	if err != nil {
		return err
	}
	defer ctx.close()

	s, err := ctx.Registry.Agent(agentName)
	if err != nil {
		return err
	}
	v := vault.New(s.DB())
	keys, err := v.List()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEY")
	for _, k := range keys {
		fmt.Fprintln(w, k)
	}
	return w.Flush()
}
