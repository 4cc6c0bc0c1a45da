package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage per-agent API tokens",
}

var tokenCreateCmd = &cobra.Command{
	Use:   "create <agent> <name>",
	Short: "Mint a new API token for an agent, printing the raw value once",
	Args:  cobra.ExactArgs(2),
	RunE:  runTokenCreate,
}

var tokenListCmd = &cobra.Command{
	Use:   "list <agent>",
	Short: "List an agent's issued tokens (never the raw value)",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokenList,
}

func init() {
	tokenCmd.AddCommand(tokenCreateCmd, tokenListCmd)
}

func runTokenCreate(cmd *cobra.Command, args []string) error {
	agentName, name := args[0], args[1]
	ctx, err := newCliContext()
	if err != nil {
		return err
	}
	defer ctx.close()

	s, err := ctx.Registry.Agent(agentName)
	if err != nil {
		return err
	}
	tok, err := s.CreateApiToken(name)
	if err != nil {
		return err
	}
	color.Green("created token %q for agent %q", name, agentName)
	fmt.Printf("%s\n", tok.RawToken)
	fmt.Println("this value will not be shown again")
	return nil
}

func runTokenList(cmd *cobra.Command, args []string) error {
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
	tokens, err := s.ListApiTokens()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCREATED")
	for _, t := range tokens {
		fmt.Fprintf(w, "%s\t%s\t%s\n", t.ID, t.Name, t.CreatedAt)
	}
	return w.Flush()
}
