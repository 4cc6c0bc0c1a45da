package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/moxxy/internal/provider"
)

var providerCmd = &cobra.Command{
	Use:   "provider",
	Short: "Inspect and manage LLM providers",
}

var providerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every known provider (built-in and custom)",
	RunE:  runProviderList,
}

var (
	providerAddID        string
	providerAddName      string
	providerAddFormat    string
	providerAddBaseURL   string
	providerAddVaultKey  string
	providerAddAuthType  string
	providerAddDefModel  string
)

var providerAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a custom provider",
	RunE:  runProviderAdd,
}

func init() {
	providerAddCmd.Flags().StringVar(&providerAddID, "id", "", "provider id (required)")
	providerAddCmd.Flags().StringVar(&providerAddName, "name", "", "display name (required)")
	providerAddCmd.Flags().StringVar(&providerAddFormat, "format", "openai", "wire format: openai, gemini, anthropic")
	providerAddCmd.Flags().StringVar(&providerAddBaseURL, "base-url", "", "API base URL (required)")
	providerAddCmd.Flags().StringVar(&providerAddAuthType, "auth-type", "bearer", "auth type: bearer, query_param, header")
	providerAddCmd.Flags().StringVar(&providerAddVaultKey, "vault-key", "", "vault key holding this provider's API key (required)")
	providerAddCmd.Flags().StringVar(&providerAddDefModel, "default-model", "", "default model id")
	providerAddCmd.MarkFlagRequired("id")
	providerAddCmd.MarkFlagRequired("name")
	providerAddCmd.MarkFlagRequired("base-url")
	providerAddCmd.MarkFlagRequired("vault-key")

	providerCmd.AddCommand(providerListCmd, providerAddCmd)
}

func runProviderList(cmd *cobra.Command, args []string) error {
	ctx, err := newCliContext()
	if err != nil {
		return err
	}
	defer ctx.close()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tFORMAT\tCUSTOM\tDEFAULT MODEL")
	for _, p := range ctx.Providers.Providers {
		fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%s\n", p.ID, p.Name, p.ApiFormat, p.Custom, p.DefaultModel)
	}
	return w.Flush()
}

func runProviderAdd(cmd *cobra.Command, args []string) error {
	ctx, err := newCliContext()
	if err != nil {
		return err
	}
	defer ctx.close()

	def := provider.ProviderDef{
		ID:           providerAddID,
		Name:         providerAddName,
		ApiFormat:    provider.ApiFormat(providerAddFormat),
		BaseURL:      providerAddBaseURL,
		DefaultModel: providerAddDefModel,
		Auth: provider.AuthConfig{
			Type:     provider.AuthType(providerAddAuthType),
			VaultKey: providerAddVaultKey,
		},
	}
	if err := ctx.Providers.AddCustomProvider(def); err != nil {
		return fmt.Errorf("add custom provider: %w", err)
	}
	color.Green("added custom provider %q", providerAddID)
	return nil
}
