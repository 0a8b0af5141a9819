package cli

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/xostack/docsum"
	"github.com/xostack/docsum/provider"
)

func (a *app) keysCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage stored API keys",
		Long: `Add, list and remove provider API keys and choose the default provider.

Keys are stored base64 encoded in the credential file. This is not
encryption; the file is written readable by its owner only.

Examples:
  docsum keys add groq
  docsum keys add openai --key sk-... --model gpt-4o-mini --default
  docsum keys list
  docsum keys default claude
  docsum keys remove grok`,
	}
	cmd.AddCommand(
		a.keysListCommand(),
		a.keysAddCommand(),
		a.keysRemoveCommand(),
		a.keysDefaultCommand(),
	)
	return cmd
}

func (a *app) keysListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List configured providers",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries := a.store.ListProviders()
			if len(entries) == 0 {
				fmt.Fprintln(a.out, "No providers configured. Run 'docsum keys add <provider>'.")
				return nil
			}

			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PROVIDER\tKEY\tMODEL\tLABEL\tDEFAULT")
			for _, e := range entries {
				model, label := e.Model, ""
				if d, ok := docsum.GetProviderMetadata(e.Name); ok {
					label = d.ModelLabel(d.ResolveModel(e.Model))
					if model == "" {
						model = d.DefaultModel + " (default)"
					}
				}
				def := ""
				if e.IsDefault {
					def = "*"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.Name, e.APIKeyPreview, model, label, def)
			}
			return tw.Flush()
		},
	}
}

func (a *app) keysAddCommand() *cobra.Command {
	var (
		key        string
		model      string
		setDefault bool
		skipTest   bool
	)

	cmd := &cobra.Command{
		Use:   "add <provider>",
		Short: "Store an API key for a provider",
		Long: `Store an API key for a provider.

The key is checked with a short test request before it is saved unless
--skip-test is given. Without --key the key is read from the terminal
with input hidden.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := provider.NormalizeID(args[0])
			d, ok := docsum.GetProviderMetadata(id)
			if !ok {
				return fmt.Errorf("%w: %s (supported: %s)", docsum.ErrUnknownProvider, id, strings.Join(docsum.ProviderIDs(), ", "))
			}
			if model != "" && !d.HasModel(model) {
				warn(a.errOut, "%s is not in the %s catalogue; using it anyway", model, d.DisplayName)
			}

			if key == "" {
				if d.APIKeyURL != "" {
					fmt.Fprintf(a.errOut, "Get a key at %s\n", d.APIKeyURL)
				}
				var err error
				if key, err = readSecret(a.in, a.errOut, d.DisplayName+" API key"); err != nil {
					return err
				}
			}
			if key == "" {
				return errors.New("API key cannot be empty")
			}

			if !skipTest {
				fmt.Fprintf(a.errOut, "Testing connection to %s...\n", d.DisplayName)
				p, _ := docsum.GetProvider(id, key, model, a.providerOptions(id))
				defer p.Close()

				ctx, cancel := a.withTimeout(cmd.Context())
				defer cancel()
				if !p.TestConnection(ctx) {
					failure(a.errOut, "Connection test failed for %s", d.DisplayName)
					return fmt.Errorf("could not validate the %s API key; check the key or use --skip-test", d.DisplayName)
				}
			}

			if err := a.store.AddProvider(id, key, model, setDefault); err != nil {
				return err
			}
			success(a.out, "Saved %s API key", d.DisplayName)
			if def, _ := a.store.DefaultProvider(); def == id {
				fmt.Fprintf(a.out, "%s is the default provider\n", d.DisplayName)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "API key (prompted when omitted)")
	cmd.Flags().StringVarP(&model, "model", "m", "", "model to use instead of the provider default")
	cmd.Flags().BoolVar(&setDefault, "default", false, "make this the default provider")
	cmd.Flags().BoolVar(&skipTest, "skip-test", false, "save without testing the key")
	return cmd
}

func (a *app) keysRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <provider>",
		Aliases: []string{"rm"},
		Short:   "Remove a provider's API key",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := provider.NormalizeID(args[0])
			if !a.hasEntry(id) {
				return fmt.Errorf("provider '%s' is not configured", id)
			}
			if err := a.store.RemoveProvider(id); err != nil {
				return err
			}
			success(a.out, "Removed %s", id)
			if def, ok := a.store.DefaultProvider(); ok {
				fmt.Fprintf(a.out, "Default provider: %s\n", def)
			} else {
				fmt.Fprintln(a.out, "No default provider set")
			}
			return nil
		},
	}
}

func (a *app) keysDefaultCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "default [provider]",
		Short: "Show or set the default provider",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				def, ok := a.store.DefaultProvider()
				if !ok {
					fmt.Fprintln(a.out, "No default provider set")
					return nil
				}
				fmt.Fprintln(a.out, def)
				return nil
			}

			id := provider.NormalizeID(args[0])
			changed, err := a.store.SetDefaultProvider(id)
			if err != nil {
				return err
			}
			if !changed {
				return fmt.Errorf("provider '%s' is not configured; add a key first", id)
			}
			success(a.out, "Default provider set to %s", id)
			return nil
		},
	}
}

func (a *app) hasEntry(id string) bool {
	for _, e := range a.store.ListProviders() {
		if e.Name == id {
			return true
		}
	}
	return false
}
