package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/xostack/docsum"
	"github.com/xostack/docsum/provider"
)

func (a *app) providersCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "providers [provider]",
		Short: "Show supported providers and their models",
		Long: `List every supported provider, or show setup help for one provider.

Examples:
  docsum providers
  docsum providers groq
  docsum providers --format yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			all := docsum.ListAllProviderMetadata()
			if len(args) == 1 {
				d, ok := docsum.GetProviderMetadata(args[0])
				if !ok {
					return fmt.Errorf("%w: %s (supported: %s)", docsum.ErrUnknownProvider, args[0], strings.Join(docsum.ProviderIDs(), ", "))
				}
				all = []provider.Descriptor{d}
			}

			switch format {
			case "json":
				enc := json.NewEncoder(a.out)
				enc.SetIndent("", "  ")
				return enc.Encode(all)
			case "yaml":
				enc := yaml.NewEncoder(a.out)
				enc.SetIndent(2)
				defer enc.Close()
				return enc.Encode(all)
			case "table", "":
				if len(args) == 1 {
					a.printProviderHelp(all[0])
					return nil
				}
				return a.printProviderTable(all)
			default:
				return fmt.Errorf("unknown format %q (use table, json or yaml)", format)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: table, json or yaml")
	return cmd
}

func (a *app) printProviderTable(all []provider.Descriptor) error {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDEFAULT MODEL\tMAX CHARS\tFREE TIER\tCONFIGURED")
	for _, d := range all {
		configured := ""
		if a.store.ValidateProvider(d.ID) {
			configured = "yes"
		}
		free := ""
		if d.FreeTier {
			free = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", d.ID, d.DefaultModel, d.MaxChars, free, configured)
	}
	return tw.Flush()
}

func (a *app) printProviderHelp(d provider.Descriptor) {
	fmt.Fprintf(a.out, "%s (%s)\n", brand(d), d.ID)
	if d.HelpText != "" {
		fmt.Fprintf(a.out, "%s\n", d.HelpText)
	}
	fmt.Fprintln(a.out)

	bold.Fprintln(a.out, "Models:")
	for _, m := range d.Models {
		marker := " "
		if m.ID == d.DefaultModel {
			marker = "*"
		}
		fmt.Fprintf(a.out, "  %s %s  %s\n", marker, m.ID, faint.Sprint(m.Label))
	}
	if d.FallbackModel != "" {
		fmt.Fprintf(a.out, "  falls back to %s when the primary model fails\n", d.FallbackModel)
	}

	if len(d.SetupSteps) > 0 {
		fmt.Fprintln(a.out)
		bold.Fprintln(a.out, "Getting an API key:")
		for _, step := range d.SetupSteps {
			fmt.Fprintf(a.out, "  %s\n", step)
		}
	}
	if d.APIKeyURL != "" {
		fmt.Fprintf(a.out, "\n%s\n", d.APIKeyURL)
	}
}
