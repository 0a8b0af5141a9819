package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/xostack/docsum"
	"github.com/xostack/docsum/config"
	"github.com/xostack/docsum/provider"
)

// minInputChars is the shortest text worth summarizing.
const minInputChars = 50

var errInputTooShort = fmt.Errorf("text is too short to summarize (minimum %d characters)", minInputChars)

func (a *app) summarizeCommand() *cobra.Command {
	var (
		providerID string
		model      string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "summarize <file|->",
		Short: "Summarize a plain-text document",
		Long: `Summarize a plain-text document with the default or chosen provider.

Use - to read from standard input. Documents longer than the provider's
limit are truncated before sending, and the summary covers the truncated
text.

Examples:
  docsum summarize report.txt
  docsum summarize --provider gemini -o summary.md report.txt
  pbpaste | docsum summarize -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := a.readInput(args[0])
			if err != nil {
				return err
			}
			text = strings.TrimSpace(text)
			if utf8.RuneCountInString(text) < minInputChars {
				return errInputTooShort
			}

			p, err := a.summarizer(providerID, model)
			if err != nil {
				return err
			}
			defer p.Close()

			d := p.Descriptor()
			if n := utf8.RuneCountInString(text); n > d.MaxChars {
				warn(a.errOut, "Document has %d characters; %s reads the first %d", n, d.DisplayName, d.MaxChars)
			}
			fmt.Fprintf(a.errOut, "Summarizing with %s (%s)...\n", brand(d), p.Model())

			ctx, cancel := a.withTimeout(cmd.Context())
			defer cancel()

			summary, err := p.Summarize(ctx, text)
			if err != nil {
				return summarizeError(err)
			}

			if output == "" {
				fmt.Fprintln(a.out, summary)
				return nil
			}
			if err := os.WriteFile(output, []byte(summary+"\n"), config.DefaultFilePerm); err != nil {
				return fmt.Errorf("failed to write summary to %s: %w", output, err)
			}
			success(a.out, "Summary written to %s", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&providerID, "provider", "p", "", "provider to use (default: the configured default)")
	cmd.Flags().StringVarP(&model, "model", "m", "", "model for this run only")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the summary to a file")
	return cmd
}

func (a *app) readInput(arg string) (string, error) {
	if arg == "-" {
		b, err := io.ReadAll(a.in)
		if err != nil {
			return "", fmt.Errorf("failed to read standard input: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(arg)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", arg, err)
	}
	return string(b), nil
}

// summarizer returns the adapter for this run. A model override replaces
// the stored model selection.
func (a *app) summarizer(providerID, model string) (docsum.Provider, error) {
	if model == "" {
		return a.client(providerID)
	}
	return a.clientFrom(docsum.WithModel(a.store, model), providerID)
}

// summarizeError adds a hint for the error kinds a user can act on.
func summarizeError(err error) error {
	var perr *provider.Error
	if !errors.As(err, &perr) {
		return err
	}
	switch perr.Kind {
	case provider.KindUnauthorized:
		return fmt.Errorf("%w (update the key with 'docsum keys add %s')", err, strings.ToLower(perr.Provider))
	case provider.KindRateLimited:
		return fmt.Errorf("%w (rate limited; wait and retry or switch provider with --provider)", err)
	default:
		return err
	}
}
