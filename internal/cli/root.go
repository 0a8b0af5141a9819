// Package cli implements the docsum command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/xostack/docsum"
	"github.com/xostack/docsum/config"
	"github.com/xostack/docsum/keystore"
	"github.com/xostack/docsum/provider"
)

// Version is set at build time.
var Version = "dev"

// app carries global flags and the state loaded before each command runs.
type app struct {
	configPath      string
	credentialsPath string
	debug           bool

	in     io.Reader
	out    io.Writer
	errOut io.Writer

	settings config.Settings
	store    *keystore.Store
	logger   *log.Logger
}

// NewRootCommand builds the command tree reading from in and writing to
// out and errOut.
func NewRootCommand(in io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &app{in: in, out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "docsum",
		Short: "Summarize documents with Gemini, OpenAI, Claude, Groq or Grok",
		Long: `docsum sends a document to an AI provider and prints a structured summary.

API keys are kept in a local credential file and one provider is the default.

Examples:
  docsum keys add groq
  docsum summarize report.txt
  docsum summarize --provider claude -o summary.md notes.txt
  cat notes.txt | docsum summarize -`,
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return a.load() },
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "settings file (default: $XDG_CONFIG_HOME/docsum/settings.toml)")
	root.PersistentFlags().StringVar(&a.credentialsPath, "credentials", "", "credential file (default: platform application data directory)")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		a.providersCommand(),
		a.keysCommand(),
		a.configCommand(),
		a.testCommand(),
		a.summarizeCommand(),
	)
	return root
}

// Execute runs the command line against the process's standard streams.
func Execute() error {
	root := NewRootCommand(os.Stdin, os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func (a *app) load() error {
	settings, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.debug {
		settings.Debug = true
	}
	a.settings = settings
	a.logger = log.New(a.errOut, "docsum: ", log.LstdFlags)

	path := a.credentialsPath
	if path == "" {
		path = settings.CredentialsFile
	}
	if path != "" {
		a.store = keystore.Open(path, a.logger)
	} else if a.store, err = keystore.OpenDefault(a.logger); err != nil {
		return err
	}

	if settings.Debug {
		a.logger.Printf("Using credential file %s", a.store.Path())
	}
	return nil
}

// settingsPath is the settings file in use: the --config flag or the XDG
// location.
func (a *app) settingsPath() (string, error) {
	if a.configPath != "" {
		return a.configPath, nil
	}
	return config.GetConfigFilePath()
}

func (a *app) providerOptions(id string) provider.Options {
	if a.settings.Debug {
		return a.settings.ProviderOptions(id, a.logger)
	}
	return a.settings.ProviderOptions(id, nil)
}

// withTimeout derives the per-request context from the settings.
func (a *app) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.settings.Timeout())
}

// client resolves a ready adapter for id, or for the default provider when
// id is empty.
func (a *app) client(id string) (docsum.Provider, error) {
	return a.clientFrom(a.store, id)
}

func (a *app) clientFrom(src docsum.CredentialSource, id string) (docsum.Provider, error) {
	if id == "" {
		def, ok := src.DefaultProvider()
		if !ok {
			return nil, fmt.Errorf("%w; run 'docsum keys add <provider>' first", docsum.ErrNoDefaultProvider)
		}
		id = def
	}
	return docsum.GetClient(src, id, a.providerOptions(id))
}
