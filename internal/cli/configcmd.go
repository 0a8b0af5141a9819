package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/xostack/docsum/config"
)

func (a *app) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the settings file",
		Long: `Create and inspect the docsum settings file.

Settings hold the request timeout, debug logging, the credential file
location and per-provider endpoint overrides. API keys are managed with
'docsum keys'.

Examples:
  docsum config init
  docsum config init --timeout 60 --force
  docsum config show
  docsum config path`,
	}
	cmd.AddCommand(
		a.configInitCommand(),
		a.configShowCommand(),
		a.configPathCommand(),
	)
	return cmd
}

func (a *app) configInitCommand() *cobra.Command {
	var (
		timeout int
		force   bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a settings file with default values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.settingsPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("settings file already exists at %s (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("failed to access config file %s: %w", path, err)
			}

			s := config.NewSettings(timeout, nil)
			s.CredentialsFile = a.store.Path()
			if err := config.Save(path, s); err != nil {
				return err
			}
			success(a.out, "Settings written to %s", path)
			fmt.Fprintf(a.out, "Credential file: %s\n", s.CredentialsFile)
			return nil
		},
	}
	cmd.Flags().IntVar(&timeout, "timeout", config.DefaultTimeoutSeconds, "request timeout in seconds")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing settings file")
	return cmd
}

func (a *app) configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the settings file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.settingsPath()
			if err != nil {
				return err
			}
			s, err := config.LoadFromFile(path)
			if err != nil {
				return fmt.Errorf("%w; run 'docsum config init' to create one", err)
			}
			return toml.NewEncoder(a.out).Encode(s)
		},
	}
}

func (a *app) configPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the settings file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.settingsPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, path)
			return nil
		},
	}
}
