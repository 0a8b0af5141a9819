// Package config handles loading and saving docsum application settings.
//
// Settings live in a TOML file following the XDG Base Directory
// specification. They cover behaviour around the core (request timeout,
// debug logging, where the credential file lives and per-provider endpoint
// overrides). Credentials themselves are not stored here; see the keystore
// package.
//
// Example TOML settings:
//
//	request_timeout_seconds = 120
//	debug = false
//	credentials_file = "/home/me/.document_summarizer/config.json"
//
//	[providers.groq]
//	base_url = "https://proxy.internal/groq/v1"
//
// Example programmatic usage:
//
//	s := config.NewSettings(60, map[string]config.ProviderSettings{
//		"openai": {BaseURL: "http://localhost:8080/v1"},
//	})
package config

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/xostack/docsum/provider"
)

const (
	appName          = "docsum"
	settingsFileName = "settings.toml"
	DefaultDirPerm   = 0750 // rwxr-x---
	DefaultFilePerm  = 0600 // rw-------

	// DefaultTimeoutSeconds bounds a single summarize or connection test.
	DefaultTimeoutSeconds = 120
)

// Settings holds the application's configuration.
type Settings struct {
	// RequestTimeoutSeconds sets the deadline the caller applies to each
	// backend request. If <= 0, DefaultTimeoutSeconds is used.
	RequestTimeoutSeconds int `toml:"request_timeout_seconds"`

	// Debug turns on verbose adapter logging.
	Debug bool `toml:"debug"`

	// CredentialsFile overrides the platform default location of the
	// credential store document.
	CredentialsFile string `toml:"credentials_file,omitempty"`

	// Providers contains per-provider overrides keyed by provider id.
	Providers map[string]ProviderSettings `toml:"providers,omitempty"`
}

// ProviderSettings holds overrides specific to one provider.
type ProviderSettings struct {
	// BaseURL replaces the vendor endpoint, e.g. for a proxy or gateway.
	// Example: "http://localhost:8080/v1"
	BaseURL string `toml:"base_url,omitempty"`
}

func defaultSettings() Settings {
	return Settings{
		RequestTimeoutSeconds: DefaultTimeoutSeconds,
		Providers:             map[string]ProviderSettings{},
	}
}

// NewSettings creates settings programmatically, without file I/O.
func NewSettings(timeoutSeconds int, providers map[string]ProviderSettings) Settings {
	if providers == nil {
		providers = map[string]ProviderSettings{}
	}
	return Settings{
		RequestTimeoutSeconds: timeoutSeconds,
		Providers:             providers,
	}
}

// GetConfigFilePath determines the settings file path based on XDG specs:
//   - If XDG_CONFIG_HOME is set, uses $XDG_CONFIG_HOME/docsum/settings.toml
//   - Otherwise, uses $HOME/.config/docsum/settings.toml
//
// The returned path may not exist.
func GetConfigFilePath() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not determine user home directory: %w", err)
		}
		configHome = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configHome, appName, settingsFileName), nil
}

// Load reads settings from path, or from GetConfigFilePath when path is
// empty. A missing file is not an error; defaults are returned instead.
// Values present in the file are merged over the defaults.
func Load(path string) (Settings, error) {
	if path == "" {
		p, err := GetConfigFilePath()
		if err != nil {
			return Settings{}, fmt.Errorf("failed to determine config path: %w", err)
		}
		path = p
	}

	s := defaultSettings()

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return Settings{}, fmt.Errorf("failed to access config file %s: %w", path, err)
	}

	meta, err := toml.DecodeFile(path, &s)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to decode TOML config file %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		fmt.Fprintf(os.Stderr, "Warning: Unknown configuration keys found in %s: %v\n", path, undecoded)
	}
	if s.Providers == nil {
		s.Providers = map[string]ProviderSettings{}
	}

	return s, nil
}

// LoadFromFile is the strict variant of Load: the file must exist.
func LoadFromFile(path string) (Settings, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Settings{}, fmt.Errorf("configuration file not found at %s", path)
		}
		return Settings{}, fmt.Errorf("failed to access config file %s: %w", path, err)
	}
	return Load(path)
}

// Save writes s to path, creating the parent directory if needed.
func Save(path string, s Settings) error {
	if path == "" {
		p, err := GetConfigFilePath()
		if err != nil {
			return fmt.Errorf("failed to determine config path: %w", err)
		}
		path = p
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DefaultDirPerm); err != nil {
		return fmt.Errorf("failed to create config directory %s: %w", dir, err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, DefaultFilePerm)
	if err != nil {
		return fmt.Errorf("failed to create config file %s: %w", path, err)
	}
	defer file.Close()

	if err := toml.NewEncoder(file).Encode(s); err != nil {
		return fmt.Errorf("failed to encode configuration to TOML: %w", err)
	}
	return nil
}

// Timeout returns the request timeout as a duration, applying the default.
func (s Settings) Timeout() time.Duration {
	if s.RequestTimeoutSeconds <= 0 {
		return DefaultTimeoutSeconds * time.Second
	}
	return time.Duration(s.RequestTimeoutSeconds) * time.Second
}

// ProviderOptions builds adapter options for the given provider id.
// A nil logger discards adapter output unless Debug is set, in which case
// the standard logger is used.
func (s Settings) ProviderOptions(id string, logger *log.Logger) provider.Options {
	opts := provider.Options{
		BaseURL: s.Providers[provider.NormalizeID(id)].BaseURL,
		Debug:   s.Debug,
		Logger:  logger,
	}
	if opts.Logger == nil && !s.Debug {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	return opts
}
