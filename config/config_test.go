package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultSettings(t *testing.T) {
	s := defaultSettings()

	if s.RequestTimeoutSeconds != DefaultTimeoutSeconds {
		t.Errorf("Expected default timeout %d, got %d", DefaultTimeoutSeconds, s.RequestTimeoutSeconds)
	}
	if s.Debug {
		t.Error("Expected debug to be off by default")
	}
	if s.Providers == nil {
		t.Error("Expected providers map to be initialised")
	}
}

func TestGetConfigFilePath_NoXDGConfigHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")

	path, err := GetConfigFilePath()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Should use ~/.config/docsum/settings.toml
	if !strings.Contains(path, filepath.Join(".config", "docsum", "settings.toml")) {
		t.Errorf("Expected path to contain '.config/docsum/settings.toml', got '%s'", path)
	}
}

func TestGetConfigFilePath_WithXDGConfigHome(t *testing.T) {
	testDir := "/tmp/test-config"
	t.Setenv("XDG_CONFIG_HOME", testDir)

	path, err := GetConfigFilePath()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expected := filepath.Join(testDir, "docsum", "settings.toml")
	if path != expected {
		t.Errorf("Expected path '%s', got '%s'", expected, path)
	}
}

func TestNewSettings(t *testing.T) {
	s := NewSettings(30, map[string]ProviderSettings{
		"groq": {BaseURL: "http://localhost:9999/v1"},
	})

	if s.RequestTimeoutSeconds != 30 {
		t.Errorf("Expected timeout 30, got %d", s.RequestTimeoutSeconds)
	}
	if s.Providers["groq"].BaseURL != "http://localhost:9999/v1" {
		t.Errorf("Unexpected groq base URL '%s'", s.Providers["groq"].BaseURL)
	}

	if NewSettings(10, nil).Providers == nil {
		t.Error("Expected nil providers to be replaced with an empty map")
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.toml")

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Expected no error for a missing file, got: %v", err)
	}
	if s.RequestTimeoutSeconds != DefaultTimeoutSeconds {
		t.Errorf("Expected default timeout, got %d", s.RequestTimeoutSeconds)
	}
}

func TestLoad_FromFile(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "settings.toml")

	configContent := `request_timeout_seconds = 45
debug = true
credentials_file = "/tmp/creds.json"

[providers.openai]
base_url = "http://localhost:8080/v1"
`

	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	s, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if s.RequestTimeoutSeconds != 45 {
		t.Errorf("Expected timeout 45, got %d", s.RequestTimeoutSeconds)
	}
	if !s.Debug {
		t.Error("Expected debug to be enabled")
	}
	if s.CredentialsFile != "/tmp/creds.json" {
		t.Errorf("Expected credentials file '/tmp/creds.json', got '%s'", s.CredentialsFile)
	}
	if s.Providers["openai"].BaseURL != "http://localhost:8080/v1" {
		t.Errorf("Expected openai base URL override, got '%s'", s.Providers["openai"].BaseURL)
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "settings.toml")
	if err := os.WriteFile(configPath, []byte("request_timeout_seconds = ["), 0600); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Expected an error for invalid TOML")
	}
	if !strings.Contains(err.Error(), "failed to decode TOML config file") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.toml")

	_, err := LoadFromFile(path)
	if err == nil {
		t.Fatal("Expected an error for a missing file")
	}

	expectedError := "configuration file not found at " + path
	if err.Error() != expectedError {
		t.Errorf("Expected error '%s', got '%s'", expectedError, err.Error())
	}
}

func TestSave_RoundTripAndPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.toml")
	in := NewSettings(15, map[string]ProviderSettings{"grok": {BaseURL: "http://x"}})
	in.Debug = true

	if err := Save(path, in); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Expected file to exist: %v", err)
	}
	if info.Mode().Perm() != DefaultFilePerm {
		t.Errorf("Expected file mode %o, got %o", DefaultFilePerm, info.Mode().Perm())
	}

	out, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if out.RequestTimeoutSeconds != 15 || !out.Debug || out.Providers["grok"].BaseURL != "http://x" {
		t.Errorf("Settings did not survive the round trip: %+v", out)
	}
}

func TestSettings_Timeout(t *testing.T) {
	if got := (Settings{RequestTimeoutSeconds: 5}).Timeout(); got != 5*time.Second {
		t.Errorf("Expected 5s, got %v", got)
	}
	if got := (Settings{}).Timeout(); got != DefaultTimeoutSeconds*time.Second {
		t.Errorf("Expected default timeout, got %v", got)
	}
}

func TestSettings_ProviderOptions(t *testing.T) {
	s := NewSettings(30, map[string]ProviderSettings{"claude": {BaseURL: "http://proxy"}})

	opts := s.ProviderOptions("Claude", nil)
	if opts.BaseURL != "http://proxy" {
		t.Errorf("Expected base URL override, got '%s'", opts.BaseURL)
	}
	if opts.Debug {
		t.Error("Expected debug off")
	}
	if opts.Logger == nil {
		t.Error("Expected a discarding logger when debug is off")
	}

	if other := s.ProviderOptions("gemini", nil); other.BaseURL != "" {
		t.Errorf("Expected no override for gemini, got '%s'", other.BaseURL)
	}
}
