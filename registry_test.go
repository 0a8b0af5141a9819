package docsum

import (
	"context"
	"testing"

	"github.com/xostack/docsum/provider"
)

func TestGetProvider_AllRegistered(t *testing.T) {
	tests := []struct {
		id           string
		defaultModel string
		maxChars     int
	}{
		{"gemini", "gemini-2.5-pro", 500000},
		{"openai", "gpt-4o", 100000},
		{"claude", "claude-sonnet-4-20250514", 150000},
		{"groq", "llama-3.3-70b-versatile", 24000},
		{"grok", "grok-3", 100000},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			p, ok := GetProvider(tt.id, "key", "", quiet)
			if !ok {
				t.Fatalf("Expected provider %s to be registered", tt.id)
			}
			defer p.Close()

			if p.ProviderName() != tt.id {
				t.Errorf("Expected provider name '%s', got '%s'", tt.id, p.ProviderName())
			}
			if p.Model() != tt.defaultModel {
				t.Errorf("Expected default model '%s', got '%s'", tt.defaultModel, p.Model())
			}

			d := p.Descriptor()
			if d.ID != tt.id || d.MaxChars != tt.maxChars || d.DefaultModel != tt.defaultModel {
				t.Errorf("Unexpected descriptor for %s: %+v", tt.id, d)
			}

			meta, ok := GetProviderMetadata(tt.id)
			if !ok || meta.ID != d.ID || meta.MaxChars != d.MaxChars {
				t.Errorf("Registry metadata disagrees with adapter descriptor for %s", tt.id)
			}
		})
	}
}

func TestGetProvider_CaseInsensitive(t *testing.T) {
	p, ok := GetProvider("Claude", "key", "", quiet)
	if !ok {
		t.Fatal("Expected mixed-case identifier to resolve")
	}
	if p.ProviderName() != "claude" {
		t.Errorf("Expected 'claude', got '%s'", p.ProviderName())
	}
}

func TestGetProvider_ModelOverride(t *testing.T) {
	p, ok := GetProvider("openai", "key", "gpt-4o-mini", quiet)
	if !ok {
		t.Fatal("Expected openai to resolve")
	}
	if p.Model() != "gpt-4o-mini" {
		t.Errorf("Expected override model, got '%s'", p.Model())
	}
}

func TestGetProvider_Unknown(t *testing.T) {
	p, ok := GetProvider("mistral", "key", "", quiet)
	if ok || p != nil {
		t.Error("Expected unknown provider to be absent")
	}

	if _, ok := GetProviderMetadata("mistral"); ok {
		t.Error("Expected no metadata for unknown provider")
	}
	if IsSupported("") {
		t.Error("Empty identifier should not be supported")
	}
}

func TestListAllProviderMetadata_Order(t *testing.T) {
	all := ListAllProviderMetadata()
	want := []string{"gemini", "openai", "claude", "groq", "grok"}

	if len(all) != len(want) {
		t.Fatalf("Expected %d providers, got %d", len(want), len(all))
	}
	for i, d := range all {
		if d.ID != want[i] {
			t.Errorf("Position %d: expected '%s', got '%s'", i, want[i], d.ID)
		}
		if d.DisplayName == "" || d.APIKeyURL == "" || len(d.Models) == 0 {
			t.Errorf("Descriptor %s is missing display data", d.ID)
		}
		if !d.HasModel(d.DefaultModel) {
			t.Errorf("Default model of %s is not in its catalogue", d.ID)
		}
	}

	ids := ProviderIDs()
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ProviderIDs()[%d] = '%s', want '%s'", i, ids[i], want[i])
		}
	}
}

func TestListAllProviderMetadata_ReturnsCopies(t *testing.T) {
	all := ListAllProviderMetadata()
	all[0].Models[0].ID = "mutated"

	again, _ := GetProviderMetadata(all[0].ID)
	if again.Models[0].ID == "mutated" {
		t.Error("Mutating returned metadata should not affect the registry")
	}
}

// fakeProvider checks the interface shape is implementable outside adapters.
type fakeProvider struct{}

func (*fakeProvider) Summarize(_ context.Context, text string) (string, error) { return text, nil }

func (*fakeProvider) TestConnection(context.Context) bool { return true }

func (*fakeProvider) ProviderName() string { return "fake" }

func (*fakeProvider) Model() string { return "fake-1" }

func (*fakeProvider) Descriptor() provider.Descriptor { return provider.Descriptor{ID: "fake"} }

func (*fakeProvider) Close() error { return nil }

func TestProvider_InterfaceSatisfied(t *testing.T) {
	var p Provider = &fakeProvider{}
	if p.ProviderName() != "fake" {
		t.Errorf("Unexpected name '%s'", p.ProviderName())
	}
}
