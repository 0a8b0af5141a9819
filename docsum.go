// Package docsum summarizes documents through interchangeable AI backends.
//
// This package offers one contract over several text-generation services:
//   - Google Gemini
//   - OpenAI GPT
//   - Anthropic Claude
//   - Groq
//   - xAI Grok
//
// Each backend lives in its own package and truncates input to its own
// context budget before sending it. The registry maps a provider identifier
// to its adapter, and the keystore package persists which provider,
// credential and model to use by default.
//
// Example usage:
//
//	store := keystore.Open(path, nil)
//	client, err := docsum.GetClient(store, "", provider.Options{})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	summary, err := client.Summarize(context.Background(), text)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(summary)
//
// For more control, look up an adapter directly:
//
//	client, ok := docsum.GetProvider("groq", apiKey, "", provider.Options{})
//	if !ok {
//		log.Fatal("unknown provider")
//	}
package docsum

import (
	"context"

	"github.com/xostack/docsum/provider"
)

// Provider is the interface every backend adapter implements.
//
// Adapters are cheap to construct and create their network client on first
// use; the client is reused for the remaining calls of that instance and is
// never shared with other instances.
type Provider interface {
	// Summarize returns a structured summary of text. Text longer than the
	// backend's character budget is cut and marked before sending, so the
	// summary covers the truncated text. Failures are returned as
	// *provider.Error tagged with the backend's name.
	Summarize(ctx context.Context, text string) (string, error)

	// TestConnection sends a minimal prompt and reports whether a non-empty
	// reply came back. It never returns an error; any failure is false.
	TestConnection(ctx context.Context) bool

	// ProviderName returns the lowercase registry identifier, e.g. "gemini".
	ProviderName() string

	// Model returns the model id requests are sent to.
	Model() string

	// Descriptor returns the provider's static metadata.
	Descriptor() provider.Descriptor

	// Close releases resources held by the lazily created client.
	Close() error
}
