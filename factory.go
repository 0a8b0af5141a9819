package docsum

import (
	"errors"
	"fmt"

	"github.com/xostack/docsum/provider"
)

var (
	// ErrNoDefaultProvider is returned when no provider was named and none is set as default.
	ErrNoDefaultProvider = errors.New("no default provider configured")

	// ErrMissingCredential is returned when the chosen provider has no stored API key.
	ErrMissingCredential = errors.New("no API key stored for provider")

	// ErrUnknownProvider is returned when the chosen provider is not registered.
	ErrUnknownProvider = errors.New("unsupported provider")
)

// CredentialSource is the part of the credential store GetClient reads.
// *keystore.Store satisfies it.
type CredentialSource interface {
	DefaultProvider() (string, bool)
	APIKey(identifier string) (string, bool)
	Model(identifier string) (string, bool)
}

// GetClient resolves a provider from the credential store and returns a
// ready adapter. An empty providerID selects the store's default provider;
// the stored model for that provider is used when one was selected.
//
// The function checks that:
//   - a provider is named or a default exists
//   - the provider is registered
//   - a credential is stored for it
//
// Making it a variable to allow for easy mocking in tests.
var GetClient = func(src CredentialSource, providerID string, opts provider.Options) (Provider, error) {
	id := provider.NormalizeID(providerID)
	if id == "" {
		def, ok := src.DefaultProvider()
		if !ok {
			return nil, ErrNoDefaultProvider
		}
		id = def
	}

	if !IsSupported(id) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, id)
	}

	apiKey, ok := src.APIKey(id)
	if !ok || apiKey == "" {
		return nil, fmt.Errorf("%w '%s'", ErrMissingCredential, id)
	}

	model, _ := src.Model(id)
	opts.Debugf("Creating %s client (model: %q)", id, model)

	client, _ := GetProvider(id, apiKey, model, opts)
	return client, nil
}

// WithModel wraps src so that every provider resolves to model instead of
// its stored selection. An empty model returns src unchanged.
func WithModel(src CredentialSource, model string) CredentialSource {
	if model == "" {
		return src
	}
	return modelOverride{CredentialSource: src, model: model}
}

type modelOverride struct {
	CredentialSource
	model string
}

func (m modelOverride) Model(string) (string, bool) { return m.model, true }
