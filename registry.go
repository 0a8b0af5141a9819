package docsum

import (
	"github.com/xostack/docsum/claude"
	"github.com/xostack/docsum/gemini"
	"github.com/xostack/docsum/grok"
	"github.com/xostack/docsum/groq"
	"github.com/xostack/docsum/openai"
	"github.com/xostack/docsum/provider"
)

// Constructor builds an adapter for one backend.
type Constructor func(apiKey, model string, opts provider.Options) Provider

type registration struct {
	descriptor provider.Descriptor
	newClient  Constructor
}

// registry lists every supported backend in presentation order.
// Adding a backend means adding one entry here.
var registry = []registration{
	{gemini.Descriptor, func(apiKey, model string, opts provider.Options) Provider {
		return gemini.NewClient(apiKey, model, opts)
	}},
	{openai.Descriptor, func(apiKey, model string, opts provider.Options) Provider {
		return openai.NewClient(apiKey, model, opts)
	}},
	{claude.Descriptor, func(apiKey, model string, opts provider.Options) Provider {
		return claude.NewClient(apiKey, model, opts)
	}},
	{groq.Descriptor, func(apiKey, model string, opts provider.Options) Provider {
		return groq.NewClient(apiKey, model, opts)
	}},
	{grok.Descriptor, func(apiKey, model string, opts provider.Options) Provider {
		return grok.NewClient(apiKey, model, opts)
	}},
}

func lookup(identifier string) (registration, bool) {
	id := provider.NormalizeID(identifier)
	for _, r := range registry {
		if r.descriptor.ID == id {
			return r, true
		}
	}
	return registration{}, false
}

// GetProvider returns a fresh adapter for identifier, matched
// case-insensitively. An empty model selects the provider's default.
// The boolean is false for unknown identifiers.
func GetProvider(identifier, apiKey, model string, opts provider.Options) (Provider, bool) {
	r, ok := lookup(identifier)
	if !ok {
		return nil, false
	}
	return r.newClient(apiKey, model, opts), true
}

// GetProviderMetadata returns the descriptor registered for identifier.
func GetProviderMetadata(identifier string) (provider.Descriptor, bool) {
	r, ok := lookup(identifier)
	if !ok {
		return provider.Descriptor{}, false
	}
	return r.descriptor.Clone(), true
}

// ListAllProviderMetadata returns every descriptor in registration order.
func ListAllProviderMetadata() []provider.Descriptor {
	out := make([]provider.Descriptor, 0, len(registry))
	for _, r := range registry {
		out = append(out, r.descriptor.Clone())
	}
	return out
}

// ProviderIDs returns the registered identifiers in registration order.
func ProviderIDs() []string {
	ids := make([]string, 0, len(registry))
	for _, r := range registry {
		ids = append(ids, r.descriptor.ID)
	}
	return ids
}

// IsSupported reports whether identifier names a registered backend.
func IsSupported(identifier string) bool {
	_, ok := lookup(identifier)
	return ok
}
