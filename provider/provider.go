// Package provider holds the pieces shared by every backend adapter:
// static descriptors, construction options, the tagged error type and
// the truncation policy applied before a document is sent to a model.
//
// Adapters live in their own packages (gemini, openai, claude, groq, grok)
// and import this package; nothing here imports an adapter.
package provider

import (
	"io"
	"log"
	"strings"
	"unicode/utf8"
)

const (
	// TruncationMarker is appended to text that was cut to fit a backend's budget.
	TruncationMarker = "\n\n[Text truncated due to length...]"

	// SystemInstruction is the fixed instruction sent with every summary request.
	SystemInstruction = "You are a helpful assistant that creates clear, concise summaries of documents. " +
		"Provide a well-structured summary with key points and main ideas."

	// UserPrefix precedes the document text in the user message.
	UserPrefix = "Please provide a comprehensive summary of the following text:\n\n"

	// TestPrompt is the low-token prompt used to validate a credential.
	TestPrompt = "Say OK"

	// Generation parameters shared by all adapters.
	Temperature         = 0.3
	MaxSummaryTokens    = 2000
	MaxTestPromptTokens = 10
)

// Model is one entry of a provider's model catalogue.
type Model struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
}

// Descriptor is the static metadata describing a provider.
// Values are declared once per adapter package and never mutated.
type Descriptor struct {
	ID            string   `json:"id" yaml:"id"`
	DisplayName   string   `json:"display_name" yaml:"display_name"`
	Models        []Model  `json:"models" yaml:"models"`
	DefaultModel  string   `json:"default_model" yaml:"default_model"`
	FallbackModel string   `json:"fallback_model,omitempty" yaml:"fallback_model,omitempty"`
	MaxChars      int      `json:"max_chars" yaml:"max_chars"`
	APIKeyURL     string   `json:"api_key_url" yaml:"api_key_url"`
	HelpText      string   `json:"help_text" yaml:"help_text"`
	SetupSteps    []string `json:"setup_steps,omitempty" yaml:"setup_steps,omitempty"`
	FreeTier      bool     `json:"free_tier" yaml:"free_tier"`
	Color         string   `json:"color" yaml:"color"`
}

// HasModel reports whether id is part of the descriptor's catalogue.
func (d Descriptor) HasModel(id string) bool {
	for _, m := range d.Models {
		if m.ID == id {
			return true
		}
	}
	return false
}

// ModelLabel returns the human label for id, or id itself when the model
// is not in the catalogue (custom model ids are allowed).
func (d Descriptor) ModelLabel(id string) string {
	for _, m := range d.Models {
		if m.ID == id {
			return m.Label
		}
	}
	return id
}

// ResolveModel returns model, or the descriptor's default when model is empty.
func (d Descriptor) ResolveModel(model string) string {
	if model == "" {
		return d.DefaultModel
	}
	return model
}

// Clone returns a copy whose slices do not alias the original.
func (d Descriptor) Clone() Descriptor {
	out := d
	out.Models = append([]Model(nil), d.Models...)
	out.SetupSteps = append([]string(nil), d.SetupSteps...)
	return out
}

// Options carries construction settings common to all adapters.
type Options struct {
	// BaseURL overrides the vendor endpoint (proxies, tests). Empty keeps the SDK default.
	BaseURL string

	// Debug enables verbose logging of model selection and truncation.
	Debug bool

	// Logger receives adapter logs. Nil uses the standard logger.
	Logger *log.Logger
}

// Logf logs unconditionally.
func (o Options) Logf(format string, args ...any) {
	o.logger().Printf(format, args...)
}

// Debugf logs only when Debug is set.
func (o Options) Debugf(format string, args ...any) {
	if o.Debug {
		o.logger().Printf(format, args...)
	}
}

func (o Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.Default()
}

// DiscardLogger is a logger that drops everything; handy for tests and quiet callers.
var DiscardLogger = log.New(io.Discard, "", 0)

// Truncate limits text to budget characters (Unicode code points). When
// the text is longer it is cut and TruncationMarker is appended, so the
// result holds exactly budget characters followed by the marker.
// A non-positive budget disables truncation.
func Truncate(text string, budget int) (string, bool) {
	if budget <= 0 || utf8.RuneCountInString(text) <= budget {
		return text, false
	}
	n := 0
	for i := range text {
		if n == budget {
			return text[:i] + TruncationMarker, true
		}
		n++
	}
	return text, false
}

// UserMessage builds the user turn for backends that accept a separate
// system role.
func UserMessage(text string) string {
	return UserPrefix + text
}

// CombinedPrompt folds the system instruction into a single user prompt for
// backends that are sent one message only.
func CombinedPrompt(text string) string {
	return SystemInstruction + "\n\n" + UserPrefix + text
}

// NormalizeID lower-cases and trims a provider identifier so lookups and
// stored keys are case-insensitive.
func NormalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
