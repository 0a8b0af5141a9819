// Package gemini provides the summarization adapter for Google's Gemini models.
//
// Gemini is the richest-context backend and the only one with a retry budget:
// when the configured model fails, the request is retried once against a
// lighter fallback model before the error is returned.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/xostack/docsum/provider"
)

const (
	defaultGeminiModel  = "gemini-2.5-pro"
	fallbackGeminiModel = "gemini-2.5-flash"
	providerName        = "gemini"
	displayName         = "Gemini"
	// The 2.5 models accept ~1M tokens (~4M characters); summaries stay well below that.
	maxChars = 500000
)

// Descriptor describes the Gemini backend.
var Descriptor = provider.Descriptor{
	ID:          providerName,
	DisplayName: "Google Gemini",
	Models: []provider.Model{
		{ID: "gemini-2.5-pro", Label: "Gemini 2.5 Pro (Best quality)"},
		{ID: "gemini-2.5-flash", Label: "Gemini 2.5 Flash (Fast)"},
		{ID: "gemini-2.5-flash-lite", Label: "Gemini 2.5 Flash-Lite (Cheapest)"},
		{ID: "gemini-2.0-flash", Label: "Gemini 2.0 Flash"},
	},
	DefaultModel:  defaultGeminiModel,
	FallbackModel: fallbackGeminiModel,
	MaxChars:      maxChars,
	APIKeyURL:     "https://aistudio.google.com/app/apikey",
	HelpText:      "Free tier: 15 requests/minute. Recommended for most users!",
	SetupSteps: []string{
		"1. Go to Google AI Studio (aistudio.google.com)",
		"2. Sign in with your Google account",
		"3. Click 'Get API Key' in the sidebar",
		"4. Create a new API key",
		"5. Copy and paste it here",
	},
	FreeTier: true,
	Color:    "#4285F4",
}

// generator is the slice of the genai client the adapter needs.
type generator interface {
	generate(ctx context.Context, modelName, prompt string) (string, error)
	close() error
}

// Client implements the summarization contract for Gemini.
type Client struct {
	mu           sync.Mutex
	gen          generator
	newGenerator func(ctx context.Context) (generator, error)

	apiKey        string
	modelName     string
	fallbackModel string
	opts          provider.Options
}

// NewClient creates a Gemini adapter. The genai client is created on first use.
// An empty modelOverride selects gemini-2.5-pro.
func NewClient(apiKey string, modelOverride string, opts provider.Options) *Client {
	modelToUse := Descriptor.ResolveModel(modelOverride)
	if modelOverride != "" {
		opts.Debugf("Using overridden Gemini model: %s", modelToUse)
	} else {
		opts.Debugf("Using default Gemini model: %s", modelToUse)
	}

	c := &Client{
		apiKey:        apiKey,
		modelName:     modelToUse,
		fallbackModel: fallbackGeminiModel,
		opts:          opts,
	}
	c.newGenerator = c.dialGenAI
	return c
}

func (c *Client) dialGenAI(ctx context.Context) (generator, error) {
	clientOpts := []option.ClientOption{option.WithAPIKey(c.apiKey)}
	if c.opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(c.opts.BaseURL))
	}

	genaiClient, err := genai.NewClient(ctx, clientOpts...)
	if err != nil {
		c.opts.Logf("Error initializing Google GenAI client: %v. Make sure your API key is valid and has permissions.", err)
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &genaiGenerator{client: genaiClient, opts: c.opts}, nil
}

// genClient returns the instance's client, creating it on first use.
// A failed creation is not cached so a later call can try again.
func (c *Client) genClient(ctx context.Context) (generator, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gen == nil {
		gen, err := c.newGenerator(ctx)
		if err != nil {
			return nil, err
		}
		c.gen = gen
	}
	return c.gen, nil
}

// Summarize truncates text to the Gemini budget and asks the configured
// model for a summary, falling back to the lighter model once on failure.
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	text, truncated := provider.Truncate(text, maxChars)
	if truncated {
		c.opts.Debugf("Gemini input truncated to %d characters", maxChars)
	}

	out, err := c.generateWithFallback(ctx, provider.CombinedPrompt(text))
	if err != nil {
		return "", err
	}
	return out, nil
}

// TestConnection sends a minimal prompt, using the same fallback as
// Summarize, and reports whether any text came back.
func (c *Client) TestConnection(ctx context.Context) bool {
	out, err := c.generateWithFallback(ctx, provider.TestPrompt)
	if err != nil {
		c.opts.Debugf("Gemini connection test failed: %v", err)
		return false
	}
	return out != ""
}

func (c *Client) generateWithFallback(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", provider.NewError(displayName, 0, provider.ErrMissingAPIKey)
	}

	out, err := c.generateOnce(ctx, c.modelName, prompt)
	if err == nil {
		return out, nil
	}
	// A cancelled caller gets no retry.
	if c.fallbackModel == "" || c.fallbackModel == c.modelName || ctx.Err() != nil {
		return "", err
	}

	c.opts.Logf("Gemini model %s failed: %v. Retrying with %s", c.modelName, err, c.fallbackModel)
	return c.generateOnce(ctx, c.fallbackModel, prompt)
}

func (c *Client) generateOnce(ctx context.Context, modelName, prompt string) (string, error) {
	gen, err := c.genClient(ctx)
	if err != nil {
		return "", provider.NewError(displayName, 0, err)
	}

	out, err := gen.generate(ctx, modelName, prompt)
	if err != nil {
		return "", wrapError(err)
	}
	return out, nil
}

func wrapError(err error) error {
	var perr *provider.Error
	if errors.As(err, &perr) {
		return err
	}

	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return &provider.Error{Provider: displayName, Kind: provider.KindBlocked, Err: err}
	}

	status := 0
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		status = apiErr.Code
	}
	return provider.NewError(displayName, status, err)
}

// ProviderName returns the registry identifier of this provider.
func (c *Client) ProviderName() string {
	return providerName
}

// Model returns the primary model id.
func (c *Client) Model() string {
	return c.modelName
}

// Descriptor returns the static Gemini metadata.
func (c *Client) Descriptor() provider.Descriptor {
	return Descriptor.Clone()
}

// Close cleans up the genai client if one was created.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gen == nil {
		return nil
	}
	err := c.gen.close()
	c.gen = nil
	return err
}

type genaiGenerator struct {
	client *genai.Client
	opts   provider.Options
}

func (g *genaiGenerator) generate(ctx context.Context, modelName, prompt string) (string, error) {
	model := g.client.GenerativeModel(modelName)
	if model == nil {
		return "", fmt.Errorf("failed to get generative model: %s", modelName)
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}

	// Use the first candidate and concatenate its text parts.
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
			return "", provider.Errorf(displayName, provider.KindBlocked, "content generation blocked due to safety settings")
		}
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
			return "", provider.Errorf(displayName, provider.KindBlocked, "prompt blocked: %s", resp.PromptFeedback.BlockReason.String())
		}
		return "", provider.Errorf(displayName, provider.KindEmptyResponse, "response was empty or malformed")
	}

	var resultText string
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			resultText += string(txt)
		} else {
			g.opts.Debugf("Gemini client received non-text part: %T. Ignoring.", part)
		}
	}

	if resultText == "" {
		return "", provider.Errorf(displayName, provider.KindEmptyResponse, "response contained no usable text content")
	}
	return resultText, nil
}

func (g *genaiGenerator) close() error {
	return g.client.Close()
}
