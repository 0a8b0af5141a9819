// Package grok provides the summarization adapter for xAI Grok models,
// reached through xAI's OpenAI-compatible endpoint.
package grok

import (
	"context"
	"errors"
	"sync"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/xostack/docsum/provider"
)

const (
	defaultGrokModel = "grok-3"
	providerName     = "grok"
	displayName      = "Grok"
	defaultBaseURL   = "https://api.x.ai/v1"
	maxChars         = 100000
)

// Descriptor describes the Grok backend.
var Descriptor = provider.Descriptor{
	ID:          providerName,
	DisplayName: "xAI Grok",
	Models: []provider.Model{
		{ID: "grok-3", Label: "Grok 3 (Recommended)"},
		{ID: "grok-3-mini", Label: "Grok 3 Mini (Fast)"},
		{ID: "grok-4", Label: "Grok 4 (Most capable)"},
	},
	DefaultModel: defaultGrokModel,
	MaxChars:     maxChars,
	APIKeyURL:    "https://console.x.ai",
	HelpText:     "Paid API with free monthly credits for new accounts.",
	SetupSteps: []string{
		"1. Go to console.x.ai",
		"2. Sign in with your X account or email",
		"3. Open the API Keys page",
		"4. Create a new API key",
		"5. Copy and paste it here",
	},
	Color: "#1DA1F2",
}

// Client implements the summarization contract for Grok.
type Client struct {
	once      sync.Once
	sdkClient *goopenai.Client
	apiKey    string
	modelName string
	opts      provider.Options
}

// NewClient creates a Grok adapter. The SDK client is built on first use.
func NewClient(apiKey string, modelOverride string, opts provider.Options) *Client {
	modelToUse := Descriptor.ResolveModel(modelOverride)
	if modelOverride != "" {
		opts.Debugf("Using overridden Grok model: %s", modelToUse)
	} else {
		opts.Debugf("Using default Grok model: %s", modelToUse)
	}

	return &Client{
		apiKey:    apiKey,
		modelName: modelToUse,
		opts:      opts,
	}
}

func (c *Client) client() *goopenai.Client {
	c.once.Do(func() {
		clientConfig := goopenai.DefaultConfig(c.apiKey)
		clientConfig.BaseURL = defaultBaseURL
		if c.opts.BaseURL != "" {
			clientConfig.BaseURL = c.opts.BaseURL
		}
		c.sdkClient = goopenai.NewClientWithConfig(clientConfig)
	})
	return c.sdkClient
}

// Summarize truncates text to the Grok budget and requests a summary using
// a system and a user message.
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	text, truncated := provider.Truncate(text, maxChars)
	if truncated {
		c.opts.Debugf("Grok input truncated to %d characters", maxChars)
	}

	return c.complete(ctx, goopenai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: provider.SystemInstruction},
			{Role: goopenai.ChatMessageRoleUser, Content: provider.UserMessage(text)},
		},
		MaxTokens:   provider.MaxSummaryTokens,
		Temperature: provider.Temperature,
	})
}

// TestConnection sends a minimal prompt and reports whether any text came back.
func (c *Client) TestConnection(ctx context.Context) bool {
	out, err := c.complete(ctx, goopenai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: provider.TestPrompt},
		},
		MaxTokens: provider.MaxTestPromptTokens,
	})
	if err != nil {
		c.opts.Debugf("Grok connection test failed: %v", err)
		return false
	}
	return out != ""
}

func (c *Client) complete(ctx context.Context, req goopenai.ChatCompletionRequest) (string, error) {
	if c.apiKey == "" {
		return "", provider.NewError(displayName, 0, provider.ErrMissingAPIKey)
	}

	resp, err := c.client().CreateChatCompletion(ctx, req)
	if err != nil {
		return "", provider.NewError(displayName, statusOf(err), err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", provider.Errorf(displayName, provider.KindEmptyResponse, "no response from API")
	}
	return resp.Choices[0].Message.Content, nil
}

func statusOf(err error) int {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

// ProviderName returns the registry identifier of this provider.
func (c *Client) ProviderName() string {
	return providerName
}

// Model returns the model id this adapter sends requests to.
func (c *Client) Model() string {
	return c.modelName
}

// Descriptor returns the static Grok metadata.
func (c *Client) Descriptor() provider.Descriptor {
	return Descriptor.Clone()
}

// Close is a no-op; the SDK holds no resources that need releasing.
func (c *Client) Close() error {
	return nil
}
