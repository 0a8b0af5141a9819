// Package claude provides the summarization adapter for Anthropic Claude models.
package claude

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/xostack/docsum/provider"
)

const (
	defaultClaudeModel = "claude-sonnet-4-20250514"
	providerName       = "claude"
	displayName        = "Claude"
	maxChars           = 150000 // 200k-token context, kept efficient
)

// Descriptor describes the Claude backend.
var Descriptor = provider.Descriptor{
	ID:          providerName,
	DisplayName: "Anthropic Claude",
	Models: []provider.Model{
		{ID: "claude-sonnet-4-20250514", Label: "Claude Sonnet 4 (Recommended)"},
		{ID: "claude-opus-4-20250514", Label: "Claude Opus 4 (Most capable)"},
		{ID: "claude-3-7-sonnet-20250219", Label: "Claude 3.7 Sonnet"},
		{ID: "claude-3-5-haiku-20241022", Label: "Claude 3.5 Haiku (Fast)"},
	},
	DefaultModel: defaultClaudeModel,
	MaxChars:     maxChars,
	APIKeyURL:    "https://console.anthropic.com/settings/keys",
	HelpText:     "Paid only. High-quality responses.",
	SetupSteps: []string{
		"1. Go to console.anthropic.com",
		"2. Sign up and verify email",
		"3. Navigate to API Keys",
		"4. Create a new key",
		"5. Add credits in Billing",
	},
	Color: "#CC785C",
}

// Client implements the summarization contract for Claude.
type Client struct {
	once      sync.Once
	sdkClient *anthropic.Client
	apiKey    string
	modelName string
	opts      provider.Options
}

// NewClient creates a Claude adapter. The SDK client is built on first use.
func NewClient(apiKey string, modelOverride string, opts provider.Options) *Client {
	modelToUse := Descriptor.ResolveModel(modelOverride)
	if modelOverride != "" {
		opts.Debugf("Using overridden Claude model: %s", modelToUse)
	} else {
		opts.Debugf("Using default Claude model: %s", modelToUse)
	}

	return &Client{
		apiKey:    apiKey,
		modelName: modelToUse,
		opts:      opts,
	}
}

func (c *Client) client() *anthropic.Client {
	c.once.Do(func() {
		reqOpts := []option.RequestOption{
			option.WithAPIKey(c.apiKey),
			option.WithMaxRetries(0),
		}
		if c.opts.BaseURL != "" {
			reqOpts = append(reqOpts, option.WithBaseURL(c.opts.BaseURL))
		}
		client := anthropic.NewClient(reqOpts...)
		c.sdkClient = &client
	})
	return c.sdkClient
}

// Summarize truncates text to the Claude budget and requests a summary with
// the instruction passed as the top-level system prompt.
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	text, truncated := provider.Truncate(text, maxChars)
	if truncated {
		c.opts.Debugf("Claude input truncated to %d characters", maxChars)
	}

	return c.complete(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.modelName),
		MaxTokens: provider.MaxSummaryTokens,
		System: []anthropic.TextBlockParam{
			{Text: provider.SystemInstruction},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(provider.UserMessage(text))),
		},
		Temperature: anthropic.Float(provider.Temperature),
	})
}

// TestConnection sends a minimal prompt and reports whether any text came back.
func (c *Client) TestConnection(ctx context.Context) bool {
	out, err := c.complete(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.modelName),
		MaxTokens: provider.MaxTestPromptTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(provider.TestPrompt)),
		},
	})
	if err != nil {
		c.opts.Debugf("Claude connection test failed: %v", err)
		return false
	}
	return out != ""
}

func (c *Client) complete(ctx context.Context, params anthropic.MessageNewParams) (string, error) {
	if c.apiKey == "" {
		return "", provider.NewError(displayName, 0, provider.ErrMissingAPIKey)
	}

	message, err := c.client().Messages.New(ctx, params)
	if err != nil {
		status := 0
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			status = apiErr.StatusCode
		}
		return "", provider.NewError(displayName, status, err)
	}

	var content strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}

	if content.Len() == 0 {
		return "", provider.Errorf(displayName, provider.KindEmptyResponse, "no response from API")
	}
	return content.String(), nil
}

// ProviderName returns the registry identifier of this provider.
func (c *Client) ProviderName() string {
	return providerName
}

// Model returns the model id this adapter sends requests to.
func (c *Client) Model() string {
	return c.modelName
}

// Descriptor returns the static Claude metadata.
func (c *Client) Descriptor() provider.Descriptor {
	return Descriptor.Clone()
}

// Close is a no-op; the SDK holds no resources that need releasing.
func (c *Client) Close() error {
	return nil
}
