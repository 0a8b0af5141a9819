// Package openai provides the summarization adapter for OpenAI GPT models
// using the official SDK.
package openai

import (
	"context"
	"errors"
	"sync"

	sdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/xostack/docsum/provider"
)

const (
	defaultOpenAIModel = "gpt-4o"
	providerName       = "openai"
	displayName        = "OpenAI"
	maxChars           = 100000 // 128k-token context, kept efficient
)

// Descriptor describes the OpenAI backend.
var Descriptor = provider.Descriptor{
	ID:          providerName,
	DisplayName: "OpenAI (GPT)",
	Models: []provider.Model{
		{ID: "gpt-4o", Label: "GPT-4o (Recommended)"},
		{ID: "gpt-4o-mini", Label: "GPT-4o Mini (Fast & cheap)"},
		{ID: "gpt-4.1", Label: "GPT-4.1"},
		{ID: "gpt-4.1-mini", Label: "GPT-4.1 Mini"},
		{ID: "gpt-4-turbo", Label: "GPT-4 Turbo"},
	},
	DefaultModel: defaultOpenAIModel,
	MaxChars:     maxChars,
	APIKeyURL:    "https://platform.openai.com/api-keys",
	HelpText:     "Paid only. Requires billing setup.",
	SetupSteps: []string{
		"1. Go to platform.openai.com",
		"2. Sign up or log in",
		"3. Navigate to API Keys",
		"4. Create a new secret key",
		"5. Add a payment method",
	},
	Color: "#10A37F",
}

// Client implements the summarization contract for OpenAI.
type Client struct {
	once      sync.Once
	sdkClient *sdk.Client
	apiKey    string
	modelName string
	opts      provider.Options
}

// NewClient creates an OpenAI adapter. The SDK client is built on first use.
func NewClient(apiKey string, modelOverride string, opts provider.Options) *Client {
	modelToUse := Descriptor.ResolveModel(modelOverride)
	if modelOverride != "" {
		opts.Debugf("Using overridden OpenAI model: %s", modelToUse)
	} else {
		opts.Debugf("Using default OpenAI model: %s", modelToUse)
	}

	return &Client{
		apiKey:    apiKey,
		modelName: modelToUse,
		opts:      opts,
	}
}

func (c *Client) client() *sdk.Client {
	c.once.Do(func() {
		reqOpts := []option.RequestOption{
			option.WithAPIKey(c.apiKey),
			option.WithMaxRetries(0),
		}
		if c.opts.BaseURL != "" {
			reqOpts = append(reqOpts, option.WithBaseURL(c.opts.BaseURL))
		}
		client := sdk.NewClient(reqOpts...)
		c.sdkClient = &client
	})
	return c.sdkClient
}

// Summarize truncates text to the OpenAI budget and requests a summary
// using a system and a user message.
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	text, truncated := provider.Truncate(text, maxChars)
	if truncated {
		c.opts.Debugf("OpenAI input truncated to %d characters", maxChars)
	}

	return c.complete(ctx, sdk.ChatCompletionNewParams{
		Model: sdk.ChatModel(c.modelName),
		Messages: []sdk.ChatCompletionMessageParamUnion{
			sdk.SystemMessage(provider.SystemInstruction),
			sdk.UserMessage(provider.UserMessage(text)),
		},
		MaxCompletionTokens: sdk.Int(provider.MaxSummaryTokens),
		Temperature:         sdk.Float(provider.Temperature),
	})
}

// TestConnection sends a minimal prompt and reports whether any text came back.
func (c *Client) TestConnection(ctx context.Context) bool {
	out, err := c.complete(ctx, sdk.ChatCompletionNewParams{
		Model: sdk.ChatModel(c.modelName),
		Messages: []sdk.ChatCompletionMessageParamUnion{
			sdk.UserMessage(provider.TestPrompt),
		},
		MaxCompletionTokens: sdk.Int(provider.MaxTestPromptTokens),
	})
	if err != nil {
		c.opts.Debugf("OpenAI connection test failed: %v", err)
		return false
	}
	return out != ""
}

func (c *Client) complete(ctx context.Context, params sdk.ChatCompletionNewParams) (string, error) {
	if c.apiKey == "" {
		return "", provider.NewError(displayName, 0, provider.ErrMissingAPIKey)
	}

	resp, err := c.client().Chat.Completions.New(ctx, params)
	if err != nil {
		status := 0
		var apiErr *sdk.Error
		if errors.As(err, &apiErr) {
			status = apiErr.StatusCode
		}
		return "", provider.NewError(displayName, status, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", provider.Errorf(displayName, provider.KindEmptyResponse, "no response from API")
	}
	return resp.Choices[0].Message.Content, nil
}

// ProviderName returns the registry identifier of this provider.
func (c *Client) ProviderName() string {
	return providerName
}

// Model returns the model id this adapter sends requests to.
func (c *Client) Model() string {
	return c.modelName
}

// Descriptor returns the static OpenAI metadata.
func (c *Client) Descriptor() provider.Descriptor {
	return Descriptor.Clone()
}

// Close is a no-op; the SDK holds no resources that need releasing.
func (c *Client) Close() error {
	return nil
}
