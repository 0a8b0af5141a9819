// Package groq provides the summarization adapter for Groq's cloud API.
package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/xostack/docsum/provider"
)

const (
	defaultGroqModel = "llama-3.3-70b-versatile"
	providerName     = "groq"
	displayName      = "Groq"
	defaultBaseURL   = "https://api.groq.com/openai/v1"
	chatPath         = "/chat/completions"
	maxChars         = 24000 // roughly 6000 tokens
)

// Descriptor describes the Groq backend.
var Descriptor = provider.Descriptor{
	ID:          providerName,
	DisplayName: displayName,
	Models: []provider.Model{
		{ID: "llama-3.3-70b-versatile", Label: "Llama 3.3 70B Versatile"},
		{ID: "llama-3.1-8b-instant", Label: "Llama 3.1 8B Instant"},
		{ID: "gemma2-9b-it", Label: "Gemma 2 9B"},
		{ID: "mixtral-8x7b-32768", Label: "Mixtral 8x7B"},
	},
	DefaultModel: defaultGroqModel,
	MaxChars:     maxChars,
	APIKeyURL:    "https://console.groq.com/keys",
	HelpText:     "Free tier available! Very fast.",
	SetupSteps: []string{
		"1. Go to console.groq.com",
		"2. Sign up for free",
		"3. Navigate to API Keys",
		"4. Create a new key",
		"5. No payment needed!",
	},
	FreeTier: true,
	Color:    "#F55036",
}

// Client implements the summarization contract for Groq.
type Client struct {
	mu         sync.Mutex
	httpClient *http.Client
	endpoint   string
	apiKey     string
	modelName  string
	opts       provider.Options
}

// groqChatMessage represents a single message in the chat completion request.
type groqChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// groqChatCompletionRequest is the structure for the request body to Groq's API.
type groqChatCompletionRequest struct {
	Messages    []groqChatMessage `json:"messages"`
	Model       string            `json:"model"`
	Temperature *float64          `json:"temperature,omitempty"`
	MaxTokens   *int              `json:"max_tokens,omitempty"`
	Stream      bool              `json:"stream"`
}

type groqChatCompletionResponseChoice struct {
	Index   int `json:"index"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

type groqUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type groqChatCompletionResponse struct {
	ID      string                             `json:"id"`
	Model   string                             `json:"model"`
	Choices []groqChatCompletionResponseChoice `json:"choices"`
	Usage   groqUsage                          `json:"usage"`
	Error   *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code,omitempty"`
	} `json:"error,omitempty"`
}

// NewClient creates a Groq adapter. The HTTP client is built on first use.
// An empty modelOverride selects the descriptor's default model.
func NewClient(apiKey string, modelOverride string, opts provider.Options) *Client {
	modelToUse := Descriptor.ResolveModel(modelOverride)
	if modelOverride != "" {
		opts.Debugf("Using overridden Groq model: %s", modelToUse)
	} else {
		opts.Debugf("Using default Groq model: %s", modelToUse)
	}

	baseURL := defaultBaseURL
	if opts.BaseURL != "" {
		baseURL = strings.TrimSuffix(opts.BaseURL, "/")
	}

	return &Client{
		endpoint:  baseURL + chatPath,
		apiKey:    apiKey,
		modelName: modelToUse,
		opts:      opts,
	}
}

func (c *Client) client() *http.Client {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.httpClient == nil {
		c.opts.Debugf("Creating Groq HTTP client")
		// No timeout: callers bound the call through ctx.
		c.httpClient = &http.Client{}
	}
	return c.httpClient
}

// Summarize sends text (truncated to the Groq budget) with a system
// instruction and returns the model's summary.
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	text, truncated := provider.Truncate(text, maxChars)
	if truncated {
		c.opts.Debugf("Groq input truncated to %d characters", maxChars)
	}

	temp := provider.Temperature
	maxTokens := provider.MaxSummaryTokens
	payload := groqChatCompletionRequest{
		Messages: []groqChatMessage{
			{Role: "system", Content: provider.SystemInstruction},
			{Role: "user", Content: provider.UserMessage(text)},
		},
		Model:       c.modelName,
		Temperature: &temp,
		MaxTokens:   &maxTokens,
	}
	return c.complete(ctx, payload)
}

// TestConnection sends a minimal prompt and reports whether any text came back.
func (c *Client) TestConnection(ctx context.Context) bool {
	maxTokens := provider.MaxTestPromptTokens
	out, err := c.complete(ctx, groqChatCompletionRequest{
		Messages:  []groqChatMessage{{Role: "user", Content: provider.TestPrompt}},
		Model:     c.modelName,
		MaxTokens: &maxTokens,
	})
	if err != nil {
		c.opts.Debugf("Groq connection test failed: %v", err)
		return false
	}
	return out != ""
}

func (c *Client) complete(ctx context.Context, payload groqChatCompletionRequest) (string, error) {
	if c.apiKey == "" {
		return "", provider.NewError(displayName, 0, provider.ErrMissingAPIKey)
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", provider.NewError(displayName, 0, fmt.Errorf("failed to marshal request payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payloadBytes))
	if err != nil {
		return "", provider.NewError(displayName, 0, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client().Do(req)
	if err != nil {
		return "", provider.NewError(displayName, 0, fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", provider.NewError(displayName, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err))
	}

	var groqResp groqChatCompletionResponse
	if err := json.Unmarshal(responseBody, &groqResp); err != nil {
		return "", provider.NewError(displayName, resp.StatusCode,
			fmt.Errorf("failed to unmarshal response JSON: %w. Status: %s, Body: %s", err, resp.Status, string(responseBody)))
	}

	// The JSON error object is more specific than the status line.
	if groqResp.Error != nil {
		return "", provider.NewError(displayName, resp.StatusCode,
			fmt.Errorf("%s (Type: %s, Code: %s). HTTP Status: %s", groqResp.Error.Message, groqResp.Error.Type, groqResp.Error.Code, resp.Status))
	}

	if resp.StatusCode != http.StatusOK {
		return "", provider.NewError(displayName, resp.StatusCode,
			fmt.Errorf("request failed with status %s. Body: %s", resp.Status, string(responseBody)))
	}

	if len(groqResp.Choices) == 0 || groqResp.Choices[0].Message.Content == "" {
		c.opts.Debugf("Groq response details: ID=%s, Model=%s, Usage=%+v", groqResp.ID, groqResp.Model, groqResp.Usage)
		return "", &provider.Error{
			Provider: displayName,
			Kind:     provider.KindEmptyResponse,
			Err:      errors.New("response contained no choices or empty message content"),
		}
	}

	return strings.TrimSpace(groqResp.Choices[0].Message.Content), nil
}

// ProviderName returns the registry identifier of this provider.
func (c *Client) ProviderName() string {
	return providerName
}

// Model returns the model id this adapter sends requests to.
func (c *Client) Model() string {
	return c.modelName
}

// Descriptor returns the static Groq metadata.
func (c *Client) Descriptor() provider.Descriptor {
	return Descriptor.Clone()
}

// Close releases idle connections held by the lazily built HTTP client.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.httpClient != nil {
		c.httpClient.CloseIdleConnections()
	}
	return nil
}
