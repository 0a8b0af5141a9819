package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/xostack/docsum/provider"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	MaxCompletionTokens int     `json:"max_completion_tokens"`
	Temperature         float64 `json:"temperature"`
}

const okResponse = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"created": 1700000000,
	"model": "gpt-4o",
	"choices": [
		{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "OpenAI summary"}}
	]
}`

func newMockServer(t *testing.T, status int, body string, received *chatRequest, calls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			atomic.AddInt32(calls, 1)
		}
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("Unexpected path '%s'", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-api-key" {
			t.Errorf("Expected Bearer token, got '%s'", r.Header.Get("Authorization"))
		}
		if received != nil {
			if err := json.NewDecoder(r.Body).Decode(received); err != nil {
				t.Errorf("Failed to decode request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

func testOptions(baseURL string) provider.Options {
	return provider.Options{BaseURL: baseURL, Logger: provider.DiscardLogger}
}

func TestNewClient_DefaultModel(t *testing.T) {
	client := NewClient("test-api-key", "", testOptions(""))
	if client.ProviderName() != "openai" {
		t.Errorf("Expected provider name 'openai', got '%s'", client.ProviderName())
	}
	if client.Model() != defaultOpenAIModel {
		t.Errorf("Expected default model '%s', got '%s'", defaultOpenAIModel, client.Model())
	}
	if client.sdkClient != nil {
		t.Error("Expected SDK client to be built lazily")
	}
}

func TestNewClient_WithCustomModel(t *testing.T) {
	client := NewClient("test-api-key", "gpt-4o-mini", testOptions(""))
	if client.Model() != "gpt-4o-mini" {
		t.Errorf("Expected model 'gpt-4o-mini', got '%s'", client.Model())
	}
}

func TestOpenAIClient_Summarize_Success(t *testing.T) {
	var received chatRequest
	server := newMockServer(t, http.StatusOK, okResponse, &received, nil)
	defer server.Close()

	client := NewClient("test-api-key", "", testOptions(server.URL))
	out, err := client.Summarize(context.Background(), "Some document.")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if out != "OpenAI summary" {
		t.Errorf("Expected 'OpenAI summary', got '%s'", out)
	}

	if received.Model != defaultOpenAIModel {
		t.Errorf("Expected model '%s', got '%s'", defaultOpenAIModel, received.Model)
	}
	if len(received.Messages) != 2 || received.Messages[0].Role != "system" || received.Messages[1].Role != "user" {
		t.Fatalf("Expected system and user messages, got %+v", received.Messages)
	}
	if received.Messages[1].Content != provider.UserMessage("Some document.") {
		t.Errorf("Unexpected user content '%s'", received.Messages[1].Content)
	}
	if received.MaxCompletionTokens != provider.MaxSummaryTokens {
		t.Errorf("Expected %d max tokens, got %d", provider.MaxSummaryTokens, received.MaxCompletionTokens)
	}
}

func TestOpenAIClient_Summarize_Truncates(t *testing.T) {
	var received chatRequest
	server := newMockServer(t, http.StatusOK, okResponse, &received, nil)
	defer server.Close()

	client := NewClient("test-api-key", "", testOptions(server.URL))
	if _, err := client.Summarize(context.Background(), strings.Repeat("o", maxChars*2)); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	expected := provider.UserMessage(strings.Repeat("o", maxChars) + provider.TruncationMarker)
	if received.Messages[1].Content != expected {
		t.Errorf("Expected %d characters plus the truncation marker", maxChars)
	}
}

func TestOpenAIClient_Summarize_ErrorIsTaggedAndNotRetried(t *testing.T) {
	var calls int32
	server := newMockServer(t, http.StatusTooManyRequests,
		`{"error": {"message": "Rate limit reached", "type": "requests", "code": "rate_limit_exceeded"}}`, nil, &calls)
	defer server.Close()

	client := NewClient("test-api-key", "", testOptions(server.URL))
	_, err := client.Summarize(context.Background(), "text")
	if err == nil {
		t.Fatal("Expected error")
	}
	if !strings.HasPrefix(err.Error(), "OpenAI API error:") {
		t.Errorf("Expected tagged error, got: %v", err)
	}
	if !provider.IsKind(err, provider.KindRateLimited) {
		t.Errorf("Expected rate limited kind, got: %v", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("Expected a single request, got %d", calls)
	}
}

func TestOpenAIClient_Summarize_Unauthorized(t *testing.T) {
	server := newMockServer(t, http.StatusUnauthorized, `{"error": {"message": "Incorrect API key provided"}}`, nil, nil)
	defer server.Close()

	client := NewClient("test-api-key", "", testOptions(server.URL))
	_, err := client.Summarize(context.Background(), "text")
	if !provider.IsKind(err, provider.KindUnauthorized) {
		t.Errorf("Expected unauthorized kind, got: %v", err)
	}
}

func TestOpenAIClient_Summarize_EmptyChoices(t *testing.T) {
	server := newMockServer(t, http.StatusOK, `{"id": "x", "object": "chat.completion", "choices": []}`, nil, nil)
	defer server.Close()

	client := NewClient("test-api-key", "", testOptions(server.URL))
	_, err := client.Summarize(context.Background(), "text")
	if !provider.IsKind(err, provider.KindEmptyResponse) {
		t.Errorf("Expected empty response kind, got: %v", err)
	}
}

func TestOpenAIClient_Summarize_MissingKey(t *testing.T) {
	client := NewClient("", "", testOptions("http://127.0.0.1:1"))
	_, err := client.Summarize(context.Background(), "text")
	if !provider.IsKind(err, provider.KindUnauthorized) {
		t.Errorf("Expected unauthorized kind, got: %v", err)
	}
	if client.sdkClient != nil {
		t.Error("Expected no SDK client without a key")
	}
}

func TestOpenAIClient_TestConnection(t *testing.T) {
	var received chatRequest
	server := newMockServer(t, http.StatusOK, okResponse, &received, nil)
	defer server.Close()

	client := NewClient("test-api-key", "", testOptions(server.URL))
	if !client.TestConnection(context.Background()) {
		t.Fatal("Expected connection test to succeed")
	}
	if len(received.Messages) != 1 || received.Messages[0].Content != provider.TestPrompt {
		t.Errorf("Expected a single test prompt, got %+v", received.Messages)
	}

	failing := newMockServer(t, http.StatusUnauthorized, `{"error": {"message": "bad key"}}`, nil, nil)
	defer failing.Close()
	if NewClient("test-api-key", "", testOptions(failing.URL)).TestConnection(context.Background()) {
		t.Error("Expected connection test to fail on 401")
	}
}

func TestOpenAIClient_LazyClientReused(t *testing.T) {
	server := newMockServer(t, http.StatusOK, okResponse, nil, nil)
	defer server.Close()

	client := NewClient("test-api-key", "", testOptions(server.URL))
	client.TestConnection(context.Background())
	first := client.sdkClient
	if first == nil {
		t.Fatal("Expected SDK client after first call")
	}
	client.Summarize(context.Background(), "text")
	if client.sdkClient != first {
		t.Error("Expected the SDK client to be reused")
	}
}

func TestOpenAIDescriptor(t *testing.T) {
	if Descriptor.ID != providerName {
		t.Errorf("Expected id '%s', got '%s'", providerName, Descriptor.ID)
	}
	if !Descriptor.HasModel(Descriptor.DefaultModel) {
		t.Error("Default model must be in the catalogue")
	}
	if Descriptor.FallbackModel != "" {
		t.Error("OpenAI has no fallback model")
	}
}
