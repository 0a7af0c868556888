package llm

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ziadkadry99/newsletter-kit/internal/config"
)

func TestFactoryReturnsErrorForMissingAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	for _, p := range []config.LLMProvider{config.LLMOpenAI, config.LLMGoogle} {
		_, err := NewProvider(p, "some-model", "")
		if err == nil {
			t.Errorf("expected error for provider %q with missing API key", p)
		}
	}
}

func TestFactoryReturnsErrorForUnknownProvider(t *testing.T) {
	_, err := NewProvider("unknown", "some-model", "key")
	if err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestFactoryReadsEnvironment(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")
	provider, err := NewProvider(config.LLMGoogle, "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g, ok := provider.(*GoogleProvider)
	if !ok {
		t.Fatal("expected *GoogleProvider")
	}
	if g.apiKey != "env-key" {
		t.Errorf("apiKey = %q, want env-key", g.apiKey)
	}
	if g.model != config.DefaultGemini {
		t.Errorf("model = %q, want %q", g.model, config.DefaultGemini)
	}
}

func TestFactoryPrefersExplicitKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env-key")
	provider, err := NewProvider(config.LLMOpenAI, "", "explicit")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.Name() != "openai" {
		t.Errorf("expected name 'openai', got %q", provider.Name())
	}
	if provider.(*OpenAIProvider).model != DefaultOpenAIModel {
		t.Errorf("expected default model %q", DefaultOpenAIModel)
	}
}

func TestGoogleProviderComplete(t *testing.T) {
	var gotPath, gotKey string
	var gotReq geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		if r.URL.Query().Get("key") != "" {
			t.Error("api key must not be sent in the query string")
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotReq)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"candidates": [{"content": {"parts": [{"text": "Hello "}, {"text": "world"}]}, "finishReason": "STOP"}],
			"usageMetadata": {"promptTokenCount": 12, "candidatesTokenCount": 3}
		}`)
	}))
	defer srv.Close()

	p := NewGoogleProvider("secret", "gemini-2.5-flash", WithBaseURL(srv.URL+"/"))
	resp, err := p.Complete(context.Background(), CompletionRequest{
		Messages: []Message{
			{Role: RoleSystem, Content: "be brief"},
			{Role: RoleUser, Content: "write"},
		},
		MaxTokens: 100,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}

	if gotPath != "/gemini-2.5-flash:generateContent" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "secret" {
		t.Errorf("x-goog-api-key = %q, want secret", gotKey)
	}
	if gotReq.SystemInstruction == nil || gotReq.SystemInstruction.Parts[0].Text != "be brief" {
		t.Errorf("system instruction not forwarded: %+v", gotReq.SystemInstruction)
	}
	if len(gotReq.Contents) != 1 || gotReq.Contents[0].Role != "user" {
		t.Errorf("contents = %+v", gotReq.Contents)
	}
	if gotReq.GenerationConfig.MaxOutputTokens != 100 {
		t.Errorf("maxOutputTokens = %d", gotReq.GenerationConfig.MaxOutputTokens)
	}
	if resp.Content != "Hello world" {
		t.Errorf("Content = %q", resp.Content)
	}
	if resp.InputTokens != 12 || resp.OutputTokens != 3 {
		t.Errorf("tokens = %d/%d", resp.InputTokens, resp.OutputTokens)
	}
	if resp.FinishReason != "STOP" || resp.Model != "gemini-2.5-flash" {
		t.Errorf("unexpected response metadata: %+v", resp)
	}
}

func TestGoogleProviderErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"api error", http.StatusForbidden, `{"error": {"code": 403, "message": "bad key", "status": "PERMISSION_DENIED"}}`, "PERMISSION_DENIED"},
		{"non-json failure", http.StatusBadGateway, `upstream down`, "status 502"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := NewGoogleProvider("k", "m", WithBaseURL(srv.URL)).Complete(context.Background(), CompletionRequest{})
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestOpenAIProviderComplete(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "cmpl-1", "object": "chat.completion", "model": "gpt-4o-mini",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "Issue #1"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 5, "completion_tokens": 2, "total_tokens": 7}
		}`)
	}))
	defer srv.Close()

	p := NewOpenAIProvider("sk-test", "gpt-4o-mini", WithBaseURL(srv.URL))
	resp, err := p.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if resp.Content != "Issue #1" || resp.FinishReason != "stop" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.InputTokens != 5 || resp.OutputTokens != 2 {
		t.Errorf("tokens = %d/%d", resp.InputTokens, resp.OutputTokens)
	}
}

func TestEstimateCostKnownModels(t *testing.T) {
	for _, model := range []string{"gpt-4o", "gpt-4o-mini", config.DefaultGemini} {
		if cost := EstimateCost(model, 1000, 500); cost <= 0 {
			t.Errorf("EstimateCost(%q) = %f, expected > 0", model, cost)
		}
	}
}

func TestEstimateCostUnknownModel(t *testing.T) {
	cost := EstimateCost("unknown-model", 1000, 500)
	if cost != 0 {
		t.Errorf("expected 0 for unknown model, got %f", cost)
	}
}

func TestEstimateCostAccuracy(t *testing.T) {
	// gpt-4o: $2.50/1M input, $10/1M output
	cost := EstimateCost("gpt-4o", 1_000_000, 1_000_000)
	if math.Abs(cost-12.5) > 0.01 {
		t.Errorf("expected cost ~$12.50, got $%.2f", cost)
	}
}
