package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenAIGatewayGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", auth)
		}

		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req["model"] != "gpt-4-turbo" {
			t.Errorf("unexpected model %v", req["model"])
		}

		fmt.Fprint(w, `{
			"choices": [{"message": {"content": "generated text"}}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 34}
		}`)
	}))
	defer srv.Close()

	g, err := NewOpenAIGateway(OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reply, err := g.Generate(context.Background(), "gpt-4-turbo", "write something")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.Text != "generated text" {
		t.Errorf("unexpected text %q", reply.Text)
	}
	if reply.TokensIn != 12 || reply.TokensOut != 34 {
		t.Errorf("unexpected usage: in=%d out=%d", reply.TokensIn, reply.TokensOut)
	}
}

func TestOpenAIGatewayGenerateHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "model overloaded"}}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	g, err := NewOpenAIGateway(OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := g.Generate(context.Background(), "gpt-4-turbo", "hi"); err == nil {
		t.Error("expected error for non-200 response")
	}
}

func TestOpenAIGatewayStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"hel\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"lo\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	g, err := NewOpenAIGateway(OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ch, err := g.GenerateStream(context.Background(), "gpt-4-turbo", "hi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got string
	for chunk := range ch {
		if chunk.Err != nil {
			t.Fatalf("unexpected chunk error: %v", chunk.Err)
		}
		got += chunk.Text
	}
	if got != "hello" {
		t.Errorf("expected hello, got %q", got)
	}
}

func TestNewOpenAIGatewayRequiresKey(t *testing.T) {
	if _, err := NewOpenAIGateway(OpenAIConfig{}); err == nil {
		t.Error("expected error when API key is missing")
	}
}

func TestGeminiGatewayGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/gemini-1.5-pro:generateContent" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if key := r.URL.Query().Get("key"); key != "test-key" {
			t.Errorf("unexpected key %q", key)
		}
		fmt.Fprint(w, `{
			"candidates": [{"content": {"parts": [{"text": "gemini says hi"}]}}],
			"usageMetadata": {"promptTokenCount": 5, "candidatesTokenCount": 7}
		}`)
	}))
	defer srv.Close()

	g, err := NewGeminiGateway(GeminiConfig{APIKey: "test-key", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reply, err := g.Generate(context.Background(), "gemini-1.5-pro", "hi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.Text != "gemini says hi" {
		t.Errorf("unexpected text %q", reply.Text)
	}
	if reply.TokensIn != 5 || reply.TokensOut != 7 {
		t.Errorf("unexpected usage: in=%d out=%d", reply.TokensIn, reply.TokensOut)
	}
}

func TestGeminiGatewayUnreportedUsage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates": [{"content": {"parts": [{"text": "ok"}]}}]}`)
	}))
	defer srv.Close()

	g, err := NewGeminiGateway(GeminiConfig{APIKey: "test-key", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reply, err := g.Generate(context.Background(), "gemini-1.5-flash", "hi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.TokensIn != -1 || reply.TokensOut != -1 {
		t.Errorf("expected -1 sentinel for unreported usage, got in=%d out=%d", reply.TokensIn, reply.TokensOut)
	}
}

func TestBedrockModelTranslation(t *testing.T) {
	if got := translateModelForBedrock("claude-opus-4"); got != "us.anthropic.claude-opus-4-20250514-v1:0" {
		t.Errorf("unexpected translation %q", got)
	}
	// Unknown IDs pass through untouched.
	if got := translateModelForBedrock("custom-model"); got != "custom-model" {
		t.Errorf("expected passthrough, got %q", got)
	}
}
