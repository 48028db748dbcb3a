package gateway

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OpenAIConfig contains configuration for the OpenAI-compatible binding.
type OpenAIConfig struct {
	// APIKey is the bearer token for the API.
	APIKey string
	// BaseURL overrides the endpoint; defaults to the OpenAI API. Any
	// chat-completions-compatible server works here.
	BaseURL string
	// Timeout is the per-request HTTP timeout. Defaults to 120s.
	Timeout time.Duration
	// MaxTokens caps response length. Defaults to 4096.
	MaxTokens int
}

// OpenAIGateway speaks the OpenAI-compatible chat completions API over
// plain HTTP.
type OpenAIGateway struct {
	apiKey     string
	baseURL    string
	maxTokens  int
	httpClient *http.Client
}

// NewOpenAIGateway creates the OpenAI binding.
func NewOpenAIGateway(cfg OpenAIConfig) (*OpenAIGateway, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is not set")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	return &OpenAIGateway{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		maxTokens:  maxTokens,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type oaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type oaiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (g *OpenAIGateway) post(ctx context.Context, modelID, prompt string, stream bool) (*http.Response, error) {
	body, err := json.Marshal(map[string]any{
		"model":      modelID,
		"messages":   []oaiMessage{{Role: "user", Content: prompt}},
		"max_tokens": g.maxTokens,
		"stream":     stream,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("openai API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return resp, nil
}

// Generate sends a single-turn prompt and returns the full response.
func (g *OpenAIGateway) Generate(ctx context.Context, modelID, prompt string) (*Reply, error) {
	resp, err := g.post(ctx, modelID, prompt, false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var parsed oaiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode openai response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("openai API error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("openai response contained no choices")
	}

	return &Reply{
		Text:      parsed.Choices[0].Message.Content,
		TokensIn:  parsed.Usage.PromptTokens,
		TokensOut: parsed.Usage.CompletionTokens,
	}, nil
}

// GenerateStream sends a single-turn prompt and streams SSE fragments.
func (g *OpenAIGateway) GenerateStream(ctx context.Context, modelID, prompt string) (<-chan Chunk, error) {
	resp, err := g.post(ctx, modelID, prompt, true)
	if err != nil {
		return nil, err
	}

	out := make(chan Chunk, 16)
	go func() {
		defer close(out)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if !strings.HasPrefix(line, "data: ") {
				continue
			}
			payload := strings.TrimPrefix(line, "data: ")
			if payload == "[DONE]" {
				return
			}

			var parsed oaiResponse
			if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
				// Skip malformed keep-alive frames rather than killing the stream.
				continue
			}
			if len(parsed.Choices) > 0 && parsed.Choices[0].Delta.Content != "" {
				out <- Chunk{Text: parsed.Choices[0].Delta.Content}
			}
		}
		if err := scanner.Err(); err != nil {
			out <- Chunk{Err: fmt.Errorf("openai stream: %w", err)}
		}
	}()
	return out, nil
}
