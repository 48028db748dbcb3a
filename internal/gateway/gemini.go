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

// GeminiConfig contains configuration for the Google Gemini binding.
type GeminiConfig struct {
	// APIKey is the Google AI Studio API key.
	APIKey string
	// BaseURL overrides the endpoint, mainly for tests.
	BaseURL string
	// Timeout is the per-request HTTP timeout. Defaults to 120s.
	Timeout time.Duration
}

// GeminiGateway speaks the Google generateContent API over plain HTTP.
type GeminiGateway struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewGeminiGateway creates the Google binding.
func NewGeminiGateway(cfg GeminiConfig) (*GeminiGateway, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is not set")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}

	return &GeminiGateway{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int64 `json:"promptTokenCount"`
		CandidatesTokenCount int64 `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (r geminiResponse) text() string {
	var b strings.Builder
	for _, c := range r.Candidates {
		for _, p := range c.Content.Parts {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

func (g *GeminiGateway) post(ctx context.Context, modelID, prompt, method string) (*http.Response, error) {
	body, err := json.Marshal(map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": prompt}}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:%s?key=%s", g.baseURL, modelID, method, g.apiKey)
	if method == "streamGenerateContent" {
		url += "&alt=sse"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("gemini API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return resp, nil
}

// Generate sends a single-turn prompt and returns the full response.
func (g *GeminiGateway) Generate(ctx context.Context, modelID, prompt string) (*Reply, error) {
	resp, err := g.post(ctx, modelID, prompt, "generateContent")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var parsed geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode gemini response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("gemini API error: %s", parsed.Error.Message)
	}

	tokensIn := parsed.UsageMetadata.PromptTokenCount
	tokensOut := parsed.UsageMetadata.CandidatesTokenCount
	if tokensIn == 0 && tokensOut == 0 {
		tokensIn, tokensOut = -1, -1
	}

	return &Reply{
		Text:      parsed.text(),
		TokensIn:  tokensIn,
		TokensOut: tokensOut,
	}, nil
}

// GenerateStream sends a single-turn prompt and streams SSE fragments.
func (g *GeminiGateway) GenerateStream(ctx context.Context, modelID, prompt string) (<-chan Chunk, error) {
	resp, err := g.post(ctx, modelID, prompt, "streamGenerateContent")
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

			var parsed geminiResponse
			if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &parsed); err != nil {
				continue
			}
			if text := parsed.text(); text != "" {
				out <- Chunk{Text: text}
			}
		}
		if err := scanner.Err(); err != nil {
			out <- Chunk{Err: fmt.Errorf("gemini stream: %w", err)}
		}
	}()
	return out, nil
}
