package gateway

import (
	"context"
	"fmt"
	"sync"
)

// MockGateway is a scriptable Gateway for tests. Responses are keyed by
// model ID; unscripted models fall back to a canned reply. Calls are
// recorded so tests can assert dispatch order and counts.
type MockGateway struct {
	mu sync.Mutex
	// Responses maps model ID to the reply text to return.
	Responses map[string]string
	// Errors maps model ID to an error to return instead of a reply.
	Errors map[string]error
	// StreamChunks maps model ID to the fragments GenerateStream emits.
	StreamChunks map[string][]string
	// Calls records every (modelID, prompt) dispatched.
	Calls []MockCall
}

// MockCall records one dispatched call.
type MockCall struct {
	ModelID string
	Prompt  string
	Stream  bool
}

// NewMockGateway creates an empty mock.
func NewMockGateway() *MockGateway {
	return &MockGateway{
		Responses:    make(map[string]string),
		Errors:       make(map[string]error),
		StreamChunks: make(map[string][]string),
	}
}

func (m *MockGateway) record(modelID, prompt string, stream bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{ModelID: modelID, Prompt: prompt, Stream: stream})
}

// CallCount returns the number of dispatched calls.
func (m *MockGateway) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// Generate returns the scripted reply for the model.
func (m *MockGateway) Generate(ctx context.Context, modelID, prompt string) (*Reply, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.record(modelID, prompt, false)

	m.mu.Lock()
	err := m.Errors[modelID]
	text, ok := m.Responses[modelID]
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if !ok {
		text = fmt.Sprintf("mock response from %s", modelID)
	}
	return &Reply{Text: text, TokensIn: int64(len(prompt) / 4), TokensOut: int64(len(text) / 4)}, nil
}

// GenerateStream returns the scripted fragments for the model.
func (m *MockGateway) GenerateStream(ctx context.Context, modelID, prompt string) (<-chan Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.record(modelID, prompt, true)

	m.mu.Lock()
	err := m.Errors[modelID]
	chunks, ok := m.StreamChunks[modelID]
	text := m.Responses[modelID]
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if !ok {
		if text == "" {
			text = fmt.Sprintf("mock response from %s", modelID)
		}
		chunks = []string{text}
	}

	out := make(chan Chunk, len(chunks))
	for _, c := range chunks {
		out <- Chunk{Text: c}
	}
	close(out)
	return out, nil
}
