package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/maestro-sh/maestro/pkg/models"
)

func TestBindingsLookup(t *testing.T) {
	b := NewBindings()
	mock := NewMockGateway()
	b.Bind(models.ProviderOpenAI, mock)

	g, err := b.Lookup(models.ProviderOpenAI)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g != Gateway(mock) {
		t.Error("expected the bound gateway back")
	}

	if _, err := b.Lookup(models.ProviderGoogle); err == nil {
		t.Error("expected error for unbound provider")
	}
}

func TestMockGatewayGenerate(t *testing.T) {
	mock := NewMockGateway()
	mock.Responses["gpt-4-turbo"] = "hello"

	reply, err := mock.Generate(context.Background(), "gpt-4-turbo", "hi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.Text != "hello" {
		t.Errorf("expected scripted response, got %q", reply.Text)
	}
	if mock.CallCount() != 1 {
		t.Errorf("expected 1 recorded call, got %d", mock.CallCount())
	}
}

func TestMockGatewayError(t *testing.T) {
	mock := NewMockGateway()
	scripted := errors.New("rate limited")
	mock.Errors["gpt-4-turbo"] = scripted

	if _, err := mock.Generate(context.Background(), "gpt-4-turbo", "hi"); !errors.Is(err, scripted) {
		t.Errorf("expected scripted error, got %v", err)
	}
}

func TestMockGatewayStream(t *testing.T) {
	mock := NewMockGateway()
	mock.StreamChunks["claude-sonnet-4"] = []string{"a", "b", "c"}

	ch, err := mock.GenerateStream(context.Background(), "claude-sonnet-4", "hi")
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
	if got != "abc" {
		t.Errorf("expected abc, got %q", got)
	}
}

func TestMockGatewayCancelledContext(t *testing.T) {
	mock := NewMockGateway()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := mock.Generate(ctx, "claude-sonnet-4", "hi"); err == nil {
		t.Error("expected error from cancelled context")
	}
	if mock.CallCount() != 0 {
		t.Error("cancelled call should not be recorded")
	}
}
