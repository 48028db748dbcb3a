// Package gateway is the boundary through which every model call leaves the
// process. Each provider gets one binding implementing the Gateway
// interface; the router looks bindings up by provider and treats them all
// uniformly. Request and response shaping beyond these bindings lives with
// the vendors, not here.
package gateway

import (
	"context"
	"fmt"

	"github.com/maestro-sh/maestro/pkg/models"
)

// Reply is a completed generation.
type Reply struct {
	// Text is the full response text.
	Text string
	// TokensIn is the provider-reported input token count, -1 if unreported.
	TokensIn int64
	// TokensOut is the provider-reported output token count, -1 if unreported.
	TokensOut int64
}

// Chunk is one fragment of a streamed generation. The channel closes after
// the final chunk; a terminal error arrives as a chunk with Err set.
type Chunk struct {
	// Text is the response fragment.
	Text string
	// Err is a terminal stream error, if any.
	Err error
}

// Gateway dispatches prompts to one provider's models.
//
// ctx is plumbed through to every binding even though not every vendor can
// abort an in-flight call; a dispatched call may still complete and cost
// tokens after cancellation.
type Gateway interface {
	// Generate sends a prompt and blocks until the full response arrives.
	Generate(ctx context.Context, modelID, prompt string) (*Reply, error)
	// GenerateStream sends a prompt and returns a finite, non-restartable
	// sequence of response fragments. The channel is closed when the
	// underlying call completes.
	GenerateStream(ctx context.Context, modelID, prompt string) (<-chan Chunk, error)
}

// Bindings maps providers to their gateway implementations.
type Bindings struct {
	byProvider map[models.Provider]Gateway
}

// NewBindings creates an empty binding set.
func NewBindings() *Bindings {
	return &Bindings{byProvider: make(map[models.Provider]Gateway)}
}

// Bind registers a gateway for a provider, replacing any existing binding.
func (b *Bindings) Bind(p models.Provider, g Gateway) {
	b.byProvider[p] = g
}

// Lookup returns the gateway bound to a provider.
func (b *Bindings) Lookup(p models.Provider) (Gateway, error) {
	g, ok := b.byProvider[p]
	if !ok {
		return nil, fmt.Errorf("no gateway bound for provider %s", p)
	}
	return g, nil
}

// Providers returns the providers with a binding.
func (b *Bindings) Providers() []models.Provider {
	out := make([]models.Provider, 0, len(b.byProvider))
	for p := range b.byProvider {
		out = append(out, p)
	}
	return out
}
