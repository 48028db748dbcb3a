package router

import (
	"sort"

	"github.com/maestro-sh/maestro/internal/registry"
	"github.com/maestro-sh/maestro/pkg/models"
)

// CredentialSet records which provider credentials were present when the
// router was constructed. It is derived once; credentials are not
// hot-reloaded during a run.
type CredentialSet struct {
	// Anthropic is true when an Anthropic API key or Bedrock credentials
	// are configured.
	Anthropic bool
	// OpenAI is true when an OpenAI API key is configured.
	OpenAI bool
	// Google is true when a Gemini API key is configured.
	Google bool
}

// Has returns true if credentials exist for the given provider.
func (c CredentialSet) Has(p models.Provider) bool {
	switch p {
	case models.ProviderAnthropic:
		return c.Anthropic
	case models.ProviderOpenAI:
		return c.OpenAI
	case models.ProviderGoogle:
		return c.Google
	default:
		return false
	}
}

// Availability maps model IDs to whether the model can be dispatched.
// It is built once per router instance and read-only thereafter.
type Availability map[string]bool

// NewAvailability derives the availability set for every model in the
// registry from the configured credentials.
func NewAvailability(reg *registry.Registry, creds CredentialSet) Availability {
	avail := make(Availability, reg.Size())
	for _, d := range reg.All() {
		avail[d.ID] = creds.Has(d.Provider)
	}
	return avail
}

// Available returns true if the model ID is present and marked available.
func (a Availability) Available(modelID string) bool {
	return a[modelID]
}

// ModelIDs returns all available model IDs, sorted for display.
func (a Availability) ModelIDs() []string {
	var ids []string
	for id, ok := range a {
		if ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
