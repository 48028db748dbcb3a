package server

import (
	"sync"

	"github.com/maestro-sh/maestro/internal/gateway"
	"github.com/maestro-sh/maestro/internal/registry"
	"github.com/maestro-sh/maestro/internal/router"
)

// Source hands out the current router and rebuilds it when the routing
// overlay changes. Credentials and gateway bindings are fixed at
// construction; only the catalog and task mappings are reloadable. A run
// already in flight keeps the router it started with.
type Source struct {
	creds    router.CredentialSet
	bindings *gateway.Bindings

	mu sync.RWMutex
	rt *router.Router
}

// NewSource creates a source over an initial router.
func NewSource(rt *router.Router, creds router.CredentialSet, bindings *gateway.Bindings) *Source {
	return &Source{creds: creds, bindings: bindings, rt: rt}
}

// Current returns the router subsequent runs will use.
func (s *Source) Current() *router.Router {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rt
}

// Reload rebuilds the router from the overlay file at path.
func (s *Source) Reload(path string) error {
	reg, tasks, err := registry.BuildFromFile(path)
	if err != nil {
		return err
	}
	avail := router.NewAvailability(reg, s.creds)
	rt := router.New(reg, tasks, avail, s.bindings)

	s.mu.Lock()
	s.rt = rt
	s.mu.Unlock()
	return nil
}
