// Package router selects a backing model for a named task and dispatches
// the call through the provider gateway. Fallback candidates affect only
// the initial selection: once dispatched, a failing call is returned to the
// caller unmodified, never retried against the next candidate.
package router

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/maestro-sh/maestro/internal/gateway"
	"github.com/maestro-sh/maestro/internal/registry"
	"github.com/maestro-sh/maestro/pkg/models"
)

// Router routes task names to models and dispatches prompts. It holds no
// mutable state about in-flight calls, so a single Router is safe for
// concurrent use by every step in a pipeline run.
type Router struct {
	registry *registry.Registry
	tasks    *registry.TaskMap
	bindings *gateway.Bindings
	avail    Availability
}

// New creates a Router over an immutable catalog, task map, availability
// set, and gateway bindings.
func New(reg *registry.Registry, tasks *registry.TaskMap, avail Availability, bindings *gateway.Bindings) *Router {
	return &Router{
		registry: reg,
		tasks:    tasks,
		bindings: bindings,
		avail:    avail,
	}
}

// Registry exposes the catalog for display commands.
func (r *Router) Registry() *registry.Registry {
	return r.registry
}

// Tasks exposes the routing table for display commands.
func (r *Router) Tasks() *registry.TaskMap {
	return r.tasks
}

// Availability exposes the availability set for display commands.
func (r *Router) Availability() Availability {
	return r.avail
}

// SelectModel picks the model that will serve a task:
//
//  1. Candidates are the task's primary followed by its fallbacks; unknown
//     task names use the default mapping.
//  2. Candidates absent from the availability set are dropped. If none
//     remain, ErrNoAvailableModel.
//  3. PreferCost: stable sort ascending by cost, take the first.
//  4. PreferSpeed: first candidate in original order tagged "fast" or
//     "speed"; if none, fall through.
//  5. Otherwise the first available candidate in original order, so the
//     primary wins whenever it is available.
//
// The result is deterministic for identical inputs.
func (r *Router) SelectModel(task string, prefs models.RoutePreferences) (models.ModelDescriptor, error) {
	mapping := r.tasks.Resolve(task)

	var available []models.ModelDescriptor
	for _, id := range mapping.Candidates() {
		d, ok := r.registry.Lookup(id)
		if !ok {
			return models.ModelDescriptor{}, fmt.Errorf("task %q candidate %q: %w", task, id, ErrUnknownModel)
		}
		if r.avail.Available(id) {
			available = append(available, d)
		}
	}

	if len(available) == 0 {
		return models.ModelDescriptor{}, fmt.Errorf("task %q: %w", task, ErrNoAvailableModel)
	}

	if prefs.PreferCost {
		sorted := make([]models.ModelDescriptor, len(available))
		copy(sorted, available)
		// Stable keeps candidate rank as the tiebreak for equal costs.
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].CostPer1KTokens < sorted[j].CostPer1KTokens
		})
		return sorted[0], nil
	}

	if prefs.PreferSpeed {
		for _, d := range available {
			if d.HasCapability("fast") || d.HasCapability("speed") {
				return d, nil
			}
		}
		// No fast candidate: fall through to rank order.
	}

	return available[0], nil
}

// Route selects a model for the task and dispatches the prompt, returning
// the full response with wall-clock latency.
func (r *Router) Route(ctx context.Context, task, prompt string, prefs models.RoutePreferences) (*models.RouteResult, error) {
	d, err := r.SelectModel(task, prefs)
	if err != nil {
		return nil, err
	}

	gw, err := r.bindings.Lookup(d.Provider)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	reply, err := gw.Generate(ctx, d.ID, prompt)
	latency := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", d.ID, err)
	}

	result := &models.RouteResult{
		ModelID:   d.ID,
		Provider:  d.Provider,
		Response:  reply.Text,
		TokensIn:  reply.TokensIn,
		TokensOut: reply.TokensOut,
		Latency:   latency,
	}
	if reply.TokensIn >= 0 && reply.TokensOut >= 0 {
		result.Cost = float64(reply.TokensIn+reply.TokensOut) / 1000.0 * d.CostPer1KTokens
	}
	return result, nil
}

// StreamChunk is one fragment of a streamed route call, tagged with the
// model that produced it.
type StreamChunk struct {
	// Text is the response fragment.
	Text string
	// ModelID is the model serving the stream.
	ModelID string
	// Err is a terminal stream error, if any.
	Err error
}

// Stream is a live streamed route call. The Chunks channel is finite and
// non-restartable; it closes when the underlying call completes.
type Stream struct {
	// ModelID is the model serving the stream.
	ModelID string
	// Provider is the vendor serving the stream.
	Provider models.Provider
	// Chunks delivers response fragments in order.
	Chunks <-chan StreamChunk

	latencyNs atomic.Int64
}

// Latency returns total wall-clock time from dispatch to stream close, or
// zero while the stream is still open.
func (s *Stream) Latency() time.Duration {
	return time.Duration(s.latencyNs.Load())
}

// RouteStream selects a model for the task and dispatches a streaming
// call. Latency is measured at stream close, not first chunk.
func (r *Router) RouteStream(ctx context.Context, task, prompt string, prefs models.RoutePreferences) (*Stream, error) {
	d, err := r.SelectModel(task, prefs)
	if err != nil {
		return nil, err
	}

	gw, err := r.bindings.Lookup(d.Provider)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	inner, err := gw.GenerateStream(ctx, d.ID, prompt)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", d.ID, err)
	}

	out := make(chan StreamChunk, 16)
	stream := &Stream{
		ModelID:  d.ID,
		Provider: d.Provider,
		Chunks:   out,
	}

	go func() {
		defer close(out)
		defer stream.latencyNs.Store(int64(time.Since(start)))
		for chunk := range inner {
			if chunk.Err != nil {
				out <- StreamChunk{ModelID: d.ID, Err: chunk.Err}
				return
			}
			out <- StreamChunk{ModelID: d.ID, Text: chunk.Text}
		}
	}()
	return stream, nil
}
