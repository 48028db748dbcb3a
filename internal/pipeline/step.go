// Package pipeline provides a generic dependency-graph step executor.
// Callers declare a finite set of steps; Execute runs them in dependency
// order, overlapping independent steps, and streams lifecycle events to a
// single subscriber per run.
package pipeline

import "context"

// Reporter lets a step operation emit intermediate events. All events are
// tagged with the owning step's ID, so per-step ordering holds regardless
// of how other steps interleave.
type Reporter interface {
	// Progress reports completion percentage (0-100) with a message.
	Progress(pct int, message string)
	// Chunk forwards a streamed output fragment.
	Chunk(fragment string)
	// File reports a generated file.
	File(path, content string)
	// ModelUsed records the model that served this step's call.
	ModelUsed(modelID string)
	// ModelSwitch reports that a non-primary model is serving the step.
	ModelSwitch(modelID, message string)
	// Collaborate reports a hand-off of this step's output to another step.
	Collaborate(targetStepID, message string)
}

// Step is one named unit of work in a pipeline run. Steps are declared
// before a run starts and are immutable during the run; a Step value may
// be reused across multiple Execute calls.
type Step struct {
	// ID is unique within a run and is the key the step's output is
	// stored under. Each step writes only its own entry, which is what
	// makes the shared context safe without per-key coordination.
	ID string
	// Name is the human-readable display name.
	Name string
	// DependsOn lists step IDs that must be complete or skipped before
	// this step becomes eligible.
	DependsOn []string
	// Condition, when non-nil and false against the current context,
	// marks the step skipped without running its operation. Skipped
	// steps still satisfy their dependents.
	Condition func(*Context) bool
	// Run is the step's operation. Its return value is written into the
	// shared context under the step's ID. A returned error fails the
	// whole run.
	Run func(ctx context.Context, input any, pc *Context, r Reporter) (any, error)
}
