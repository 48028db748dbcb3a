package pipeline

import (
	"fmt"
	"sync"
	"time"
)

// Context is the shared, append-only state of one pipeline run. Each step
// writes exactly one entry, keyed by its own ID; step IDs are unique, so
// concurrently running steps never target the same key. Put enforces the
// write-once rule rather than trusting callers.
type Context struct {
	mu sync.RWMutex

	runID      string
	outputs    map[string]any
	durations  map[string]time.Duration
	modelsUsed []string
	warnings   []Warning
	started    time.Time
}

// Warning records a non-fatal degradation during a run, such as a step
// that expected structured output and could not parse any.
type Warning struct {
	// StepID is the step the warning originated from.
	StepID string `json:"step_id"`
	// Message describes what degraded.
	Message string `json:"message"`
}

// NewContext creates the shared context for a run.
func NewContext(runID string) *Context {
	return &Context{
		runID:     runID,
		outputs:   make(map[string]any),
		durations: make(map[string]time.Duration),
		started:   time.Now(),
	}
}

// RunID returns the run identifier.
func (c *Context) RunID() string {
	return c.runID
}

// Put stores a step's output. Writing the same key twice violates the
// at-most-one-execution invariant and panics: it can only be a scheduler
// bug, never a data race between well-formed steps.
func (c *Context) Put(stepID string, output any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.outputs[stepID]; exists {
		panic(fmt.Sprintf("pipeline: context key %q written twice", stepID))
	}
	c.outputs[stepID] = output
}

// Output returns the output written by the given step, if any.
func (c *Context) Output(stepID string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out, ok := c.outputs[stepID]
	return out, ok
}

// Outputs returns a copy of every output written so far.
func (c *Context) Outputs() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]any, len(c.outputs))
	for k, v := range c.outputs {
		out[k] = v
	}
	return out
}

// RecordModel appends a model to the run's models-used list. Repeat
// uses of the same model keep their first position.
func (c *Context) RecordModel(modelID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, m := range c.modelsUsed {
		if m == modelID {
			return
		}
	}
	c.modelsUsed = append(c.modelsUsed, modelID)
}

// ModelsUsed returns a copy of the models used so far, in call order.
func (c *Context) ModelsUsed() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.modelsUsed...)
}

// RecordDuration stores a step's elapsed time.
func (c *Context) RecordDuration(stepID string, d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.durations[stepID] = d
}

// Durations returns a copy of the per-step durations.
func (c *Context) Durations() map[string]time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]time.Duration, len(c.durations))
	for k, v := range c.durations {
		out[k] = v
	}
	return out
}

// AddWarning records a non-fatal degradation for the final result.
func (c *Context) AddWarning(stepID, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warnings = append(c.warnings, Warning{StepID: stepID, Message: message})
}

// Warnings returns a copy of the warnings recorded so far.
func (c *Context) Warnings() []Warning {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Warning(nil), c.warnings...)
}

// Elapsed returns time since the run started.
func (c *Context) Elapsed() time.Duration {
	return time.Since(c.started)
}
