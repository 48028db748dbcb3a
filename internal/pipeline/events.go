package pipeline

import "time"

// EventKind represents the type of pipeline event.
type EventKind string

const (
	// EventStart indicates a step has started execution.
	EventStart EventKind = "start"
	// EventProgress is a periodic update on a running step.
	EventProgress EventKind = "progress"
	// EventTokenChunk carries a streamed output fragment.
	EventTokenChunk EventKind = "token_chunk"
	// EventComplete indicates a step completed successfully.
	EventComplete EventKind = "complete"
	// EventError indicates a step failed.
	EventError EventKind = "error"
	// EventSkipped indicates a step's condition fired and its operation
	// never ran.
	EventSkipped EventKind = "skipped"
	// EventModelSwitch indicates a step was served by a non-primary model.
	EventModelSwitch EventKind = "model_switch"
	// EventCollaboration indicates a step handed data to another step.
	EventCollaboration EventKind = "collaboration"
	// EventFileGenerated indicates a step produced a file.
	EventFileGenerated EventKind = "file_generated"
)

// Terminal returns true for the kinds that end a step's event sequence.
func (k EventKind) Terminal() bool {
	switch k {
	case EventComplete, EventError, EventSkipped:
		return true
	default:
		return false
	}
}

// Event is a discrete, timestamped notification about a step. Events are
// transient: produced, forwarded to the run's subscriber, never stored as
// primary state.
//
// For any single step the sequence is totally ordered: start first, then
// progress/chunk/file events, then exactly one terminal kind. Interleaving
// across concurrently running steps is unspecified.
type Event struct {
	// Kind is the type of event.
	Kind EventKind `json:"kind"`
	// RunID identifies the pipeline run.
	RunID string `json:"run_id"`
	// StepID is the originating step.
	StepID string `json:"step_id"`
	// StepName is the step's display name.
	StepName string `json:"step_name,omitempty"`
	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`
	// Message provides additional context.
	Message string `json:"message,omitempty"`
	// Progress is the completion percentage (0-100) for progress events.
	Progress int `json:"progress,omitempty"`
	// Fragment is the output fragment for token_chunk events.
	Fragment string `json:"fragment,omitempty"`
	// FilePath is the generated file's path for file_generated events.
	FilePath string `json:"file_path,omitempty"`
	// FileContent is the generated file's content for file_generated events.
	FileContent string `json:"file_content,omitempty"`
	// TargetStep is the receiving step for collaboration events.
	TargetStep string `json:"target_step,omitempty"`
	// ModelID is the serving model, set on complete and model_switch events.
	ModelID string `json:"model_id,omitempty"`
	// Error contains error text for error events.
	Error string `json:"error,omitempty"`
	// Duration is the step's elapsed time, set on terminal events.
	Duration time.Duration `json:"duration,omitempty"`
}
