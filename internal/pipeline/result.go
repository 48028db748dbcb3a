package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/maestro-sh/maestro/pkg/models"
)

// ErrPipelineDeadlock indicates the step graph can never finish: a
// dependency cycle, or a dependency on a step that does not exist.
var ErrPipelineDeadlock = errors.New("pipeline deadlock")

// StepError wraps the failure of a single step's operation. One StepError
// aborts the whole run.
type StepError struct {
	// StepID is the step whose operation failed.
	StepID string
	// Err is the operation's error.
	Err error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s failed: %v", e.StepID, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Result is the final outcome of one pipeline run. It is produced exactly
// once, at completion or abort. On failure the outputs map still holds
// everything written before the abort, so callers can show partial
// artifacts.
type Result struct {
	// RunID identifies the run.
	RunID string `json:"run_id"`
	// Success is true only when every step reached complete or skipped.
	Success bool `json:"success"`
	// Outputs maps step ID to the output it wrote.
	Outputs map[string]any `json:"outputs"`
	// Statuses maps step ID to its final state.
	Statuses map[string]models.StepStatus `json:"statuses"`
	// ModelsUsed lists the models that served steps, in call order.
	ModelsUsed []string `json:"models_used"`
	// StepDurations maps step ID to its elapsed time.
	StepDurations map[string]time.Duration `json:"step_durations"`
	// Warnings lists non-fatal degradations recorded during the run.
	Warnings []Warning `json:"warnings,omitempty"`
	// Duration is the total run time.
	Duration time.Duration `json:"duration"`
	// Err is the failure that aborted the run, nil on success.
	Err error `json:"-"`
}

// ErrorText returns the error string for serialization, empty on success.
func (r *Result) ErrorText() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}
