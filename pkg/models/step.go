package models

// StepStatus represents the current state of a pipeline step.
// Transitions are monotonic: pending -> running -> one of the terminal
// states, or pending -> skipped. A step never re-enters pending.
type StepStatus string

const (
	// StepStatusPending indicates the step has not started.
	StepStatusPending StepStatus = "pending"
	// StepStatusRunning indicates the step's operation is executing.
	StepStatusRunning StepStatus = "running"
	// StepStatusComplete indicates the step finished successfully.
	StepStatusComplete StepStatus = "complete"
	// StepStatusFailed indicates the step's operation returned an error.
	StepStatusFailed StepStatus = "failed"
	// StepStatusSkipped indicates the step's skip condition fired and the
	// operation never ran. Skipped counts as satisfied for dependents.
	StepStatusSkipped StepStatus = "skipped"
)

// Valid returns true if the status is a known value.
func (s StepStatus) Valid() bool {
	switch s {
	case StepStatusPending, StepStatusRunning, StepStatusComplete,
		StepStatusFailed, StepStatusSkipped:
		return true
	default:
		return false
	}
}

// Terminal returns true if the status is a final state.
func (s StepStatus) Terminal() bool {
	switch s {
	case StepStatusComplete, StepStatusFailed, StepStatusSkipped:
		return true
	default:
		return false
	}
}

// Satisfied returns true if a dependency in this state unblocks its
// dependents. Failed dependencies keep dependents blocked.
func (s StepStatus) Satisfied() bool {
	return s == StepStatusComplete || s == StepStatusSkipped
}
