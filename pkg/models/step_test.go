package models

import "testing"

func TestStepStatusValid(t *testing.T) {
	valid := []StepStatus{
		StepStatusPending, StepStatusRunning, StepStatusComplete,
		StepStatusFailed, StepStatusSkipped,
	}
	for _, s := range valid {
		if !s.Valid() {
			t.Errorf("expected status %q to be valid", s)
		}
	}

	if StepStatus("cancelled").Valid() {
		t.Error("expected unknown status to be invalid")
	}
}

func TestStepStatusTerminal(t *testing.T) {
	cases := map[StepStatus]bool{
		StepStatusPending:  false,
		StepStatusRunning:  false,
		StepStatusComplete: true,
		StepStatusFailed:   true,
		StepStatusSkipped:  true,
	}
	for status, want := range cases {
		if got := status.Terminal(); got != want {
			t.Errorf("Terminal(%q): expected %v, got %v", status, want, got)
		}
	}
}

func TestStepStatusSatisfied(t *testing.T) {
	// Skipped dependencies unblock dependents; failed ones do not.
	if !StepStatusComplete.Satisfied() {
		t.Error("complete should satisfy dependents")
	}
	if !StepStatusSkipped.Satisfied() {
		t.Error("skipped should satisfy dependents")
	}
	if StepStatusFailed.Satisfied() {
		t.Error("failed must not satisfy dependents")
	}
	if StepStatusRunning.Satisfied() {
		t.Error("running must not satisfy dependents")
	}
}
