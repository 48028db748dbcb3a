package pipeline

import (
	"testing"
	"time"
)

func TestContextOutputs(t *testing.T) {
	pc := NewContext("run-1")

	pc.Put("a", 1)
	pc.Put("b", "two")

	if v, ok := pc.Output("a"); !ok || v != 1 {
		t.Errorf("expected a=1, got %v ok=%v", v, ok)
	}
	if _, ok := pc.Output("missing"); ok {
		t.Error("expected missing key to report !ok")
	}

	outs := pc.Outputs()
	if len(outs) != 2 {
		t.Fatalf("expected 2 outputs, got %d", len(outs))
	}
	// The snapshot is a copy.
	outs["c"] = 3
	if _, ok := pc.Output("c"); ok {
		t.Error("mutating the snapshot leaked into the context")
	}
}

func TestContextPutDuplicatePanics(t *testing.T) {
	pc := NewContext("run-1")
	pc.Put("key", "first")

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate key")
		}
	}()
	pc.Put("key", "second")
}

func TestContextModelsDeduplicated(t *testing.T) {
	pc := NewContext("run-1")
	pc.RecordModel("claude-sonnet-4")
	pc.RecordModel("gpt-4-turbo")
	pc.RecordModel("claude-sonnet-4")

	got := pc.ModelsUsed()
	if len(got) != 2 {
		t.Fatalf("expected 2 distinct models, got %v", got)
	}
	if got[0] != "claude-sonnet-4" || got[1] != "gpt-4-turbo" {
		t.Errorf("expected first-use order, got %v", got)
	}
}

func TestContextWarnings(t *testing.T) {
	pc := NewContext("run-1")
	pc.AddWarning("tags", "model output was not valid JSON")

	ws := pc.Warnings()
	if len(ws) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(ws))
	}
	if ws[0].StepID != "tags" {
		t.Errorf("unexpected step ID %q", ws[0].StepID)
	}
}

func TestContextDurations(t *testing.T) {
	pc := NewContext("run-1")
	pc.RecordDuration("a", 42*time.Millisecond)

	ds := pc.Durations()
	if ds["a"] != 42*time.Millisecond {
		t.Errorf("unexpected duration %v", ds["a"])
	}
	if pc.RunID() != "run-1" {
		t.Errorf("unexpected run ID %q", pc.RunID())
	}
}
