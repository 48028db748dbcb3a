package models

import "testing"

func TestProviderValid(t *testing.T) {
	valid := []Provider{ProviderAnthropic, ProviderOpenAI, ProviderGoogle}
	for _, p := range valid {
		if !p.Valid() {
			t.Errorf("expected provider %q to be valid", p)
		}
	}

	if Provider("azure").Valid() {
		t.Error("expected unknown provider to be invalid")
	}
	if Provider("").Valid() {
		t.Error("expected empty provider to be invalid")
	}
}

func TestModelDescriptorHasCapability(t *testing.T) {
	m := ModelDescriptor{
		ID:           "test-model",
		Capabilities: []string{"fast", "long-context"},
	}

	if !m.HasCapability("fast") {
		t.Error("expected model to have fast capability")
	}
	if m.HasCapability("vision") {
		t.Error("did not expect vision capability")
	}

	empty := ModelDescriptor{ID: "bare"}
	if empty.HasCapability("fast") {
		t.Error("did not expect capability on bare descriptor")
	}
}

func TestTaskMappingCandidates(t *testing.T) {
	m := TaskMapping{
		Primary:   "claude-opus-4",
		Fallbacks: []string{"gpt-4-turbo", "gemini-1.5-pro"},
	}

	got := m.Candidates()
	want := []string{"claude-opus-4", "gpt-4-turbo", "gemini-1.5-pro"}
	if len(got) != len(want) {
		t.Fatalf("expected %d candidates, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("candidate %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestTaskMappingCandidatesNoPrimary(t *testing.T) {
	m := TaskMapping{Fallbacks: []string{"gpt-3.5-turbo"}}
	got := m.Candidates()
	if len(got) != 1 || got[0] != "gpt-3.5-turbo" {
		t.Errorf("expected only the fallback, got %v", got)
	}
}
