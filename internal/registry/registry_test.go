package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/maestro-sh/maestro/pkg/models"
)

func TestRegistryLookup(t *testing.T) {
	reg := New(BuiltinCatalog())

	d, ok := reg.Lookup("claude-opus-4")
	if !ok {
		t.Fatal("expected claude-opus-4 in builtin catalog")
	}
	if d.Provider != models.ProviderAnthropic {
		t.Errorf("expected anthropic provider, got %s", d.Provider)
	}
	if d.CostPer1KTokens != 0.015 {
		t.Errorf("expected cost 0.015, got %f", d.CostPer1KTokens)
	}

	if _, ok := reg.Lookup("no-such-model"); ok {
		t.Error("did not expect lookup of unknown model to succeed")
	}
}

func TestRegistryOverlayReplacesDescriptor(t *testing.T) {
	catalog := BuiltinCatalog()
	catalog = append(catalog, models.ModelDescriptor{
		ID:              "claude-opus-4",
		Provider:        models.ProviderAnthropic,
		CostPer1KTokens: 0.020,
	})
	reg := New(catalog)

	d, ok := reg.Lookup("claude-opus-4")
	if !ok {
		t.Fatal("expected claude-opus-4")
	}
	if d.CostPer1KTokens != 0.020 {
		t.Errorf("expected later descriptor to win, got cost %f", d.CostPer1KTokens)
	}
}

func TestRegistryAllSorted(t *testing.T) {
	reg := New(BuiltinCatalog())
	all := reg.All()
	if len(all) != reg.Size() {
		t.Fatalf("All returned %d entries, Size is %d", len(all), reg.Size())
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].ID >= all[i].ID {
			t.Errorf("All not sorted: %q before %q", all[i-1].ID, all[i].ID)
		}
	}
}

func TestTaskMapResolveKnown(t *testing.T) {
	tm, err := NewTaskMap(BuiltinTaskMappings(), DefaultTaskMapping())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m := tm.Resolve("architecture-planning")
	if m.Primary != "claude-opus-4" {
		t.Errorf("expected primary claude-opus-4, got %s", m.Primary)
	}
	if len(m.Fallbacks) != 2 || m.Fallbacks[0] != "gpt-4-turbo" || m.Fallbacks[1] != "gemini-1.5-pro" {
		t.Errorf("unexpected fallbacks: %v", m.Fallbacks)
	}
}

func TestTaskMapResolveUnknownUsesDefault(t *testing.T) {
	tm, err := NewTaskMap(BuiltinTaskMappings(), DefaultTaskMapping())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m := tm.Resolve("never-heard-of-this-task")
	def := DefaultTaskMapping()
	if m.Primary != def.Primary {
		t.Errorf("expected default primary %s, got %s", def.Primary, m.Primary)
	}
	if tm.Known("never-heard-of-this-task") {
		t.Error("unknown task should not be reported as known")
	}
}

func TestTaskMapValidateCatchesUnknownModel(t *testing.T) {
	mappings := map[string]models.TaskMapping{
		"broken-task": {Primary: "model-that-does-not-exist"},
	}
	tm, err := NewTaskMap(mappings, DefaultTaskMapping())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := tm.Validate(New(BuiltinCatalog())); err == nil {
		t.Error("expected validation error for unknown model reference")
	}
}

func TestBuildWithOverlayFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "routing.yaml")
	overlay := `
models:
  - id: local-llama
    provider: openai
    capabilities: [fast]
    cost_per_1k_tokens: 0
    max_tokens: 8192
    modality: text
    streaming: true
tasks:
  content-tagging:
    primary: local-llama
    fallbacks: [gpt-3.5-turbo]
    rationale: free local model first
`
	if err := os.WriteFile(path, []byte(overlay), 0644); err != nil {
		t.Fatalf("write overlay: %v", err)
	}

	reg, tm, err := BuildFromFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := reg.Lookup("local-llama"); !ok {
		t.Error("expected overlay model in registry")
	}
	m := tm.Resolve("content-tagging")
	if m.Primary != "local-llama" {
		t.Errorf("expected overlay to replace task mapping, got primary %s", m.Primary)
	}
	// Untouched mappings should survive the overlay.
	if tm.Resolve("architecture-planning").Primary != "claude-opus-4" {
		t.Error("expected builtin mapping to remain")
	}
}

func TestBuildFromMissingFile(t *testing.T) {
	reg, tm, err := BuildFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing overlay should not error: %v", err)
	}
	if reg.Size() == 0 || len(tm.TaskNames()) == 0 {
		t.Error("expected builtin catalog when overlay is missing")
	}
}
