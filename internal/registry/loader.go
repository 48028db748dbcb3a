package registry

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/maestro-sh/maestro/pkg/models"
)

// Overlay is the YAML shape of a user-supplied routing overlay file.
// Models with IDs already in the built-in catalog replace the built-in
// descriptor; task entries replace the built-in mapping wholesale.
type Overlay struct {
	Models  []models.ModelDescriptor      `yaml:"models"`
	Tasks   map[string]models.TaskMapping `yaml:"tasks"`
	Default *models.TaskMapping           `yaml:"default"`
}

// LoadOverlay parses an overlay file. A missing file is not an error; it
// returns a nil overlay so callers can fall through to the builtins.
func LoadOverlay(path string) (*Overlay, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read overlay %s: %w", path, err)
	}

	var o Overlay
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("parse overlay %s: %w", path, err)
	}

	for _, m := range o.Models {
		if m.ID == "" {
			return nil, fmt.Errorf("overlay %s: model entry missing id", path)
		}
		if m.Provider != "" && !m.Provider.Valid() {
			return nil, fmt.Errorf("overlay %s: model %s has unknown provider %q", path, m.ID, m.Provider)
		}
	}
	return &o, nil
}

// Build assembles a Registry and TaskMap from the builtins plus an optional
// overlay, and validates that every mapping references a known model.
func Build(overlay *Overlay) (*Registry, *TaskMap, error) {
	descriptors := BuiltinCatalog()
	mappings := BuiltinTaskMappings()
	def := DefaultTaskMapping()

	if overlay != nil {
		descriptors = append(descriptors, overlay.Models...)
		for name, m := range overlay.Tasks {
			mappings[name] = m
		}
		if overlay.Default != nil {
			def = *overlay.Default
		}
	}

	reg := New(descriptors)
	taskMap, err := NewTaskMap(mappings, def)
	if err != nil {
		return nil, nil, err
	}
	if err := taskMap.Validate(reg); err != nil {
		return nil, nil, err
	}
	return reg, taskMap, nil
}

// BuildFromFile is a convenience wrapper that loads an overlay path (may be
// empty) and assembles the catalog.
func BuildFromFile(path string) (*Registry, *TaskMap, error) {
	var overlay *Overlay
	if path != "" {
		var err error
		overlay, err = LoadOverlay(path)
		if err != nil {
			return nil, nil, err
		}
	}
	return Build(overlay)
}
