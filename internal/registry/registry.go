// Package registry holds the immutable model catalog and the mapping from
// abstract task names to ranked model candidates. Both are built once at
// startup and injected into the router; there are no package-level mutable
// singletons, so routers with different catalogs can coexist.
package registry

import (
	"fmt"
	"sort"

	"github.com/maestro-sh/maestro/pkg/models"
)

// Registry is an immutable catalog of model descriptors keyed by ID.
type Registry struct {
	byID map[string]models.ModelDescriptor
}

// New builds a Registry from a slice of descriptors. Later descriptors with
// a duplicate ID replace earlier ones, which is how overlays win over the
// built-in catalog.
func New(descriptors []models.ModelDescriptor) *Registry {
	byID := make(map[string]models.ModelDescriptor, len(descriptors))
	for _, d := range descriptors {
		byID[d.ID] = d
	}
	return &Registry{byID: byID}
}

// Lookup returns the descriptor for the given model ID.
func (r *Registry) Lookup(id string) (models.ModelDescriptor, bool) {
	d, ok := r.byID[id]
	return d, ok
}

// All returns every descriptor in the catalog, sorted by ID for stable
// display output.
func (r *Registry) All() []models.ModelDescriptor {
	out := make([]models.ModelDescriptor, 0, len(r.byID))
	for _, d := range r.byID {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Size returns the number of models in the catalog.
func (r *Registry) Size() int {
	return len(r.byID)
}

// TaskMap is an immutable mapping from task name to ranked model candidates.
// Unknown task names resolve to a fixed default mapping.
type TaskMap struct {
	mappings    map[string]models.TaskMapping
	defaultTask models.TaskMapping
}

// NewTaskMap builds a TaskMap from explicit mappings and a default used for
// task names with no entry.
func NewTaskMap(mappings map[string]models.TaskMapping, def models.TaskMapping) (*TaskMap, error) {
	if len(def.Candidates()) == 0 {
		return nil, fmt.Errorf("default task mapping has no candidates")
	}
	copied := make(map[string]models.TaskMapping, len(mappings))
	for name, m := range mappings {
		copied[name] = m
	}
	return &TaskMap{mappings: copied, defaultTask: def}, nil
}

// Resolve returns the mapping for a task name, falling back to the default
// mapping for unknown names.
func (t *TaskMap) Resolve(task string) models.TaskMapping {
	if m, ok := t.mappings[task]; ok {
		return m
	}
	return t.defaultTask
}

// Known returns true if the task name has an explicit mapping.
func (t *TaskMap) Known(task string) bool {
	_, ok := t.mappings[task]
	return ok
}

// TaskNames returns all explicitly mapped task names, sorted.
func (t *TaskMap) TaskNames() []string {
	names := make([]string, 0, len(t.mappings))
	for name := range t.mappings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks that every candidate referenced by the map exists in the
// registry. It catches typos in overlay files before a run starts.
func (t *TaskMap) Validate(reg *Registry) error {
	check := func(task string, m models.TaskMapping) error {
		for _, id := range m.Candidates() {
			if _, ok := reg.Lookup(id); !ok {
				return fmt.Errorf("task %q references unknown model %q", task, id)
			}
		}
		return nil
	}

	for name, m := range t.mappings {
		if err := check(name, m); err != nil {
			return err
		}
	}
	return check("(default)", t.defaultTask)
}
