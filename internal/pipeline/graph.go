package pipeline

import (
	"errors"
	"fmt"
	"sync"
)

// ErrCycleDetected indicates a circular dependency in the step graph.
var ErrCycleDetected = errors.New("circular dependency detected")

// graph tracks dependency edges between steps and which steps have been
// satisfied (completed or skipped). One graph instance belongs to one run.
type graph struct {
	mu sync.RWMutex
	// nodes maps step ID to the step definition.
	nodes map[string]*Step
	// edges maps step ID to the IDs it depends on.
	edges map[string][]string
	// satisfied tracks steps whose dependents are unblocked.
	satisfied map[string]bool
}

// newGraph constructs the dependency graph from a step set. It rejects
// duplicate IDs, dependencies on unknown steps, and cycles.
func newGraph(steps []Step) (*graph, error) {
	g := &graph{
		nodes:     make(map[string]*Step, len(steps)),
		edges:     make(map[string][]string, len(steps)),
		satisfied: make(map[string]bool),
	}

	for i := range steps {
		step := &steps[i]
		if step.ID == "" {
			return nil, fmt.Errorf("step %d has no ID", i)
		}
		if _, exists := g.nodes[step.ID]; exists {
			return nil, fmt.Errorf("duplicate step ID %q", step.ID)
		}
		g.nodes[step.ID] = step
		g.edges[step.ID] = nil
	}

	for id, step := range g.nodes {
		for _, depID := range step.DependsOn {
			if _, exists := g.nodes[depID]; !exists {
				return nil, fmt.Errorf("step %q depends on unknown step %q", id, depID)
			}
			g.edges[id] = append(g.edges[id], depID)
		}
	}

	if g.hasCycleLocked() {
		return nil, ErrCycleDetected
	}
	return g, nil
}

// hasCycleLocked detects back edges via depth-first search with coloring.
// Callers must hold the lock (or own the graph exclusively, as newGraph does).
func (g *graph) hasCycleLocked() bool {
	// Color states: 0 = white (unvisited), 1 = gray (in progress), 2 = black (done).
	colors := make(map[string]int, len(g.nodes))

	var visit func(id string) bool
	visit = func(id string) bool {
		colors[id] = 1

		for _, depID := range g.edges[id] {
			switch colors[depID] {
			case 1:
				// Back edge - cycle.
				return true
			case 0:
				if visit(depID) {
					return true
				}
			}
		}

		colors[id] = 2
		return false
	}

	for id := range g.nodes {
		if colors[id] == 0 && visit(id) {
			return true
		}
	}
	return false
}

// ready returns step IDs that are not yet satisfied and whose dependencies
// are all satisfied. The runner filters out steps it already launched or
// failed.
func (g *graph) ready() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var ready []string
	for id := range g.nodes {
		if g.satisfied[id] {
			continue
		}

		allDeps := true
		for _, depID := range g.edges[id] {
			if !g.satisfied[depID] {
				allDeps = false
				break
			}
		}
		if allDeps {
			ready = append(ready, id)
		}
	}
	return ready
}

// markSatisfied records that a step completed or was skipped, unblocking
// its dependents.
func (g *graph) markSatisfied(stepID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.satisfied[stepID] = true
}

// step returns the definition for a step ID, or nil.
func (g *graph) step(stepID string) *Step {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.nodes[stepID]
}

// size returns the number of steps in the graph.
func (g *graph) size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// TopologicalOrder returns step IDs with every dependency before its
// dependents. Used for plan display; returns an error on a cyclic or
// otherwise invalid step set.
func TopologicalOrder(steps []Step) ([]string, error) {
	g, err := newGraph(steps)
	if err != nil {
		return nil, err
	}

	visited := make(map[string]bool, len(g.nodes))
	var result []string

	var visit func(id string)
	visit = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, depID := range g.edges[id] {
			visit(depID)
		}
		result = append(result, id)
	}

	// Iterate in declaration order so the output is stable.
	for i := range steps {
		visit(steps[i].ID)
	}
	return result, nil
}
