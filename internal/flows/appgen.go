package flows

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/maestro-sh/maestro/internal/pipeline"
	"github.com/maestro-sh/maestro/internal/router"
	"github.com/maestro-sh/maestro/pkg/models"
)

// Architecture is the structured plan the analysis step extracts from the
// model's response.
type Architecture struct {
	// Summary is a short description of the proposed system.
	Summary string `json:"summary"`
	// Components lists the major backend and frontend pieces.
	Components []string `json:"components"`
	// Stack lists the suggested technologies.
	Stack []string `json:"stack"`
}

// GeneratedFile is one file produced by a generation step.
type GeneratedFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// AppResult is the app-generation flow's shaped output.
type AppResult struct {
	RunID            string
	Success          bool
	Architecture     Architecture
	ArchitectureText string
	BackendFiles     []GeneratedFile
	UIFiles          []GeneratedFile
	IntegrationNotes string
	ProjectFiles     []GeneratedFile
	ModelsUsed       []string
	Warnings         []pipeline.Warning
	Duration         time.Duration
	Err              error
}

// AppGeneration builds an application from a requirements description:
// analysis first, backend and UI generation concurrently, then an
// integration review, then static project scaffolding with no model call.
type AppGeneration struct {
	rt    *router.Router
	rec   Recorder
	prefs models.RoutePreferences
}

// NewAppGeneration creates the flow. rec may be nil.
func NewAppGeneration(rt *router.Router, rec Recorder, prefs models.RoutePreferences) *AppGeneration {
	return &AppGeneration{rt: rt, rec: rec, prefs: prefs}
}

// Steps declares the flow's dependency graph.
func (f *AppGeneration) Steps(requirement string) []pipeline.Step {
	return []pipeline.Step{
		{
			ID:   "analyze",
			Name: "Requirements Analysis",
			Run: func(ctx context.Context, input any, pc *pipeline.Context, rep pipeline.Reporter) (any, error) {
				rep.Progress(10, "analyzing requirements")
				text, err := routeStreamText(ctx, f.rt, f.rec, pc, rep, "architecture-planning", architecturePrompt(requirement), f.prefs)
				if err != nil {
					return nil, err
				}
				var arch Architecture
				if perr := ExtractJSON(text, &arch); perr != nil {
					pc.AddWarning("analyze", perr.Error())
				}
				return analysisOutput{Text: text, Arch: arch}, nil
			},
		},
		{
			ID:        "backend",
			Name:      "Backend Generation",
			DependsOn: []string{"analyze"},
			Run: func(ctx context.Context, input any, pc *pipeline.Context, rep pipeline.Reporter) (any, error) {
				return f.generateFiles(ctx, pc, rep, "backend", "backend-generation", backendPrompt)
			},
		},
		{
			ID:        "ui",
			Name:      "UI Generation",
			DependsOn: []string{"analyze"},
			Run: func(ctx context.Context, input any, pc *pipeline.Context, rep pipeline.Reporter) (any, error) {
				return f.generateFiles(ctx, pc, rep, "ui", "ui-generation", uiPrompt)
			},
		},
		{
			ID:        "integration",
			Name:      "Integration Review",
			DependsOn: []string{"backend", "ui"},
			Run: func(ctx context.Context, input any, pc *pipeline.Context, rep pipeline.Reporter) (any, error) {
				backend, _ := pc.Output("backend")
				ui, _ := pc.Output("ui")
				prompt := integrationPrompt(fileListing(backend), fileListing(ui))
				rep.Collaborate("scaffold", "review feeds project scaffolding")
				return routeText(ctx, f.rt, f.rec, pc, rep, "integration-review", prompt, f.prefs)
			},
		},
		{
			ID:        "scaffold",
			Name:      "Project Scaffolding",
			DependsOn: []string{"integration"},
			Run: func(ctx context.Context, input any, pc *pipeline.Context, rep pipeline.Reporter) (any, error) {
				// Static assembly only, no model call.
				out, _ := pc.Output("analyze")
				analysis, _ := out.(analysisOutput)
				files := scaffoldFiles(analysis.Arch)
				for _, gf := range files {
					rep.File(gf.Path, gf.Content)
				}
				return files, nil
			},
		},
	}
}

// Run executes the flow, returning the live event stream and a channel
// that delivers the single shaped result.
func (f *AppGeneration) Run(ctx context.Context, requirement string) (<-chan pipeline.Event, <-chan *AppResult) {
	runner := pipeline.NewRunner(f.Steps(requirement))
	events, results := runner.Execute(ctx, requirement)

	out := make(chan *AppResult, 1)
	go func() {
		defer close(out)
		res := <-results
		out <- shapeAppResult(res)
	}()
	return events, out
}

type analysisOutput struct {
	Text string
	Arch Architecture
}

// generateFiles runs one code-generation step: routed call, structured
// file extraction, file_generated events.
func (f *AppGeneration) generateFiles(ctx context.Context, pc *pipeline.Context, rep pipeline.Reporter, stepID, task string, promptFn func(analysisOutput) string) ([]GeneratedFile, error) {
	out, _ := pc.Output("analyze")
	analysis, _ := out.(analysisOutput)

	text, err := routeText(ctx, f.rt, f.rec, pc, rep, task, promptFn(analysis), f.prefs)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Files []GeneratedFile `json:"files"`
	}
	if perr := ExtractJSON(text, &payload); perr != nil {
		pc.AddWarning(stepID, perr.Error())
		return nil, nil
	}
	for _, gf := range payload.Files {
		rep.File(gf.Path, gf.Content)
	}
	return payload.Files, nil
}

func shapeAppResult(res *pipeline.Result) *AppResult {
	r := &AppResult{
		RunID:      res.RunID,
		Success:    res.Success,
		ModelsUsed: res.ModelsUsed,
		Warnings:   res.Warnings,
		Duration:   res.Duration,
		Err:        res.Err,
	}
	if out, ok := res.Outputs["analyze"].(analysisOutput); ok {
		r.Architecture = out.Arch
		r.ArchitectureText = out.Text
	}
	if files, ok := res.Outputs["backend"].([]GeneratedFile); ok {
		r.BackendFiles = files
	}
	if files, ok := res.Outputs["ui"].([]GeneratedFile); ok {
		r.UIFiles = files
	}
	if notes, ok := res.Outputs["integration"].(string); ok {
		r.IntegrationNotes = notes
	}
	if files, ok := res.Outputs["scaffold"].([]GeneratedFile); ok {
		r.ProjectFiles = files
	}
	return r
}

// scaffoldFiles assembles the static project-config files from the
// extracted architecture.
func scaffoldFiles(arch Architecture) []GeneratedFile {
	manifest := map[string]any{
		"name":        "generated-app",
		"version":     "0.1.0",
		"description": arch.Summary,
		"stack":       arch.Stack,
	}
	raw, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		raw = []byte("{}")
	}

	var env strings.Builder
	env.WriteString("# Environment template\n")
	env.WriteString("PORT=8080\n")
	env.WriteString("DATABASE_URL=\n")
	for _, c := range arch.Components {
		key := strings.ToUpper(strings.ReplaceAll(c, " ", "_"))
		fmt.Fprintf(&env, "%s_ENABLED=true\n", key)
	}

	return []GeneratedFile{
		{Path: "project.json", Content: string(raw) + "\n"},
		{Path: ".env.example", Content: env.String()},
	}
}

func fileListing(output any) string {
	files, ok := output.([]GeneratedFile)
	if !ok || len(files) == 0 {
		return "(no files)"
	}
	var sb strings.Builder
	for _, gf := range files {
		fmt.Fprintf(&sb, "--- %s ---\n%s\n", gf.Path, gf.Content)
	}
	return sb.String()
}
