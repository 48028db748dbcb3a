package flows

import (
	"context"
	"time"

	"github.com/maestro-sh/maestro/internal/pipeline"
	"github.com/maestro-sh/maestro/internal/router"
	"github.com/maestro-sh/maestro/pkg/models"
)

// DefaultSEOMinimumScore is the review score below which SEO optimization
// is skipped.
const DefaultSEOMinimumScore = 70

// Review is the quality-review step's structured output.
type Review struct {
	// Score is the reviewer's quality score, 0 to 100.
	Score int `json:"score"`
	// Feedback is free-form reviewer notes.
	Feedback string `json:"feedback"`
}

// Sentiment is the sentiment-analysis step's structured output.
type Sentiment struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Entities is the entity-extraction step's structured output.
type Entities struct {
	People        []string `json:"people"`
	Places        []string `json:"places"`
	Organizations []string `json:"organizations"`
}

// ContentResult is the content-management flow's shaped output.
type ContentResult struct {
	RunID      string
	Success    bool
	Draft      string
	Review     Review
	Tags       []string
	Entities   Entities
	Sentiment  Sentiment
	SEO        string
	SEOSkipped bool
	ModelsUsed []string
	Warnings   []pipeline.Warning
	Duration   time.Duration
	Err        error
}

// ContentPipeline produces an article from a topic: a write step, four
// independent analysis steps over the draft, then SEO optimization gated
// on the review score.
type ContentPipeline struct {
	rt       *router.Router
	rec      Recorder
	prefs    models.RoutePreferences
	minScore int
}

// NewContentPipeline creates the flow. rec may be nil; minScore <= 0
// selects the default.
func NewContentPipeline(rt *router.Router, rec Recorder, prefs models.RoutePreferences, minScore int) *ContentPipeline {
	if minScore <= 0 {
		minScore = DefaultSEOMinimumScore
	}
	return &ContentPipeline{rt: rt, rec: rec, prefs: prefs, minScore: minScore}
}

// Steps declares the flow's dependency graph.
func (f *ContentPipeline) Steps(topic string) []pipeline.Step {
	return []pipeline.Step{
		{
			ID:   "write",
			Name: "Draft Writing",
			Run: func(ctx context.Context, input any, pc *pipeline.Context, rep pipeline.Reporter) (any, error) {
				return routeStreamText(ctx, f.rt, f.rec, pc, rep, "content-writing", writePrompt(topic), f.prefs)
			},
		},
		{
			ID:        "review",
			Name:      "Quality Review",
			DependsOn: []string{"write"},
			Run: func(ctx context.Context, input any, pc *pipeline.Context, rep pipeline.Reporter) (any, error) {
				text, err := routeText(ctx, f.rt, f.rec, pc, rep, "content-review", reviewPrompt(f.draft(pc)), f.prefs)
				if err != nil {
					return nil, err
				}
				var rev Review
				if perr := ExtractJSON(text, &rev); perr != nil {
					pc.AddWarning("review", perr.Error())
				}
				return rev, nil
			},
		},
		{
			ID:        "tags",
			Name:      "Auto Tagging",
			DependsOn: []string{"write"},
			Run: func(ctx context.Context, input any, pc *pipeline.Context, rep pipeline.Reporter) (any, error) {
				text, err := routeText(ctx, f.rt, f.rec, pc, rep, "content-tagging", tagsPrompt(f.draft(pc)), f.prefs)
				if err != nil {
					return nil, err
				}
				var payload struct {
					Tags []string `json:"tags"`
				}
				if perr := ExtractJSON(text, &payload); perr != nil {
					pc.AddWarning("tags", perr.Error())
				}
				return payload.Tags, nil
			},
		},
		{
			ID:        "entities",
			Name:      "Entity Extraction",
			DependsOn: []string{"write"},
			Run: func(ctx context.Context, input any, pc *pipeline.Context, rep pipeline.Reporter) (any, error) {
				text, err := routeText(ctx, f.rt, f.rec, pc, rep, "entity-extraction", entitiesPrompt(f.draft(pc)), f.prefs)
				if err != nil {
					return nil, err
				}
				var ents Entities
				if perr := ExtractJSON(text, &ents); perr != nil {
					pc.AddWarning("entities", perr.Error())
				}
				return ents, nil
			},
		},
		{
			ID:        "sentiment",
			Name:      "Sentiment Analysis",
			DependsOn: []string{"write"},
			Run: func(ctx context.Context, input any, pc *pipeline.Context, rep pipeline.Reporter) (any, error) {
				text, err := routeText(ctx, f.rt, f.rec, pc, rep, "sentiment-analysis", sentimentPrompt(f.draft(pc)), f.prefs)
				if err != nil {
					return nil, err
				}
				var s Sentiment
				if perr := ExtractJSON(text, &s); perr != nil {
					pc.AddWarning("sentiment", perr.Error())
				}
				return s, nil
			},
		},
		{
			ID:        "seo",
			Name:      "SEO Optimization",
			DependsOn: []string{"review", "tags", "entities", "sentiment"},
			Condition: func(pc *pipeline.Context) bool {
				out, ok := pc.Output("review")
				if !ok {
					return false
				}
				rev, ok := out.(Review)
				return ok && rev.Score >= f.minScore
			},
			Run: func(ctx context.Context, input any, pc *pipeline.Context, rep pipeline.Reporter) (any, error) {
				rev, _ := pc.Output("review")
				feedback := ""
				if r, ok := rev.(Review); ok {
					feedback = r.Feedback
				}
				return routeText(ctx, f.rt, f.rec, pc, rep, "seo-optimization", seoPrompt(f.draft(pc), feedback), f.prefs)
			},
		},
	}
}

// Run executes the flow, returning the live event stream and a channel
// that delivers the single shaped result.
func (f *ContentPipeline) Run(ctx context.Context, topic string) (<-chan pipeline.Event, <-chan *ContentResult) {
	runner := pipeline.NewRunner(f.Steps(topic))
	events, results := runner.Execute(ctx, topic)

	out := make(chan *ContentResult, 1)
	go func() {
		defer close(out)
		res := <-results
		out <- shapeContentResult(res)
	}()
	return events, out
}

func (f *ContentPipeline) draft(pc *pipeline.Context) string {
	out, _ := pc.Output("write")
	draft, _ := out.(string)
	return draft
}

func shapeContentResult(res *pipeline.Result) *ContentResult {
	r := &ContentResult{
		RunID:      res.RunID,
		Success:    res.Success,
		ModelsUsed: res.ModelsUsed,
		Warnings:   res.Warnings,
		Duration:   res.Duration,
		Err:        res.Err,
	}
	if draft, ok := res.Outputs["write"].(string); ok {
		r.Draft = draft
	}
	if rev, ok := res.Outputs["review"].(Review); ok {
		r.Review = rev
	}
	if tags, ok := res.Outputs["tags"].([]string); ok {
		r.Tags = tags
	}
	if ents, ok := res.Outputs["entities"].(Entities); ok {
		r.Entities = ents
	}
	if s, ok := res.Outputs["sentiment"].(Sentiment); ok {
		r.Sentiment = s
	}
	if seo, ok := res.Outputs["seo"].(string); ok {
		r.SEO = seo
	} else {
		r.SEOSkipped = res.Statuses["seo"] == models.StepStatusSkipped
	}
	return r
}
