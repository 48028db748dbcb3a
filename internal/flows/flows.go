// Package flows declares the built-in orchestration flows. Each flow is a
// fixed template of pipeline steps whose bodies call the model router; all
// selection logic stays in the router and all scheduling in the pipeline
// runner.
package flows

import (
	"context"

	"github.com/maestro-sh/maestro/internal/pipeline"
	"github.com/maestro-sh/maestro/internal/router"
	"github.com/maestro-sh/maestro/pkg/models"
)

// Recorder receives routing outcomes for usage accounting. It is a pure
// sink: implementations must never influence routing or scheduling.
type Recorder interface {
	RouteCompleted(runID, task string, res *models.RouteResult)
}

// routeText dispatches one routed, non-streaming model call for a step and
// returns the response text. It reports the serving model, flags fallback
// selections, and forwards the outcome to the recorder.
func routeText(ctx context.Context, rt *router.Router, rec Recorder, pc *pipeline.Context, rep pipeline.Reporter, task, prompt string, prefs models.RoutePreferences) (string, error) {
	res, err := rt.Route(ctx, task, prompt, prefs)
	if err != nil {
		return "", err
	}
	reportRoute(rt, rec, pc, rep, task, res)
	return res.Response, nil
}

// routeStreamText dispatches one routed streaming call, forwarding each
// fragment through the reporter, and returns the assembled text.
func routeStreamText(ctx context.Context, rt *router.Router, rec Recorder, pc *pipeline.Context, rep pipeline.Reporter, task, prompt string, prefs models.RoutePreferences) (string, error) {
	stream, err := rt.RouteStream(ctx, task, prompt, prefs)
	if err != nil {
		return "", err
	}
	rep.ModelUsed(stream.ModelID)
	flagFallback(rt, rep, task, stream.ModelID)

	var sb []byte
	for chunk := range stream.Chunks {
		if chunk.Err != nil {
			return "", chunk.Err
		}
		sb = append(sb, chunk.Text...)
		rep.Chunk(chunk.Text)
	}

	if rec != nil {
		rec.RouteCompleted(pc.RunID(), task, &models.RouteResult{
			ModelID:   stream.ModelID,
			Provider:  stream.Provider,
			Response:  string(sb),
			TokensIn:  -1,
			TokensOut: -1,
			Latency:   stream.Latency(),
		})
	}
	return string(sb), nil
}

func reportRoute(rt *router.Router, rec Recorder, pc *pipeline.Context, rep pipeline.Reporter, task string, res *models.RouteResult) {
	rep.ModelUsed(res.ModelID)
	flagFallback(rt, rep, task, res.ModelID)
	if rec != nil {
		rec.RouteCompleted(pc.RunID(), task, res)
	}
}

// flagFallback emits a model_switch event when the serving model is not
// the task's primary candidate.
func flagFallback(rt *router.Router, rep pipeline.Reporter, task, modelID string) {
	mapping := rt.Tasks().Resolve(task)
	if mapping.Primary != "" && mapping.Primary != modelID {
		rep.ModelSwitch(modelID, "primary model for "+task+" unavailable")
	}
}
