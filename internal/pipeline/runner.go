package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/maestro-sh/maestro/pkg/models"
)

// defaultEventBuffer is the emitter buffer size per run.
const defaultEventBuffer = 256

// Runner executes a declared step set. It is reentrant: each Execute call
// owns its own context, state, and event stream, so one Runner can serve
// many concurrent runs.
type Runner struct {
	steps      []Step
	bufferSize int
}

// NewRunner creates a Runner over the given steps. Graph validation
// happens per Execute call, surfacing as a deadlock fault rather than a
// construction error.
func NewRunner(steps []Step) *Runner {
	return &Runner{
		steps:      steps,
		bufferSize: defaultEventBuffer,
	}
}

// SetEventBuffer overrides the per-run event channel capacity.
func (r *Runner) SetEventBuffer(n int) {
	if n > 0 {
		r.bufferSize = n
	}
}

// Steps returns the declared step set, for plan display.
func (r *Runner) Steps() []Step {
	return r.steps
}

// Execute starts a run. It returns the run's event stream and a channel
// that delivers the single final Result; both channels are closed when the
// run finishes. The event stream has exactly one subscriber: the caller.
func (r *Runner) Execute(ctx context.Context, input any) (<-chan Event, <-chan *Result) {
	em := newEmitter(r.bufferSize)
	results := make(chan *Result, 1)
	go r.run(ctx, input, em, results)
	return em.subscribe(), results
}

// outcome carries a finished step from its goroutine back to the
// scheduling loop.
type outcome struct {
	stepID   string
	output   any
	err      error
	model    string
	duration time.Duration
}

func (r *Runner) run(ctx context.Context, input any, em *emitter, results chan<- *Result) {
	runID := uuid.NewString()
	pc := NewContext(runID)
	start := time.Now()
	states := make(map[string]models.StepStatus, len(r.steps))
	for i := range r.steps {
		states[r.steps[i].ID] = models.StepStatusPending
	}

	finish := func(failErr error) {
		res := &Result{
			RunID:         runID,
			Success:       failErr == nil,
			Outputs:       pc.Outputs(),
			Statuses:      states,
			ModelsUsed:    pc.ModelsUsed(),
			StepDurations: pc.Durations(),
			Warnings:      pc.Warnings(),
			Duration:      time.Since(start),
			Err:           failErr,
		}
		em.close()
		results <- res
		close(results)
	}

	g, err := newGraph(r.steps)
	if err != nil {
		// A cycle or dangling dependency can never produce an eligible
		// step, so it surfaces as the deadlock fault up front instead of
		// a hung run.
		finish(fmt.Errorf("%w: %v", ErrPipelineDeadlock, err))
		return
	}

	done := make(chan outcome)
	running := 0
	var failErr error

	launch := func(step *Step) {
		states[step.ID] = models.StepStatusRunning
		em.emit(Event{
			Kind:      EventStart,
			RunID:     runID,
			StepID:    step.ID,
			StepName:  step.Name,
			Timestamp: time.Now(),
		})
		running++

		go func() {
			rep := &stepReporter{em: em, runID: runID, stepID: step.ID, stepName: step.Name, pc: pc}
			stepStart := time.Now()
			out, err := step.Run(ctx, input, pc, rep)
			done <- outcome{
				stepID:   step.ID,
				output:   out,
				err:      err,
				model:    rep.model,
				duration: time.Since(stepStart),
			}
		}()
	}

	for {
		if failErr == nil {
			// Launch everything eligible. Skips satisfy dependents
			// immediately, so keep sweeping until no skip fires.
			for {
				skippedAny := false
				for _, id := range g.ready() {
					if states[id] != models.StepStatusPending {
						continue
					}
					step := g.step(id)
					if step.Condition != nil && !step.Condition(pc) {
						states[id] = models.StepStatusSkipped
						g.markSatisfied(id)
						em.emit(Event{
							Kind:      EventSkipped,
							RunID:     runID,
							StepID:    id,
							StepName:  step.Name,
							Timestamp: time.Now(),
							Message:   "condition not met",
						})
						skippedAny = true
						continue
					}
					launch(step)
				}
				if !skippedAny {
					break
				}
			}
		}

		if running == 0 {
			if failErr != nil {
				finish(failErr)
				return
			}
			if allTerminal(states) {
				finish(nil)
				return
			}
			// Nothing running, nothing eligible, steps remain: the graph
			// cannot make progress.
			finish(fmt.Errorf("%w: no eligible step among %d remaining", ErrPipelineDeadlock, countNonTerminal(states)))
			return
		}

		o := <-done
		running--
		pc.RecordDuration(o.stepID, o.duration)

		step := g.step(o.stepID)
		if o.err != nil {
			states[o.stepID] = models.StepStatusFailed
			em.emit(Event{
				Kind:      EventError,
				RunID:     runID,
				StepID:    o.stepID,
				StepName:  step.Name,
				Timestamp: time.Now(),
				Error:     o.err.Error(),
				Duration:  o.duration,
			})
			if failErr == nil {
				// First failure aborts the run. Already-running siblings
				// drain naturally and keep their outputs.
				failErr = &StepError{StepID: o.stepID, Err: o.err}
			}
			continue
		}

		pc.Put(o.stepID, o.output)
		states[o.stepID] = models.StepStatusComplete
		g.markSatisfied(o.stepID)
		em.emit(Event{
			Kind:      EventComplete,
			RunID:     runID,
			StepID:    o.stepID,
			StepName:  step.Name,
			Timestamp: time.Now(),
			ModelID:   o.model,
			Duration:  o.duration,
		})
	}
}

func allTerminal(states map[string]models.StepStatus) bool {
	for _, s := range states {
		if !s.Terminal() {
			return false
		}
	}
	return true
}

func countNonTerminal(states map[string]models.StepStatus) int {
	n := 0
	for _, s := range states {
		if !s.Terminal() {
			n++
		}
	}
	return n
}

// stepReporter tags a running step's intermediate events with its identity.
type stepReporter struct {
	em       *emitter
	runID    string
	stepID   string
	stepName string
	pc       *Context
	model    string
}

func (r *stepReporter) base(kind EventKind) Event {
	return Event{
		Kind:      kind,
		RunID:     r.runID,
		StepID:    r.stepID,
		StepName:  r.stepName,
		Timestamp: time.Now(),
	}
}

// Progress reports completion percentage, clamped to 0-100.
func (r *stepReporter) Progress(pct int, message string) {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	ev := r.base(EventProgress)
	ev.Progress = pct
	ev.Message = message
	r.em.emit(ev)
}

// Chunk forwards a streamed output fragment.
func (r *stepReporter) Chunk(fragment string) {
	ev := r.base(EventTokenChunk)
	ev.Fragment = fragment
	r.em.emit(ev)
}

// File reports a generated file.
func (r *stepReporter) File(path, content string) {
	ev := r.base(EventFileGenerated)
	ev.FilePath = path
	ev.FileContent = content
	r.em.emit(ev)
}

// ModelUsed records the model serving this step.
func (r *stepReporter) ModelUsed(modelID string) {
	r.model = modelID
	r.pc.RecordModel(modelID)
}

// ModelSwitch reports that a non-primary model is serving the step.
func (r *stepReporter) ModelSwitch(modelID, message string) {
	ev := r.base(EventModelSwitch)
	ev.ModelID = modelID
	ev.Message = message
	r.em.emit(ev)
}

// Collaborate reports a hand-off of this step's output to another step.
func (r *stepReporter) Collaborate(targetStepID, message string) {
	ev := r.base(EventCollaboration)
	ev.TargetStep = targetStepID
	ev.Message = message
	r.em.emit(ev)
}
