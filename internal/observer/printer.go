// Package observer renders pipeline event streams for humans: a plain
// colored console printer and a richer terminal dashboard.
package observer

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/maestro-sh/maestro/internal/pipeline"
)

// Printer writes one line per pipeline event to w.
type Printer struct {
	w io.Writer
	// Fragments controls whether streamed token chunks are echoed.
	Fragments bool
}

// NewPrinter creates a console printer.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Consume drains the event channel, printing each event. It returns when
// the channel closes.
func (p *Printer) Consume(events <-chan pipeline.Event) {
	for ev := range events {
		p.Print(ev)
	}
}

// Print renders a single event.
func (p *Printer) Print(ev pipeline.Event) {
	name := ev.StepName
	if name == "" {
		name = ev.StepID
	}

	switch ev.Kind {
	case pipeline.EventStart:
		fmt.Fprintf(p.w, "%s %s\n", color.CyanString("▶"), name)
	case pipeline.EventProgress:
		fmt.Fprintf(p.w, "  %s %s %3d%% %s\n", color.HiBlackString("·"), name, ev.Progress, ev.Message)
	case pipeline.EventTokenChunk:
		if p.Fragments {
			fmt.Fprint(p.w, ev.Fragment)
		}
	case pipeline.EventFileGenerated:
		fmt.Fprintf(p.w, "  %s %s %s\n", color.HiBlackString("+"), name, color.HiBlackString(ev.FilePath))
	case pipeline.EventModelSwitch:
		fmt.Fprintf(p.w, "  %s %s → %s (%s)\n", color.YellowString("⇄"), name, ev.ModelID, ev.Message)
	case pipeline.EventCollaboration:
		fmt.Fprintf(p.w, "  %s %s → %s: %s\n", color.HiBlackString("⇒"), name, ev.TargetStep, ev.Message)
	case pipeline.EventComplete:
		suffix := ""
		if ev.ModelID != "" {
			suffix = " " + color.HiBlackString("["+ev.ModelID+"]")
		}
		fmt.Fprintf(p.w, "%s %s (%s)%s\n", color.GreenString("✓"), name, ev.Duration.Round(time.Millisecond), suffix)
	case pipeline.EventError:
		fmt.Fprintf(p.w, "%s %s: %s\n", color.RedString("✗"), name, ev.Error)
	case pipeline.EventSkipped:
		fmt.Fprintf(p.w, "%s %s (%s)\n", color.YellowString("⊘"), name, ev.Message)
	default:
		fmt.Fprintf(p.w, "  %s %s\n", name, strings.ToLower(string(ev.Kind)))
	}
}
