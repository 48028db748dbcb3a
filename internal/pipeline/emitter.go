package pipeline

import (
	"log"
	"sync/atomic"
	"time"
)

// emitter delivers events for one Execute call to its single subscriber.
// Each run owns its own emitter, so events never leak across runs.
type emitter struct {
	events       chan Event
	droppedCount atomic.Uint64
}

// newEmitter creates an emitter with the given buffer size.
func newEmitter(bufferSize int) *emitter {
	return &emitter{
		events: make(chan Event, bufferSize),
	}
}

// emit sends an event to the subscriber. If the channel is full, it tries
// with a timeout before dropping the event so a slow subscriber cannot
// stall the run.
func (e *emitter) emit(event Event) {
	select {
	case e.events <- event:
		return
	default:
		// Channel full, try with timeout
	}

	select {
	case e.events <- event:
		return
	case <-time.After(100 * time.Millisecond):
		count := e.droppedCount.Add(1)
		if count%10 == 1 { // Log every 10th drop to avoid spam
			log.Printf("[pipeline] WARNING: event channel full, dropped event (total dropped: %d): kind=%s step=%s", count, event.Kind, event.StepID)
		}
	}
}

// dropped returns the total number of events that have been dropped.
func (e *emitter) dropped() uint64 {
	return e.droppedCount.Load()
}

// subscribe returns the read-only event channel for the run's observer.
func (e *emitter) subscribe() <-chan Event {
	return e.events
}

// close closes the event channel once the run is finished.
func (e *emitter) close() {
	close(e.events)
}
