package usage

import (
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/maestro-sh/maestro/internal/registry"
	"github.com/maestro-sh/maestro/pkg/models"
)

// Totals aggregates usage across a set of records.
type Totals struct {
	Calls     int     `json:"calls"`
	TokensIn  int64   `json:"tokens_in"`
	TokensOut int64   `json:"tokens_out"`
	Cost      float64 `json:"cost"`
}

// Tracker accumulates usage records in memory and, when a store is
// attached, persists them. Recording never influences routing or
// scheduling, and a persistence failure never fails the caller.
type Tracker struct {
	mu      sync.Mutex
	reg     *registry.Registry
	store   *Store
	est     Estimator
	records []models.UsageRecord
}

// NewTracker creates a tracker. store may be nil for in-memory-only use.
func NewTracker(reg *registry.Registry, store *Store) *Tracker {
	return &Tracker{
		reg:   reg,
		store: store,
		est:   &TokenEstimator{},
	}
}

// SetEstimator overrides the token estimator.
func (t *Tracker) SetEstimator(est Estimator) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.est = est
}

// RouteCompleted converts a routing outcome into a usage record. Token
// counts the provider did not report are estimated from the response text
// and flagged; cost is recomputed from the estimate when needed.
func (t *Tracker) RouteCompleted(runID, task string, res *models.RouteResult) {
	rec := models.UsageRecord{
		ID:        uuid.NewString(),
		RunID:     runID,
		Task:      task,
		ModelID:   res.ModelID,
		Provider:  res.Provider,
		TokensIn:  res.TokensIn,
		TokensOut: res.TokensOut,
		Cost:      res.Cost,
		Duration:  res.Latency,
		CreatedAt: time.Now(),
	}

	if rec.TokensIn < 0 || rec.TokensOut < 0 {
		t.mu.Lock()
		est := t.est
		t.mu.Unlock()

		if rec.TokensIn < 0 {
			rec.TokensIn = 0
		}
		if rec.TokensOut < 0 {
			rec.TokensOut = est.Count(res.Response)
		}
		rec.Estimated = true
		if d, ok := t.reg.Lookup(res.ModelID); ok {
			rec.Cost = float64(rec.TokensIn+rec.TokensOut) / 1000.0 * d.CostPer1KTokens
		}
	}

	t.Record(rec)
}

// Record appends a finished record to the in-memory log and the store.
func (t *Tracker) Record(rec models.UsageRecord) {
	t.mu.Lock()
	t.records = append(t.records, rec)
	store := t.store
	t.mu.Unlock()

	if store != nil {
		if err := store.Insert(rec); err != nil {
			log.Printf("usage: persist record %s: %v", rec.ID, err)
		}
	}
}

// Report returns this process's records for a run, oldest first.
func (t *Tracker) Report(runID string) []models.UsageRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []models.UsageRecord
	for _, rec := range t.records {
		if rec.RunID == runID {
			out = append(out, rec)
		}
	}
	return out
}

// Totals aggregates every record seen by this tracker.
func (t *Tracker) Totals() Totals {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Aggregate(t.records)
}

// TotalsByModel aggregates per model ID.
func (t *Tracker) TotalsByModel() map[string]Totals {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]Totals)
	for _, rec := range t.records {
		agg := out[rec.ModelID]
		agg.Calls++
		agg.TokensIn += rec.TokensIn
		agg.TokensOut += rec.TokensOut
		agg.Cost += rec.Cost
		out[rec.ModelID] = agg
	}
	return out
}

// ModelIDs returns the distinct model IDs seen, sorted.
func (t *Tracker) ModelIDs() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	seen := make(map[string]bool)
	for _, rec := range t.records {
		seen[rec.ModelID] = true
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Aggregate sums a set of records, typically loaded from the store.
func Aggregate(records []models.UsageRecord) Totals {
	var agg Totals
	for _, rec := range records {
		agg.Calls++
		agg.TokensIn += rec.TokensIn
		agg.TokensOut += rec.TokensOut
		agg.Cost += rec.Cost
	}
	return agg
}
