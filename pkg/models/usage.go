package models

import "time"

// UsageRecord captures one model call for reporting purposes.
// Records are a pure sink: nothing on the routing or scheduling path
// ever reads them back.
type UsageRecord struct {
	// ID is the unique identifier for this record.
	ID string `json:"id"`
	// RunID identifies the pipeline run this call belonged to, if any.
	RunID string `json:"run_id,omitempty"`
	// Task is the abstract task name that was routed.
	Task string `json:"task"`
	// ModelID is the model that served the call.
	ModelID string `json:"model_id"`
	// Provider is the vendor that served the call.
	Provider Provider `json:"provider"`
	// TokensIn is the input token count.
	TokensIn int64 `json:"tokens_in"`
	// TokensOut is the output token count.
	TokensOut int64 `json:"tokens_out"`
	// Estimated is true when token counts came from a local estimate
	// rather than the provider's reported usage.
	Estimated bool `json:"estimated,omitempty"`
	// Cost is (TokensIn+TokensOut)/1000 * the model's cost per 1K tokens.
	Cost float64 `json:"cost"`
	// Duration is the wall-clock latency of the call.
	Duration time.Duration `json:"duration"`
	// CreatedAt is when the record was created.
	CreatedAt time.Time `json:"created_at"`
}

// TotalTokens returns the combined input and output token count.
func (u UsageRecord) TotalTokens() int64 {
	return u.TokensIn + u.TokensOut
}
