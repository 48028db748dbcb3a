package models

import "time"

// Provider identifies the vendor backing a model.
type Provider string

const (
	// ProviderAnthropic is the Anthropic API (or AWS Bedrock).
	ProviderAnthropic Provider = "anthropic"
	// ProviderOpenAI is the OpenAI chat-completions API.
	ProviderOpenAI Provider = "openai"
	// ProviderGoogle is the Google Gemini API.
	ProviderGoogle Provider = "google"
)

// Valid returns true if the provider is a known value.
func (p Provider) Valid() bool {
	switch p {
	case ProviderAnthropic, ProviderOpenAI, ProviderGoogle:
		return true
	default:
		return false
	}
}

// Modality describes what kind of output a model produces.
type Modality string

const (
	// ModalityText is a text-generation model.
	ModalityText Modality = "text"
	// ModalityImage is an image-generation model.
	ModalityImage Modality = "image"
)

// ModelDescriptor describes a single model in the catalog.
// Descriptors are loaded at startup and never mutated.
type ModelDescriptor struct {
	// ID is the provider-facing model identifier.
	ID string `json:"id" yaml:"id"`
	// Provider is the vendor that serves this model.
	Provider Provider `json:"provider" yaml:"provider"`
	// Capabilities are free-form tags such as "fast", "long-context", "code".
	Capabilities []string `json:"capabilities,omitempty" yaml:"capabilities,omitempty"`
	// CostPer1KTokens is the blended USD cost per 1,000 tokens.
	CostPer1KTokens float64 `json:"cost_per_1k_tokens" yaml:"cost_per_1k_tokens"`
	// MaxTokens is the model's maximum context window.
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`
	// Modality is the output modality (text or image).
	Modality Modality `json:"modality" yaml:"modality"`
	// Streaming indicates whether the model supports streamed responses.
	Streaming bool `json:"streaming" yaml:"streaming"`
}

// HasCapability returns true if the descriptor carries the given tag.
func (m ModelDescriptor) HasCapability(tag string) bool {
	for _, c := range m.Capabilities {
		if c == tag {
			return true
		}
	}
	return false
}

// TaskMapping maps an abstract task name to a ranked list of models.
type TaskMapping struct {
	// Primary is the preferred model ID for the task.
	Primary string `json:"primary" yaml:"primary"`
	// Fallbacks are tried, in order, when the primary is unavailable.
	Fallbacks []string `json:"fallbacks,omitempty" yaml:"fallbacks,omitempty"`
	// Rationale explains why the primary was chosen for this task.
	Rationale string `json:"rationale,omitempty" yaml:"rationale,omitempty"`
}

// Candidates returns the primary followed by the fallbacks, in rank order.
func (t TaskMapping) Candidates() []string {
	out := make([]string, 0, 1+len(t.Fallbacks))
	if t.Primary != "" {
		out = append(out, t.Primary)
	}
	return append(out, t.Fallbacks...)
}

// RoutePreferences bias model selection for a single route call.
type RoutePreferences struct {
	// PreferCost selects the cheapest available candidate.
	PreferCost bool `json:"prefer_cost"`
	// PreferSpeed selects the first available candidate tagged fast.
	PreferSpeed bool `json:"prefer_speed"`
}

// RouteResult is the outcome of one router invocation.
type RouteResult struct {
	// ModelID is the model that served the call.
	ModelID string `json:"model_id"`
	// Provider is the vendor that served the call.
	Provider Provider `json:"provider"`
	// Response is the full response text.
	Response string `json:"response"`
	// TokensIn is the reported input token count, or -1 if unreported.
	TokensIn int64 `json:"tokens_in"`
	// TokensOut is the reported output token count, or -1 if unreported.
	TokensOut int64 `json:"tokens_out"`
	// Cost is the computed USD cost, when token counts are known.
	Cost float64 `json:"cost"`
	// Latency is wall-clock time from dispatch to full response.
	Latency time.Duration `json:"latency"`
}
