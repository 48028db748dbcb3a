package registry

import "github.com/maestro-sh/maestro/pkg/models"

// BuiltinCatalog returns the default model catalog. Costs are blended USD
// per 1K tokens; capability tags feed the router's preferSpeed path.
func BuiltinCatalog() []models.ModelDescriptor {
	return []models.ModelDescriptor{
		{
			ID:              "claude-opus-4",
			Provider:        models.ProviderAnthropic,
			Capabilities:    []string{"reasoning", "long-context", "code"},
			CostPer1KTokens: 0.015,
			MaxTokens:       200000,
			Modality:        models.ModalityText,
			Streaming:       true,
		},
		{
			ID:              "claude-sonnet-4",
			Provider:        models.ProviderAnthropic,
			Capabilities:    []string{"code", "long-context"},
			CostPer1KTokens: 0.003,
			MaxTokens:       200000,
			Modality:        models.ModalityText,
			Streaming:       true,
		},
		{
			ID:              "claude-3-5-haiku",
			Provider:        models.ProviderAnthropic,
			Capabilities:    []string{"fast", "cheap"},
			CostPer1KTokens: 0.0008,
			MaxTokens:       200000,
			Modality:        models.ModalityText,
			Streaming:       true,
		},
		{
			ID:              "gpt-4-turbo",
			Provider:        models.ProviderOpenAI,
			Capabilities:    []string{"reasoning", "code"},
			CostPer1KTokens: 0.01,
			MaxTokens:       128000,
			Modality:        models.ModalityText,
			Streaming:       true,
		},
		{
			ID:              "gpt-3.5-turbo",
			Provider:        models.ProviderOpenAI,
			Capabilities:    []string{"fast", "cheap"},
			CostPer1KTokens: 0.0005,
			MaxTokens:       16385,
			Modality:        models.ModalityText,
			Streaming:       true,
		},
		{
			ID:              "gemini-1.5-pro",
			Provider:        models.ProviderGoogle,
			Capabilities:    []string{"long-context", "vision"},
			CostPer1KTokens: 0.00125,
			MaxTokens:       1048576,
			Modality:        models.ModalityText,
			Streaming:       true,
		},
		{
			ID:              "gemini-1.5-flash",
			Provider:        models.ProviderGoogle,
			Capabilities:    []string{"fast", "speed", "cheap"},
			CostPer1KTokens: 0.000125,
			MaxTokens:       1048576,
			Modality:        models.ModalityText,
			Streaming:       true,
		},
	}
}

// BuiltinTaskMappings returns the default task-to-model routing table used
// by the built-in flows.
func BuiltinTaskMappings() map[string]models.TaskMapping {
	return map[string]models.TaskMapping{
		"architecture-planning": {
			Primary:   "claude-opus-4",
			Fallbacks: []string{"gpt-4-turbo", "gemini-1.5-pro"},
			Rationale: "deep reasoning over system structure; strongest model first",
		},
		"backend-generation": {
			Primary:   "claude-sonnet-4",
			Fallbacks: []string{"gpt-4-turbo", "gemini-1.5-pro"},
			Rationale: "strong code generation at moderate cost",
		},
		"ui-generation": {
			Primary:   "claude-sonnet-4",
			Fallbacks: []string{"gpt-4-turbo", "gemini-1.5-flash"},
			Rationale: "component code benefits from the same code-tuned model as backend",
		},
		"integration-review": {
			Primary:   "claude-opus-4",
			Fallbacks: []string{"claude-sonnet-4", "gpt-4-turbo"},
			Rationale: "cross-file consistency review needs the widest reasoning",
		},
		"content-writing": {
			Primary:   "claude-sonnet-4",
			Fallbacks: []string{"gpt-4-turbo", "gemini-1.5-pro"},
			Rationale: "balanced prose quality and cost",
		},
		"content-review": {
			Primary:   "gpt-4-turbo",
			Fallbacks: []string{"claude-sonnet-4"},
			Rationale: "a different vendor than the writer reduces self-agreement",
		},
		"content-tagging": {
			Primary:   "claude-3-5-haiku",
			Fallbacks: []string{"gpt-3.5-turbo", "gemini-1.5-flash"},
			Rationale: "tag extraction is cheap classification work",
		},
		"entity-extraction": {
			Primary:   "gemini-1.5-flash",
			Fallbacks: []string{"claude-3-5-haiku", "gpt-3.5-turbo"},
			Rationale: "high-volume extraction at the lowest cost",
		},
		"sentiment-analysis": {
			Primary:   "gpt-3.5-turbo",
			Fallbacks: []string{"claude-3-5-haiku", "gemini-1.5-flash"},
			Rationale: "sentiment is a small-model task",
		},
		"seo-optimization": {
			Primary:   "gpt-4-turbo",
			Fallbacks: []string{"claude-sonnet-4", "gemini-1.5-pro"},
			Rationale: "keyword-aware rewriting with solid instruction following",
		},
	}
}

// DefaultTaskMapping is the mapping applied to task names without an entry
// in the routing table.
func DefaultTaskMapping() models.TaskMapping {
	return models.TaskMapping{
		Primary:   "claude-sonnet-4",
		Fallbacks: []string{"gpt-4-turbo", "gemini-1.5-pro"},
		Rationale: "general-purpose default for unmapped tasks",
	}
}
