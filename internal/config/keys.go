package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/maestro-sh/maestro/internal/router"
)

// DetectCredentials inspects the loaded config and the process
// environment and reports which providers have a usable secret. The
// result is read once at router construction; credentials are never
// re-detected during a run.
func DetectCredentials(cfg *Config) router.CredentialSet {
	return router.CredentialSet{
		Anthropic: AnthropicConfigured(cfg),
		OpenAI:    cfg.Providers.OpenAI.APIKey != "",
		Google:    cfg.Providers.Google.APIKey != "",
	}
}

// AnthropicConfigured reports whether Claude models can be served, either
// directly or through AWS Bedrock.
func AnthropicConfigured(cfg *Config) bool {
	if cfg.Providers.Anthropic.APIKey != "" {
		return true
	}
	return cfg.Providers.Anthropic.Bedrock && hasAWSCredentials(cfg.Providers.Anthropic.AWSProfile)
}

// hasAWSCredentials checks for ambient AWS credentials: static env keys,
// an explicit profile, or the shared config files the SDK's default chain
// would load.
func hasAWSCredentials(profile string) bool {
	if os.Getenv("AWS_ACCESS_KEY_ID") != "" && os.Getenv("AWS_SECRET_ACCESS_KEY") != "" {
		return true
	}
	if profile != "" || os.Getenv("AWS_PROFILE") != "" {
		return true
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return false
	}
	for _, name := range []string{"credentials", "config"} {
		if _, err := os.Stat(filepath.Join(home, ".aws", name)); err == nil {
			return true
		}
	}
	return false
}

// MaskAPIKey returns a masked version of an API key for display.
func MaskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 12 {
		return "***"
	}
	return key[:6] + "..." + key[len(key)-4:]
}

// ExpandKeyRef expands ${VAR} references in a configured key and rejects
// unresolved references.
func ExpandKeyRef(key string) string {
	expanded := os.ExpandEnv(key)
	if strings.HasPrefix(expanded, "${") {
		return ""
	}
	return expanded
}
