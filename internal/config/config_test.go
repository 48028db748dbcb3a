package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Defaults.SEOMinimumScore != 70 {
		t.Errorf("expected default seo minimum 70, got %d", cfg.Defaults.SEOMinimumScore)
	}
	if cfg.Server.Addr != ":8700" {
		t.Errorf("expected default addr :8700, got %q", cfg.Server.Addr)
	}
}

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
providers:
  anthropic:
    api_key: sk-ant-test123
  openai:
    api_key: sk-oai-test
defaults:
  prefer_cost: true
  seo_minimum_score: 80
server:
  addr: ":9000"
usage:
  db_path: /tmp/usage.db
routing:
  overlay_path: /tmp/routing.yaml
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Providers.Anthropic.APIKey != "sk-ant-test123" {
		t.Errorf("unexpected anthropic key %q", cfg.Providers.Anthropic.APIKey)
	}
	if !cfg.Defaults.PreferCost {
		t.Error("expected prefer_cost true")
	}
	if cfg.Defaults.PreferSpeed {
		t.Error("expected prefer_speed false (default)")
	}
	if cfg.Defaults.SEOMinimumScore != 80 {
		t.Errorf("unexpected seo minimum %d", cfg.Defaults.SEOMinimumScore)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("unexpected addr %q", cfg.Server.Addr)
	}
	if cfg.Usage.DBPath != "/tmp/usage.db" {
		t.Errorf("unexpected usage db path %q", cfg.Usage.DBPath)
	}
	if cfg.Routing.OverlayPath != "/tmp/routing.yaml" {
		t.Errorf("unexpected overlay path %q", cfg.Routing.OverlayPath)
	}
}

func TestLoadFromPathExpandsEnvRefs(t *testing.T) {
	t.Setenv("TEST_MAESTRO_KEY", "sk-expanded")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "providers:\n  openai:\n    api_key: ${TEST_MAESTRO_KEY}\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Providers.OpenAI.APIKey != "sk-expanded" {
		t.Errorf("expected expanded key, got %q", cfg.Providers.OpenAI.APIKey)
	}
}

func TestDetectCredentials(t *testing.T) {
	cfg := Default()
	cfg.Providers.OpenAI.APIKey = "sk-oai"

	creds := DetectCredentials(cfg)
	if creds.Anthropic {
		t.Error("anthropic should not be configured")
	}
	if !creds.OpenAI {
		t.Error("openai should be configured")
	}
	if creds.Google {
		t.Error("google should not be configured")
	}

	cfg.Providers.Anthropic.APIKey = "sk-ant-x"
	if !DetectCredentials(cfg).Anthropic {
		t.Error("anthropic should be configured with a direct key")
	}
}

func TestDetectCredentialsBedrock(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIATEST")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")

	cfg := Default()
	cfg.Providers.Anthropic.Bedrock = true
	if !DetectCredentials(cfg).Anthropic {
		t.Error("anthropic should be configured via bedrock env credentials")
	}
}

func TestMaskAPIKey(t *testing.T) {
	if got := MaskAPIKey(""); got != "(not set)" {
		t.Errorf("empty key: %q", got)
	}
	if got := MaskAPIKey("short"); got != "***" {
		t.Errorf("short key: %q", got)
	}
	if got := MaskAPIKey("sk-ant-REDACTED"); got != "sk-ant...1234" {
		t.Errorf("long key: %q", got)
	}
}
