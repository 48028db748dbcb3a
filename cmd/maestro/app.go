package main

import (
	"fmt"
	"log"
	"time"

	"github.com/maestro-sh/maestro/internal/config"
	"github.com/maestro-sh/maestro/internal/gateway"
	"github.com/maestro-sh/maestro/internal/registry"
	"github.com/maestro-sh/maestro/internal/router"
	"github.com/maestro-sh/maestro/internal/usage"
	"github.com/maestro-sh/maestro/pkg/models"
)

// timeRound is the display precision for durations.
const timeRound = 10 * time.Millisecond

// app is the wired-up engine shared by the CLI commands: config, catalog,
// provider bindings, router, and usage tracking.
type app struct {
	cfg      *config.Config
	creds    router.CredentialSet
	bindings *gateway.Bindings
	rt       *router.Router
	tracker  *usage.Tracker
	store    *usage.Store
}

// buildApp loads config, detects credentials, and wires the router. It
// fails only on configuration errors; a provider without credentials is
// simply left unbound and its models unavailable.
func buildApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	reg, tasks, err := registry.BuildFromFile(cfg.Routing.OverlayPath)
	if err != nil {
		return nil, err
	}

	creds := config.DetectCredentials(cfg)
	bindings := gateway.NewBindings()

	if creds.Anthropic {
		gw, err := gateway.NewAnthropicGateway(gateway.AnthropicConfig{
			APIKey:        cfg.Providers.Anthropic.APIKey,
			UseAWSBedrock: cfg.Providers.Anthropic.Bedrock,
			AWSRegion:     cfg.Providers.Anthropic.AWSRegion,
			AWSProfile:    cfg.Providers.Anthropic.AWSProfile,
		})
		if err != nil {
			return nil, fmt.Errorf("anthropic binding: %w", err)
		}
		bindings.Bind(models.ProviderAnthropic, gw)
	}
	if creds.OpenAI {
		gw, err := gateway.NewOpenAIGateway(gateway.OpenAIConfig{
			APIKey:  cfg.Providers.OpenAI.APIKey,
			BaseURL: cfg.Providers.OpenAI.BaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("openai binding: %w", err)
		}
		bindings.Bind(models.ProviderOpenAI, gw)
	}
	if creds.Google {
		gw, err := gateway.NewGeminiGateway(gateway.GeminiConfig{
			APIKey:  cfg.Providers.Google.APIKey,
			BaseURL: cfg.Providers.Google.BaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("gemini binding: %w", err)
		}
		bindings.Bind(models.ProviderGoogle, gw)
	}

	avail := router.NewAvailability(reg, creds)
	rt := router.New(reg, tasks, avail, bindings)

	var store *usage.Store
	if !cfg.Usage.Disabled {
		path := cfg.Usage.DBPath
		if path == "" {
			path = usage.DefaultStorePath()
		}
		store, err = usage.OpenStore(path)
		if err != nil {
			// Usage is a reporting sink; never block the run on it.
			log.Printf("usage store unavailable, tracking in memory only: %v", err)
			store = nil
		}
	}

	return &app{
		cfg:      cfg,
		creds:    creds,
		bindings: bindings,
		rt:       rt,
		tracker:  usage.NewTracker(rt.Registry(), store),
		store:    store,
	}, nil
}

// Close releases the usage store.
func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
}

// prefs merges CLI flags over configured defaults.
func (a *app) prefs(preferCost, preferSpeed bool) models.RoutePreferences {
	p := models.RoutePreferences{
		PreferCost:  a.cfg.Defaults.PreferCost,
		PreferSpeed: a.cfg.Defaults.PreferSpeed,
	}
	if preferCost {
		p.PreferCost = true
	}
	if preferSpeed {
		p.PreferSpeed = true
	}
	return p
}
