package gateway

import (
	"context"
	"fmt"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/bedrock"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/aws/aws-sdk-go-v2/config"
)

// AnthropicConfig contains configuration for the Anthropic binding.
type AnthropicConfig struct {
	// APIKey is the Anthropic API key. If empty, uses ANTHROPIC_API_KEY.
	APIKey string
	// UseAWSBedrock routes calls through AWS Bedrock instead of the API.
	UseAWSBedrock bool
	// AWSRegion is the AWS region for Bedrock (e.g., "us-west-2").
	AWSRegion string
	// AWSProfile is the optional AWS profile name to use.
	AWSProfile string
	// MaxTokens caps response length. Defaults to 8192.
	MaxTokens int64
}

// AnthropicGateway dispatches to Claude models via the Anthropic SDK.
type AnthropicGateway struct {
	inner     anthropic.Client
	bedrock   bool
	maxTokens int64
}

// NewAnthropicGateway creates the Anthropic binding.
func NewAnthropicGateway(cfg AnthropicConfig) (*AnthropicGateway, error) {
	var opts []option.RequestOption

	if cfg.UseAWSBedrock {
		ctx := context.Background()

		var loadOpts []func(*config.LoadOptions) error
		if cfg.AWSRegion != "" {
			loadOpts = append(loadOpts, config.WithRegion(cfg.AWSRegion))
		}
		if cfg.AWSProfile != "" {
			loadOpts = append(loadOpts, config.WithSharedConfigProfile(cfg.AWSProfile))
		}

		opts = append(opts, bedrock.WithLoadDefaultConfig(ctx, loadOpts...))
	} else {
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable is not set")
		}
		opts = append(opts, option.WithAPIKey(apiKey))
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 8192
	}

	return &AnthropicGateway{
		inner:     anthropic.NewClient(opts...),
		bedrock:   cfg.UseAWSBedrock,
		maxTokens: maxTokens,
	}, nil
}

// translateModelForBedrock converts catalog model IDs to Bedrock
// cross-region inference profile format: us.anthropic.{model}-v1:0
func translateModelForBedrock(model string) string {
	bedrockModels := map[string]string{
		"claude-opus-4":    "us.anthropic.claude-opus-4-20250514-v1:0",
		"claude-sonnet-4":  "us.anthropic.claude-sonnet-4-20250514-v1:0",
		"claude-3-5-haiku": "us.anthropic.claude-3-5-haiku-20241022-v1:0",
	}
	if translated, ok := bedrockModels[model]; ok {
		return translated
	}
	return model
}

func (g *AnthropicGateway) resolveModel(modelID string) anthropic.Model {
	if g.bedrock {
		return anthropic.Model(translateModelForBedrock(modelID))
	}
	return anthropic.Model(modelID)
}

// Generate sends a single-turn prompt and returns the full response.
func (g *AnthropicGateway) Generate(ctx context.Context, modelID, prompt string) (*Reply, error) {
	resp, err := g.inner.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     g.resolveModel(modelID),
		MaxTokens: g.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic generate: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			text += variant.Text
		}
	}

	return &Reply{
		Text:      text,
		TokensIn:  resp.Usage.InputTokens,
		TokensOut: resp.Usage.OutputTokens,
	}, nil
}

// GenerateStream sends a single-turn prompt and streams response fragments.
func (g *AnthropicGateway) GenerateStream(ctx context.Context, modelID, prompt string) (<-chan Chunk, error) {
	stream := g.inner.Messages.NewStreaming(ctx, anthropic.MessageNewParams{
		Model:     g.resolveModel(modelID),
		MaxTokens: g.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})

	out := make(chan Chunk, 16)
	go func() {
		defer close(out)
		for stream.Next() {
			event := stream.Current()
			if delta, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent); ok {
				if text, ok := delta.Delta.AsAny().(anthropic.TextDelta); ok && text.Text != "" {
					out <- Chunk{Text: text.Text}
				}
			}
		}
		if err := stream.Err(); err != nil {
			out <- Chunk{Err: fmt.Errorf("anthropic stream: %w", err)}
		}
	}()
	return out, nil
}
