package llmgateway

import (
	"context"
	"fmt"

	"github.com/kakumanuram-sai-ram/metamind-sub000/internal/config"
)

// NewFromConfig builds a Gateway from the process configuration,
// selecting the Anthropic or Bedrock provider per cfg.LLM.Provider and
// wiring the Redis response cache when enabled.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Gateway, error) {
	gwCfg := Config{
		Provider:       cfg.LLM.Provider,
		Model:          cfg.LLM.Model,
		Temperature:    cfg.LLM.Temperature,
		MaxTokens:      cfg.LLM.MaxTokens,
		Timeout:        cfg.LLM.Timeout,
		MaxContextSize: cfg.LLM.MaxContextSize,
	}

	var provider Provider
	switch cfg.LLM.Provider {
	case "provider-a":
		provider = NewAnthropicProvider(cfg.LLM.APIKey, cfg.LLM.Endpoint, cfg.LLM.Model, cfg.LLM.Temperature, cfg.LLM.MaxTokens)
	case "provider-b":
		bp, err := NewBedrockProvider(ctx, cfg.LLM.Model, cfg.LLM.Temperature, cfg.LLM.MaxTokens)
		if err != nil {
			return nil, err
		}
		provider = bp
	default:
		return nil, fmt.Errorf("llmgateway: unsupported provider %q", cfg.LLM.Provider)
	}

	var cache Cache
	if cfg.LLM.CacheEnabled {
		cache = NewRedisCache(cfg.LLM.CacheRedisAddr)
	}

	return New(gwCfg, provider, cache), nil
}
