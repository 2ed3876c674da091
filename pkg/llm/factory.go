package llm

import (
	"context"
	"fmt"
	"strings"
)

// Provider represents the LLM provider type
type Provider string

const (
	ProviderClaude     Provider = "claude"
	ProviderOpenAI     Provider = "openai"
	ProviderOpenRouter Provider = "openrouter"
	ProviderGemini     Provider = "gemini"
)

// ParseProvider accepts the lowercase provider names and a few aliases.
func ParseProvider(s string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "claude", "anthropic", "":
		return ProviderClaude, nil
	case "openai":
		return ProviderOpenAI, nil
	case "openrouter":
		return ProviderOpenRouter, nil
	case "gemini", "google":
		return ProviderGemini, nil
	default:
		return "", fmt.Errorf("unsupported LLM provider: %s (supported: claude, openai, openrouter, gemini)", s)
	}
}

// Factory creates LLM instances based on provider
type Factory struct{}

// NewFactory creates a new LLM factory
func NewFactory() *Factory {
	return &Factory{}
}

// Create builds the client described by cfg.
func (f *Factory) Create(ctx context.Context, cfg Config) (LLM, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s API key is required", providerLabel(cfg.Provider))
	}

	switch cfg.Provider {
	case ProviderClaude, "":
		return NewClaude(cfg), nil
	case ProviderOpenAI:
		return NewOpenAI(cfg), nil
	case ProviderOpenRouter:
		return NewOpenRouter(cfg), nil
	case ProviderGemini:
		g, err := NewGemini(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

// GetAvailableProviders returns a list of available LLM providers
func (f *Factory) GetAvailableProviders() []Provider {
	return []Provider{ProviderClaude, ProviderOpenAI, ProviderOpenRouter, ProviderGemini}
}

func providerLabel(p Provider) string {
	switch p {
	case ProviderOpenAI:
		return "OpenAI"
	case ProviderOpenRouter:
		return "OpenRouter"
	case ProviderGemini:
		return "Gemini"
	default:
		return "Claude"
	}
}
