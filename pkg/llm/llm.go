package llm

import (
	"context"
	"time"
)

// LLM is the text-generation service the pipeline talks to. Every call sends
// one system instruction and one user prompt and returns the raw model text.
type LLM interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
	Name() string
}

const (
	defaultTimeout   = 60 * time.Second
	defaultMaxTokens = 4000
)

// Config selects and parameterizes a provider. It is filled by the caller;
// nothing in this package reads the process environment.
type Config struct {
	Provider    Provider
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return defaultTimeout
	}
	return c.Timeout
}

func (c Config) maxTokens() int {
	if c.MaxTokens <= 0 {
		return defaultMaxTokens
	}
	return c.MaxTokens
}
