package llm

import (
	"context"
	"log"
	"time"
)

// WithLogging logs request size, latency and errors. A nil logger uses log.Default().
func WithLogging(next LLM, logger *log.Logger) LLM {
	if logger == nil {
		logger = log.Default()
	}
	return &logging{next: next, log: logger}
}

type logging struct {
	next LLM
	log  *log.Logger
}

func (l *logging) Name() string { return l.next.Name() }

func (l *logging) Generate(ctx context.Context, system, prompt string) (string, error) {
	start := time.Now()
	l.log.Printf("llm: request to %s: %d bytes", l.next.Name(), len(system)+len(prompt))
	out, err := l.next.Generate(ctx, system, prompt)
	if err != nil {
		l.log.Printf("llm: %s failed after %s: %v", l.next.Name(), time.Since(start).Round(time.Millisecond), err)
		return out, err
	}
	l.log.Printf("llm: %s replied in %s: %d bytes", l.next.Name(), time.Since(start).Round(time.Millisecond), len(out))
	return out, nil
}
