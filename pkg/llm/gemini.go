package llm

import (
	"context"
	"errors"
	"strings"

	genai "google.golang.org/genai"
)

const geminiDefaultModel = "gemini-2.0-flash"

var ErrEmptyResponse = errors.New("llm: empty response from model")

// Gemini is a thin wrapper around the official genai client.
type Gemini struct {
	cli         *genai.Client
	model       string
	temperature float32
	maxTokens   int32
}

func NewGemini(ctx context.Context, cfg Config) (*Gemini, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	model := cfg.Model
	if model == "" {
		model = geminiDefaultModel
	}
	return &Gemini{
		cli:         cli,
		model:       model,
		temperature: float32(cfg.Temperature),
		maxTokens:   int32(cfg.maxTokens()),
	}, nil
}

func (g *Gemini) Name() string { return "gemini:" + g.model }

// Generate requests application/json so the model skips prose around the object.
func (g *Gemini) Generate(ctx context.Context, system, prompt string) (string, error) {
	temp := g.temperature
	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Role: genai.RoleUser, Parts: []*genai.Part{{Text: prompt}}}},
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: system}}},
			ResponseMIMEType:  "application/json",
			Temperature:       &temp,
			MaxOutputTokens:   g.maxTokens,
		},
	)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String(), nil
}
