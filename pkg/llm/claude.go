package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	claudeDefaultModel   = "claude-sonnet-4-20250514"
	claudeDefaultBaseURL = "https://api.anthropic.com/v1"
)

type Claude struct {
	apiKey      string
	client      *http.Client
	model       string
	baseURL     string
	temperature float64
	maxTokens   int
}

func NewClaude(cfg Config) *Claude {
	c := &Claude{
		apiKey:      cfg.APIKey,
		client:      &http.Client{Timeout: cfg.timeout()},
		model:       cfg.Model,
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		temperature: cfg.Temperature,
		maxTokens:   cfg.maxTokens(),
	}
	if c.model == "" {
		c.model = claudeDefaultModel
	}
	if c.baseURL == "" {
		c.baseURL = claudeDefaultBaseURL
	}
	return c
}

func (c *Claude) Name() string { return "claude:" + c.model }

func (c *Claude) Generate(ctx context.Context, system, prompt string) (string, error) {
	body := map[string]interface{}{
		"model":  c.model,
		"system": system,
		"messages": []map[string]string{{
			"role":    "user",
			"content": prompt,
		}},
		"max_tokens":  c.maxTokens,
		"temperature": c.temperature,
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Claude API error (status %d): %s", resp.StatusCode, string(respBytes))
	}

	// Minimal struct to pull out the content text.
	var claudeResp struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBytes, &claudeResp); err != nil {
		return "", err
	}
	if claudeResp.Error.Message != "" {
		return "", fmt.Errorf("Claude API error: %s", claudeResp.Error.Message)
	}
	if len(claudeResp.Content) == 0 {
		return "", fmt.Errorf("empty response from Claude")
	}
	return claudeResp.Content[0].Text, nil
}
