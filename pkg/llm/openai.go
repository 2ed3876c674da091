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
	openAIDefaultModel       = "gpt-4o"
	openAIDefaultBaseURL     = "https://api.openai.com/v1"
	openRouterDefaultModel   = "openai/gpt-4o-mini"
	openRouterDefaultBaseURL = "https://openrouter.ai/api/v1"
)

// OpenAI speaks the chat completions protocol. OpenRouter and other
// compatible gateways are reached by pointing baseURL at them.
type OpenAI struct {
	apiKey      string
	client      *http.Client
	model       string
	baseURL     string
	label       string
	temperature float64
	maxTokens   int
}

func NewOpenAI(cfg Config) *OpenAI {
	return newChatCompletions(cfg, "openai", openAIDefaultModel, openAIDefaultBaseURL)
}

func NewOpenRouter(cfg Config) *OpenAI {
	return newChatCompletions(cfg, "openrouter", openRouterDefaultModel, openRouterDefaultBaseURL)
}

func newChatCompletions(cfg Config, label, model, baseURL string) *OpenAI {
	o := &OpenAI{
		apiKey:      cfg.APIKey,
		client:      &http.Client{Timeout: cfg.timeout()},
		model:       cfg.Model,
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		label:       label,
		temperature: cfg.Temperature,
		maxTokens:   cfg.maxTokens(),
	}
	if o.model == "" {
		o.model = model
	}
	if o.baseURL == "" {
		o.baseURL = baseURL
	}
	return o
}

func (o *OpenAI) Name() string { return o.label + ":" + o.model }

func (o *OpenAI) Generate(ctx context.Context, system, prompt string) (string, error) {
	body := map[string]interface{}{
		"model": o.model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": prompt},
		},
		"max_tokens":  o.maxTokens,
		"temperature": o.temperature,
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", o.apiKey))

	resp, err := o.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s API error (status %d): %s", o.label, resp.StatusCode, string(respBytes))
	}

	var openaiResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBytes, &openaiResp); err != nil {
		return "", err
	}
	if openaiResp.Error.Message != "" {
		return "", fmt.Errorf("%s API error: %s", o.label, openaiResp.Error.Message)
	}
	if len(openaiResp.Choices) == 0 {
		return "", fmt.Errorf("empty response from %s", o.label)
	}
	return openaiResp.Choices[0].Message.Content, nil
}
