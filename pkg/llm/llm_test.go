package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClaudeGenerate(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "k" {
			t.Errorf("missing api key header")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		w.Write([]byte(`{"content":[{"text":"{\"ok\":true}"}]}`))
	}))
	defer srv.Close()

	c := NewClaude(Config{APIKey: "k", BaseURL: srv.URL})
	out, err := c.Generate(context.Background(), "sys", "hello")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != `{"ok":true}` {
		t.Errorf("out = %q", out)
	}
	if got["system"] != "sys" {
		t.Errorf("system = %v", got["system"])
	}
	if got["model"] != claudeDefaultModel {
		t.Errorf("model = %v", got["model"])
	}
}

func TestClaudeStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`rate limited`))
	}))
	defer srv.Close()

	_, err := NewClaude(Config{APIKey: "k", BaseURL: srv.URL}).Generate(context.Background(), "s", "p")
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestOpenAIGenerate(t *testing.T) {
	var got struct {
		Model    string              `json:"model"`
		Messages []map[string]string `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer k" {
			t.Errorf("auth = %q", r.Header.Get("Authorization"))
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"choices":[{"message":{"content":"hi"}}]}`))
	}))
	defer srv.Close()

	o := NewOpenRouter(Config{APIKey: "k", BaseURL: srv.URL + "/"})
	out, err := o.Generate(context.Background(), "sys", "user")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "hi" {
		t.Errorf("out = %q", out)
	}
	if got.Model != openRouterDefaultModel {
		t.Errorf("model = %q", got.Model)
	}
	if len(got.Messages) != 2 || got.Messages[0]["role"] != "system" || got.Messages[1]["content"] != "user" {
		t.Errorf("messages = %v", got.Messages)
	}
	if o.Name() != "openrouter:"+openRouterDefaultModel {
		t.Errorf("name = %q", o.Name())
	}
}

func TestOpenAIEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := NewOpenAI(Config{APIKey: "k", BaseURL: srv.URL}).Generate(context.Background(), "s", "p")
	if err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestFactoryCreate(t *testing.T) {
	f := NewFactory()
	if _, err := f.Create(context.Background(), Config{Provider: ProviderOpenAI}); err == nil {
		t.Error("expected missing key error")
	}

	tests := []struct {
		provider Provider
		prefix   string
	}{
		{ProviderClaude, "claude:"},
		{ProviderOpenAI, "openai:"},
		{ProviderOpenRouter, "openrouter:"},
	}
	for _, tt := range tests {
		l, err := f.Create(context.Background(), Config{Provider: tt.provider, APIKey: "k", Model: "m"})
		if err != nil {
			t.Fatalf("%s: %v", tt.provider, err)
		}
		if l.Name() != tt.prefix+"m" {
			t.Errorf("%s: name = %q", tt.provider, l.Name())
		}
	}

	if _, err := f.Create(context.Background(), Config{Provider: "bogus", APIKey: "k"}); err == nil {
		t.Error("expected unsupported provider error")
	}
}

func TestParseProvider(t *testing.T) {
	cases := map[string]Provider{
		"":           ProviderClaude,
		"Anthropic":  ProviderClaude,
		"openai":     ProviderOpenAI,
		"OpenRouter": ProviderOpenRouter,
		"google":     ProviderGemini,
	}
	for in, want := range cases {
		got, err := ParseProvider(in)
		if err != nil || got != want {
			t.Errorf("ParseProvider(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseProvider("llama"); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestScriptedReplaysInOrder(t *testing.T) {
	boom := errors.New("boom")
	s := NewScripted(Reply{Text: "one"}, Reply{Err: boom})

	if out, err := s.Generate(context.Background(), "s1", "p1"); out != "one" || err != nil {
		t.Fatalf("first = %q, %v", out, err)
	}
	if _, err := s.Generate(context.Background(), "s2", "p2"); !errors.Is(err, boom) {
		t.Fatalf("second err = %v", err)
	}
	if _, err := s.Generate(context.Background(), "s3", "p3"); !errors.Is(err, ErrScriptExhausted) {
		t.Fatalf("third err = %v", err)
	}
	if calls := s.Calls(); len(calls) != 3 || calls[1].Prompt != "p2" {
		t.Errorf("calls = %+v", calls)
	}
}

func TestWithLoggingPassesThrough(t *testing.T) {
	var buf bytes.Buffer
	l := WithLogging(NewScripted(Texts("ok")...), log.New(&buf, "", 0))

	out, err := l.Generate(context.Background(), "sys", "prompt")
	if err != nil || out != "ok" {
		t.Fatalf("Generate = %q, %v", out, err)
	}
	if !strings.Contains(buf.String(), "llm: request to scripted") {
		t.Errorf("log = %q", buf.String())
	}

	if _, err := l.Generate(context.Background(), "sys", "prompt"); err == nil {
		t.Fatal("expected exhausted error")
	}
	if !strings.Contains(buf.String(), "failed after") {
		t.Errorf("error not logged: %q", buf.String())
	}
}
