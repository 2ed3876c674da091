package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/helmcode/logtriage/pkg/llm"
	"github.com/helmcode/logtriage/pkg/notify"
	"github.com/helmcode/logtriage/pkg/pipeline"
)

type llmConfig struct {
	Provider    string        `mapstructure:"provider"`
	APIKey      string        `mapstructure:"api-key"`
	Model       string        `mapstructure:"model"`
	BaseURL     string        `mapstructure:"base-url"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max-tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type jiraConfig struct {
	Server     string `mapstructure:"server"`
	Email      string `mapstructure:"email"`
	APIToken   string `mapstructure:"api-token"`
	ProjectKey string `mapstructure:"project-key"`
	IssueType  string `mapstructure:"issue-type"`
}

// appConfig is the file/env view of the configuration. It is converted into
// the explicit pipeline.Config before anything runs.
type appConfig struct {
	LLM             llmConfig     `mapstructure:"llm"`
	SlackWebhookURL string        `mapstructure:"slack-webhook-url"`
	Jira            jiraConfig    `mapstructure:"jira"`
	NotifyTimeout   time.Duration `mapstructure:"notify-timeout"`
	Concurrency     int           `mapstructure:"concurrency"`
	CacheSize       int           `mapstructure:"cache-size"`
	Addr            string        `mapstructure:"addr"`
}

// providerKeyEnv lists the conventional API key variable per provider.
var providerKeyEnv = map[llm.Provider]string{
	llm.ProviderClaude:     "ANTHROPIC_API_KEY",
	llm.ProviderOpenAI:     "OPENAI_API_KEY",
	llm.ProviderOpenRouter: "OPENROUTER_API_KEY",
	llm.ProviderGemini:     "GEMINI_API_KEY",
}

func loadConfig(configPath string) (appConfig, error) {
	var cfg appConfig

	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("LOGTRIAGE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	v.SetDefault("llm.provider", "claude")
	v.SetDefault("llm.api-key", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.base-url", "")
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.max-tokens", 4000)
	v.SetDefault("llm.timeout", 60*time.Second)
	v.SetDefault("notify-timeout", 10*time.Second)
	v.SetDefault("concurrency", 1)
	v.SetDefault("cache-size", 256)
	v.SetDefault("addr", "0.0.0.0:8080")
	v.SetDefault("jira.issue-type", "Task")

	_ = v.BindEnv("slack-webhook-url", "LOGTRIAGE_SLACK_WEBHOOK_URL", "SLACK_WEBHOOK_URL")
	_ = v.BindEnv("jira.server", "LOGTRIAGE_JIRA_SERVER", "JIRA_SERVER")
	_ = v.BindEnv("jira.email", "LOGTRIAGE_JIRA_EMAIL", "JIRA_EMAIL")
	_ = v.BindEnv("jira.api-token", "LOGTRIAGE_JIRA_API_TOKEN", "JIRA_API_TOKEN")
	_ = v.BindEnv("jira.project-key", "LOGTRIAGE_JIRA_PROJECT_KEY", "JIRA_PROJECT_KEY")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else if home, err := os.UserHomeDir(); err == nil {
		v.SetConfigFile(filepath.Join(home, ".config", "logtriage", "config.yml"))
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFound) && !os.IsNotExist(err) {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

// pipelineConfig applies command-line overrides and resolves the provider
// API key from its conventional variable when none was configured.
func (c appConfig) pipelineConfig(provider, model string, logger *log.Logger) (pipeline.Config, error) {
	if provider != "" {
		c.LLM.Provider = provider
	}
	if model != "" {
		c.LLM.Model = model
	}

	p, err := llm.ParseProvider(c.LLM.Provider)
	if err != nil {
		return pipeline.Config{}, err
	}
	apiKey := c.LLM.APIKey
	if apiKey == "" {
		apiKey = os.Getenv(providerKeyEnv[p])
	}
	if apiKey == "" {
		return pipeline.Config{}, fmt.Errorf("%s environment variable not set", providerKeyEnv[p])
	}

	return pipeline.Config{
		LLM: llm.Config{
			Provider:    p,
			APIKey:      apiKey,
			Model:       c.LLM.Model,
			BaseURL:     c.LLM.BaseURL,
			Temperature: c.LLM.Temperature,
			MaxTokens:   c.LLM.MaxTokens,
			Timeout:     c.LLM.Timeout,
		},
		Notify: notify.Config{
			SlackWebhookURL: c.SlackWebhookURL,
			Jira: notify.JiraConfig{
				Server:     c.Jira.Server,
				Email:      c.Jira.Email,
				APIToken:   c.Jira.APIToken,
				ProjectKey: c.Jira.ProjectKey,
				IssueType:  c.Jira.IssueType,
			},
			Timeout: c.NotifyTimeout,
		},
		Concurrency: c.Concurrency,
		CacheSize:   c.CacheSize,
		Logger:      logger,
	}, nil
}
