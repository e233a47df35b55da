// Package config provides configuration loading, validation, and management for the pipeline.
// It handles JSON config files with environment variable substitution.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"time"
)

// Provider name constants.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
	ProviderGoogle    = "google"
	ProviderMock      = "mock"
)

// Pipeline defaults.
const (
	// DefaultStepBudget bounds the number of stage transitions and file
	// writes in a single run.
	DefaultStepBudget = 100
	// DefaultRetryDelay is the fixed wait before the single rate-limit retry.
	DefaultRetryDelay = 2 * time.Second
	// DefaultProjectRoot is where generated files land.
	DefaultProjectRoot = "generated_project"
	// DefaultMaxTokens caps completion length per stage call.
	DefaultMaxTokens = 4096
)

// Default model per provider. Groq is the observed upstream; it speaks the
// OpenAI wire protocol, so the openai provider with a Groq base URL is the
// default configuration.
const (
	DefaultOpenAIModel    = "llama-3.3-70b-versatile"
	DefaultAnthropicModel = "claude-sonnet-4-20250514"
	DefaultOllamaModel    = "qwen2.5-coder:14b"
	DefaultGoogleModel    = "gemini-2.0-flash"

	DefaultGroqBaseURL   = "https://api.groq.com/openai/v1"
	DefaultOllamaHostURL = "http://localhost:11434"
)

// Config is the top-level configuration for a pipeline run.
type Config struct {
	Provider          string `json:"provider"`
	Model             string `json:"model"`
	APIKey            string `json:"api_key"`
	BaseURL           string `json:"base_url,omitempty"`
	ProjectRoot       string `json:"project_root"`
	StepBudget        int    `json:"step_budget"`
	RetryDelaySeconds int    `json:"retry_delay_seconds"`
	MaxTokens         int    `json:"max_tokens"`
	MetricsAddr       string `json:"metrics_addr,omitempty"`
	LogFile           string `json:"log_file,omitempty"`
}

// DefaultConfig returns a configuration with all defaults applied.
func DefaultConfig() *Config {
	return &Config{
		Provider:          ProviderOpenAI,
		Model:             DefaultOpenAIModel,
		APIKey:            "${GROQ_API_KEY}",
		BaseURL:           DefaultGroqBaseURL,
		ProjectRoot:       DefaultProjectRoot,
		StepBudget:        DefaultStepBudget,
		RetryDelaySeconds: int(DefaultRetryDelay / time.Second),
		MaxTokens:         DefaultMaxTokens,
	}
}

// envVarPattern matches ${VAR_NAME} placeholders in config values.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// substituteEnvVars replaces ${VAR} placeholders with environment values.
// Unset variables substitute to the empty string.
func substituteEnvVars(raw []byte) []byte {
	return envVarPattern.ReplaceAllFunc(raw, func(match []byte) []byte {
		name := envVarPattern.FindSubmatch(match)[1]
		return []byte(os.Getenv(string(name)))
	})
}

// Load reads a JSON config file, applies environment substitution, and fills
// in defaults for omitted fields. A missing file yields the default config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		cfg.resolve()
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.resolve()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	raw = substituteEnvVars(raw)
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.resolve()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// resolve fills zero values with defaults and substitutes env placeholders
// left in individual fields (e.g. a default APIKey of "${GROQ_API_KEY}").
func (c *Config) resolve() {
	c.APIKey = string(substituteEnvVars([]byte(c.APIKey)))

	if c.Provider == "" {
		c.Provider = ProviderOpenAI
	}
	if c.Model == "" {
		switch c.Provider {
		case ProviderAnthropic:
			c.Model = DefaultAnthropicModel
		case ProviderOllama:
			c.Model = DefaultOllamaModel
		case ProviderGoogle:
			c.Model = DefaultGoogleModel
		default:
			c.Model = DefaultOpenAIModel
		}
	}
	if c.BaseURL == "" {
		switch c.Provider {
		case ProviderOpenAI:
			c.BaseURL = DefaultGroqBaseURL
		case ProviderOllama:
			c.BaseURL = DefaultOllamaHostURL
		}
	}
	if c.ProjectRoot == "" {
		c.ProjectRoot = DefaultProjectRoot
	}
	if c.StepBudget <= 0 {
		c.StepBudget = DefaultStepBudget
	}
	if c.RetryDelaySeconds <= 0 {
		c.RetryDelaySeconds = int(DefaultRetryDelay / time.Second)
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI, ProviderAnthropic, ProviderOllama, ProviderGoogle, ProviderMock:
	default:
		return fmt.Errorf("unknown provider: %s", c.Provider)
	}
	if c.Model == "" {
		return fmt.Errorf("model cannot be empty")
	}
	if c.StepBudget <= 0 {
		return fmt.Errorf("step budget must be positive")
	}
	return nil
}

// RetryDelay returns the retry delay as a duration.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelaySeconds) * time.Second
}
