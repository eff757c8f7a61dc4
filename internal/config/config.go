// Package config loads the CLI configuration from YAML. Missing fields keep
// their defaults, so an empty file is a valid configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Supported model providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGollm     = "gollm"
)

type Config struct {
	Model ModelConfig `yaml:"model"`
	Agent AgentConfig `yaml:"agent"`
	Tools ToolsConfig `yaml:"tools"`
	Log   LogConfig   `yaml:"log"`
}

type ModelConfig struct {
	Provider string `yaml:"provider"` // openai, anthropic or gollm
	Name     string `yaml:"name"`     // empty selects the adapter default
	BaseURL  string `yaml:"base_url"` // OpenAI-compatible endpoint
	// Backend is the gollm provider (openai, anthropic, ollama, ...).
	Backend     string  `yaml:"backend"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	MaxRetries  int     `yaml:"max_retries"`
}

type AgentConfig struct {
	Name              string        `yaml:"name"`
	MaxSteps          int           `yaml:"max_steps"`           // default 5
	SystemPrompt      string        `yaml:"system_prompt"`       // optional system message
	PromptFile        string        `yaml:"prompt_file"`         // replaces the default template
	ReportMalformed   bool          `yaml:"report_malformed"`    // default false
	ToolTimeout       time.Duration `yaml:"tool_timeout"`        // default 30s
	RunTimeout        time.Duration `yaml:"run_timeout"`         // default 5m
	MaxConcurrentRuns int           `yaml:"max_concurrent_runs"` // default 4
}

type ToolsConfig struct {
	Enabled         []string `yaml:"enabled"`
	SerpAPIKeyEnv   string   `yaml:"serpapi_key_env"`
	TavilyAPIKeyEnv string   `yaml:"tavily_key_env"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // default "warn"
	Format string `yaml:"format"` // "console" or "json"
}

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			Provider:   ProviderOpenAI,
			MaxTokens:  1024,
			MaxRetries: 2,
		},
		Agent: AgentConfig{
			Name:              "react",
			MaxSteps:          5,
			ToolTimeout:       30 * time.Second,
			RunTimeout:        5 * time.Minute,
			MaxConcurrentRuns: 4,
		},
		Tools: ToolsConfig{
			Enabled:         []string{"get_weather", "get_attraction", "google_search"},
			SerpAPIKeyEnv:   "SERPAPI_API_KEY",
			TavilyAPIKeyEnv: "TAVILY_API_KEY",
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// Load reads the YAML file at path on top of the defaults. An empty path
// returns the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML on top of the defaults and validates the result.
// Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the fields that have a closed set of values.
func (c *Config) Validate() error {
	switch c.Model.Provider {
	case ProviderOpenAI, ProviderAnthropic, ProviderGollm:
	default:
		return fmt.Errorf("model.provider: unsupported provider %q", c.Model.Provider)
	}

	if c.Agent.MaxSteps < 1 {
		return fmt.Errorf("agent.max_steps: must be at least 1, got %d", c.Agent.MaxSteps)
	}

	switch strings.ToLower(c.Log.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("log.format: expected console or json, got %q", c.Log.Format)
	}

	return nil
}

// APIKey resolves the model API key from the configured environment
// variable, falling back to the provider's conventional variable.
func (c *Config) APIKey() string {
	env := c.Model.APIKeyEnv
	if env == "" {
		env = defaultKeyEnv(c.Model.Provider, c.Model.Backend)
	}
	if env == "" {
		return ""
	}
	return os.Getenv(env)
}

// SerpAPIKey resolves the google_search credential.
func (c *Config) SerpAPIKey() string { return getenv(c.Tools.SerpAPIKeyEnv) }

// TavilyAPIKey resolves the get_attraction credential.
func (c *Config) TavilyAPIKey() string { return getenv(c.Tools.TavilyAPIKeyEnv) }

// Encode writes c as YAML.
func (c *Config) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(c)
}

func defaultKeyEnv(provider, backend string) string {
	if provider == ProviderGollm {
		provider = backend
	}
	switch provider {
	case ProviderOpenAI, "":
		return "OPENAI_API_KEY"
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return ""
	}
}

func getenv(name string) string {
	if name == "" {
		return ""
	}
	return os.Getenv(name)
}
