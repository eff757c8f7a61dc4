package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ProviderOpenAI, cfg.Model.Provider)
	assert.Equal(t, 5, cfg.Agent.MaxSteps)
	assert.False(t, cfg.Agent.ReportMalformed)
	assert.Equal(t, 30*time.Second, cfg.Agent.ToolTimeout)
	assert.Equal(t, []string{"get_weather", "get_attraction", "google_search"}, cfg.Tools.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestParse_OverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
model:
  provider: anthropic
  name: claude-3-5-haiku-latest
agent:
  max_steps: 8
  report_malformed: true
  tool_timeout: 5s
tools:
  enabled: [web_fetch]
log:
  level: debug
  format: json
`))
	require.NoError(t, err)

	assert.Equal(t, ProviderAnthropic, cfg.Model.Provider)
	assert.Equal(t, "claude-3-5-haiku-latest", cfg.Model.Name)
	assert.Equal(t, 1024, cfg.Model.MaxTokens)
	assert.Equal(t, 8, cfg.Agent.MaxSteps)
	assert.True(t, cfg.Agent.ReportMalformed)
	assert.Equal(t, 5*time.Second, cfg.Agent.ToolTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Agent.RunTimeout)
	assert.Equal(t, []string{"web_fetch"}, cfg.Tools.Enabled)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{name: "unknown key", yaml: "model:\n  flavour: spicy\n", wantErr: "field flavour not found"},
		{name: "bad provider", yaml: "model:\n  provider: cohere\n", wantErr: `unsupported provider "cohere"`},
		{name: "zero steps", yaml: "agent:\n  max_steps: 0\n", wantErr: "must be at least 1"},
		{name: "bad format", yaml: "log:\n  format: xml\n", wantErr: "expected console or json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	path := filepath.Join(t.TempDir(), "reactmesh.yaml")
	require.NoError(t, os.WriteFile(path, []byte("agent:\n  max_steps: 3\n"), 0o600))

	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Agent.MaxSteps)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading config")
}

func TestAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("ANTHROPIC_API_KEY", "sk-anthropic")
	t.Setenv("CUSTOM_KEY", "sk-custom")
	t.Setenv("SERPAPI_API_KEY", "serp")

	cfg := DefaultConfig()
	assert.Equal(t, "sk-openai", cfg.APIKey())

	cfg.Model.Provider = ProviderAnthropic
	assert.Equal(t, "sk-anthropic", cfg.APIKey())

	cfg.Model.Provider = ProviderGollm
	cfg.Model.Backend = "ollama"
	assert.Empty(t, cfg.APIKey())

	cfg.Model.APIKeyEnv = "CUSTOM_KEY"
	assert.Equal(t, "sk-custom", cfg.APIKey())

	assert.Equal(t, "serp", cfg.SerpAPIKey())
	cfg.Tools.TavilyAPIKeyEnv = ""
	assert.Empty(t, cfg.TavilyAPIKey())
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Agent.MaxSteps = 7

	var buf bytes.Buffer
	require.NoError(t, cfg.Encode(&buf))
	assert.Contains(t, buf.String(), "max_steps: 7")

	decoded, err := Parse(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, cfg, decoded)
}
