package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/hupe1980/reactmesh/core"
	"github.com/hupe1980/reactmesh/internal/config"
	"github.com/hupe1980/reactmesh/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

const wttrBody = `{"current_condition": [{"temp_C": "23", "weatherDesc": [{"value": "Sunny"}]}]}`

func wttrClient() *http.Client {
	return &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Body:       io.NopCloser(strings.NewReader(wttrBody)),
			Request:    r,
		}, nil
	})}
}

func execute(t *testing.T, llm model.Model, stdin string, args ...string) (string, error) {
	t.Helper()

	a := &app{
		newModel: func(*config.Config) (model.Model, error) {
			return llm, nil
		},
		httpClient: wttrClient(),
	}

	cmd := newRootCmd(a)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestRun_PrintsStepsAndAnswer(t *testing.T) {
	llm := model.NewMockModel("mock",
		"Thought: I need the weather first.\nAction: get_weather[city=\"Beijing\"]",
		"Thought: Sunny, the Summer Palace fits.\nAction: Finish[Visit the Summer Palace.]",
	)

	out, err := execute(t, llm, "", "run", "What", "should", "I", "visit", "in", "Beijing?")
	require.NoError(t, err)

	assert.Contains(t, out, "--- Step 1 ---")
	assert.Contains(t, out, "Thought: I need the weather first.")
	assert.Contains(t, out, `Action: get_weather[city="Beijing"]`)
	assert.Contains(t, out, "Observation: Current weather in Beijing: Sunny, 23°C")
	assert.Contains(t, out, "Final Answer\nVisit the Summer Palace.\n")
	assert.NotContains(t, out, "--- Step 2 ---")

	prompts := llm.Prompts()
	require.Len(t, prompts, 2)
	assert.Contains(t, prompts[0], "Question: What should I visit in Beijing?")
}

func TestRun_Quiet(t *testing.T) {
	llm := model.NewMockModel("mock", "Action: get_weather[city=\"Oslo\"]", "Action: Finish[cold]")

	out, err := execute(t, llm, "", "run", "-q", "weather?")
	require.NoError(t, err)
	assert.NotContains(t, out, "--- Step")
	assert.Contains(t, out, "cold")
}

func TestRun_JSON(t *testing.T) {
	llm := model.NewMockModel("mock", "Action: Finish[42]")

	out, err := execute(t, llm, "", "run", "--json", "meaning of life?")
	require.NoError(t, err)

	var report runReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "meaning of life?", report.Question)
	assert.Equal(t, "finished", report.Status)
	assert.Equal(t, "42", report.Answer)
	assert.Equal(t, 1, report.Iterations)
	assert.NotEmpty(t, report.RunID)
}

func TestRun_AbortedReturnsError(t *testing.T) {
	llm := model.NewMockModel("mock", "I have no idea what to do.")

	out, err := execute(t, llm, "", "run", "q")
	require.Error(t, err)
	assert.Contains(t, out, "Run Aborted")
	assert.Contains(t, out, "could not resolve next action from model output")
}

func TestRun_ExhaustedIsNotAnError(t *testing.T) {
	llm := model.NewMockModel("mock", "Action: get_weather[city=\"A\"]", "Action: get_weather[city=\"B\"]")

	out, err := execute(t, llm, "", "run", "--max-steps", "2", "q")
	require.NoError(t, err)
	assert.Contains(t, out, "No Answer (step limit reached)")
	assert.Contains(t, out, "maximum iterations reached without a final answer")
}

func TestRun_Batch(t *testing.T) {
	llm := model.Func(func(_ context.Context, msgs []core.Message) (string, error) {
		if strings.Contains(model.LastUserContent(msgs), "Question: broken") {
			return "nothing useful", nil
		}
		return "Action: Finish[ok]", nil
	})

	out, err := execute(t, llm, "first\n\n# comment\nbroken\nthird\n", "run", "--batch", "-", "--json")
	require.EqualError(t, err, "1 of 3 runs aborted")

	var reports []runReport
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 3)
	assert.Equal(t, "first", reports[0].Question)
	assert.Equal(t, "ok", reports[0].Answer)
	assert.Equal(t, "aborted", reports[1].Status)
	assert.NotEmpty(t, reports[1].Error)
	assert.Equal(t, "third", reports[2].Question)
}

func TestRun_Errors(t *testing.T) {
	llm := model.NewMockModel("mock")

	_, err := execute(t, llm, "", "run")
	assert.ErrorContains(t, err, "question required")

	_, err = execute(t, llm, "", "run", "--provider", "cohere", "q")
	assert.ErrorContains(t, err, `unsupported provider "cohere"`)

	_, err = execute(t, llm, "", "run", "--tools", "teleport", "q")
	assert.ErrorContains(t, err, `unknown built-in tool "teleport"`)

	_, err = execute(t, llm, "", "run", "--batch", filepath.Join(t.TempDir(), "none.txt"))
	assert.ErrorContains(t, err, "opening batch file")

	_, err = execute(t, llm, "", "--log-level", "loud", "run", "q")
	assert.ErrorContains(t, err, "log level")
}

func TestTools(t *testing.T) {
	out, err := execute(t, nil, "", "tools")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "- get_weather: "))
	assert.True(t, strings.HasPrefix(lines[1], "- get_attraction: "))
	assert.True(t, strings.HasPrefix(lines[2], "- google_search: "))

	out, err = execute(t, nil, "", "tools", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "- web_fetch: ")
}

func TestConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reactmesh.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model:\n  provider: anthropic\n"), 0o600))

	out, err := execute(t, nil, "", "--config", path, "--log-level", "debug", "config")
	require.NoError(t, err)

	cfg, err := config.Parse([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, config.ProviderAnthropic, cfg.Model.Provider)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestNewModel(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Model.APIKeyEnv = "REACTMESH_TEST_KEY"
	t.Setenv("REACTMESH_TEST_KEY", "test")

	m, err := newModel(cfg)
	require.NoError(t, err)
	assert.Equal(t, "openai", m.Info().Provider)

	cfg.Model.Provider = config.ProviderAnthropic
	cfg.Model.Name = "claude-3-5-haiku-latest"
	m, err = newModel(cfg)
	require.NoError(t, err)
	assert.Equal(t, model.Info{Name: "claude-3-5-haiku-latest", Provider: "anthropic"}, m.Info())

	cfg.Model.Provider = "cohere"
	_, err = newModel(cfg)
	assert.Error(t, err)
}
