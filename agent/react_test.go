package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hupe1980/reactmesh/core"
	"github.com/hupe1980/reactmesh/internal/testutil"
	"github.com/hupe1980/reactmesh/model"
	"github.com/hupe1980/reactmesh/prompt"
	"github.com/hupe1980/reactmesh/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockModel is a testify mock implementing model.Model.
type mockModel struct {
	mock.Mock
}

func (m *mockModel) Think(ctx context.Context, messages []core.Message) (string, error) {
	args := m.Called(ctx, messages)
	return args.String(0), args.Error(1)
}

func (m *mockModel) Info() model.Info { return model.Info{Name: "mock", Provider: "testify"} }

func weatherReply() string {
	return "Thought: need weather\nAction: get_weather[city=\"Beijing\"]"
}

func TestReActAgent_ToolCallThenFinish(t *testing.T) {
	weather := testutil.NewRecordingTool("get_weather", "Sunny, 25C")
	llm := model.NewMockModel("scripted",
		weatherReply(),
		"Thought: done\nAction: Finish(The answer is 42)",
	)

	a := NewReActAgent("assistant", llm, tool.NewRegistry(weather))
	res, err := a.Run(context.Background(), "What's the weather?")
	require.NoError(t, err)

	assert.Equal(t, StatusFinished, res.Status)
	assert.True(t, res.Finished())
	assert.Equal(t, "The answer is 42", res.Answer)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 2, res.Iterations)

	require.Len(t, res.Steps, 1)
	step := res.Steps[0]
	assert.Equal(t, 1, step.Iteration)
	assert.Equal(t, "need weather", step.Thought)
	assert.True(t, step.HasThought)
	assert.Equal(t, `get_weather[city="Beijing"]`, step.Action)
	assert.Equal(t, "Sunny, 25C", step.Observation)
	assert.Equal(t, "get_weather", step.ToolName)
	assert.False(t, step.Malformed)

	assert.Equal(t, []tool.Args{{"city": "Beijing"}}, weather.Calls())

	prompts := llm.Prompts()
	require.Len(t, prompts, 2)
	assert.True(t, strings.HasSuffix(prompts[0], "Question: What's the weather?\n"))
	assert.True(t, strings.HasSuffix(prompts[1],
		"Question: What's the weather?\nAction: get_weather[city=\"Beijing\"]\nObservation: Sunny, 25C\n"))
	assert.Contains(t, prompts[0], "- get_weather: test tool get_weather")
}

func TestReActAgent_DecoratedActions(t *testing.T) {
	weather := testutil.NewRecordingTool("get_weather", "Sunny, 25C")
	llm := model.NewMockModel("scripted",
		"Thought: look it up\nAction: I will call get_weather[city=\"Beijing\"]",
		"Thought: done\nAction: `Finish(Options: 1) Summer Palace 2) Great Wall)`",
	)

	res, err := NewReActAgent("a", llm, tool.NewRegistry(weather)).Run(context.Background(), "q")
	require.NoError(t, err)

	assert.Equal(t, StatusFinished, res.Status)
	assert.Equal(t, "Options: 1) Summer Palace 2) Great Wall", res.Answer)
	require.Len(t, res.Steps, 1)
	assert.False(t, res.Steps[0].Malformed)
	assert.Equal(t, "get_weather", res.Steps[0].ToolName)
	assert.Equal(t, []tool.Args{{"city": "Beijing"}}, weather.Calls())
}

func TestReActAgent_FinishImmediately(t *testing.T) {
	llm := model.NewMockModel("scripted", "Thought: done\nAction: Finish(The answer is 42)")

	res, err := NewReActAgent("a", llm, nil).Run(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "The answer is 42", res.Answer)
	assert.Empty(t, res.Steps)
	assert.Equal(t, 1, res.Iterations)
}

func TestReActAgent_NoActionAborts(t *testing.T) {
	llm := model.NewMockModel("scripted", "Thought: I am not sure what to do.")

	res, err := NewReActAgent("a", llm, nil).Run(context.Background(), "q")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrNoAction)

	var runErr *core.RunError
	require.ErrorAs(t, err, &runErr)
	assert.Equal(t, res.RunID, runErr.RunID)
	assert.Equal(t, 1, runErr.Iteration)

	assert.Equal(t, StatusAborted, res.Status)
	assert.Equal(t, NoActionMessage, res.Answer)
	assert.Empty(t, res.Steps)
}

func TestReActAgent_NoActionKeepsPriorSteps(t *testing.T) {
	weather := testutil.NewRecordingTool("get_weather", "Sunny")
	llm := model.NewMockModel("scripted", weatherReply(), "no markers at all")

	res, err := NewReActAgent("a", llm, tool.NewRegistry(weather)).Run(context.Background(), "q")
	assert.ErrorIs(t, err, core.ErrNoAction)
	assert.Equal(t, StatusAborted, res.Status)
	assert.Len(t, res.Steps, 1)
}

func TestReActAgent_UnknownToolIsRecoverable(t *testing.T) {
	weather := testutil.NewRecordingTool("get_weather", "Sunny")
	llm := model.NewMockModel("scripted",
		"Thought: try foo\nAction: foo[x=\"1\"]",
		"Thought: ok\nAction: Finish[recovered]",
	)

	res, err := NewReActAgent("a", llm, tool.NewRegistry(weather)).Run(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "recovered", res.Answer)

	require.Len(t, res.Steps, 1)
	assert.Equal(t, "Error: unknown tool 'foo'. Available tools: get_weather", res.Steps[0].Observation)
	assert.Equal(t, "foo", res.Steps[0].ToolName)
	assert.Equal(t, map[string]string{"x": "1"}, res.Steps[0].Args)
	assert.Zero(t, weather.CallCount())

	assert.Contains(t, llm.Prompts()[1], "Observation: Error: unknown tool 'foo'")
}

func TestReActAgent_UnknownToolWithEmptyRegistry(t *testing.T) {
	llm := model.NewMockModel("scripted", "Action: foo[]", "Action: Finish[x]")

	res, err := NewReActAgent("a", llm, nil).Run(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "Error: unknown tool 'foo'. Available tools: none", res.Steps[0].Observation)
	assert.False(t, res.Steps[0].HasThought)
}

func TestReActAgent_ExhaustsIterations(t *testing.T) {
	weather := testutil.NewRecordingTool("get_weather", "Sunny")
	llm := model.NewMockModel("scripted")
	for i := 0; i < 6; i++ {
		llm.AddResponse(weatherReply())
	}

	res, err := NewReActAgent("a", llm, tool.NewRegistry(weather)).Run(context.Background(), "q")
	require.NoError(t, err)

	assert.Equal(t, StatusExhausted, res.Status)
	assert.Equal(t, MaxIterationsMessage, res.Answer)
	assert.Len(t, res.Steps, DefaultMaxSteps)
	assert.Equal(t, DefaultMaxSteps, weather.CallCount())
	assert.Len(t, llm.Calls(), DefaultMaxSteps)

	for i, s := range res.Steps {
		assert.Equal(t, i+1, s.Iteration)
	}
}

func TestReActAgent_HistoryGrowsByTwoPerIteration(t *testing.T) {
	echo := testutil.NewRecordingTool("echo", "pong")
	llm := model.NewMockModel("scripted")
	for i := 0; i < 4; i++ {
		llm.AddResponse("Action: echo[]")
	}

	_, err := NewReActAgent("a", llm, tool.NewRegistry(echo), func(o *ReActAgentOptions) {
		o.MaxSteps = 4
	}).Run(context.Background(), "q")
	require.NoError(t, err)

	for n, p := range llm.Prompts() {
		history := strings.SplitN(p, "Question: q\n", 2)[1]
		entries := strings.Split(strings.TrimSuffix(history, "\n"), "\n")
		if history == "" {
			entries = nil
		}
		require.Len(t, entries, 2*n, "prompt %d", n)
		for i := 0; i < len(entries); i += 2 {
			assert.Equal(t, "Action: echo[]", entries[i])
			assert.Equal(t, "Observation: pong", entries[i+1])
		}
	}
}

func TestReActAgent_MalformedActionSkipped(t *testing.T) {
	llm := model.NewMockModel("scripted",
		"Thought: hmm\nAction: get_weather Beijing",
		"Action: Finish[done]",
	)

	res, err := NewReActAgent("a", llm, nil).Run(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "done", res.Answer)

	require.Len(t, res.Steps, 1)
	assert.True(t, res.Steps[0].Malformed)
	assert.Equal(t, "get_weather Beijing", res.Steps[0].Action)
	assert.Empty(t, res.Steps[0].Observation)

	// nothing was appended to the history
	assert.True(t, strings.HasSuffix(llm.Prompts()[1], "Question: q\n"))
}

func TestReActAgent_MalformedActionReported(t *testing.T) {
	llm := model.NewMockModel("scripted",
		"Action: get_weather Beijing",
		"Action: Finish[done]",
	)

	res, err := NewReActAgent("a", llm, nil, func(o *ReActAgentOptions) {
		o.ReportMalformed = true
	}).Run(context.Background(), "q")
	require.NoError(t, err)

	require.Len(t, res.Steps, 1)
	assert.True(t, res.Steps[0].Malformed)
	assert.Contains(t, res.Steps[0].Observation, "malformed action (missing argument list)")
	assert.Contains(t, llm.Prompts()[1], "Action: get_weather Beijing\nObservation: Error: malformed action")
}

func TestReActAgent_MalformedCountsTowardLimit(t *testing.T) {
	llm := model.NewMockModel("scripted", "Action: ???", "Action: ???", "Action: ???")

	res, err := NewReActAgent("a", llm, nil, func(o *ReActAgentOptions) {
		o.MaxSteps = 3
	}).Run(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, StatusExhausted, res.Status)
	assert.Len(t, res.Steps, 3)
}

func TestReActAgent_ToolErrorBecomesObservation(t *testing.T) {
	failing := testutil.NewRecordingTool("search", "")
	failing.Err = errors.New("service unavailable")
	llm := model.NewMockModel("scripted", `Action: search[query="go"]`, "Action: Finish[gave up]")

	res, err := NewReActAgent("a", llm, tool.NewRegistry(failing)).Run(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "Error: tool 'search' failed: service unavailable", res.Steps[0].Observation)
}

func TestReActAgent_ToolPanicBecomesObservation(t *testing.T) {
	panicky := testutil.NewRecordingTool("search", "")
	panicky.Panic = "nil map write"
	llm := model.NewMockModel("scripted", `Action: search[query="go"]`, "Action: Finish[ok]")

	res, err := NewReActAgent("a", llm, tool.NewRegistry(panicky)).Run(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "Error: tool 'search' failed: panic: nil map write", res.Steps[0].Observation)
	assert.Equal(t, "ok", res.Answer)
}

func TestReActAgent_ToolValidationError(t *testing.T) {
	reg := tool.NewRegistry()
	reg.RegisterFunc("get_weather", "Weather", func(_ context.Context, args tool.Args) (string, error) {
		return "Sunny in " + args["city"], nil
	}, func(o *tool.FunctionToolOptions) { o.Required = []string{"city"} })

	llm := model.NewMockModel("scripted", "Action: get_weather[]", "Action: Finish[x]")

	res, err := NewReActAgent("a", llm, reg).Run(context.Background(), "q")
	require.NoError(t, err)
	assert.Contains(t, res.Steps[0].Observation, "Error: tool 'get_weather' failed: argument validation failed")
}

func TestReActAgent_ToolTimeout(t *testing.T) {
	slow := testutil.NewRecordingTool("slow", "")
	slow.Fn = func(ctx context.Context, _ tool.Args) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}
	llm := model.NewMockModel("scripted", "Action: slow[]", "Action: Finish[x]")

	res, err := NewReActAgent("a", llm, tool.NewRegistry(slow), func(o *ReActAgentOptions) {
		o.ToolTimeout = 10 * time.Millisecond
	}).Run(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "Error: tool 'slow' failed: deadline exceeded", res.Steps[0].Observation)
}

func TestReActAgent_ToolReceivesToolContext(t *testing.T) {
	rt := testutil.NewRecordingTool("echo", "pong")
	llm := model.NewMockModel("scripted", "Action: echo[]", "Action: echo[]", "Action: Finish[x]")

	res, err := NewReActAgent("assistant", llm, tool.NewRegistry(rt)).Run(context.Background(), "q")
	require.NoError(t, err)

	tcs := rt.ToolContexts()
	require.Len(t, tcs, 2)
	for i, tc := range tcs {
		require.NotNil(t, tc)
		assert.Equal(t, res.RunID, tc.RunID())
		assert.Equal(t, "assistant", tc.AgentName())
		assert.Equal(t, i+1, tc.Iteration())
		assert.Equal(t, "echo", tc.ToolName())
	}
}

func TestReActAgent_ReasoningUnavailable(t *testing.T) {
	tests := []struct {
		name string
		llm  *model.MockModel
	}{
		{"error", model.NewMockModel("m").AddError(errors.New("rate limited"))},
		{"blank", model.NewMockModel("m", "   \n ")},
		{"empty", model.NewMockModel("m", "")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewReActAgent("a", tt.llm, nil).Run(context.Background(), "q")
			assert.ErrorIs(t, err, core.ErrReasoningUnavailable)
			assert.Equal(t, StatusAborted, res.Status)
			assert.Equal(t, ReasoningUnavailableMessage, res.Answer)
			assert.Empty(t, res.Steps)
		})
	}
}

func TestReActAgent_TemplateErrorIsReasoningUnavailable(t *testing.T) {
	tmpl, err := prompt.New("{{.Missing}}")
	require.NoError(t, err)

	llm := model.NewMockModel("m", "Action: Finish[x]")
	res, err := NewReActAgent("a", llm, nil, func(o *ReActAgentOptions) {
		o.Template = tmpl
	}).Run(context.Background(), "q")

	assert.ErrorIs(t, err, core.ErrReasoningUnavailable)
	assert.Equal(t, StatusAborted, res.Status)
	assert.Empty(t, llm.Calls())
}

func TestReActAgent_CancelledBeforeRun(t *testing.T) {
	llm := model.NewMockModel("m", "Action: Finish[x]")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := NewReActAgent("a", llm, nil).Run(ctx, "q")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StatusAborted, res.Status)
	assert.Equal(t, CancelledMessage, res.Answer)
	assert.Empty(t, llm.Calls())
}

func TestReActAgent_CancelledBetweenIterations(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	echo := testutil.NewRecordingTool("echo", "")
	echo.Fn = func(context.Context, tool.Args) (string, error) {
		cancel()
		return "pong", nil
	}
	llm := model.NewMockModel("m", "Action: echo[]", "Action: Finish[x]")

	res, err := NewReActAgent("a", llm, tool.NewRegistry(echo)).Run(ctx, "q")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StatusAborted, res.Status)
	assert.Len(t, res.Steps, 1)
	assert.Len(t, llm.Calls(), 1)
}

func TestReActAgent_SystemPrompt(t *testing.T) {
	llm := &mockModel{}
	llm.On("Think", mock.Anything, mock.MatchedBy(func(msgs []core.Message) bool {
		return len(msgs) == 2 &&
			msgs[0].Role == core.RoleSystem && msgs[0].Content == "You are assistant answering: q" &&
			msgs[1].Role == core.RoleUser && strings.Contains(msgs[1].Content, "Question: q")
	})).Return("Action: Finish[ok]", nil).Once()

	a := NewReActAgent("assistant", llm, nil, func(o *ReActAgentOptions) {
		o.SystemPrompt = NewInstructionFromFunc(func(rc *core.RunContext) (string, error) {
			return fmt.Sprintf("You are %s answering: %s", rc.AgentName, rc.Question), nil
		})
	})

	res, err := a.Run(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Answer)
	llm.AssertExpectations(t)
}

func TestReActAgent_SingleUserMessageByDefault(t *testing.T) {
	llm := &mockModel{}
	llm.On("Think", mock.Anything, mock.MatchedBy(func(msgs []core.Message) bool {
		return len(msgs) == 1 && msgs[0].Role == core.RoleUser
	})).Return("Action: Finish[ok]", nil).Once()

	_, err := NewReActAgent("a", llm, nil).Run(context.Background(), "q")
	require.NoError(t, err)
	llm.AssertExpectations(t)
}

func questionFrom(p string) string {
	for _, line := range strings.Split(p, "\n") {
		if strings.HasPrefix(line, "Question: ") {
			return strings.TrimPrefix(line, "Question: ")
		}
	}
	return ""
}

func TestReActAgent_ConcurrentRunsAreIsolated(t *testing.T) {
	echo := testutil.NewRecordingTool("echo", "")
	echo.Fn = func(_ context.Context, args tool.Args) (string, error) {
		return "echo: " + args["text"], nil
	}

	llm := model.Func(func(_ context.Context, msgs []core.Message) (string, error) {
		p := model.LastUserContent(msgs)
		q := questionFrom(p)
		if strings.Contains(p, "Observation: echo: "+q+"\n") {
			return "Thought: done\nAction: Finish[" + q + "]", nil
		}
		return fmt.Sprintf("Thought: echo it\nAction: echo[text=%q]", q), nil
	})

	a := NewReActAgent("shared", llm, tool.NewRegistry(echo))

	const runs = 16
	results := make([]*Result, runs)

	var wg sync.WaitGroup
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := a.Run(context.Background(), fmt.Sprintf("q-%d", i))
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for i, res := range results {
		require.NotNil(t, res)
		assert.Equal(t, fmt.Sprintf("q-%d", i), res.Answer)
		assert.Len(t, res.Steps, 1)
		assert.False(t, seen[res.RunID])
		seen[res.RunID] = true
	}
	assert.Equal(t, runs, echo.CallCount())
}

func TestNewReActAgent_Defaults(t *testing.T) {
	llm := model.NewMockModel("m")
	a := NewReActAgent("a", llm, nil, func(o *ReActAgentOptions) {
		o.Template = nil
		o.Logger = nil
	})

	assert.Equal(t, "a", a.Name())
	assert.Equal(t, DefaultMaxSteps, a.MaxSteps())
	assert.Same(t, llm, a.Model())
	require.NotNil(t, a.Tools())
	assert.Equal(t, 0, a.Tools().Len())
}

func TestNewReActAgent_NonPositiveMaxSteps(t *testing.T) {
	for _, n := range []int{0, -3} {
		llm := model.NewMockModel("m", "Action: Finish[ok]")
		a := NewReActAgent("a", llm, nil, func(o *ReActAgentOptions) {
			o.MaxSteps = n
		})
		assert.Equal(t, DefaultMaxSteps, a.MaxSteps())

		res, err := a.Run(context.Background(), "q")
		require.NoError(t, err)
		assert.Equal(t, StatusFinished, res.Status)
		assert.Equal(t, "ok", res.Answer)
	}
}
