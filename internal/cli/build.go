package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/hupe1980/reactmesh"
	"github.com/hupe1980/reactmesh/agent"
	"github.com/hupe1980/reactmesh/internal/config"
	"github.com/hupe1980/reactmesh/logging"
	"github.com/hupe1980/reactmesh/model"
	anthropicmodel "github.com/hupe1980/reactmesh/model/anthropic"
	gollmmodel "github.com/hupe1980/reactmesh/model/gollm"
	openaimodel "github.com/hupe1980/reactmesh/model/openai"
	"github.com/hupe1980/reactmesh/prompt"
	"github.com/hupe1980/reactmesh/tool"
	"github.com/hupe1980/reactmesh/tool/builtin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newModel builds the reasoning model selected by cfg.Model.
func newModel(cfg *config.Config) (model.Model, error) {
	mc := cfg.Model
	key := cfg.APIKey()

	switch mc.Provider {
	case config.ProviderOpenAI:
		return openaimodel.NewModel(func(o *openaimodel.Options) {
			if mc.Name != "" {
				o.Model = mc.Name
			}
			o.Temperature = mc.Temperature
			o.MaxCompletionTokens = int64(mc.MaxTokens)
			o.APIKey = key
			o.BaseURL = mc.BaseURL
			o.MaxRetries = mc.MaxRetries
		}), nil

	case config.ProviderAnthropic:
		return anthropicmodel.NewModel(func(o *anthropicmodel.Options) {
			if mc.Name != "" {
				o.Model = anthropic.Model(mc.Name)
			}
			o.Temperature = mc.Temperature
			o.MaxTokens = int64(mc.MaxTokens)
			o.APIKey = key
			o.BaseURL = mc.BaseURL
			o.MaxRetries = mc.MaxRetries
		}), nil

	case config.ProviderGollm:
		return gollmmodel.NewModel(func(o *gollmmodel.Options) {
			if mc.Backend != "" {
				o.Provider = mc.Backend
			}
			o.Model = mc.Name
			o.APIKey = key
			o.MaxTokens = mc.MaxTokens
			o.Temperature = mc.Temperature
			o.MaxRetries = mc.MaxRetries
		})

	default:
		return nil, fmt.Errorf("unsupported model provider %q", mc.Provider)
	}
}

// newLogger creates a zap logger writing to w at the configured level.
func newLogger(cfg config.LogConfig, w io.Writer) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	var enc zapcore.Encoder
	if strings.EqualFold(cfg.Format, "json") {
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		enc = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}

	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), level)), nil
}

// newTools creates the built-in tools listed in names.
func (a *app) newTools(names []string) ([]tool.Tool, error) {
	opts := builtin.Options{
		HTTPClient:   a.httpClient,
		SerpAPIKey:   a.cfg.SerpAPIKey(),
		TavilyAPIKey: a.cfg.TavilyAPIKey(),
	}

	tools := make([]tool.Tool, 0, len(names))
	for _, name := range names {
		t, err := builtin.New(strings.TrimSpace(name), opts)
		if err != nil {
			return nil, err
		}
		tools = append(tools, t)
	}
	return tools, nil
}

// newMesh wires model, tools, logger and callbacks from the loaded config.
func (a *app) newMesh(logger logging.Logger, callbacks *agent.CallbackManager) (*reactmesh.Mesh, error) {
	llm, err := a.newModel(a.cfg)
	if err != nil {
		return nil, err
	}

	tools, err := a.newTools(a.cfg.Tools.Enabled)
	if err != nil {
		return nil, err
	}

	var tmpl *prompt.Template
	if a.cfg.Agent.PromptFile != "" {
		text, err := os.ReadFile(a.cfg.Agent.PromptFile)
		if err != nil {
			return nil, fmt.Errorf("reading prompt file: %w", err)
		}
		if tmpl, err = prompt.New(string(text)); err != nil {
			return nil, err
		}
	}

	ac := a.cfg.Agent
	return reactmesh.New(llm, tools, func(o *reactmesh.Options) {
		o.Name = ac.Name
		o.MaxSteps = ac.MaxSteps
		o.MaxConcurrentRuns = ac.MaxConcurrentRuns
		o.Template = tmpl
		o.SystemPrompt = agent.NewInstructionFromText(ac.SystemPrompt)
		o.ReportMalformed = ac.ReportMalformed
		o.ToolTimeout = ac.ToolTimeout
		o.Callbacks = callbacks
		o.Logger = logger
	}), nil
}
