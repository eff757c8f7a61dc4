package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hupe1980/reactmesh/agent"
	"github.com/hupe1980/reactmesh/logging"
	"github.com/hupe1980/reactmesh/tool/builtin"
	"github.com/spf13/cobra"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		provider        string
		modelName       string
		baseURL         string
		maxSteps        int
		tools           []string
		reportMalformed bool
		quiet           bool
		batchFile       string
		jsonOutput      bool
	)

	cmd := &cobra.Command{
		Use:   "run [question]",
		Short: "Answer a question with the ReAct agent",
		Long: `Run the Thought/Action/Observation loop for a question and print every
step followed by the final answer.

With --batch, questions are read from a file (one per line, "-" for stdin)
and answered concurrently.`,
		Example: `  reactmesh run "What's the weather in Beijing, and what should I visit there?"
  reactmesh run --provider anthropic --tools web_fetch "Summarize https://go.dev/blog"
  reactmesh run --batch questions.txt --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			flags := cmd.Flags()
			if flags.Changed("provider") {
				cfg.Model.Provider = provider
			}
			if flags.Changed("model") {
				cfg.Model.Name = modelName
			}
			if flags.Changed("base-url") {
				cfg.Model.BaseURL = baseURL
			}
			if flags.Changed("max-steps") {
				cfg.Agent.MaxSteps = maxSteps
			}
			if flags.Changed("tools") {
				cfg.Tools.Enabled = tools
			}
			if flags.Changed("report-malformed") {
				cfg.Agent.ReportMalformed = reportMalformed
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			var questions []string
			switch {
			case batchFile != "":
				qs, err := readQuestions(cmd.InOrStdin(), batchFile)
				if err != nil {
					return err
				}
				questions = qs
			case len(args) > 0:
				questions = []string{strings.Join(args, " ")}
			default:
				return fmt.Errorf("question required: reactmesh run \"your question\"")
			}

			zl, err := newLogger(cfg.Log, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = zl.Sync() }()
			logger := logging.NewZapAdapter(zl)

			out := cmd.OutOrStdout()
			callbacks := agent.NewCallbackManager(agent.NewLoggingCallback(agent.CallbackOnFinish, logger))
			if !quiet && !jsonOutput && batchFile == "" {
				callbacks.RegisterCallback(newStepPrinter(out))
			}

			mesh, err := a.newMesh(logger, callbacks)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if cfg.Agent.RunTimeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, cfg.Agent.RunTimeout)
				defer cancel()
			}

			if batchFile == "" {
				res, runErr := mesh.Run(ctx, questions[0])
				if jsonOutput {
					if err := writeJSON(out, newRunReport(questions[0], res, runErr)); err != nil {
						return err
					}
				} else {
					printResult(out, res)
				}
				return runErr
			}

			results, batchErr := mesh.RunBatch(ctx, questions)
			reports := make([]runReport, len(results))
			failed := 0
			for i, r := range results {
				reports[i] = newRunReport(r.Question, r.Result, r.Err)
				if r.Err != nil {
					failed++
				}
			}

			if jsonOutput {
				if err := writeJSON(out, reports); err != nil {
					return err
				}
			} else {
				for _, r := range reports {
					headerColor.Fprintf(out, "Q: %s\n", r.Question)
					fmt.Fprintf(out, "[%s] %s\n\n", r.Status, r.Answer)
				}
			}

			if batchErr != nil {
				return batchErr
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d runs aborted", failed, len(results))
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&provider, "provider", "", "Model provider: openai|anthropic|gollm")
	flags.StringVarP(&modelName, "model", "m", "", "Model name (provider default when empty)")
	flags.StringVar(&baseURL, "base-url", "", "OpenAI-compatible endpoint URL")
	flags.IntVar(&maxSteps, "max-steps", 5, "Maximum Thought/Action iterations")
	flags.StringSliceVar(&tools, "tools", nil, "Built-in tools to enable: "+strings.Join(builtin.Names(), ", "))
	flags.BoolVar(&reportMalformed, "report-malformed", false, "Tell the model when its action could not be parsed")
	flags.BoolVarP(&quiet, "quiet", "q", false, "Print only the final answer")
	flags.StringVar(&batchFile, "batch", "", "Read questions from a file, one per line (- for stdin)")
	flags.BoolVar(&jsonOutput, "json", false, "Print results as JSON")

	return cmd
}

// runReport is the JSON shape of a finished run.
type runReport struct {
	Question   string `json:"question"`
	RunID      string `json:"run_id,omitempty"`
	Status     string `json:"status"`
	Answer     string `json:"answer"`
	Iterations int    `json:"iterations"`
	Error      string `json:"error,omitempty"`
}

func newRunReport(question string, res *agent.Result, err error) runReport {
	r := runReport{Question: question, Status: string(agent.StatusAborted)}
	if res != nil {
		r.RunID = res.RunID
		r.Status = string(res.Status)
		r.Answer = res.Answer
		r.Iterations = res.Iterations
	}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readQuestions returns the non-blank lines of path, or of stdin for "-".
func readQuestions(stdin io.Reader, path string) ([]string, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening batch file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var questions []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if q := strings.TrimSpace(sc.Text()); q != "" && !strings.HasPrefix(q, "#") {
			questions = append(questions, q)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("no questions in %s", path)
	}
	return questions, nil
}
