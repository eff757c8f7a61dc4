// Package cli implements the reactmesh command line interface.
package cli

import (
	"net/http"

	"github.com/hupe1980/reactmesh/internal/config"
	"github.com/hupe1980/reactmesh/model"
	"github.com/spf13/cobra"
)

// app carries state shared by all subcommands. Tests replace newModel and
// httpClient to run the CLI without network access.
type app struct {
	configPath string
	logLevel   string
	cfg        *config.Config

	newModel   func(cfg *config.Config) (model.Model, error)
	httpClient *http.Client
}

// NewRootCmd creates the top-level reactmesh command with all subcommands.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{newModel: newModel})
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reactmesh",
		Short: "Answer questions with a ReAct tool-using agent",
		Long: `reactmesh runs a Thought/Action/Observation loop: a language model
reasons about a question, calls tools, reads their observations and
eventually produces a final answer.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Log.Level = a.logLevel
			}
			a.cfg = cfg
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to a YAML config file")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "Log level: debug|info|warn|error")

	cmd.AddCommand(
		newRunCmd(a),
		newToolsCmd(a),
		newConfigCmd(a),
	)

	return cmd
}
