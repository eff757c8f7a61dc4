package cli

import (
	"fmt"

	"github.com/hupe1980/reactmesh/tool"
	"github.com/hupe1980/reactmesh/tool/builtin"
	"github.com/spf13/cobra"
)

func newToolsCmd(a *app) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the tool catalog shown to the model",
		RunE: func(cmd *cobra.Command, _ []string) error {
			names := a.cfg.Tools.Enabled
			if all {
				names = builtin.Names()
			}

			tools, err := a.newTools(names)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), tool.NewRegistry(tools...).Describe())
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "List every built-in tool, not only the enabled ones")

	return cmd
}
