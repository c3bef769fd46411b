package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the top-level "tplans" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "tplans",
		Short:         "Collaborative plans with approval-gated task changes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newAuthCmd(app),
		newPlanCmd(app),
		newTaskCmd(app),
		newRequestCmd(app),
		newWatchCmd(app),
	)

	return root
}
