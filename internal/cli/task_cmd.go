package cli

import (
	"fmt"

	"github.com/alexanderramin/tplans/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newTaskCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "View a plan's tasks",
	}
	cmd.AddCommand(newTaskListCmd(app))
	return cmd
}

func newTaskListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list PLAN",
		Short: "List a plan's tasks in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			u, err := requireUser(ctx, app)
			if err != nil {
				return err
			}
			planID, err := resolvePlanID(ctx, app, u.ID, args[0])
			if err != nil {
				return err
			}
			plan, err := app.Plans.Get(ctx, u.ID, planID)
			if err != nil {
				return err
			}
			tasks, err := app.Tasks.List(ctx, u.ID, planID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatTaskList(plan.Name, tasks))
			return nil
		},
	}
}
