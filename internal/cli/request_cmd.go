package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/alexanderramin/tplans/internal/cli/formatter"
	"github.com/alexanderramin/tplans/internal/domain"
	"github.com/spf13/cobra"
)

func newRequestCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "request",
		Aliases: []string{"req"},
		Short:   "Propose task changes and approve them",
	}

	cmd.AddCommand(
		newRequestCreateTaskCmd(app),
		newRequestUpdateTaskCmd(app),
		newRequestDeleteTaskCmd(app),
		newRequestListCmd(app),
		newRequestHistoryCmd(app),
		newRequestShowCmd(app),
		newRequestApproveCmd(app),
	)

	return cmd
}

// addTaskFieldFlags registers the optional task fields a request may carry.
func addTaskFieldFlags(cmd *cobra.Command) {
	cmd.Flags().String("title", "", "Task title")
	cmd.Flags().String("description", "", "Task description")
	cmd.Flags().String("status", "", "Task status (free text)")
	cmd.Flags().Int("progress", 0, "Task progress, 0-100")
	cmd.Flags().Int("order", domain.DefaultTaskOrder, "Task order; lower sorts first")
}

// taskPayloadFromFlags builds a payload from only the flags that were set.
func taskPayloadFromFlags(cmd *cobra.Command) (domain.TaskPayload, error) {
	var p domain.TaskPayload
	var err error
	flags := cmd.Flags()
	if p.Title, err = optionalString(flags, "title"); err != nil {
		return p, err
	}
	if p.Description, err = optionalString(flags, "description"); err != nil {
		return p, err
	}
	if p.Status, err = optionalString(flags, "status"); err != nil {
		return p, err
	}
	if p.Progress, err = optionalInt(flags, "progress"); err != nil {
		return p, err
	}
	if p.Order, err = optionalInt(flags, "order"); err != nil {
		return p, err
	}
	return p, nil
}

// submitRequest resolves the plan (and task, if any) and submits the request.
func submitRequest(cmd *cobra.Command, app *App, planRef, taskRef string, typ domain.ChangeRequestType, payload domain.TaskPayload) error {
	ctx := cmd.Context()
	u, err := requireUser(ctx, app)
	if err != nil {
		return err
	}
	planID, err := resolvePlanID(ctx, app, u.ID, planRef)
	if err != nil {
		return err
	}
	if typ != domain.RequestCreateTask {
		if payload.TaskID, err = resolveTaskID(ctx, app, u.ID, planID, taskRef); err != nil {
			return err
		}
	}
	id, err := app.Workflow.Submit(ctx, planID, typ, payload, u.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n",
		formatter.Success(fmt.Sprintf("Submitted %s for approval", typ)),
		formatter.Dim("["+formatter.ShortID(id)+"]"))
	return nil
}

func newRequestCreateTaskCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-task PLAN",
		Short: "Propose a new task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := taskPayloadFromFlags(cmd)
			if err != nil {
				return err
			}
			return submitRequest(cmd, app, args[0], "", domain.RequestCreateTask, payload)
		},
	}
	addTaskFieldFlags(cmd)
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newRequestUpdateTaskCmd(app *App) *cobra.Command {
	var taskRef string

	cmd := &cobra.Command{
		Use:   "update-task PLAN",
		Short: "Propose changes to an existing task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := taskPayloadFromFlags(cmd)
			if err != nil {
				return err
			}
			return submitRequest(cmd, app, args[0], taskRef, domain.RequestUpdateTask, payload)
		},
	}
	cmd.Flags().StringVar(&taskRef, "task", "", "Task ID or unique prefix")
	addTaskFieldFlags(cmd)
	_ = cmd.MarkFlagRequired("task")
	return cmd
}

func newRequestDeleteTaskCmd(app *App) *cobra.Command {
	var taskRef string

	cmd := &cobra.Command{
		Use:   "delete-task PLAN",
		Short: "Propose removing a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return submitRequest(cmd, app, args[0], taskRef, domain.RequestDeleteTask, domain.TaskPayload{})
		},
	}
	cmd.Flags().StringVar(&taskRef, "task", "", "Task ID or unique prefix")
	_ = cmd.MarkFlagRequired("task")
	return cmd
}

func newRequestListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list PLAN",
		Short: "List pending requests, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			plan, history, u, err := planHistory(ctx, app, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatPendingRequests(plan.Name, pendingOldestFirst(history), userNamer(ctx, app, u.ID)))
			return nil
		},
	}
}

func newRequestHistoryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "history PLAN",
		Short: "List every request of a plan, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			plan, history, u, err := planHistory(ctx, app, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatHistory(plan.Name, history, userNamer(ctx, app, u.ID)))
			return nil
		},
	}
}

func newRequestShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show REQUEST",
		Short: "Show one request and its proposed changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			u, err := requireUser(ctx, app)
			if err != nil {
				return err
			}
			id, err := resolveRequestID(ctx, app, u.ID, args[0])
			if err != nil {
				return err
			}
			cr, err := app.Workflow.Get(ctx, u.ID, id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatRequestDetail(cr, userNamer(ctx, app, u.ID)))
			return nil
		},
	}
}

func newRequestApproveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "approve REQUEST",
		Short: "Approve a pending request and apply its change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			u, err := requireUser(ctx, app)
			if err != nil {
				return err
			}
			id, err := resolveRequestID(ctx, app, u.ID, args[0])
			if err != nil {
				return err
			}
			if err := app.Workflow.Approve(ctx, id, u.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", formatter.Success("Approved"), formatter.Dim("["+formatter.ShortID(id)+"]"))
			return nil
		},
	}
}

func planHistory(ctx context.Context, app *App, planRef string) (*domain.Plan, []*domain.ChangeRequest, *domain.SessionUser, error) {
	u, err := requireUser(ctx, app)
	if err != nil {
		return nil, nil, nil, err
	}
	planID, err := resolvePlanID(ctx, app, u.ID, planRef)
	if err != nil {
		return nil, nil, nil, err
	}
	plan, err := app.Plans.Get(ctx, u.ID, planID)
	if err != nil {
		return nil, nil, nil, err
	}
	history, err := app.Workflow.ListHistory(ctx, u.ID, planID)
	if err != nil {
		return nil, nil, nil, err
	}
	return plan, history, u, nil
}

// pendingOldestFirst filters a newest-first history down to the approval queue.
func pendingOldestFirst(history []*domain.ChangeRequest) []*domain.ChangeRequest {
	var pending []*domain.ChangeRequest
	for _, r := range history {
		if r.IsPending() {
			pending = append(pending, r)
		}
	}
	slices.Reverse(pending)
	return pending
}

// userNamer resolves handles to profile names, caching lookups. The signed-in
// user shows as "you".
func userNamer(ctx context.Context, app *App, selfID string) formatter.NameFunc {
	cache := map[string]string{selfID: "you"}
	return func(id string) string {
		if name, ok := cache[id]; ok {
			return name
		}
		name := formatter.ShortID(id)
		if u, err := app.Directory.GetByID(ctx, id); err == nil && u.Name != "" {
			name = u.Name
		}
		cache[id] = name
		return name
	}
}
