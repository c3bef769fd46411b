package cli

import (
	"fmt"

	"github.com/alexanderramin/tplans/internal/cli/formatter"
	"github.com/alexanderramin/tplans/internal/domain"
	"github.com/alexanderramin/tplans/internal/importer"
	"github.com/alexanderramin/tplans/internal/service"
	"github.com/spf13/cobra"
)

func newPlanCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Create, list and share plans",
	}

	cmd.AddCommand(
		newPlanCreateCmd(app),
		newPlanListCmd(app),
		newPlanShareCmd(app),
		newPlanMembersCmd(app),
		newPlanImportCmd(app),
	)

	return cmd
}

func newPlanCreateCmd(app *App) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a plan owned by you",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			u, err := requireUser(ctx, app)
			if err != nil {
				return err
			}
			id, err := app.Plans.Create(ctx, u.ID, service.PlanInput{Name: name})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", formatter.Success("Created plan "+formatter.Bold(name)), formatter.Dim("["+formatter.ShortID(id)+"]"))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Plan name")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newPlanListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List plans you are a member of",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			u, err := requireUser(ctx, app)
			if err != nil {
				return err
			}
			plans, err := app.Plans.ListForUser(ctx, u.ID)
			if err != nil {
				return err
			}
			if len(plans) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No plans found.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatPlanList(plans, u.ID))
			return nil
		},
	}
}

func newPlanShareCmd(app *App) *cobra.Command {
	var email, roleStr string

	cmd := &cobra.Command{
		Use:   "share PLAN",
		Short: "Grant a role on a plan to a user by email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			u, err := requireUser(ctx, app)
			if err != nil {
				return err
			}
			role, err := domain.ParseRole(roleStr)
			if err != nil {
				return err
			}
			planID, err := resolvePlanID(ctx, app, u.ID, args[0])
			if err != nil {
				return err
			}
			grantee, err := app.Plans.ShareByEmail(ctx, u.ID, planID, email, role)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success(fmt.Sprintf("Shared with %s as %s", grantee.Email, formatter.RoleBadge(role))))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email of the user to share with")
	cmd.Flags().StringVar(&roleStr, "role", string(domain.RoleViewer), "Role: editor, viewer or approver")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newPlanMembersCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "members PLAN",
		Short: "List a plan's members and their roles",
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
			members, err := app.Plans.Members(ctx, u.ID, planID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatMembers(plan, members))
			return nil
		},
	}
}

func newPlanImportCmd(app *App) *cobra.Command {
	var approve bool

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Create a plan from a JSON or YAML file",
		Long: `Create a plan from a JSON or YAML file, share it with the listed members
and submit one create-task request per task. With --approve the requests
are approved immediately.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			u, err := requireUser(ctx, app)
			if err != nil {
				return err
			}
			schema, err := importer.LoadImportSchema(args[0])
			if err != nil {
				return err
			}
			res, err := app.Import.ImportPlan(ctx, u.ID, schema, approve)
			out := cmd.OutOrStdout()
			if res != nil {
				fmt.Fprintf(out, "%s %s\n", formatter.Success("Created plan "+formatter.Bold(schema.Plan.Name)), formatter.Dim("["+formatter.ShortID(res.PlanID)+"]"))
				for _, email := range res.Shared {
					fmt.Fprintf(out, "  shared with %s\n", email)
				}
				fmt.Fprintf(out, "  %d task request(s) submitted, %d approved\n", len(res.RequestIDs), res.Approved)
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&approve, "approve", false, "Approve the imported task requests")

	return cmd
}
