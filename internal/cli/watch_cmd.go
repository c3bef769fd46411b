package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/tplans/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newWatchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [PLAN]",
		Short: "Live view of your plans, tasks and pending requests",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return fmt.Errorf("watch needs an interactive terminal")
			}
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			u, err := requireUser(ctx, app)
			if err != nil {
				return err
			}
			planID := ""
			if len(args) == 1 {
				if planID, err = resolvePlanID(ctx, app, u.ID, args[0]); err != nil {
					return err
				}
			}

			// Subscriptions only start once p is set.
			var p *tea.Program
			send := func(msg tea.Msg) { p.Send(msg) }
			session := NewSessionState(app, sessionListener(send))
			defer session.Close()

			model := newWatchModel(ctx, app, session, u, planID)
			p = tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen(),
				tea.WithInput(cmd.InOrStdin()), tea.WithOutput(cmd.OutOrStdout()))

			if err := session.SetUser(ctx, u); err != nil {
				return err
			}
			if err := session.SelectPlan(ctx, planID); err != nil {
				return err
			}
			stopSession, err := app.Identity.OnSessionChange(ctx, func(u *domain.SessionUser) {
				if err := session.SetUser(ctx, u); err != nil {
					send(errMsg{err: err})
				}
				send(userMsg{user: u})
			})
			if err != nil {
				return err
			}
			defer stopSession()

			if app.StartWatcher != nil {
				go func() {
					if err := app.StartWatcher(ctx); err != nil {
						send(errMsg{err: err})
					}
				}()
			}

			_, err = p.Run()
			return err
		},
	}
}
