package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/tplans/internal/cli/formatter"
	"github.com/alexanderramin/tplans/internal/domain"
	"github.com/alexanderramin/tplans/internal/identity"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

func newAuthCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Sign up, sign in and manage the current session",
	}

	cmd.AddCommand(
		newAuthSignUpCmd(app),
		newAuthSignInCmd(app),
		newAuthFederatedCmd(app),
		newAuthSignOutCmd(app),
		newAuthWhoAmICmd(app),
	)

	return cmd
}

func newAuthSignUpCmd(app *App) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readPassword(app, password, "Choose a password")
			if err != nil {
				return err
			}
			sess, err := app.Identity.SignUp(cmd.Context(), name, email, pw)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success(fmt.Sprintf("Signed up as %s <%s>", name, sess.User.Email)))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted when omitted on a terminal)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newAuthSignInCmd(app *App) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in with email and password",
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readPassword(app, password, "Password")
			if err != nil {
				return err
			}
			sess, err := app.Identity.SignIn(cmd.Context(), email, pw)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success("Signed in as "+sess.User.Email))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted when omitted on a terminal)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newAuthFederatedCmd(app *App) *cobra.Command {
	var provider, subject, email, name string

	cmd := &cobra.Command{
		Use:   "federated",
		Short: "Sign in with an identity asserted by an external provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			fp := identity.AssertedProvider{Identity: identity.FederatedIdentity{
				Provider:    domain.AuthProvider(strings.ToLower(provider)),
				Subject:     subject,
				Email:       email,
				DisplayName: name,
			}}
			sess, isNew, err := app.Identity.SignInWithFederatedProvider(cmd.Context(), fp)
			if err != nil {
				return err
			}
			verb := "Signed in"
			if isNew {
				verb = "Signed up"
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success(fmt.Sprintf("%s as %s via %s", verb, sess.User.Email, provider)))
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", string(domain.ProviderGoogle), "Identity provider")
	cmd.Flags().StringVar(&subject, "subject", "", "Provider subject identifier")
	cmd.Flags().StringVar(&email, "email", "", "Email address asserted by the provider")
	cmd.Flags().StringVar(&name, "name", "", "Display name asserted by the provider")
	_ = cmd.MarkFlagRequired("subject")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newAuthSignOutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Sign out of the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Identity.SignOut(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success("Signed out"))
			return nil
		},
	}
}

func newAuthWhoAmICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			u, err := app.Identity.CurrentUser(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if u == nil {
				fmt.Fprintln(out, formatter.Dim("Not signed in."))
				return nil
			}
			name := u.DisplayName
			if profile, err := app.Directory.GetByID(ctx, u.ID); err == nil {
				name = profile.Name
			}
			fmt.Fprintf(out, "%s <%s>\n%s\n", formatter.Bold(formatter.OrDash(name)), u.Email, formatter.Dim(u.ID))
			return nil
		},
	}
}

// readPassword returns the flag value, or prompts for one on a terminal.
func readPassword(app *App, flagValue, title string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if !app.interactive() {
		return "", fmt.Errorf("--password is required when stdin is not a terminal")
	}
	prompt := app.PromptPassword
	if prompt == nil {
		prompt = huhPasswordPrompt
	}
	return prompt(title)
}

func huhPasswordPrompt(title string) (string, error) {
	var pw string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				EchoMode(huh.EchoModePassword).
				Value(&pw).
				Validate(func(s string) error {
					if len(s) < domain.MinPasswordLen {
						return domain.ErrWeakPassword
					}
					return nil
				}),
		),
	).WithTheme(tplansHuhTheme()).WithShowHelp(false).Run()
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return pw, nil
}
