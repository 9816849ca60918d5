// ABOUTME: Account commands: login, signup, logout and whoami
// ABOUTME: Go through the same login and register controllers as the other front ends
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harperreed/shaft/viewmodel"
)

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to your account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrompter(cmd)
			var err error
			if email == "" {
				if email, err = p.Line("Email: "); err != nil {
					return err
				}
			}
			password, err := p.Password("Password: ")
			if err != nil {
				return err
			}

			return opts.withApp(cmd, func(app *App) error {
				login := viewmodel.NewLogin(app.Sessions, nil, app.Logger("cli"))
				if err := login.Submit(cmd.Context(), email, password); err != nil {
					return errors.New(login.Error())
				}
				s := app.Sessions.Current()
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Signed in as %s\n", s.Email)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email (prompted when omitted)")
	return cmd
}

func newSignupCmd(opts *rootOptions) *cobra.Command {
	var email, name string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrompter(cmd)
			var err error
			if name == "" {
				if name, err = p.Line("Display name: "); err != nil {
					return err
				}
			}
			if email == "" {
				if email, err = p.Line("Email: "); err != nil {
					return err
				}
			}
			password, err := p.Password("Password: ")
			if err != nil {
				return err
			}
			confirm, err := p.Password("Confirm password: ")
			if err != nil {
				return err
			}

			return opts.withApp(cmd, func(app *App) error {
				register := viewmodel.NewRegister(app.Sessions, nil, app.Logger("cli"))
				if err := register.Submit(cmd.Context(), name, email, password, confirm); err != nil {
					return errors.New(register.Error())
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Account created for %s\n", app.Sessions.Current().Email)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email (prompted when omitted)")
	cmd.Flags().StringVar(&name, "name", "", "Display name (prompted when omitted)")
	return cmd
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the cached session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(app *App) error {
				if err := app.Sessions.Logout(cmd.Context()); err != nil {
					log := app.Logger("cli")
					log.Warn().Err(err).Msg("provider sign-out failed, local session cleared")
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "✓ Signed out")
				return nil
			})
		},
	}
}

func newWhoamiCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(app *App) error {
				s := app.Sessions.Current()
				if s == nil {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
					return nil
				}
				if s.DisplayName != "" {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", s.DisplayName, s.Email)
				} else {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), s.Email)
				}
				if !app.Sessions.Confirmed() {
					_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "(cached session, not yet confirmed)")
				}
				return nil
			})
		},
	}
}
