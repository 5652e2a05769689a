package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/notes-client/internal/apiclient"
	"github.com/magabrotheeeer/notes-client/internal/forms"
	"github.com/magabrotheeeer/notes-client/internal/guard"
)

func (rt *runtime) authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Log in, register and manage the session",
	}
	cmd.AddCommand(rt.loginCmd(), rt.registerCmd(), rt.logoutCmd(), rt.changePasswordCmd(), rt.statusCmd())
	return cmd
}

func (rt *runtime) loginCmd() *cobra.Command {
	var form forms.Login
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to your account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			var err error
			if form.Email == "" {
				if form.Email, err = rt.prompt.Line("email: "); err != nil {
					return err
				}
			}
			if form.Password == "" {
				if form.Password, err = rt.prompt.Secret("password: "); err != nil {
					return err
				}
			}

			creds, err := form.Validate()
			if err != nil {
				return err
			}
			if err := rt.app.Store.Login(ctx, creds); err != nil {
				return err
			}
			if err := rt.app.Store.FetchProfile(ctx); err != nil {
				return err
			}

			s := rt.state().Session
			fmt.Fprintf(rt.out(), "Logged in as %s <%s>, account %s (%s plan)\n",
				s.User.Name, s.User.Email, s.Account.Slug, s.Account.Plan)
			return nil
		},
	}
	cmd.Flags().StringVarP(&form.Email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&form.Password, "password", "p", "", "password (prompted when empty)")
	return on(guard.Login, cmd)
}

func (rt *runtime) registerCmd() *cobra.Command {
	var form forms.Register
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account with you as its admin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fields := []struct {
				value  *string
				label  string
				secret bool
			}{
				{&form.Name, "name: ", false},
				{&form.Email, "email: ", false},
				{&form.AccountName, "account name: ", false},
				{&form.Password, "password: ", true},
				{&form.ConfirmPassword, "confirm password: ", true},
			}
			for _, f := range fields {
				if *f.value != "" {
					continue
				}
				read := rt.prompt.Line
				if f.secret {
					read = rt.prompt.Secret
				}
				v, err := read(f.label)
				if err != nil {
					return err
				}
				*f.value = v
			}

			reg, err := form.Validate()
			if err != nil {
				return err
			}
			if err := rt.app.Store.Register(cmd.Context(), reg); err != nil {
				return err
			}
			fmt.Fprintln(rt.out(), "Next: notes auth login --email", reg.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&form.Name, "name", "", "your name")
	cmd.Flags().StringVarP(&form.Email, "email", "e", "", "account email")
	cmd.Flags().StringVar(&form.AccountName, "account", "", "account (organization) name")
	return on(guard.Register, cmd)
}

func (rt *runtime) logoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "End the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rt.app.Store.Logout(cmd.Context())
		},
	}
	return on(guard.Dashboard, cmd)
}

func (rt *runtime) changePasswordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "change-password",
		Short: "Change your password; you will need to log in again",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var form forms.ChangePassword
			var err error
			if form.CurrentPassword, err = rt.prompt.Secret("current password: "); err != nil {
				return err
			}
			if form.NewPassword, err = rt.prompt.Secret("new password: "); err != nil {
				return err
			}
			if form.ConfirmPassword, err = rt.prompt.Secret("confirm new password: "); err != nil {
				return err
			}

			change, err := form.Validate()
			if err != nil {
				return err
			}
			return rt.app.Store.ChangePassword(cmd.Context(), change)
		},
	}
	return on(guard.ChangePassword, cmd)
}

func (rt *runtime) statusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current session",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			s := rt.state().Session
			if !s.IsAuthenticated {
				fmt.Fprintln(rt.out(), "Not logged in")
				return nil
			}
			if s.User == nil {
				fmt.Fprintln(rt.out(), "Logged in (profile unavailable)")
			} else {
				fmt.Fprintf(rt.out(), "Logged in as %s <%s> (%s)\n", s.User.Name, s.User.Email, s.User.Role)
			}
			if exp, ok := apiclient.TokenExpiry(s.Token); ok {
				fmt.Fprintf(rt.out(), "Session expires %s (in %s)\n",
					exp.Local().Format(time.DateTime), time.Until(exp).Round(time.Minute))
			}
			return nil
		},
	}
	return on(guard.Home, cmd)
}
