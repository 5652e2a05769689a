package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/notes-client/internal/forms"
	"github.com/magabrotheeeer/notes-client/internal/guard"
	"github.com/magabrotheeeer/notes-client/internal/models"
	"github.com/magabrotheeeer/notes-client/internal/store"
)

// membersPage — сколько участников загружается для списка и проверки приглашения.
const membersPage = 50

func (rt *runtime) profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show your profile and account usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := rt.state().Session
			if s.User == nil || s.Account == nil {
				if err := rt.app.Store.FetchProfile(cmd.Context()); err != nil {
					return err
				}
				s = rt.state().Session
			}

			last := "-"
			if s.User.LastLogin != nil {
				last = s.User.LastLogin.Local().Format("2006-01-02 15:04")
			}
			return table(rt.out(), "FIELD\tVALUE", [][]string{
				{"Name", s.User.Name},
				{"Email", s.User.Email},
				{"Role", s.User.Role},
				{"Last login", last},
				{"Account", s.Account.Slug},
				{"Plan", s.Account.Plan},
				{"Usage", quota(s.Account)},
			})
		},
	}
	return on(guard.Profile, cmd)
}

func (rt *runtime) dashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Overview of your account: usage, recent notes and subscription",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := rt.app.Store.LoadDashboard(cmd.Context()); err != nil {
				return err
			}
			st := rt.state()
			w := rt.out()

			fmt.Fprintf(w, "Welcome, %s\n", st.Session.User.Name)
			fmt.Fprintf(w, "Account %s on the %s plan: %s\n", st.Session.Account.Slug, st.Session.Account.Plan, quota(st.Session.Account))
			if !store.CanCreateNote(st.Session) {
				fmt.Fprintln(w, "Note limit reached. Upgrade to Pro for unlimited notes.")
			}
			if store.IsAdmin(st.Session) {
				if sub := st.Subscription.CurrentSubscription; sub != nil {
					fmt.Fprintf(w, "Subscription %s until %s\n", sub.Status, date(sub.EndDate))
				} else {
					fmt.Fprintln(w, "No subscription")
				}
			}

			fmt.Fprintln(w)
			fmt.Fprintf(w, "Recent notes (%d total)\n", st.Notes.Pagination.Total)
			return notesTable(w, st.Notes.Notes)
		},
	}
	return on(guard.Dashboard, cmd)
}

func (rt *runtime) membersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "members",
		Short: "Manage account members (admins only)",
	}
	cmd.AddCommand(rt.membersListCmd(), rt.inviteCmd())
	return cmd
}

func (rt *runtime) membersListCmd() *cobra.Command {
	var page, limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List account members",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := rt.app.Store.FetchUsers(cmd.Context(), models.PageQuery{Page: page, Limit: limit}); err != nil {
				return err
			}
			s := rt.state().Session

			rows := make([][]string, 0, len(s.Users))
			for _, u := range s.Users {
				rows = append(rows, []string{u.Name, u.Email, u.Role, status(u.IsActive)})
			}
			if err := table(rt.out(), "NAME\tEMAIL\tROLE\tSTATUS", rows); err != nil {
				return err
			}
			fmt.Fprintf(rt.out(), "%s; %d active\n", pages(s.UsersPagination, "members"), s.AccountStats.TotalActiveUsers)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&limit, "limit", models.DefaultLimit, "members per page")
	return on(guard.Members, cmd)
}

func (rt *runtime) inviteCmd() *cobra.Command {
	var form forms.Invite
	cmd := &cobra.Command{
		Use:   "invite",
		Short: "Invite a member to the account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := rt.app.Store.FetchUsers(ctx, models.PageQuery{Page: 1, Limit: membersPage}); err != nil {
				return err
			}

			inv, err := form.Validate(rt.state().Session.Users)
			if err != nil {
				return err
			}
			if err := rt.app.Store.Invite(ctx, inv); err != nil {
				return err
			}
			return rt.app.Store.FetchUsers(ctx, models.PageQuery{Page: 1, Limit: membersPage})
		},
	}
	cmd.Flags().StringVar(&form.Name, "name", "", "member name")
	cmd.Flags().StringVarP(&form.Email, "email", "e", "", "member email")
	return on(guard.Members, cmd)
}
