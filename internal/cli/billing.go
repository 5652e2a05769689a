package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/notes-client/internal/checkout"
	"github.com/magabrotheeeer/notes-client/internal/guard"
	"github.com/magabrotheeeer/notes-client/internal/models"
	"github.com/magabrotheeeer/notes-client/internal/store"
)

func (rt *runtime) billingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "billing",
		Short: "Plans, subscription and payments (admins only)",
	}
	cmd.AddCommand(rt.plansCmd(), rt.billingStatusCmd(), rt.historyCmd(), rt.upgradeCmd(), rt.cancelCmd())
	return cmd
}

func (rt *runtime) plansCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plans",
		Short: "List available plans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := rt.app.Store.FetchPlans(cmd.Context()); err != nil {
				return err
			}
			st := rt.state()

			current := ""
			if st.Session.Account != nil {
				current = st.Session.Account.Plan
			}
			rows := make([][]string, 0, len(st.Subscription.Plans))
			for _, p := range st.Subscription.Plans {
				mark := ""
				if p.ID == current {
					mark = "*"
				}
				rows = append(rows, []string{mark + p.ID, p.Name, fmt.Sprintf("%.2f/%s", p.Price, p.Interval), tags(p.Features)})
			}
			return table(rt.out(), "PLAN\tNAME\tPRICE\tFEATURES", rows)
		},
	}
	return on(guard.Subscription, cmd)
}

func (rt *runtime) billingStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current plan, subscription and recent payments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := rt.app.Store.LoadBilling(cmd.Context()); err != nil {
				return err
			}
			st := rt.state().Subscription
			w := rt.out()

			if st.Account != nil {
				fmt.Fprintf(w, "Plan: %s, %s\n", st.Account.Plan, quota(st.Account))
			}
			if sub := st.CurrentSubscription; sub != nil {
				fmt.Fprintf(w, "Subscription: %s, %s to %s\n", sub.Status, date(sub.StartDate), date(sub.EndDate))
			} else {
				fmt.Fprintln(w, "Subscription: none")
			}
			fmt.Fprintln(w)
			return paymentsTable(w, st.PaymentHistory)
		},
	}
	return on(guard.Subscription, cmd)
}

func paymentsTable(w io.Writer, payments []models.PaymentRecord) error {
	if len(payments) == 0 {
		_, err := fmt.Fprintln(w, "No payments")
		return err
	}
	rows := make([][]string, 0, len(payments))
	for _, p := range payments {
		rows = append(rows, []string{date(p.CreatedAt), p.Subscription.Plan, fmt.Sprintf("%.2f %s", p.Amount, p.Currency), p.Method, p.Status})
	}
	return table(w, "DATE\tPLAN\tAMOUNT\tMETHOD\tSTATUS", rows)
}

func (rt *runtime) historyCmd() *cobra.Command {
	var page, limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show payment history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := rt.app.Store.FetchPaymentHistory(cmd.Context(), models.PageQuery{Page: page, Limit: limit}); err != nil {
				return err
			}
			st := rt.state().Subscription
			if err := paymentsTable(rt.out(), st.PaymentHistory); err != nil {
				return err
			}
			fmt.Fprintln(rt.out(), pages(st.PaymentPagination, "payments"))
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&limit, "limit", store.BillingPageSize, "payments per page")
	return on(guard.Subscription, cmd)
}

func (rt *runtime) upgradeCmd() *cobra.Command {
	var plan string
	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Upgrade the account to a paid plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if plan == models.PlanFree {
				fmt.Fprintln(rt.out(), "The free plan needs no payment")
				return nil
			}

			gateway := rt.app.Gateway(rt.prompt.reader, rt.out())
			err := rt.app.Store.Upgrade(ctx, plan, gateway)
			if errors.Is(err, checkout.ErrDismissed) {
				rt.app.Store.ClearOrderData()
				fmt.Fprintln(rt.out(), "Payment cancelled, your plan is unchanged")
				return nil
			}
			if err != nil {
				return err
			}
			rt.app.Store.ClearOrderData()

			if err := rt.app.Store.FetchProfile(ctx); err != nil {
				return err
			}
			fmt.Fprintf(rt.out(), "Account is now on the %s plan\n", rt.state().Session.Account.Plan)
			return nil
		},
	}
	cmd.Flags().StringVar(&plan, "plan", models.PlanPro, "plan to upgrade to")
	return on(guard.Subscription, cmd)
}

func (rt *runtime) cancelCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "cancel",
		Short: "Cancel the subscription at the end of the billing period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				ok, err := rt.prompt.Confirm("Cancel the subscription?")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(rt.out(), "Subscription kept")
					return nil
				}
			}
			return rt.app.Store.Unsubscribe(cmd.Context())
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return on(guard.Subscription, cmd)
}
