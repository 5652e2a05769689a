package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/notes-client/internal/app/devserver"
)

func (rt *runtime) sandboxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sandbox",
		Short: "Local in-memory imitation of the notes API",
	}

	var (
		addr string
		seed bool
	)
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the sandbox API until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := rt.config()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				c := *cfg
				c.Sandbox.Addr = addr
				cfg = &c
			}

			srv, err := devserver.New(cfg, rt.log, seed)
			if err != nil {
				return err
			}
			fmt.Fprintf(rt.out(), "Sandbox API on http://%s/api\n", srv.Addr())
			if seed {
				fmt.Fprintf(rt.out(), "Demo login: %s / %s\n", devserver.DemoEmail, devserver.DemoPassword)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx)
		},
	}
	serve.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	serve.Flags().BoolVar(&seed, "seed", true, "create the demo account")

	cmd.AddCommand(serve)
	return cmd
}
