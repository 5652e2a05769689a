// Package cli — терминальный клиент сервиса заметок на cobra.
//
// Каждая команда привязана к разделу guard: перед запуском команда поднимает
// приложение, восстанавливает сессию из хранилища токена и проверяет доступ.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/notes-client/internal/apiclient"
	"github.com/magabrotheeeer/notes-client/internal/app/client"
	"github.com/magabrotheeeer/notes-client/internal/config"
	"github.com/magabrotheeeer/notes-client/internal/guard"
	"github.com/magabrotheeeer/notes-client/internal/lib/sl"
	"github.com/magabrotheeeer/notes-client/internal/notify"
	"github.com/magabrotheeeer/notes-client/internal/store"
	"github.com/magabrotheeeer/notes-client/internal/tokenstore"
)

const surfaceKey = "surface"

// Options задаёт окружение запуска. Пустые поля заполняются значениями процесса.
type Options struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer

	// Config, если задан, используется вместо файла из --config.
	Config *config.Config
	// Tokens, если задан, заменяет хранилище токена из конфига.
	Tokens   tokenstore.Store
	Registry *prometheus.Registry
}

type runtime struct {
	opts   Options
	prompt *prompter

	configPath string
	metrics    bool
	verbose    bool

	cfg *config.Config
	log *slog.Logger
	app *client.App
}

// Run выполняет командную строку args.
func Run(ctx context.Context, args []string, opts Options) error {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}

	rt := &runtime{opts: opts, prompt: newPrompter(opts.In, opts.Out)}
	root := rt.root()
	root.SetArgs(args)
	root.SetIn(opts.In)
	root.SetOut(opts.Out)
	root.SetErr(opts.Err)

	err := root.ExecuteContext(ctx)

	if rt.app != nil {
		if rt.metrics {
			if mErr := dumpMetrics(opts.Err, rt.app.Registry); mErr != nil {
				rt.log.Warn("failed to write metrics", sl.Err(mErr))
			}
		}
		if cErr := rt.app.Close(); cErr != nil {
			rt.log.Warn("failed to close app", sl.Err(cErr))
		}
	}
	return err
}

func (rt *runtime) root() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "notes",
		Short:         "Notes - multi-tenant notes client",
		Long:          `notes is a terminal client for the multi-tenant notes service: notes, members and billing of your account.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			surface, ok := cmd.Annotations[surfaceKey]
			if !ok {
				return nil
			}
			if err := rt.open(cmd.Context()); err != nil {
				return err
			}
			return guard.Require(guard.Surface(surface), rt.app.Store.State().Session)
		},
	}

	cmd.PersistentFlags().StringVarP(&rt.configPath, "config", "c", os.Getenv("CONFIG_PATH"), "path to the YAML config")
	cmd.PersistentFlags().BoolVar(&rt.metrics, "metrics", false, "print client metrics to stderr on exit")
	cmd.PersistentFlags().BoolVarP(&rt.verbose, "verbose", "v", false, "write logs to stderr")

	cmd.AddCommand(
		rt.authCmd(),
		rt.profileCmd(),
		rt.dashboardCmd(),
		rt.notesCmd(),
		rt.membersCmd(),
		rt.billingCmd(),
		rt.sandboxCmd(),
	)
	return cmd
}

// on привязывает команду к разделу.
func on(surface guard.Surface, cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[surfaceKey] = string(surface)
	return cmd
}

func (rt *runtime) config() (*config.Config, error) {
	if rt.cfg != nil {
		return rt.cfg, nil
	}
	cfg := rt.opts.Config
	if cfg == nil {
		var err error
		if cfg, err = config.Load(rt.configPath); err != nil {
			return nil, err
		}
	}
	rt.cfg = cfg

	if rt.verbose {
		rt.log = sl.New(cfg.Env, rt.opts.Err)
	} else {
		rt.log = sl.Discard()
	}
	return cfg, nil
}

// open поднимает приложение и восстанавливает сессию.
func (rt *runtime) open(ctx context.Context) error {
	cfg, err := rt.config()
	if err != nil {
		return err
	}
	rt.log.Debug("config loaded", slog.String("config", cfg.String()))

	var notifier store.Notifier = notify.NewConsole(rt.opts.Out)
	if rt.verbose {
		notifier = notify.Multi{notify.NewConsole(rt.opts.Out), notify.NewLog(rt.log)}
	}

	app, err := client.New(ctx, cfg, rt.log, client.Deps{
		Tokens:   rt.opts.Tokens,
		Notifier: notifier,
		Navigator: apiclient.NavigatorFunc(func() {
			fmt.Fprintln(rt.opts.Err, "Session expired. Please log in again: notes auth login")
		}),
		Registry: rt.opts.Registry,
	})
	if err != nil {
		return err
	}
	rt.app = app

	if err := app.Store.Bootstrap(ctx); err != nil && !store.IsUnauthorized(err) {
		rt.log.Warn("could not restore session", sl.Err(err))
	}
	return nil
}

func (rt *runtime) state() store.State {
	return rt.app.Store.State()
}

func (rt *runtime) out() io.Writer {
	return rt.opts.Out
}

func dumpMetrics(w io.Writer, g prometheus.Gatherer) error {
	mfs, err := g.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	var errs []error
	for _, mf := range mfs {
		errs = append(errs, enc.Encode(mf))
	}
	return errors.Join(errs...)
}
