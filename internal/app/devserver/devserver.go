// Package devserver запускает имитацию API сервиса заметок как HTTP-сервер
// для локальной разработки клиента.
package devserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/magabrotheeeer/notes-client/internal/config"
	"github.com/magabrotheeeer/notes-client/internal/sandbox"
)

// Демо-аккаунт, создаваемый с WithDemo.
const (
	DemoEmail    = "demo@notes.test"
	DemoPassword = "demo123"
)

type App struct {
	server   *http.Server
	listener net.Listener
	logger   *slog.Logger
}

func New(cfg *config.Config, logger *slog.Logger, seedDemo bool) (*App, error) {
	var opts []sandbox.Option
	if cfg.Secret != "" {
		opts = append(opts, sandbox.WithGatewaySecret([]byte(cfg.Secret)))
	}
	sb := sandbox.New(logger, opts...)
	if seedDemo {
		if _, err := sb.Seed("Demo Admin", DemoEmail, DemoPassword, "Demo"); err != nil {
			return nil, err
		}
	}

	reg := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "notes_sandbox",
		Name:      "http_requests_total",
		Help:      "Requests served by the sandbox API.",
	}, []string{"method", "code"})
	reg.MustRegister(requests)

	router := chi.NewRouter()
	router.Use(middleware.RequestID, middleware.Logger, middleware.Recoverer)
	router.With(func(next http.Handler) http.Handler {
		return promhttp.InstrumentHandlerCounter(requests, next)
	}).Mount("/api", sb.Handler())
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	lis, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return nil, err
	}

	return &App{
		server: &http.Server{
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
		listener: lis,
		logger:   logger,
	}, nil
}

// Addr возвращает адрес, на котором слушает сервер.
func (a *App) Addr() string {
	return a.listener.Addr().String()
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("sandbox API listening on", slog.String("address", a.Addr()))
		err := a.server.Serve(a.listener)
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down sandbox API gracefully")
		return a.server.Shutdown(timeoutCtx)
	}
}
