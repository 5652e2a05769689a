// Package client собирает клиентское приложение: хранилище токена, HTTP-адаптер,
// контейнер состояния и платёжный шлюз.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/magabrotheeeer/notes-client/internal/apiclient"
	"github.com/magabrotheeeer/notes-client/internal/checkout"
	"github.com/magabrotheeeer/notes-client/internal/config"
	"github.com/magabrotheeeer/notes-client/internal/store"
	"github.com/magabrotheeeer/notes-client/internal/tokenstore"
)

// Deps — внешние зависимости приложения. Пустые поля заполняются по конфигу.
type Deps struct {
	Tokens    tokenstore.Store
	Notifier  store.Notifier
	Navigator apiclient.Navigator
	Registry  *prometheus.Registry
}

type App struct {
	Config   *config.Config
	Log      *slog.Logger
	Tokens   tokenstore.Store
	API      *apiclient.Client
	Store    *store.Store
	Registry *prometheus.Registry

	closers []io.Closer
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, deps Deps) (*App, error) {
	const op = "app.client.New"

	a := &App{Config: cfg, Log: logger, Tokens: deps.Tokens, Registry: deps.Registry}

	if a.Tokens == nil {
		tokens, err := tokenstore.New(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if c, ok := tokens.(io.Closer); ok {
			a.closers = append(a.closers, c)
		}
		a.Tokens = tokens
	}
	if a.Registry == nil {
		a.Registry = prometheus.NewRegistry()
	}

	opts := []apiclient.Option{apiclient.WithRegisterer(a.Registry)}
	if deps.Navigator != nil {
		opts = append(opts, apiclient.WithNavigator(deps.Navigator))
	}
	a.API = apiclient.New(cfg.API, a.Tokens, logger, opts...)

	st, err := store.New(ctx, a.API, a.Tokens, deps.Notifier, logger)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a.Store = st

	logger.Debug("client app initialized",
		slog.String("api", cfg.BaseURL),
		slog.String("session_backend", cfg.Backend),
	)
	return a, nil
}

// Gateway возвращает платёжный шлюз по конфигу.
func (a *App) Gateway(in io.Reader, out io.Writer) store.Checkout {
	if a.Config.Gateway == config.GatewaySimulated {
		return checkout.Simulated{Secret: []byte(a.Config.Secret)}
	}
	return checkout.NewTerminal(in, out)
}

// Close освобождает ресурсы приложения.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
