// Package apiclient реализует HTTP-адаптер к удалённому REST API сервиса заметок.
//
// Адаптер добавляет к каждому запросу bearer-токен из хранилища сессии,
// разбирает конверт ответа {message, data} и превращает любые сбои в *Error.
// При ответе 401 он очищает хранилище токена и отправляет пользователя
// на границу входа через Navigator, после чего всё равно возвращает ошибку.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/notes-client/internal/config"
	"github.com/magabrotheeeer/notes-client/internal/lib/sl"
	"github.com/magabrotheeeer/notes-client/internal/tokenstore"
)

const maxBodySize = 4 << 20

// Navigator выполняет «жёсткий» переход на границу входа.
type Navigator interface {
	ToLogin()
}

// NavigatorFunc позволяет использовать функцию как Navigator.
type NavigatorFunc func()

// ToLogin вызывает f.
func (f NavigatorFunc) ToLogin() { f() }

// Client — HTTP-адаптер. Безопасен для конкурентного использования.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     tokenstore.Store
	limiter    *rate.Limiter
	navigator  Navigator
	log        *slog.Logger
	metrics    *metrics
}

// Option настраивает Client.
type Option func(*Client)

// WithHTTPClient подменяет *http.Client (например, на клиент httptest-сервера).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithNavigator задаёт действие при потере авторизации.
func WithNavigator(n Navigator) Option {
	return func(c *Client) { c.navigator = n }
}

// WithRegisterer регистрирует метрики клиента в reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *Client) { c.metrics.register(reg) }
}

// New создаёт адаптер по настройкам API.
func New(cfg config.API, tokens tokenstore.Store, log *slog.Logger, opts ...Option) *Client {
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		tokens:     tokens,
		limiter:    rate.NewLimiter(limit, burst),
		navigator:  NavigatorFunc(func() {}),
		log:        log,
		metrics:    newMetrics(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type request struct {
	method    string
	path      string
	route     string
	body      any
	query     url.Values
	anonymous bool
}

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Send выполняет произвольный запрос к API и раскладывает поле data ответа в out (если out != nil).
// Возвращает поле message ответа.
func (c *Client) Send(ctx context.Context, method, path string, body any, query url.Values, out any) (string, error) {
	return c.do(ctx, request{method: method, path: path, route: path, body: body, query: query}, out)
}

func (c *Client) do(ctx context.Context, r request, out any) (string, error) {
	const op = "apiclient.do"
	reqID := uuid.NewString()
	log := c.log.With(
		slog.String("op", op),
		slog.String("request_id", reqID),
		slog.String("method", r.method),
		slog.String("path", r.route),
	)

	if err := c.limiter.Wait(ctx); err != nil {
		return "", &Error{Kind: KindNetwork, Message: msgNetwork, Err: err}
	}

	req, err := c.newRequest(ctx, r, reqID, log)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.observe(r.method, r.route, "error", time.Since(start))
		log.Warn("request failed", sl.Err(err))
		return "", &Error{Kind: KindNetwork, Message: msgNetwork, Err: err}
	}
	defer resp.Body.Close()
	c.metrics.observe(r.method, r.route, fmt.Sprint(resp.StatusCode), time.Since(start))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", &Error{Kind: KindNetwork, Status: resp.StatusCode, Message: msgNetwork, Err: err}
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode == http.StatusUnauthorized {
		log.Warn("unauthorized, clearing session")
		if err := c.tokens.Clear(ctx); err != nil {
			log.Error("failed to clear token", sl.Err(err))
		}
		c.navigator.ToLogin()
		return "", failure(KindUnauthorized, resp.StatusCode, env.Message, msgUnauthorized)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Info("request rejected", slog.Int("status", resp.StatusCode), slog.String("message", env.Message))
		return "", failure(KindRequest, resp.StatusCode, env.Message, statusMessage(resp.StatusCode))
	}

	log.Debug("request succeeded", slog.Int("status", resp.StatusCode))
	if len(raw) == 0 || out == nil {
		return env.Message, nil
	}
	if decodeErr != nil {
		return "", &Error{Kind: KindDecode, Status: resp.StatusCode, Message: msgDecode, Err: decodeErr}
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return env.Message, nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return "", &Error{Kind: KindDecode, Status: resp.StatusCode, Message: msgDecode, Err: err}
	}
	return env.Message, nil
}

func (c *Client) newRequest(ctx context.Context, r request, reqID string, log *slog.Logger) (*http.Request, error) {
	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	var body io.Reader = http.NoBody
	if r.body != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(r.body); err != nil {
			return nil, err
		}
		body = &buf
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)

	if r.anonymous {
		return req, nil
	}
	token, err := c.tokens.Load(ctx)
	if err != nil {
		log.Warn("failed to load token, sending without credentials", sl.Err(err))
		return req, nil
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func failure(kind Kind, status int, serverMsg, fallback string) *Error {
	if serverMsg != "" {
		return &Error{Kind: kind, Status: status, Message: serverMsg, FromServer: true}
	}
	return &Error{Kind: kind, Status: status, Message: fallback}
}

// IsNetwork сообщает, что сервер не был достигнут.
func IsNetwork(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindNetwork
}
