// Package sandbox — in-memory имитация REST API сервиса заметок для тестов клиента.
//
// Это не продуктовый сервер: данные живут в памяти, проверки упрощены. Пакет даёт
// тестам настоящий HTTP-контракт (конверт {message, data}, bearer JWT, 401, пагинация,
// подпись платежа) и хуки для внедрения сбоев и удержания запросов.
package sandbox

import (
	"crypto/hmac"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/notes-client/internal/checkout"
	"github.com/magabrotheeeer/notes-client/internal/models"
)

// Константы песочницы.
const (
	FreeNoteLimit = 3
	ProPrice      = 499
	Currency      = "INR"
	KeyID         = "rzp_test_sandbox"
	tokenTTL      = 24 * time.Hour
)

type user struct {
	models.User
	accountID    string
	passwordHash string
}

type account struct {
	models.Account
	subscription *models.Subscription
}

type note struct {
	models.Note
	accountID string
}

type payment struct {
	models.PaymentRecord
	accountID string
	orderID   string
}

type fault struct {
	status  int
	message string
}

type gate struct {
	arrived chan struct{}
	release chan struct{}
}

// Recorded — запись о полученном запросе.
type Recorded struct {
	Method        string
	Path          string
	Authorization string
}

// Server — имитация API.
type Server struct {
	mu sync.Mutex

	log           *slog.Logger
	validate      *validator.Validate
	router        chi.Router
	jwtSecret     []byte
	gatewaySecret []byte
	now           func() time.Time

	users    map[string]*user
	accounts map[string]*account
	notes    []*note
	payments []*payment
	revoked  map[string]struct{}

	faults   map[string]fault
	gates    map[string]*gate
	recorded []Recorded
}

// Option настраивает Server.
type Option func(*Server)

// WithGatewaySecret задаёт секрет, которым шлюз подписывает платежи.
func WithGatewaySecret(secret []byte) Option {
	return func(s *Server) { s.gatewaySecret = secret }
}

// New создаёт песочницу с пустыми данными.
func New(log *slog.Logger, opts ...Option) *Server {
	s := &Server{
		log:           log,
		validate:      validator.New(),
		jwtSecret:     []byte("sandbox-jwt-secret"),
		gatewaySecret: []byte("sandbox-gateway-secret"),
		now:           time.Now,
		users:         make(map[string]*user),
		accounts:      make(map[string]*account),
		revoked:       make(map[string]struct{}),
		faults:        make(map[string]fault),
		gates:         make(map[string]*gate),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// Handler возвращает HTTP-обработчик песочницы.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer, s.hooks)

	r.Post("/auth/register", s.register)
	r.Post("/auth/login", s.login)

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)
		r.Get("/auth/profile", s.profile)
		r.Post("/auth/change-password", s.changePassword)
		r.Post("/auth/logout", s.logout)

		r.Post("/notes", s.createNote)
		r.Get("/notes", s.listNotes)
		r.Get("/notes/{id}", s.getNote)
		r.Put("/notes/{id}", s.updateNote)
		r.Delete("/notes/{id}", s.deleteNote)

		r.Get("/subscription/plans", s.plans)

		r.Group(func(r chi.Router) {
			r.Use(adminOnly)
			r.Get("/auth/users", s.listUsers)
			r.Post("/auth/invite", s.invite)
			r.Get("/subscription", s.subscription)
			r.Post("/subscription/tenants/{slug}/upgrade", s.createOrder)
			r.Post("/subscription/verify-payment", s.verifyPayment)
			r.Get("/subscription/payments", s.listPayments)
			r.Post("/subscription/cancel", s.cancel)
		})
	})
	return r
}

// hooks записывает запрос, применяет внедрённые сбои и удержания.
func (s *Server) hooks(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path

		s.mu.Lock()
		s.recorded = append(s.recorded, Recorded{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
		})
		f, failing := s.faults[key]
		delete(s.faults, key)
		g := s.gates[key]
		delete(s.gates, key)
		s.mu.Unlock()

		if g != nil {
			close(g.arrived)
			select {
			case <-g.release:
			case <-r.Context().Done():
				return
			}
		}
		if failing {
			fail(w, r, f.status, f.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// FailNext заставляет следующий запрос method path завершиться статусом status.
// Пустой message означает ответ без сообщения.
func (s *Server) FailNext(method, path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[method+" "+path] = fault{status: status, message: message}
}

// Hold задерживает следующий запрос method path. Канал arrived закрывается, когда запрос
// дошёл до сервера; release отпускает его.
func (s *Server) Hold(method, path string) (arrived <-chan struct{}, release func()) {
	g := &gate{arrived: make(chan struct{}), release: make(chan struct{})}
	s.mu.Lock()
	s.gates[method+" "+path] = g
	s.mu.Unlock()
	var once sync.Once
	return g.arrived, func() { once.Do(func() { close(g.release) }) }
}

// Requests возвращает копию журнала запросов.
func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Recorded(nil), s.recorded...)
}

// Sign вычисляет подпись шлюза для пары заказ/платёж.
func (s *Server) Sign(orderID, gatewayPaymentID string) string {
	return checkout.Sign(s.gatewaySecret, orderID, gatewayPaymentID)
}

func (s *Server) validSignature(orderID, gatewayPaymentID, signature string) bool {
	expected := s.Sign(orderID, gatewayPaymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}
