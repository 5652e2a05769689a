// Package store — клиентский контейнер состояния сервиса заметок.
//
// Состояние разбито на три слайса (сессия, заметки, подписка) и меняется только
// действиями (Action), которые применяются чистыми редьюсерами под мьютексом.
// Асинхронные операции (эффекты) выполняются на горутине вызывающего: они
// отправляют pending, вызывают API и завершаются fulfilled или rejected.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/magabrotheeeer/notes-client/internal/apiclient"
	"github.com/magabrotheeeer/notes-client/internal/models"
	"github.com/magabrotheeeer/notes-client/internal/tokenstore"
)

// API — операции удалённого сервиса, которыми пользуется контейнер.
// Реализуется *apiclient.Client.
type API interface {
	Register(ctx context.Context, in models.Registration) (apiclient.Reply[apiclient.Empty], error)
	Login(ctx context.Context, in models.Credentials) (apiclient.Reply[apiclient.Token], error)
	Profile(ctx context.Context) (apiclient.Reply[apiclient.Profile], error)
	Users(ctx context.Context, q models.PageQuery) (apiclient.Reply[apiclient.UsersPage], error)
	Invite(ctx context.Context, in models.Invitation) (apiclient.Reply[apiclient.Empty], error)
	ChangePassword(ctx context.Context, in models.PasswordChange) (apiclient.Reply[apiclient.Empty], error)
	Logout(ctx context.Context) (apiclient.Reply[apiclient.Empty], error)

	CreateNote(ctx context.Context, in models.NoteInput) (apiclient.Reply[apiclient.Empty], error)
	Notes(ctx context.Context, q models.NotesQuery) (apiclient.Reply[apiclient.NotesPage], error)
	Note(ctx context.Context, id string) (apiclient.Reply[apiclient.NoteData], error)
	UpdateNote(ctx context.Context, id string, in models.NoteInput) (apiclient.Reply[apiclient.NoteUpdate], error)
	DeleteNote(ctx context.Context, id string) (apiclient.Reply[apiclient.Empty], error)

	Plans(ctx context.Context) (apiclient.Reply[apiclient.Plans], error)
	Subscription(ctx context.Context) (apiclient.Reply[models.BillingSnapshot], error)
	CreateOrder(ctx context.Context, slug string, in models.OrderRequest) (apiclient.Reply[models.PendingOrder], error)
	VerifyPayment(ctx context.Context, in models.PaymentVerification) (apiclient.Reply[models.BillingSnapshot], error)
	Payments(ctx context.Context, q models.PageQuery) (apiclient.Reply[apiclient.PaymentsPage], error)
	CancelSubscription(ctx context.Context) (apiclient.Reply[models.BillingSnapshot], error)
}

// Notifier показывает пользователю короткие уведомления о результате мутаций.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// State — полное состояние клиента. Значения, полученные из Store.State,
// нельзя изменять: они разделяют память с контейнером.
type State struct {
	Session      SessionState
	Notes        NotesState
	Subscription SubscriptionState
}

// Reduce применяет действие ко всем слайсам.
func Reduce(s State, a Action) State {
	s.Session = reduceSession(s.Session, a)
	s.Notes = reduceNotes(s.Notes, a)
	s.Subscription = reduceSubscription(s.Subscription, a)
	return s
}

// Listener получает состояние после применения действия a.
type Listener func(s State, a Action)

// Store — контейнер состояния. Безопасен для конкурентного использования.
type Store struct {
	api      API
	tokens   tokenstore.Store
	notifier Notifier
	log      *slog.Logger
	now      func() time.Time

	seq atomic.Uint64

	mu        sync.Mutex
	state     State
	listeners map[uint64]Listener
	nextSub   uint64

	// очередь оповещений; delivering — оповещение уже идёт
	pending    []event
	delivering bool
}

type event struct {
	state  State
	action Action
}

// New создаёт контейнер; сессия восстанавливается из хранилища токена.
func New(ctx context.Context, api API, tokens tokenstore.Store, notifier Notifier, log *slog.Logger) (*Store, error) {
	const op = "store.New"

	token, err := tokens.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Store{
		api:      api,
		tokens:   tokens,
		notifier: notifier,
		log:      log.With(slog.String("component", "store")),
		now:      time.Now,
		state: State{
			Session:      InitialSession(token),
			Notes:        InitialNotes(),
			Subscription: InitialSubscription(),
		},
		listeners: make(map[uint64]Listener),
	}, nil
}

// State возвращает текущий снимок состояния.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch применяет действие и оповещает подписчиков.
//
// Подписчики получают состояния строго в порядке применения действий: их
// вызывает одна горутина, пока очередь не опустеет. Если оповещение уже идёт
// на другой горутине, Dispatch ставит событие в очередь и возвращается сразу.
// Подписчики вызываются вне блокировки и могут сами вызывать Dispatch.
func (s *Store) Dispatch(a Action) {
	s.log.Debug("action dispatched", slog.String("action", a.String()))

	s.mu.Lock()
	s.state = Reduce(s.state, a)
	s.pending = append(s.pending, event{state: s.state, action: a})
	if s.delivering {
		s.mu.Unlock()
		return
	}
	s.delivering = true

	for len(s.pending) > 0 {
		ev := s.pending[0]
		s.pending = s.pending[1:]
		listeners := make([]Listener, 0, len(s.listeners))
		for _, l := range s.listeners {
			listeners = append(listeners, l)
		}
		s.mu.Unlock()

		for _, l := range listeners {
			l(ev.state, ev.action)
		}

		s.mu.Lock()
	}
	s.delivering = false
	s.mu.Unlock()
}

// Subscribe регистрирует подписчика и возвращает функцию отписки.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = l
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// ClearSessionError сбрасывает ошибку слайса сессии.
func (s *Store) ClearSessionError() { s.Dispatch(Action{Type: TypeAuthClearError}) }

// SetCredentials напрямую задаёт пользователя и аккаунт сессии.
func (s *Store) SetCredentials(u models.User, acc models.Account) {
	s.Dispatch(Action{Type: TypeSetCredentials, Payload: Credentials{User: u, Account: acc}})
}

// ClearNotesError сбрасывает ошибку слайса заметок.
func (s *Store) ClearNotesError() { s.Dispatch(Action{Type: TypeNotesClearError}) }

// SetFilters частично обновляет фильтры списка заметок.
func (s *Store) SetFilters(p models.FiltersPatch) {
	s.Dispatch(Action{Type: TypeSetFilters, Payload: p})
}

// SetPagination частично обновляет пагинацию списка заметок.
func (s *Store) SetPagination(p models.PaginationPatch) {
	s.Dispatch(Action{Type: TypeSetPagination, Payload: p})
}

// ClearSelectedNote сбрасывает выбранную заметку.
func (s *Store) ClearSelectedNote() { s.Dispatch(Action{Type: TypeClearSelectedNote}) }

// ClearSubscriptionError сбрасывает ошибку слайса подписки.
func (s *Store) ClearSubscriptionError() { s.Dispatch(Action{Type: TypeSubscriptionClearError}) }

// ClearOrderData забывает незавершённый заказ.
func (s *Store) ClearOrderData() { s.Dispatch(Action{Type: TypeClearOrderData}) }
