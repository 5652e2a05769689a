package store

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/notes-client/internal/apiclient"
	"github.com/magabrotheeeer/notes-client/internal/models"
	"github.com/magabrotheeeer/notes-client/internal/tokenstore"
)

// MockAPI - мок для API
type MockAPI struct {
	mock.Mock
}

func reply[T any](args mock.Arguments) (apiclient.Reply[T], error) {
	r, _ := args.Get(0).(apiclient.Reply[T])
	return r, args.Error(1)
}

func (m *MockAPI) Register(ctx context.Context, in models.Registration) (apiclient.Reply[apiclient.Empty], error) {
	return reply[apiclient.Empty](m.Called(ctx, in))
}

func (m *MockAPI) Login(ctx context.Context, in models.Credentials) (apiclient.Reply[apiclient.Token], error) {
	return reply[apiclient.Token](m.Called(ctx, in))
}

func (m *MockAPI) Profile(ctx context.Context) (apiclient.Reply[apiclient.Profile], error) {
	return reply[apiclient.Profile](m.Called(ctx))
}

func (m *MockAPI) Users(ctx context.Context, q models.PageQuery) (apiclient.Reply[apiclient.UsersPage], error) {
	return reply[apiclient.UsersPage](m.Called(ctx, q))
}

func (m *MockAPI) Invite(ctx context.Context, in models.Invitation) (apiclient.Reply[apiclient.Empty], error) {
	return reply[apiclient.Empty](m.Called(ctx, in))
}

func (m *MockAPI) ChangePassword(ctx context.Context, in models.PasswordChange) (apiclient.Reply[apiclient.Empty], error) {
	return reply[apiclient.Empty](m.Called(ctx, in))
}

func (m *MockAPI) Logout(ctx context.Context) (apiclient.Reply[apiclient.Empty], error) {
	return reply[apiclient.Empty](m.Called(ctx))
}

func (m *MockAPI) CreateNote(ctx context.Context, in models.NoteInput) (apiclient.Reply[apiclient.Empty], error) {
	return reply[apiclient.Empty](m.Called(ctx, in))
}

func (m *MockAPI) Notes(ctx context.Context, q models.NotesQuery) (apiclient.Reply[apiclient.NotesPage], error) {
	return reply[apiclient.NotesPage](m.Called(ctx, q))
}

func (m *MockAPI) Note(ctx context.Context, id string) (apiclient.Reply[apiclient.NoteData], error) {
	return reply[apiclient.NoteData](m.Called(ctx, id))
}

func (m *MockAPI) UpdateNote(ctx context.Context, id string, in models.NoteInput) (apiclient.Reply[apiclient.NoteUpdate], error) {
	return reply[apiclient.NoteUpdate](m.Called(ctx, id, in))
}

func (m *MockAPI) DeleteNote(ctx context.Context, id string) (apiclient.Reply[apiclient.Empty], error) {
	return reply[apiclient.Empty](m.Called(ctx, id))
}

func (m *MockAPI) Plans(ctx context.Context) (apiclient.Reply[apiclient.Plans], error) {
	return reply[apiclient.Plans](m.Called(ctx))
}

func (m *MockAPI) Subscription(ctx context.Context) (apiclient.Reply[models.BillingSnapshot], error) {
	return reply[models.BillingSnapshot](m.Called(ctx))
}

func (m *MockAPI) CreateOrder(ctx context.Context, slug string, in models.OrderRequest) (apiclient.Reply[models.PendingOrder], error) {
	return reply[models.PendingOrder](m.Called(ctx, slug, in))
}

func (m *MockAPI) VerifyPayment(ctx context.Context, in models.PaymentVerification) (apiclient.Reply[models.BillingSnapshot], error) {
	return reply[models.BillingSnapshot](m.Called(ctx, in))
}

func (m *MockAPI) Payments(ctx context.Context, q models.PageQuery) (apiclient.Reply[apiclient.PaymentsPage], error) {
	return reply[apiclient.PaymentsPage](m.Called(ctx, q))
}

func (m *MockAPI) CancelSubscription(ctx context.Context) (apiclient.Reply[models.BillingSnapshot], error) {
	return reply[models.BillingSnapshot](m.Called(ctx))
}

// Убеждаемся, что MockAPI и *apiclient.Client реализуют интерфейс API
var (
	_ API = (*MockAPI)(nil)
	_ API = (*apiclient.Client)(nil)
)

// toasts записывает уведомления.
type toasts struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (t *toasts) Success(msg string) {
	t.mu.Lock()
	t.successes = append(t.successes, msg)
	t.mu.Unlock()
}

func (t *toasts) Error(msg string) {
	t.mu.Lock()
	t.errors = append(t.errors, msg)
	t.mu.Unlock()
}

func (t *toasts) lastSuccess() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.successes) == 0 {
		return ""
	}
	return t.successes[len(t.successes)-1]
}

func (t *toasts) lastError() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.errors) == 0 {
		return ""
	}
	return t.errors[len(t.errors)-1]
}

// fakeCheckout подписывает заказ заданной функцией.
type fakeCheckout struct {
	sign func(order models.PendingOrder) (models.PaymentVerification, error)
}

func (f fakeCheckout) Open(_ context.Context, order models.PendingOrder) (models.PaymentVerification, error) {
	return f.sign(order)
}

// brokenTokens - хранилище токена, которое не может сохранить значение
type brokenTokens struct {
	tokenstore.Memory
	err error
}

func (b *brokenTokens) Save(context.Context, string) error { return b.err }
