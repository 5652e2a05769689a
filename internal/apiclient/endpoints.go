package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/magabrotheeeer/notes-client/internal/models"
)

// Reply — успешный ответ API: сообщение сервера и типизированные данные.
type Reply[T any] struct {
	Message string
	Data    T
}

func call[T any](ctx context.Context, c *Client, r request) (Reply[T], error) {
	var data T
	msg, err := c.do(ctx, r, &data)
	if err != nil {
		return Reply[T]{}, err
	}
	return Reply[T]{Message: msg, Data: data}, nil
}

// Empty — данные ответа, которые клиенту не нужны.
type Empty struct{}

// Token — данные ответа на вход.
type Token struct {
	Token string `json:"token"`
}

// Profile — профиль текущего пользователя вместе с его аккаунтом.
type Profile struct {
	User    *models.User    `json:"user"`
	Account *models.Account `json:"account"`
}

// UsersPage — страница участников аккаунта.
type UsersPage struct {
	Users      []models.User      `json:"users"`
	Pagination models.Pagination  `json:"pagination"`
	Stats      models.MemberStats `json:"stats"`
}

// NotesPage — страница заметок.
type NotesPage struct {
	Notes      []models.Note     `json:"notes"`
	Pagination models.Pagination `json:"pagination"`
}

// NoteData — данные ответа с одной заметкой.
type NoteData struct {
	Note models.Note `json:"note"`
}

// NoteUpdate — частичная заметка из ответа на обновление. Сервер может вернуть
// поля как напрямую, так и внутри ключа "note".
type NoteUpdate struct {
	models.NotePatch
}

// UnmarshalJSON разбирает оба варианта ответа на обновление.
func (u *NoteUpdate) UnmarshalJSON(b []byte) error {
	var wrapped struct {
		Note *models.NotePatch `json:"note"`
	}
	if err := json.Unmarshal(b, &wrapped); err != nil {
		return err
	}
	if wrapped.Note != nil {
		u.NotePatch = *wrapped.Note
		return nil
	}
	return json.Unmarshal(b, &u.NotePatch)
}

// Plans — каталог тарифов.
type Plans struct {
	Plans []models.Plan `json:"plans"`
}

// PaymentsPage — страница истории платежей.
type PaymentsPage struct {
	Payments   []models.PaymentRecord `json:"payments"`
	Pagination models.Pagination      `json:"pagination"`
}

func pageValues(q models.PageQuery) url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

// Register создаёт ожидающего пользователя. Не аутентифицирует.
func (c *Client) Register(ctx context.Context, in models.Registration) (Reply[Empty], error) {
	return call[Empty](ctx, c, request{method: http.MethodPost, path: "/auth/register", route: "/auth/register", body: in, anonymous: true})
}

// Login обменивает учётные данные на токен.
func (c *Client) Login(ctx context.Context, in models.Credentials) (Reply[Token], error) {
	return call[Token](ctx, c, request{method: http.MethodPost, path: "/auth/login", route: "/auth/login", body: in, anonymous: true})
}

// Profile возвращает пользователя и его аккаунт.
func (c *Client) Profile(ctx context.Context) (Reply[Profile], error) {
	return call[Profile](ctx, c, request{method: http.MethodGet, path: "/auth/profile", route: "/auth/profile"})
}

// Users возвращает страницу участников аккаунта со статистикой.
func (c *Client) Users(ctx context.Context, q models.PageQuery) (Reply[UsersPage], error) {
	return call[UsersPage](ctx, c, request{method: http.MethodGet, path: "/auth/users", route: "/auth/users", query: pageValues(q)})
}

// Invite приглашает участника по имени и email.
func (c *Client) Invite(ctx context.Context, in models.Invitation) (Reply[Empty], error) {
	return call[Empty](ctx, c, request{method: http.MethodPost, path: "/auth/invite", route: "/auth/invite", body: in})
}

// ChangePassword меняет пароль текущего пользователя.
func (c *Client) ChangePassword(ctx context.Context, in models.PasswordChange) (Reply[Empty], error) {
	return call[Empty](ctx, c, request{method: http.MethodPost, path: "/auth/change-password", route: "/auth/change-password", body: in})
}

// Logout завершает сессию на сервере.
func (c *Client) Logout(ctx context.Context) (Reply[Empty], error) {
	return call[Empty](ctx, c, request{method: http.MethodPost, path: "/auth/logout", route: "/auth/logout"})
}

// CreateNote создаёт заметку.
func (c *Client) CreateNote(ctx context.Context, in models.NoteInput) (Reply[Empty], error) {
	return call[Empty](ctx, c, request{method: http.MethodPost, path: "/notes", route: "/notes", body: in})
}

// Notes возвращает отфильтрованную страницу заметок.
func (c *Client) Notes(ctx context.Context, q models.NotesQuery) (Reply[NotesPage], error) {
	v := pageValues(models.PageQuery{Page: q.Page, Limit: q.Limit})
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Tags != "" {
		v.Set("tags", q.Tags)
	}
	return call[NotesPage](ctx, c, request{method: http.MethodGet, path: "/notes", route: "/notes", query: v})
}

// Note возвращает заметку по id.
func (c *Client) Note(ctx context.Context, id string) (Reply[NoteData], error) {
	return call[NoteData](ctx, c, request{method: http.MethodGet, path: "/notes/" + url.PathEscape(id), route: "/notes/:id"})
}

// UpdateNote частично обновляет заметку и возвращает изменённые поля.
func (c *Client) UpdateNote(ctx context.Context, id string, in models.NoteInput) (Reply[NoteUpdate], error) {
	return call[NoteUpdate](ctx, c, request{method: http.MethodPut, path: "/notes/" + url.PathEscape(id), route: "/notes/:id", body: in})
}

// DeleteNote удаляет заметку.
func (c *Client) DeleteNote(ctx context.Context, id string) (Reply[Empty], error) {
	return call[Empty](ctx, c, request{method: http.MethodDelete, path: "/notes/" + url.PathEscape(id), route: "/notes/:id"})
}

// Plans возвращает каталог тарифов.
func (c *Client) Plans(ctx context.Context) (Reply[Plans], error) {
	return call[Plans](ctx, c, request{method: http.MethodGet, path: "/subscription/plans", route: "/subscription/plans"})
}

// Subscription возвращает текущую подписку и аккаунт.
func (c *Client) Subscription(ctx context.Context) (Reply[models.BillingSnapshot], error) {
	return call[models.BillingSnapshot](ctx, c, request{method: http.MethodGet, path: "/subscription", route: "/subscription"})
}

// CreateOrder создаёт платёжный заказ на повышение тарифа аккаунта slug.
func (c *Client) CreateOrder(ctx context.Context, slug string, in models.OrderRequest) (Reply[models.PendingOrder], error) {
	path := "/subscription/tenants/" + url.PathEscape(slug) + "/upgrade"
	return call[models.PendingOrder](ctx, c, request{method: http.MethodPost, path: path, route: "/subscription/tenants/:slug/upgrade", body: in})
}

// VerifyPayment подтверждает подпись шлюза и возвращает новый снимок подписки.
func (c *Client) VerifyPayment(ctx context.Context, in models.PaymentVerification) (Reply[models.BillingSnapshot], error) {
	return call[models.BillingSnapshot](ctx, c, request{method: http.MethodPost, path: "/subscription/verify-payment", route: "/subscription/verify-payment", body: in})
}

// Payments возвращает страницу истории платежей.
func (c *Client) Payments(ctx context.Context, q models.PageQuery) (Reply[PaymentsPage], error) {
	return call[PaymentsPage](ctx, c, request{method: http.MethodGet, path: "/subscription/payments", route: "/subscription/payments", query: pageValues(q)})
}

// CancelSubscription отменяет подписку; доступ сохраняется до даты окончания.
func (c *Client) CancelSubscription(ctx context.Context) (Reply[models.BillingSnapshot], error) {
	return call[models.BillingSnapshot](ctx, c, request{method: http.MethodPost, path: "/subscription/cancel", route: "/subscription/cancel"})
}
