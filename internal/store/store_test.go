package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/notes-client/internal/apiclient"
	"github.com/magabrotheeeer/notes-client/internal/config"
	"github.com/magabrotheeeer/notes-client/internal/lib/sl"
	"github.com/magabrotheeeer/notes-client/internal/models"
	"github.com/magabrotheeeer/notes-client/internal/sandbox"
	"github.com/magabrotheeeer/notes-client/internal/tokenstore"
)

const (
	adminEmail    = "ann@acme.test"
	adminPassword = "secret1"
)

type env struct {
	store  *Store
	sb     *sandbox.Server
	tokens *tokenstore.Memory
	toasts *toasts
	slug   string
}

func newEnv(t *testing.T, token string) env {
	t.Helper()
	sb := sandbox.New(sl.Discard())
	ts := httptest.NewServer(sb.Handler())
	t.Cleanup(ts.Close)

	slug, err := sb.Seed("Ann", adminEmail, adminPassword, "Acme")
	require.NoError(t, err)

	tokens := tokenstore.NewMemory(token)
	client := apiclient.New(config.API{BaseURL: ts.URL, Timeout: 5 * time.Second}, tokens, sl.Discard(),
		apiclient.WithRegisterer(prometheus.NewRegistry()))

	n := &toasts{}
	st, err := New(context.Background(), client, tokens, n, sl.Discard())
	require.NoError(t, err)

	return env{store: st, sb: sb, tokens: tokens, toasts: n, slug: slug}
}

func (e env) login(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, e.store.Login(ctx, models.Credentials{Email: adminEmail, Password: adminPassword}))
	require.NoError(t, e.store.FetchProfile(ctx))
}

func (e env) upgrade(t *testing.T) {
	t.Helper()
	require.NoError(t, e.store.Upgrade(context.Background(), models.PlanPro, e.signer()))
}

func (e env) signer() Checkout {
	return fakeCheckout{sign: func(order models.PendingOrder) (models.PaymentVerification, error) {
		gatewayID := "pay_" + order.OrderID
		return models.PaymentVerification{
			OrderID:   order.OrderID,
			PaymentID: gatewayID,
			Signature: e.sb.Sign(order.OrderID, gatewayID),
		}, nil
	}}
}

func (e env) storedToken(t *testing.T) string {
	t.Helper()
	tok, err := e.tokens.Load(context.Background())
	require.NoError(t, err)
	return tok
}

func TestLogin_DoesNotLoadProfile(t *testing.T) {
	e := newEnv(t, "")

	err := e.store.Login(context.Background(), models.Credentials{Email: adminEmail, Password: adminPassword})
	require.NoError(t, err)

	s := e.store.State().Session
	assert.True(t, s.IsAuthenticated)
	assert.NotEmpty(t, s.Token)
	assert.Equal(t, s.Token, e.storedToken(t))
	assert.Nil(t, s.User)
	assert.Nil(t, s.Account)
	assert.False(t, s.IsLoading)
	assert.Equal(t, "Login successful", e.toasts.lastSuccess())

	require.NoError(t, e.store.FetchProfile(context.Background()))
	s = e.store.State().Session
	require.NotNil(t, s.User)
	require.NotNil(t, s.Account)
	assert.Equal(t, adminEmail, s.User.Email)
	assert.Equal(t, e.slug, s.Account.Slug)
}

func TestLogin_WrongPassword(t *testing.T) {
	e := newEnv(t, "")

	err := e.store.Login(context.Background(), models.Credentials{Email: adminEmail, Password: "nope"})

	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, "Invalid email or password", f.Message)
	s := e.store.State().Session
	assert.False(t, s.IsAuthenticated)
	assert.Equal(t, "Invalid email or password", s.Error)
	assert.Equal(t, "Invalid email or password", e.toasts.lastError())
	assert.Empty(t, e.storedToken(t))
}

func TestRegister_DoesNotAuthenticate(t *testing.T) {
	e := newEnv(t, "")
	ctx := context.Background()

	err := e.store.Register(ctx, models.Registration{Name: "Bob", Email: "bob@beta.test", Password: "secret2", AccountName: "Beta"})
	require.NoError(t, err)
	assert.False(t, e.store.State().Session.IsAuthenticated)
	assert.Equal(t, "Registration successful. Please log in.", e.toasts.lastSuccess())

	err = e.store.Register(ctx, models.Registration{Name: "Bob", Email: "bob@beta.test", Password: "secret2", AccountName: "Beta 2"})
	require.Error(t, err)
	assert.Equal(t, "User with this email already exists", e.store.State().Session.Error)

	require.NoError(t, e.store.Login(ctx, models.Credentials{Email: "bob@beta.test", Password: "secret2"}))
}

func TestLogout(t *testing.T) {
	tests := []struct {
		name      string
		fail      bool
		wantToast string
	}{
		{name: "server acknowledges", wantToast: "Logged out successfully"},
		{name: "server fails", fail: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t, "")
			e.login(t)
			if tt.fail {
				e.sb.FailNext(http.MethodPost, "/auth/logout", http.StatusInternalServerError, "")
			}

			require.NoError(t, e.store.Logout(context.Background()))

			s := e.store.State().Session
			assert.False(t, s.IsAuthenticated)
			assert.Empty(t, s.Token)
			assert.Nil(t, s.User)
			assert.Nil(t, s.Account)
			assert.Empty(t, e.storedToken(t))
			assert.Equal(t, tt.wantToast, e.toasts.lastSuccess())
		})
	}
}

func TestChangePassword_TearsDownSession(t *testing.T) {
	e := newEnv(t, "")
	e.login(t)
	ctx := context.Background()

	err := e.store.ChangePassword(ctx, models.PasswordChange{CurrentPassword: "wrong", NewPassword: "secret9"})
	require.Error(t, err)
	assert.True(t, e.store.State().Session.IsAuthenticated)
	assert.Equal(t, "Current password is incorrect", e.store.State().Session.Error)

	require.NoError(t, e.store.ChangePassword(ctx, models.PasswordChange{CurrentPassword: adminPassword, NewPassword: "secret9"}))

	s := e.store.State().Session
	assert.Nil(t, s.User)
	assert.Nil(t, s.Account)
	assert.Empty(t, s.Token)
	assert.False(t, s.IsAuthenticated)
	assert.Empty(t, e.storedToken(t))

	require.Error(t, e.store.Login(ctx, models.Credentials{Email: adminEmail, Password: adminPassword}))
	require.NoError(t, e.store.Login(ctx, models.Credentials{Email: adminEmail, Password: "secret9"}))
}

func TestUnauthorized_ClearsSession(t *testing.T) {
	e := newEnv(t, "")
	e.login(t)
	ctx := context.Background()
	e.sb.FailNext(http.MethodGet, "/notes", http.StatusUnauthorized, "Invalid or expired token")

	err := e.store.FetchNotes(ctx, models.NotesQuery{Page: 1, Limit: 10})

	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	s := e.store.State()
	assert.False(t, s.Session.IsAuthenticated)
	assert.Nil(t, s.Session.User)
	assert.Equal(t, "Invalid or expired token", s.Notes.Error)
	assert.Empty(t, e.storedToken(t))

	_ = e.store.FetchProfile(ctx)
	reqs := e.sb.Requests()
	assert.Empty(t, reqs[len(reqs)-1].Authorization)
}

func TestNotes_PaginationScenario(t *testing.T) {
	e := newEnv(t, "")
	e.login(t)
	e.upgrade(t)
	ctx := context.Background()

	for i := range 25 {
		require.NoError(t, e.store.CreateNote(ctx, models.NoteInput{
			Title:       fmt.Sprintf("note %d", i),
			Description: "body",
		}))
	}
	assert.Empty(t, e.store.State().Notes.Notes, "create must not insert locally")

	require.NoError(t, e.store.FetchNotes(ctx, models.NotesQuery{Page: 1, Limit: 10}))

	s := e.store.State().Notes
	assert.Len(t, s.Notes, 10)
	assert.Equal(t, models.Pagination{Page: 1, Limit: 10, Total: 25, Pages: 3}, s.Pagination)

	e.store.SetPagination(models.PaginationPatch{Page: intp(3)})
	require.NoError(t, e.store.ReloadNotes(ctx))
	s = e.store.State().Notes
	assert.Len(t, s.Notes, 5)
	assert.Equal(t, 3, s.Pagination.Page)
}

func TestNotes_FreeLimit(t *testing.T) {
	e := newEnv(t, "")
	e.login(t)
	ctx := context.Background()

	for i := range sandbox.FreeNoteLimit {
		require.NoError(t, e.store.CreateNote(ctx, models.NoteInput{Title: fmt.Sprint(i), Description: "d"}))
	}
	err := e.store.CreateNote(ctx, models.NoteInput{Title: "one more", Description: "d"})

	require.Error(t, err)
	msg := "Note limit reached. Upgrade to Pro for unlimited notes."
	assert.Equal(t, msg, err.Error())
	assert.Equal(t, msg, e.toasts.lastError())

	require.NoError(t, e.store.FetchProfile(ctx))
	assert.False(t, CanCreateNote(e.store.State().Session))
}

func TestNotes_UpdateKeepsAbsentFields(t *testing.T) {
	e := newEnv(t, "")
	e.login(t)
	ctx := context.Background()

	require.NoError(t, e.store.CreateNote(ctx, models.NoteInput{Title: "groceries", Description: "milk", Tags: []string{"home", " home", "errand"}}))
	require.NoError(t, e.store.FetchNotes(ctx, models.NotesQuery{Page: 1, Limit: 10}))
	id := e.store.State().Notes.Notes[0].ID
	require.NoError(t, e.store.FetchNote(ctx, id))

	require.NoError(t, e.store.UpdateNote(ctx, id, models.NoteInput{Title: "shopping"}))

	s := e.store.State().Notes
	for _, n := range []models.Note{s.Notes[0], *s.SelectedNote} {
		assert.Equal(t, "shopping", n.Title)
		assert.Equal(t, "milk", n.Description)
		assert.Equal(t, []string{"home", "errand"}, n.Tags)
		assert.Equal(t, "Ann", n.Author.Name)
	}
	assert.Equal(t, "Note updated successfully", e.toasts.lastSuccess())
	assert.Equal(t, []string{"home", "errand"}, AvailableTags(s.Notes))
}

func TestNotes_DeleteTwice(t *testing.T) {
	e := newEnv(t, "")
	e.login(t)
	ctx := context.Background()

	for _, title := range []string{"a", "b"} {
		require.NoError(t, e.store.CreateNote(ctx, models.NoteInput{Title: title, Description: "d"}))
	}
	require.NoError(t, e.store.FetchNotes(ctx, models.NotesQuery{Page: 1, Limit: 10}))
	id := e.store.State().Notes.Notes[0].ID
	require.NoError(t, e.store.FetchNote(ctx, id))

	require.NoError(t, e.store.DeleteNote(ctx, id))
	s := e.store.State().Notes
	assert.Len(t, s.Notes, 1)
	assert.Nil(t, s.SelectedNote)
	assert.Equal(t, "Note deleted successfully", e.toasts.lastSuccess())

	err := e.store.DeleteNote(ctx, id)
	require.Error(t, err)
	assert.Equal(t, "Note not found", e.store.State().Notes.Error)
	assert.Len(t, e.store.State().Notes.Notes, 1)
}

func TestNotes_FiltersDoNotFetch(t *testing.T) {
	e := newEnv(t, "")
	e.login(t)
	before := len(e.sb.Requests())

	e.store.SetFilters(models.FiltersPatch{Search: strp("milk"), Tags: strp("home")})
	e.store.SetPagination(models.PaginationPatch{Limit: intp(5)})

	assert.Len(t, e.sb.Requests(), before)
	s := e.store.State().Notes
	assert.Equal(t, models.Filters{Search: "milk", Tags: "home"}, s.Filters)
	assert.Equal(t, 5, s.Pagination.Limit)
}

func TestNotes_SupersededListIsDropped(t *testing.T) {
	e := newEnv(t, "")
	e.login(t)
	ctx := context.Background()
	for _, title := range []string{"alpha", "beta"} {
		require.NoError(t, e.store.CreateNote(ctx, models.NoteInput{Title: title, Description: "d"}))
	}

	arrived, release := e.sb.Hold(http.MethodGet, "/notes")
	t.Cleanup(release)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = e.store.FetchNotes(ctx, models.NotesQuery{Page: 1, Limit: 10, Search: "alpha"})
	}()
	<-arrived

	require.NoError(t, e.store.FetchNotes(ctx, models.NotesQuery{Page: 1, Limit: 10, Search: "beta"}))
	assert.True(t, e.store.State().Notes.IsLoading)

	release()
	wg.Wait()

	s := e.store.State().Notes
	require.Len(t, s.Notes, 1)
	assert.Equal(t, "beta", s.Notes[0].Title)
	assert.False(t, s.IsLoading)
}

func TestBilling_MismatchedSignature(t *testing.T) {
	e := newEnv(t, "")
	e.login(t)
	ctx := context.Background()
	require.NoError(t, e.store.FetchSubscription(ctx))

	order, err := e.store.CreateOrder(ctx, e.slug, models.OrderRequest{PaymentMethod: PaymentMethod})
	require.NoError(t, err)

	err = e.store.VerifyPayment(ctx, models.PaymentVerification{
		OrderID:   order.OrderID,
		PaymentID: "pay_1",
		Signature: "forged",
		Payment:   order.PaymentID,
	})
	require.Error(t, err)

	s := e.store.State()
	require.NotNil(t, s.Subscription.OrderData)
	assert.Equal(t, order, *s.Subscription.OrderData)
	assert.Equal(t, models.PlanFree, s.Subscription.Account.Plan)
	assert.Equal(t, models.PlanFree, s.Session.Account.Plan)
	assert.Equal(t, "Invalid payment signature", s.Subscription.Error)
	assert.Equal(t, "Invalid payment signature", e.toasts.lastError())
}

func TestBilling_UpgradeAndCancel(t *testing.T) {
	e := newEnv(t, "")
	e.login(t)
	ctx := context.Background()

	e.upgrade(t)

	s := e.store.State().Subscription
	assert.Nil(t, s.OrderData)
	require.NotNil(t, s.Account)
	assert.Equal(t, models.PlanPro, s.Account.Plan)
	assert.True(t, s.Account.Unlimited())
	assert.Equal(t, models.SubscriptionActive, s.CurrentSubscription.Status)
	assert.Equal(t, models.PlanFree, e.store.State().Session.Account.Plan, "session copy is refreshed separately")

	end := s.CurrentSubscription.EndDate
	require.NoError(t, e.store.Unsubscribe(ctx))

	s = e.store.State().Subscription
	assert.Equal(t, models.SubscriptionCancelled, s.CurrentSubscription.Status)
	assert.True(t, end.Equal(s.CurrentSubscription.EndDate))
	assert.Equal(t, models.PlanPro, s.Account.Plan)

	err := e.store.CancelSubscription(ctx)
	require.Error(t, err)
	assert.Equal(t, "No active subscription to cancel", e.toasts.lastError())
}

func TestBilling_UpgradeNoop(t *testing.T) {
	e := newEnv(t, "")
	ctx := context.Background()

	require.NoError(t, e.store.Upgrade(ctx, models.PlanPro, e.signer()), "no account in session")
	e.login(t)
	before := len(e.sb.Requests())
	require.NoError(t, e.store.Upgrade(ctx, models.PlanFree, e.signer()))

	assert.Len(t, e.sb.Requests(), before)
}

func TestBilling_CheckoutDismissedKeepsOrder(t *testing.T) {
	e := newEnv(t, "")
	e.login(t)
	dismissed := errors.New("checkout dismissed")

	err := e.store.Upgrade(context.Background(), models.PlanPro, fakeCheckout{
		sign: func(models.PendingOrder) (models.PaymentVerification, error) {
			return models.PaymentVerification{}, dismissed
		},
	})

	require.ErrorIs(t, err, dismissed)
	require.NotNil(t, e.store.State().Subscription.OrderData)

	e.store.ClearOrderData()
	assert.Nil(t, e.store.State().Subscription.OrderData)
}

func TestLoadBilling(t *testing.T) {
	e := newEnv(t, "")
	e.login(t)
	e.upgrade(t)

	require.NoError(t, e.store.LoadBilling(context.Background()))

	s := e.store.State().Subscription
	assert.Len(t, s.Plans, 2)
	assert.NotNil(t, s.CurrentSubscription)
	require.Len(t, s.PaymentHistory, 1)
	assert.Equal(t, float64(sandbox.ProPrice), s.PaymentHistory[0].Amount)
	assert.Equal(t, 1, s.PaymentPagination.Pages)
	assert.False(t, s.IsLoading)
}

func TestLoadDashboard(t *testing.T) {
	e := newEnv(t, "")
	e.login(t)
	ctx := context.Background()
	require.NoError(t, e.store.CreateNote(ctx, models.NoteInput{Title: "t", Description: "d"}))

	require.NoError(t, e.store.LoadDashboard(ctx))

	s := e.store.State()
	assert.Len(t, s.Notes.Notes, 1)
	assert.Equal(t, DashboardNotes, s.Notes.Pagination.Limit)
	assert.NotNil(t, s.Subscription.Account)
	assert.Equal(t, 1, s.Session.Account.NoteCount)
}

func TestLoadDashboard_AdminWithoutLoadedProfile(t *testing.T) {
	e := newEnv(t, "")
	ctx := context.Background()
	require.NoError(t, e.store.Login(ctx, models.Credentials{Email: adminEmail, Password: adminPassword}))
	require.Nil(t, e.store.State().Session.User)

	require.NoError(t, e.store.LoadDashboard(ctx))

	s := e.store.State()
	assert.True(t, IsAdmin(s.Session))
	assert.NotNil(t, s.Subscription.Account)
	var fetched bool
	for _, r := range e.sb.Requests() {
		fetched = fetched || r.Path == "/subscription"
	}
	assert.True(t, fetched)
}

func TestLoadDashboard_MemberSkipsSubscription(t *testing.T) {
	e := newEnv(t, "")
	e.login(t)
	ctx := context.Background()
	require.NoError(t, e.store.Invite(ctx, models.Invitation{Name: "Max", Email: "max@acme.test"}))
	require.NoError(t, e.sb.SetPassword("max@acme.test", "secret3"))
	require.NoError(t, e.store.Logout(ctx))
	require.NoError(t, e.store.Login(ctx, models.Credentials{Email: "max@acme.test", Password: "secret3"}))
	require.NoError(t, e.store.FetchProfile(ctx))

	require.NoError(t, e.store.LoadDashboard(ctx))

	for _, r := range e.sb.Requests() {
		assert.NotEqual(t, "/subscription", r.Path)
	}
	assert.False(t, IsAdmin(e.store.State().Session))
}

func TestMembers(t *testing.T) {
	e := newEnv(t, "")
	e.login(t)
	ctx := context.Background()

	require.NoError(t, e.store.Invite(ctx, models.Invitation{Name: "Max", Email: "max@acme.test"}))
	assert.Equal(t, "Invitation sent to max@acme.test", e.toasts.lastSuccess())
	assert.Empty(t, e.store.State().Session.Users, "invite must not touch the member list")

	require.Error(t, e.store.Invite(ctx, models.Invitation{Name: "Ann", Email: adminEmail}))
	assert.Equal(t, "User with this email already exists", e.toasts.lastError())

	require.NoError(t, e.store.FetchUsers(ctx, models.PageQuery{Page: 1, Limit: 10}))
	s := e.store.State().Session
	assert.Len(t, s.Users, 2)
	assert.Equal(t, models.MemberStats{TotalUsers: 2, TotalActiveUsers: 1}, s.AccountStats)
	assert.Equal(t, 1, s.UsersPagination.Pages)
}

func TestBootstrap(t *testing.T) {
	t.Run("no token", func(t *testing.T) {
		e := newEnv(t, "")
		require.NoError(t, e.store.Bootstrap(context.Background()))
		assert.Empty(t, e.sb.Requests())
	})

	t.Run("valid token loads profile", func(t *testing.T) {
		e := newEnv(t, "")
		tok, err := e.sb.IssueToken(adminEmail)
		require.NoError(t, err)
		require.NoError(t, e.tokens.Save(context.Background(), tok))
		st, err := New(context.Background(), e.store.api, e.tokens, e.toasts, sl.Discard())
		require.NoError(t, err)

		require.NoError(t, st.Bootstrap(context.Background()))

		s := st.State().Session
		assert.True(t, s.IsAuthenticated)
		require.NotNil(t, s.User)
		assert.Equal(t, adminEmail, s.User.Email)
	})

	t.Run("expired token is forgotten locally", func(t *testing.T) {
		e := newEnv(t, "")
		e.sb.SetClock(func() time.Time { return time.Now().Add(-48 * time.Hour) })
		tok, err := e.sb.IssueToken(adminEmail)
		require.NoError(t, err)
		require.NoError(t, e.tokens.Save(context.Background(), tok))
		st, err := New(context.Background(), e.store.api, e.tokens, e.toasts, sl.Discard())
		require.NoError(t, err)
		require.True(t, st.State().Session.IsAuthenticated)

		require.NoError(t, st.Bootstrap(context.Background()))

		assert.False(t, st.State().Session.IsAuthenticated)
		assert.Empty(t, e.storedToken(t))
		assert.Empty(t, e.sb.Requests())
	})
}

func TestSubscribe_ObservesPendingBeforeSettlement(t *testing.T) {
	e := newEnv(t, "")

	var (
		mu     sync.Mutex
		phases []Phase
	)
	unsubscribe := e.store.Subscribe(func(s State, a Action) {
		if a.Type != TypeLogin {
			return
		}
		mu.Lock()
		phases = append(phases, a.Phase)
		mu.Unlock()
		if a.Phase == PhasePending {
			assert.True(t, s.Session.IsLoading)
		}
	})

	require.NoError(t, e.store.Login(context.Background(), models.Credentials{Email: adminEmail, Password: adminPassword}))
	unsubscribe()
	require.NoError(t, e.store.Logout(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []Phase{PhasePending, PhaseFulfilled}, phases)
}

func TestSubscribe_DeliversInDispatchOrder(t *testing.T) {
	st, _, _, _ := newMocked(t, "")

	var (
		mu        sync.Mutex
		delivered []State
		actions   []ActionType
	)
	entered := make(chan struct{})
	release := make(chan struct{})
	st.Subscribe(func(s State, a Action) {
		if a.Type == TypeSetFilters {
			close(entered)
			<-release
		}
		mu.Lock()
		delivered = append(delivered, s)
		actions = append(actions, a.Type)
		mu.Unlock()
	})

	search := "plan"
	done := make(chan struct{})
	go func() {
		defer close(done)
		st.SetFilters(models.FiltersPatch{Search: &search})
	}()
	<-entered

	limit := 50
	st.SetPagination(models.PaginationPatch{Limit: &limit})
	st.ClearSelectedNote()
	close(release)
	<-done

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []ActionType{TypeSetFilters, TypeSetPagination, TypeClearSelectedNote}, actions)
	last := delivered[len(delivered)-1]
	assert.Equal(t, 50, last.Notes.Pagination.Limit)
	assert.Equal(t, st.State(), last)
}

func TestSubscribe_LastDeliveredMatchesStateUnderLoad(t *testing.T) {
	st, _, _, _ := newMocked(t, "")

	var (
		mu   sync.Mutex
		last State
	)
	st.Subscribe(func(s State, _ Action) {
		mu.Lock()
		last = s
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func(limit int) {
			defer wg.Done()
			st.SetPagination(models.PaginationPatch{Limit: &limit})
			st.ClearNotesError()
		}(i)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, st.State(), last)
}
