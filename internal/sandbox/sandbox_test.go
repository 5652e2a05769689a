package sandbox

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/notes-client/internal/lib/sl"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Acme", "acme"},
		{"spaces", "Acme Corp", "acme-corp"},
		{"punctuation", "  R&D, Inc. ", "r-d-inc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slugify(tt.in))
		})
	}
}

func TestPaginate(t *testing.T) {
	items := make([]int, 25)
	for i := range items {
		items[i] = i
	}

	page, p := paginate(items, 3, 10)
	assert.Equal(t, []int{20, 21, 22, 23, 24}, page)
	assert.Equal(t, 3, p.Pages)
	assert.Equal(t, 25, p.Total)

	page, p = paginate(items, 9, 10)
	assert.Equal(t, 3, p.Page)
	assert.Len(t, page, 5)

	page, p = paginate([]int{}, 1, 10)
	assert.Empty(t, page)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 0, p.Pages)
}

func TestSeed_Conflicts(t *testing.T) {
	s := New(sl.Discard())

	_, err := s.Seed("Ann", "ann@acme.test", "secret1", "Acme")
	require.NoError(t, err)

	_, err = s.Seed("Ann", "ANN@acme.test", "secret1", "Other")
	require.ErrorIs(t, err, errConflict)
	assert.EqualError(t, err, "User with this email already exists")

	_, err = s.Seed("Bob", "bob@acme.test", "secret1", "acme")
	assert.EqualError(t, err, "Account name is already taken")
}

func TestAuthenticate_RejectsMissingToken(t *testing.T) {
	s := New(sl.Discard())

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notes", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "No token provided")
}

func TestRegister_ValidationMessage(t *testing.T) {
	s := New(sl.Discard())

	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"name":"Ann","email":"ann@acme.test","password":"123","accountName":"Acme"}`)
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/register", body))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "field Password is too short")
}

func TestFailNext_AppliesOnce(t *testing.T) {
	s := New(sl.Discard())
	s.FailNext(http.MethodGet, "/subscription/plans", http.StatusServiceUnavailable, "")

	for _, want := range []int{http.StatusServiceUnavailable, http.StatusUnauthorized} {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/subscription/plans", nil))
		assert.Equal(t, want, rec.Code)
	}
	assert.Len(t, s.Requests(), 2)
}
