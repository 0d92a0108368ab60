package auth

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/court-booking/internal/domain/user"
)

func newStore() *Store {
	return NewStore(bytes.Repeat([]byte{1}, 32), bytes.Repeat([]byte{2}, 32))
}

func withCookies(rec *httptest.ResponseRecorder, path string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestSessionRoundTrip(t *testing.T) {
	s := newStore()
	rec := httptest.NewRecorder()
	sess := NewSession("admin", user.RoleAdmin)
	require.NoError(t, s.SetSession(rec, httptest.NewRequest(http.MethodPost, "/login", nil), sess))

	got, ok := s.GetSession(withCookies(rec, "/admin"))
	require.True(t, ok)
	assert.Equal(t, sess, got)
	assert.True(t, got.IsAdmin())
}

func TestGetSession_RejectsForeignCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, newStore().SetSession(rec, httptest.NewRequest(http.MethodGet, "/", nil), NewSession("", user.RoleUser)))

	other := NewStore(bytes.Repeat([]byte{3}, 32), bytes.Repeat([]byte{4}, 32))
	_, ok := other.GetSession(withCookies(rec, "/"))
	assert.False(t, ok)
}

func TestRequireRole(t *testing.T) {
	s := newStore()
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, found := SessionFromContext(r.Context())
		assert.True(t, found)
		_, _ = w.Write([]byte(sess.Username))
	})
	h := s.RequireRole(user.RoleAdmin)(ok)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	userCookie := httptest.NewRecorder()
	require.NoError(t, s.SetSession(userCookie, httptest.NewRequest(http.MethodGet, "/", nil), NewSession("user", user.RoleUser)))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, withCookies(userCookie, "/api/stats"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	adminCookie := httptest.NewRecorder()
	require.NoError(t, s.SetSession(adminCookie, httptest.NewRequest(http.MethodGet, "/", nil), NewSession("admin", user.RoleAdmin)))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, withCookies(adminCookie, "/admin"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin", rec.Body.String())
}

func TestRequireAPIKey(t *testing.T) {
	h := RequireAPIKey("k3y")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))

	req := httptest.NewRequest(http.MethodPost, "/rpc/getBookings", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req.Header.Set("X-API-Key", "k3y")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPasswords(t *testing.T) {
	h, err := HashPassword("user123")
	require.NoError(t, err)
	assert.True(t, CheckPassword(h, "user123"))
	assert.False(t, CheckPassword(h, "user124"))
}
