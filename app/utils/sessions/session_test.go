package sessions_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Rakhulsr/go-storefront/app/utils/sessions"
	"github.com/gorilla/securecookie"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore() *sessions.CookieSessionStore {
	return sessions.NewCookieSessionStore(false, securecookie.GenerateRandomKey(64), securecookie.GenerateRandomKey(32))
}

func TestSetAndGetUserID(t *testing.T) {
	store := newStore()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/user/login/", nil)
	require.NoError(t, store.SetUserID(rec, req, "user-42"))

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	next := httptest.NewRequest(http.MethodGet, "/user/me/", nil)
	for _, c := range cookies {
		next.AddCookie(c)
	}
	assert.Equal(t, "user-42", store.GetUserID(next))
}

func TestGetUserIDWithoutCookie(t *testing.T) {
	store := newStore()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "", store.GetUserID(req))
}

func TestCookieFromOtherKeysIsIgnored(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/user/login/", nil)
	require.NoError(t, newStore().SetUserID(rec, req, "user-42"))

	next := httptest.NewRequest(http.MethodGet, "/user/me/", nil)
	for _, c := range rec.Result().Cookies() {
		next.AddCookie(c)
	}
	assert.Equal(t, "", newStore().GetUserID(next))
}

func TestClearSessionExpiresCookie(t *testing.T) {
	store := newStore()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/user/logout/", nil)
	require.NoError(t, store.ClearSession(rec, req))

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.True(t, cookies[0].MaxAge < 0)
}
