package sessions

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
)

const (
	sessionCookieName = "storefront-session"

	userIDSessionKey = "userID"
)

type SessionStore interface {
	GetUserID(r *http.Request) string
	SetUserID(w http.ResponseWriter, r *http.Request, userID string) error
	ClearSession(w http.ResponseWriter, r *http.Request) error
}

type CookieSessionStore struct {
	store *sessions.CookieStore
}

// NewCookieSessionStore takes gorilla key pairs: an authentication key
// optionally followed by an encryption key.
func NewCookieSessionStore(secure bool, keyPairs ...[]byte) *CookieSessionStore {
	store := sessions.NewCookieStore(keyPairs...)

	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(30 * 24 * time.Hour / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &CookieSessionStore{store: store}
}

// getSession never fails: a cookie that does not decode (rotated keys,
// tampering) yields a fresh session.
func (c *CookieSessionStore) getSession(r *http.Request) *sessions.Session {
	session, err := c.store.Get(r, sessionCookieName)
	if err != nil {
		slog.Debug("discarding undecodable session cookie", "error", err)
	}
	return session
}

func (c *CookieSessionStore) GetUserID(r *http.Request) string {
	session := c.getSession(r)
	if session == nil {
		return ""
	}
	userID, ok := session.Values[userIDSessionKey].(string)
	if !ok {
		return ""
	}
	return userID
}

func (c *CookieSessionStore) SetUserID(w http.ResponseWriter, r *http.Request, userID string) error {
	session := c.getSession(r)
	session.Values[userIDSessionKey] = userID
	return session.Save(r, w)
}

func (c *CookieSessionStore) ClearSession(w http.ResponseWriter, r *http.Request) error {
	session := c.getSession(r)
	session.Values = make(map[interface{}]interface{})
	session.Options.MaxAge = -1
	return session.Save(r, w)
}
