package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Rakhulsr/go-storefront/app/helpers"
	"github.com/Rakhulsr/go-storefront/app/middlewares"
	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/utils/renderer"
	"github.com/stretchr/testify/assert"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func TestRequestIDEchoesOrMints(t *testing.T) {
	var seen string
	h := middlewares.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = helpers.GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middlewares.RequestIDHeader, "abc-123")
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get(middlewares.RequestIDHeader))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.NotEqual(t, "abc-123", seen)
}

func TestRecoveryReturns500(t *testing.T) {
	h := middlewares.Recovery(renderer.New(false))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal Server Error")
}

func TestAdminAuthMiddleware(t *testing.T) {
	h := middlewares.AdminAuthMiddleware(renderer.New(false))(ok)

	cases := []struct {
		name string
		user *models.User
		want int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"customer", &models.User{ID: "u1"}, http.StatusForbidden},
		{"staff", &models.User{ID: "u2", IsStaff: true}, http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin-user/orders/", nil)
			if tc.user != nil {
				req = req.WithContext(helpers.WithUser(req.Context(), tc.user))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestRequireAuth(t *testing.T) {
	h := middlewares.RequireAuth(renderer.New(false))(ok)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/store/cart-items/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/store/cart-items/", nil)
	req = req.WithContext(helpers.WithUser(req.Context(), &models.User{ID: "u1"}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
