package middlewares

import (
	"net/http"
	"strings"

	"github.com/Rakhulsr/go-storefront/app/helpers"
	"github.com/Rakhulsr/go-storefront/app/repositories"
	"github.com/Rakhulsr/go-storefront/app/utils/logger"
	"github.com/Rakhulsr/go-storefront/app/utils/sessions"
	"github.com/Rakhulsr/go-storefront/app/utils/token"
	"github.com/unrolled/render"
)

// Authenticate resolves the caller from a bearer token or, failing that, the
// session cookie. Anonymous requests pass through without a user.
func Authenticate(userRepo repositories.UserRepositoryImpl, store sessions.SessionStore, tokens *token.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := ""
			if raw := bearerToken(r); raw != "" && tokens != nil {
				claims, err := tokens.Parse(raw)
				if err != nil {
					logger.FromCtx(r.Context()).Debug("Authenticate: rejecting bearer token", "error", err)
				} else {
					userID = claims.UserID
				}
			}
			if userID == "" && store != nil {
				userID = store.GetUserID(r)
			}
			if userID == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := userRepo.FindByID(r.Context(), userID)
			if err != nil {
				logger.FromCtx(r.Context()).Error("Authenticate: failed to load user", "user_id", userID, "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if user == nil || !user.IsActive {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(helpers.WithUser(r.Context(), user)))
		})
	}
}

// bearerToken accepts "Bearer <jwt>" and the "Token <jwt>" form.
func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	for _, prefix := range []string{"Bearer ", "Token "} {
		if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
			return strings.TrimSpace(h[len(prefix):])
		}
	}
	return ""
}

func RequireAuth(rnd *render.Render) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if helpers.GetUserFromContext(r.Context()) == nil {
				_ = rnd.JSON(w, http.StatusUnauthorized, map[string]string{
					"detail": "Authentication credentials were not provided.",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminAuthMiddleware lets staff users through: 401 for anonymous callers and
// 403 for everyone else.
func AdminAuthMiddleware(rnd *render.Render) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := helpers.GetUserFromContext(r.Context())
			if user == nil {
				_ = rnd.JSON(w, http.StatusUnauthorized, map[string]string{
					"detail": "Authentication credentials were not provided.",
				})
				return
			}
			if !user.IsStaff {
				logger.FromCtx(r.Context()).Warn("AdminAuthMiddleware: non-staff user denied", "user_id", user.ID)
				_ = rnd.JSON(w, http.StatusForbidden, map[string]string{
					"detail": "You do not have permission to perform this action.",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
