package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"fabr-admin/internal/constants"
	"fabr-admin/internal/domain"

	"github.com/rs/zerolog"
)

const sessionKey contextKey = "session"

// Authenticator resolves a session token.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Session, error)
}

// RequireSession rejects requests without a valid session cookie. Paths in
// public, or under a public prefix ending in "/", pass through; they still
// get the session in context when one is present.
func RequireSession(auth Authenticator, public ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			open := isPublic(r.URL.Path, public)
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			session, err := sessionFromRequest(r, auth)
			if err == nil {
				next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
				return
			}
			if open {
				next.ServeHTTP(w, r)
				return
			}

			if !errors.Is(err, http.ErrNoCookie) {
				zerolog.Ctx(r.Context()).Debug().Err(err).Str("path", r.URL.Path).Msg("session rejected")
			}
			writeError(w, http.StatusUnauthorized, "unauthenticated", "Sessão expirada. Faça login novamente.")
		})
	}
}

func sessionFromRequest(r *http.Request, auth Authenticator) (*domain.Session, error) {
	cookie, err := r.Cookie(constants.SessionCookieName)
	if err != nil {
		return nil, err
	}
	return auth.Authenticate(r.Context(), cookie.Value)
}

func isPublic(path string, public []string) bool {
	for _, p := range public {
		if path == p || (strings.HasSuffix(p, "/") && strings.HasPrefix(path, p)) {
			return true
		}
	}
	return false
}

func WithSession(ctx context.Context, s *domain.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFrom returns the session stored by RequireSession, or nil.
func SessionFrom(ctx context.Context) *domain.Session {
	s, _ := ctx.Value(sessionKey).(*domain.Session)
	return s
}
