package http

import (
	"context"
	"errors"
	"net/http"

	"groupauth/internal/domain"
	"groupauth/internal/service"
)

type ctxKey string

const (
	ctxKeyGroup   ctxKey = "group"
	ctxKeySession ctxKey = "session"
)

// RequireSession resolves the session cookie and rejects the request with
// 401 when it is absent, tampered with, or expired. Rejection also clears
// both cookies so the client does not retry with a dead session.
func RequireSession(codec *CookieCodec, sessions service.SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID, err := codec.ReadSessionID(r)
			if err != nil {
				unauthenticated(w, codec)
				return
			}
			group, sess, err := sessions.Resolve(r.Context(), sessionID)
			if err != nil {
				if errors.Is(err, domain.ErrSessionNotFound) {
					unauthenticated(w, codec)
					return
				}
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyGroup, group)
			ctx = context.WithValue(ctx, ctxKeySession, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthenticated(w http.ResponseWriter, codec *CookieCodec) {
	codec.InvalidateSession(w)
	codec.InvalidateGroup(w)
	writeError(w, http.StatusUnauthorized, "unauthenticated")
}

func GroupFromContext(ctx context.Context) (*domain.Group, bool) {
	g, ok := ctx.Value(ctxKeyGroup).(*domain.Group)
	return g, ok
}

func SessionFromContext(ctx context.Context) (*domain.Session, bool) {
	s, ok := ctx.Value(ctxKeySession).(*domain.Session)
	return s, ok
}
