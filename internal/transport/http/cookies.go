package http

import (
	"errors"
	"net/http"
	"time"

	"groupauth/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidSessionCookie = errors.New("invalid session cookie")

// CookieCodec writes and reads the two cookies the service issues. The
// session cookie carries the opaque session ID inside a signed HS256 JWT and
// is HttpOnly; tampering with it fails signature verification before any
// store lookup happens. The group cookie is a plain script-readable hint the
// frontend uses to skip asking which group is signing in.
type CookieCodec struct {
	signingKey    []byte
	domain        string
	sessionCookie string
	groupCookie   string
	sessionTTL    time.Duration
}

func NewCookieCodec(signingKey, cookieDomain, sessionCookie, groupCookie string, sessionTTL time.Duration) *CookieCodec {
	return &CookieCodec{
		signingKey:    []byte(signingKey),
		domain:        cookieDomain,
		sessionCookie: sessionCookie,
		groupCookie:   groupCookie,
		sessionTTL:    sessionTTL,
	}
}

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

func (c *CookieCodec) SetSession(w http.ResponseWriter, sessionID string, expiresAt time.Time) error {
	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	signed, err := token.SignedString(c.signingKey)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     c.sessionCookie,
		Value:    signed,
		Path:     "/",
		Domain:   c.domain,
		MaxAge:   int(c.sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
	return nil
}

// ReadSessionID extracts and verifies the session ID from the request's
// session cookie.
func (c *CookieCodec) ReadSessionID(r *http.Request) (string, error) {
	cookie, err := r.Cookie(c.sessionCookie)
	if err != nil {
		return "", ErrInvalidSessionCookie
	}
	var claims sessionClaims
	_, err = jwt.ParseWithClaims(cookie.Value, &claims, func(*jwt.Token) (any, error) {
		return c.signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || claims.SessionID == "" {
		return "", ErrInvalidSessionCookie
	}
	return claims.SessionID, nil
}

func (c *CookieCodec) SetGroup(w http.ResponseWriter, groupID domain.GroupID) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.groupCookie,
		Value:    groupID.String(),
		Path:     "/",
		Domain:   c.domain,
		MaxAge:   int(c.sessionTTL.Seconds()),
		HttpOnly: false,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (c *CookieCodec) ReadGroupID(r *http.Request) (domain.GroupID, bool) {
	cookie, err := r.Cookie(c.groupCookie)
	if err != nil {
		return domain.GroupID{}, false
	}
	id, err := domain.ParseGroupID(cookie.Value)
	if err != nil {
		return domain.GroupID{}, false
	}
	return id, true
}

func (c *CookieCodec) InvalidateSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.sessionCookie,
		Value:    "",
		Path:     "/",
		Domain:   c.domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (c *CookieCodec) InvalidateGroup(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.groupCookie,
		Value:    "",
		Path:     "/",
		Domain:   c.domain,
		MaxAge:   -1,
		HttpOnly: false,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}
