package http

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"groupauth/internal/observability/metrics"

	"github.com/google/uuid"
)

func TestMain(m *testing.M) {
	metrics.MustRegister("transport-test")
	os.Exit(m.Run())
}

func newTestCodec() *CookieCodec {
	return NewCookieCodec("test-signing-key", "", "session", "group", time.Hour)
}

func setCookieNamed(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q was not set", name)
	return nil
}

func TestSessionCookieRoundTrip(t *testing.T) {
	codec := newTestCodec()
	rec := httptest.NewRecorder()
	if err := codec.SetSession(rec, "session-abc", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("set session: %v", err)
	}

	cookie := setCookieNamed(t, rec, "session")
	if !cookie.HttpOnly {
		t.Fatalf("session cookie must be HttpOnly")
	}
	if !cookie.Secure {
		t.Fatalf("session cookie must be Secure")
	}
	if cookie.SameSite != http.SameSiteStrictMode {
		t.Fatalf("session cookie must be SameSite=Strict, got %v", cookie.SameSite)
	}
	if cookie.Value == "session-abc" {
		t.Fatalf("session id must not appear in the cookie unsigned")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	got, err := codec.ReadSessionID(req)
	if err != nil {
		t.Fatalf("read session id: %v", err)
	}
	if got != "session-abc" {
		t.Fatalf("round trip mismatch: got %q", got)
	}
}

func TestSessionCookieRejectsTampering(t *testing.T) {
	codec := newTestCodec()
	rec := httptest.NewRecorder()
	if err := codec.SetSession(rec, "session-abc", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("set session: %v", err)
	}
	cookie := setCookieNamed(t, rec, "session")
	cookie.Value += "x"

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	if _, err := codec.ReadSessionID(req); err == nil {
		t.Fatalf("expected tampered cookie to be rejected")
	}
}

func TestSessionCookieRejectsForeignKey(t *testing.T) {
	codec := newTestCodec()
	other := NewCookieCodec("different-signing-key", "", "session", "group", time.Hour)

	rec := httptest.NewRecorder()
	if err := codec.SetSession(rec, "session-abc", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("set session: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(setCookieNamed(t, rec, "session"))

	if _, err := other.ReadSessionID(req); err == nil {
		t.Fatalf("expected cookie signed with another key to be rejected")
	}
}

func TestSessionCookieMissing(t *testing.T) {
	codec := newTestCodec()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := codec.ReadSessionID(req); err == nil {
		t.Fatalf("expected missing cookie to be rejected")
	}
}

func TestGroupCookieRoundTrip(t *testing.T) {
	codec := newTestCodec()
	groupID := uuid.New()

	rec := httptest.NewRecorder()
	codec.SetGroup(rec, groupID)

	cookie := setCookieNamed(t, rec, "group")
	if cookie.HttpOnly {
		t.Fatalf("group cookie must stay script readable")
	}
	if cookie.Value != groupID.String() {
		t.Fatalf("group cookie carries %q, want %q", cookie.Value, groupID)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	got, ok := codec.ReadGroupID(req)
	if !ok || got != groupID {
		t.Fatalf("round trip mismatch: got %v ok=%v", got, ok)
	}
}

func TestGroupCookieRejectsGarbage(t *testing.T) {
	codec := newTestCodec()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "group", Value: "not-a-uuid"})
	if _, ok := codec.ReadGroupID(req); ok {
		t.Fatalf("expected malformed group cookie to be ignored")
	}
}

func TestInvalidateClearsCookies(t *testing.T) {
	codec := newTestCodec()
	rec := httptest.NewRecorder()
	codec.InvalidateSession(rec)
	codec.InvalidateGroup(rec)

	for _, name := range []string{"session", "group"} {
		cookie := setCookieNamed(t, rec, name)
		if cookie.Value != "" || cookie.MaxAge >= 0 {
			t.Fatalf("cookie %q not cleared: value=%q maxAge=%d", name, cookie.Value, cookie.MaxAge)
		}
	}
}
