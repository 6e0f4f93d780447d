package session

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"
)

type fixedClock struct {
	current time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.current
}

func newTestManager(t *testing.T) (*Manager, *fixedClock) {
	t.Helper()

	hashKey := []byte("12345678901234567890123456789012")
	blockKey := []byte("abcdefghijklmnopqrstuv0123456789")
	clock := &fixedClock{current: time.Now().UTC()}
	httpOnly := true
	mgr, err := NewManager(Config{
		CookieName:     "test_session",
		HashKey:        hashKey,
		BlockKey:       blockKey,
		CookiePath:     "/",
		CookieHTTPOnly: &httpOnly,
		IdleTimeout:    10 * time.Minute,
		Lifetime:       2 * time.Hour,
		Now:            clock.Now,
	})
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}
	return mgr, clock
}

func roundTrip(t *testing.T, mgr *Manager, sess *Session) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	if err := mgr.Save(rec, sess); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	cookie := findCookie(rec.Result().Cookies(), "test_session")
	if cookie == nil {
		t.Fatalf("expected session cookie to be set")
	}
	return cookie
}

func TestManager_NewSessionLifecycle(t *testing.T) {
	mgr, clock := newTestManager(t)

	req := httptest.NewRequest("GET", "/", nil)
	sess, err := mgr.Load(req)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if sess.ID() == "" {
		t.Fatalf("expected session ID")
	}
	if sess.Authenticated() {
		t.Fatalf("new session must not be authenticated")
	}

	sess.SetUser(&User{ID: 7, Username: "ayse", Role: "admin"})
	sess.SetCredentials("session=abc")
	sess.SetFlash("Welcome back")

	cookie := roundTrip(t, mgr, sess)

	clock.current = clock.current.Add(5 * time.Minute)
	req2 := httptest.NewRequest("GET", "/", nil)
	req2.AddCookie(cookie)
	sess2, err := mgr.Load(req2)
	if err != nil {
		t.Fatalf("Load existing error: %v", err)
	}
	if sess2.ID() != sess.ID() {
		t.Fatalf("expected same session id")
	}
	if got := sess2.User(); got == nil || got.Username != "ayse" || got.Role != "admin" {
		t.Fatalf("expected user to persist, got %+v", got)
	}
	if sess2.Credentials() != "session=abc" {
		t.Fatalf("expected credentials to persist")
	}
	if msg := sess2.PopFlash(); msg != "Welcome back" {
		t.Fatalf("unexpected flash %q", msg)
	}
	if msg := sess2.PopFlash(); msg != "" {
		t.Fatalf("flash must be one-shot, got %q", msg)
	}
}

func TestManager_IdleTimeout(t *testing.T) {
	mgr, clock := newTestManager(t)
	sess, err := mgr.Load(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	cookie := roundTrip(t, mgr, sess)

	clock.current = clock.current.Add(20 * time.Minute)
	req2 := httptest.NewRequest("GET", "/", nil)
	req2.AddCookie(cookie)
	if _, err := mgr.Load(req2); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestManager_AbsoluteLifetime(t *testing.T) {
	mgr, clock := newTestManager(t)
	sess := mgr.New()

	// Keep the session active so only the absolute lifetime applies.
	var cookie *http.Cookie
	for i := 0; i < 13; i++ {
		cookie = roundTrip(t, mgr, sess)
		clock.current = clock.current.Add(9 * time.Minute)
		req := httptest.NewRequest("GET", "/", nil)
		req.AddCookie(cookie)
		loaded, err := mgr.Load(req)
		if err != nil {
			t.Fatalf("iteration %d: unexpected error %v", i, err)
		}
		sess = loaded
	}

	cookie = roundTrip(t, mgr, sess)
	clock.current = clock.current.Add(9 * time.Minute)
	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(cookie)
	if _, err := mgr.Load(req); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired after lifetime, got %v", err)
	}
}

func TestManager_TamperedCookieStartsFresh(t *testing.T) {
	mgr, _ := newTestManager(t)
	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "test_session", Value: "garbage"})

	sess, err := mgr.Load(req)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if sess.Authenticated() || sess.User() != nil {
		t.Fatalf("tampered cookie must yield an empty session")
	}
}

func TestManager_Destroy(t *testing.T) {
	mgr, _ := newTestManager(t)
	sess, _ := mgr.Load(httptest.NewRequest("GET", "/", nil))
	rec := httptest.NewRecorder()
	sess.Destroy()
	if err := mgr.Save(rec, sess); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	cookie := findCookie(rec.Result().Cookies(), "test_session")
	if cookie == nil || cookie.MaxAge != -1 {
		t.Fatalf("expected session cookie cleared")
	}
}

func TestNewManager_RejectsBadBlockKey(t *testing.T) {
	_, err := NewManager(Config{HashKey: []byte("k"), BlockKey: []byte("short")})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if _, err := NewManager(Config{}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for missing hash key, got %v", err)
	}
}

func TestSession_ClaimSubmission(t *testing.T) {
	mgr, _ := newTestManager(t)
	sess := mgr.New()

	if !sess.ClaimSubmission("tok-1") {
		t.Fatalf("first claim must succeed")
	}
	if sess.ClaimSubmission("tok-1") {
		t.Fatalf("second claim must be rejected")
	}
	sess.ReleaseSubmission("tok-1")
	if !sess.ClaimSubmission("tok-1") {
		t.Fatalf("released token must be claimable again")
	}
	if !sess.ClaimSubmission("") {
		t.Fatalf("empty token is never a duplicate")
	}

	for i := 0; i < maxSubmissionTokens; i++ {
		sess.ClaimSubmission("bulk-" + strconv.Itoa(i))
	}
	if !sess.ClaimSubmission("tok-1") {
		t.Fatalf("oldest token should have been evicted")
	}
	if len(sess.data.SubmissionTokens) != maxSubmissionTokens {
		t.Fatalf("expected %d tokens, got %d", maxSubmissionTokens, len(sess.data.SubmissionTokens))
	}
}

func findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}
