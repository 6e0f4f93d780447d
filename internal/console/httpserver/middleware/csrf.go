package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/OmerTuregun/product-catalog/internal/console/observability"
	appsession "github.com/OmerTuregun/product-catalog/internal/console/session"
)

type csrfContextKey string

const csrfTokenContextKey csrfContextKey = "csrf.token"

// CSRFFormField is the hidden input consulted when the header is absent.
const CSRFFormField = "csrf_token"

const csrfRejectedMessage = "Your form expired. Reload the page and try again."

// CSRFConfig controls cookie/header behaviour.
type CSRFConfig struct {
	CookieName string
	CookiePath string
	HeaderName string
	MaxAge     time.Duration
	Secure     bool
}

type csrfGuard struct {
	cookieName string
	cookiePath string
	headerName string
	maxAge     time.Duration
	secure     bool
}

func newCSRFGuard(cfg CSRFConfig) csrfGuard {
	g := csrfGuard{
		cookieName: cfg.CookieName,
		cookiePath: cfg.CookiePath,
		headerName: cfg.HeaderName,
		maxAge:     cfg.MaxAge,
		secure:     cfg.Secure,
	}
	if g.cookieName == "" {
		g.cookieName = "catalog_csrf"
	}
	if g.cookiePath == "" {
		g.cookiePath = "/"
	}
	if g.headerName == "" {
		g.headerName = "X-CSRF-Token"
	}
	if g.maxAge == 0 {
		g.maxAge = 24 * time.Hour
	}
	return g
}

// CSRF attaches double-submit cookie protection. Every request is issued a
// token cookie; unsafe methods must echo it in the header, or in the
// csrf_token field for plain urlencoded form posts (login, logout).
func CSRF(cfg CSRFConfig) func(http.Handler) http.Handler {
	guard := newCSRFGuard(cfg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := observability.FromContext(r.Context())
			token, err := guard.token(w, r)
			if err != nil {
				logger.Error("csrf token generation failed", zap.Error(err))
				http.Error(w, "csrf token error", http.StatusInternalServerError)
				return
			}

			if isUnsafeMethod(r.Method) && !guard.matches(r, token) {
				logger.Warn("csrf validation failed", zap.String("method", r.Method), zap.String("path", r.URL.Path))
				rejectWithToast(w, r, http.StatusForbidden, csrfRejectedMessage)
				return
			}

			ctx := context.WithValue(r.Context(), csrfTokenContextKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CSRFTokenFromContext returns the token issued for the current request, for
// the hx-headers attribute and hidden form fields.
func CSRFTokenFromContext(ctx context.Context) string {
	if token, ok := ctx.Value(csrfTokenContextKey).(string); ok {
		return token
	}
	return ""
}

// token returns the cookie token, issuing a fresh one when absent.
func (g csrfGuard) token(w http.ResponseWriter, r *http.Request) (string, error) {
	if c, err := r.Cookie(g.cookieName); err == nil && c.Value != "" {
		return c.Value, nil
	}

	token, err := appsession.GenerateToken(32)
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     g.cookieName,
		Value:    token,
		Path:     g.cookiePath,
		HttpOnly: true,
		Secure:   g.secure || r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(g.maxAge.Seconds()),
	})
	return token, nil
}

func (g csrfGuard) matches(r *http.Request, token string) bool {
	submitted := r.Header.Get(g.headerName)
	if submitted == "" && isURLEncodedForm(r) {
		submitted = r.PostFormValue(CSRFFormField)
	}
	return submitted != "" && subtle.ConstantTimeCompare([]byte(submitted), []byte(token)) == 1
}

func isURLEncodedForm(r *http.Request) bool {
	return strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "application/x-www-form-urlencoded")
}

func isUnsafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return false
	default:
		return true
	}
}
