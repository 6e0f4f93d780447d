package middleware

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/OmerTuregun/product-catalog/internal/console/catalogapi"
	"github.com/OmerTuregun/product-catalog/internal/console/observability"
	appsession "github.com/OmerTuregun/product-catalog/internal/console/session"
)

type authContextKey string

const userContextKey authContextKey = "auth.user"

// User represents the authenticated catalog user.
type User struct {
	ID          int64
	Username    string
	Role        string
	Credentials catalogapi.Credentials
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Identity().IsAdmin()
}

// Identity converts the user to the backend identity shape.
func (u *User) Identity() *catalogapi.Identity {
	if u == nil {
		return nil
	}
	return &catalogapi.Identity{ID: u.ID, Username: u.Username, Role: u.Role}
}

// Authenticator resolves backend credentials into a User.
type Authenticator interface {
	Authenticate(r *http.Request, creds catalogapi.Credentials) (*User, error)
}

var (
	// ErrUnauthorized is returned when authentication fails.
	ErrUnauthorized = errors.New("unauthorized")
)

// AuthError contains reason codes for failed authentication attempts.
type AuthError struct {
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	if e.Err == nil {
		return e.Reason
	}
	return e.Reason + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *AuthError) Unwrap() error {
	return e.Err
}

// NewAuthError constructs an AuthError with the provided reason.
func NewAuthError(reason string, err error) error {
	return &AuthError{Reason: reason, Err: err}
}

const (
	// ReasonMissingCredentials indicates a request without a backend session.
	ReasonMissingCredentials = "missing_credentials"
	// ReasonIdentityRejected indicates the backend refused the session.
	ReasonIdentityRejected = "identity_rejected"
)

// BackendAuthenticator resolves identities with the catalog backend.
type BackendAuthenticator struct {
	api catalogapi.Service
}

// NewBackendAuthenticator constructs an Authenticator backed by api.
func NewBackendAuthenticator(api catalogapi.Service) *BackendAuthenticator {
	return &BackendAuthenticator{api: api}
}

// Authenticate asks the backend who owns creds.
func (a *BackendAuthenticator) Authenticate(r *http.Request, creds catalogapi.Credentials) (*User, error) {
	if creds.Empty() {
		return nil, NewAuthError(ReasonMissingCredentials, ErrUnauthorized)
	}
	identity, err := a.api.Me(r.Context(), creds)
	if err != nil {
		return nil, NewAuthError(ReasonIdentityRejected, err)
	}
	return &User{
		ID:          identity.ID,
		Username:    identity.Username,
		Role:        identity.Role,
		Credentials: creds,
	}, nil
}

// Auth resolves the session identity and either attaches a User to context
// or redirects to the login page. Full page loads always re-check the
// identity with the backend; htmx fragment requests reuse the identity cached
// in the session.
func Auth(authenticator Authenticator, loginPath string) func(http.Handler) http.Handler {
	if authenticator == nil {
		panic("auth: authenticator is required")
	}
	if loginPath == "" {
		loginPath = "/login"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			logger := observability.FromContext(ctx)

			sess, ok := SessionFromContext(ctx)
			if !ok || !sess.Authenticated() {
				logger.Debug("auth failure", zap.String("reason", ReasonMissingCredentials))
				destroySession(ctx)
				handleUnauthorized(w, r, loginPath)
				return
			}
			creds := catalogapi.Credentials(sess.Credentials())

			var user *User
			if cached := sess.User(); cached != nil && IsHTMXRequest(ctx) {
				user = &User{ID: cached.ID, Username: cached.Username, Role: cached.Role, Credentials: creds}
			} else {
				resolved, err := authenticator.Authenticate(r, creds)
				if err != nil || resolved == nil {
					reason := ReasonIdentityRejected
					var authErr *AuthError
					if errors.As(err, &authErr) && authErr.Reason != "" {
						reason = authErr.Reason
					}
					logger.Info("auth failure", zap.String("reason", reason), zap.Error(err))
					destroySession(ctx)
					handleUnauthorized(w, r, loginPath)
					return
				}
				user = resolved
				sess.SetUser(&appsession.User{ID: user.ID, Username: user.Username, Role: user.Role})
			}

			ctx = context.WithValue(ctx, userContextKey, user)
			ctx = observability.WithLogger(ctx, logger.With(zap.Int64("user_id", user.ID)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ContextWithUser stores user in ctx. Used by templates and tests that render outside the auth chain.
func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext retrieves the authenticated user if present.
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userContextKey).(*User)
	return user, ok && user != nil
}

// handleUnauthorized sends the browser to the login page without a message.
func handleUnauthorized(w http.ResponseWriter, r *http.Request, loginPath string) {
	if IsHTMXRequest(r.Context()) {
		w.Header().Set("HX-Redirect", loginPath)
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	http.Redirect(w, r, loginPath, http.StatusFound)
}

func destroySession(ctx context.Context) {
	if sess, ok := SessionFromContext(ctx); ok {
		sess.Destroy()
	}
}
