package httpserver

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	"github.com/OmerTuregun/product-catalog/internal/console/catalogapi"
	custommw "github.com/OmerTuregun/product-catalog/internal/console/httpserver/middleware"
	"github.com/OmerTuregun/product-catalog/internal/console/observability"
	"github.com/OmerTuregun/product-catalog/internal/console/templates"
	"github.com/OmerTuregun/product-catalog/internal/console/templates/auth"
	"github.com/OmerTuregun/product-catalog/internal/console/templates/partials"
)

const (
	loginTitle           = "Sign in"
	missingFieldsMessage = "Username and password are required."
)

type authHandlers struct {
	api        catalogapi.Service
	views      *templates.Engine
	basePath   string
	loginPath  string
	csrfHeader string
}

func newAuthHandlers(api catalogapi.Service, views *templates.Engine, basePath, loginPath, csrfHeader string) *authHandlers {
	if api == nil {
		panic("auth: catalog service is required")
	}
	if strings.TrimSpace(basePath) == "" {
		basePath = "/"
	}
	if strings.TrimSpace(loginPath) == "" {
		loginPath = resolveLoginPath(basePath, "")
	}
	return &authHandlers{
		api:        api,
		views:      views,
		basePath:   basePath,
		loginPath:  loginPath,
		csrfHeader: csrfHeader,
	}
}

// LoginForm renders the sign-in page, or the registration form with ?view=register.
func (h *authHandlers) LoginForm(w http.ResponseWriter, r *http.Request) {
	if h.isAuthenticated(r) && !forceLogin(r) {
		http.Redirect(w, r, h.basePath, http.StatusFound)
		return
	}
	q := r.URL.Query()
	data := h.pageData(r, q.Get("view"))
	data.Message = messageForQuery(q)
	h.render(w, r, data, http.StatusOK)
}

// LoginSubmit opens a backend session and stores its credentials in the console session.
func (h *authHandlers) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data := h.pageData(r, auth.ViewLogin)
	if err := r.ParseForm(); err != nil {
		data.Error = "The form could not be submitted. Please try again."
		h.render(w, r, data, http.StatusBadRequest)
		return
	}

	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")
	data.Username = username
	if username == "" || password == "" {
		data.Error = missingFieldsMessage
		h.render(w, r, data, http.StatusBadRequest)
		return
	}

	creds, err := h.api.Login(ctx, username, password)
	if err != nil {
		observability.FromContext(ctx).Info("console login failed", zap.String("username", username), zap.Error(err))
		data.Error = catalogapi.ErrorMessage(err)
		h.render(w, r, data, failureStatus(err))
		return
	}

	if sess, ok := custommw.SessionFromContext(ctx); ok {
		sess.SetCredentials(string(creds))
		// Identity is resolved by the auth middleware on the next page load.
		sess.SetUser(nil)
	}
	observability.FromContext(ctx).Info("console login", zap.String("username", username))
	h.redirect(w, r, h.basePath)
}

// RegisterSubmit creates a backend account and returns to the login view.
func (h *authHandlers) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data := h.pageData(r, auth.ViewRegister)
	if err := r.ParseForm(); err != nil {
		data.Error = "The form could not be submitted. Please try again."
		h.render(w, r, data, http.StatusBadRequest)
		return
	}

	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")
	data.Username = username
	if username == "" || password == "" {
		data.Error = missingFieldsMessage
		h.render(w, r, data, http.StatusBadRequest)
		return
	}

	if err := h.api.Register(ctx, username, password); err != nil {
		observability.FromContext(ctx).Info("console registration failed", zap.String("username", username), zap.Error(err))
		data.Error = catalogapi.ErrorMessage(err)
		h.render(w, r, data, failureStatus(err))
		return
	}
	h.redirect(w, r, h.loginURLWithParams(map[string]string{"view": auth.ViewLogin, "status": "registered"}))
}

// Logout closes the backend session (errors ignored) and clears the console session.
func (h *authHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if sess, ok := custommw.SessionFromContext(ctx); ok {
		if creds := catalogapi.Credentials(sess.Credentials()); !creds.Empty() {
			if err := h.api.Logout(ctx, creds); err != nil {
				observability.FromContext(ctx).Debug("backend logout failed", zap.Error(err))
			}
		}
		sess.Destroy()
	}
	h.redirect(w, r, h.loginURLWithParams(map[string]string{"status": "logged_out"}))
}

func (h *authHandlers) pageData(r *http.Request, view string) auth.PageData {
	return auth.BuildPageData(partials.BuildChrome(r.Context(), loginTitle, h.csrfHeader), view)
}

func (h *authHandlers) render(w http.ResponseWriter, r *http.Request, data auth.PageData, status int) {
	templ.Handler(h.views.Component(templates.ViewLogin, data), templ.WithStatus(status)).ServeHTTP(w, r)
}

func (h *authHandlers) redirect(w http.ResponseWriter, r *http.Request, target string) {
	if custommw.IsHTMXRequest(r.Context()) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *authHandlers) isAuthenticated(r *http.Request) bool {
	sess, ok := custommw.SessionFromContext(r.Context())
	return ok && sess.Authenticated()
}

func (h *authHandlers) loginURLWithParams(params map[string]string) string {
	parsed, err := url.Parse(h.loginPath)
	if err != nil {
		return h.loginPath
	}
	q := parsed.Query()
	for key, val := range params {
		if strings.TrimSpace(val) == "" {
			continue
		}
		q.Set(key, val)
	}
	parsed.RawQuery = q.Encode()
	return parsed.String()
}

func messageForQuery(q url.Values) string {
	switch q.Get("status") {
	case "logged_out":
		return "You have been logged out."
	case "registered":
		return "Account created. You can log in now."
	default:
		return ""
	}
}

func failureStatus(err error) int {
	var apiErr *catalogapi.APIError
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		return apiErr.Status
	}
	return http.StatusBadGateway
}

func forceLogin(r *http.Request) bool {
	switch strings.ToLower(strings.TrimSpace(r.URL.Query().Get("force"))) {
	case "1", "true", "yes", "force":
		return true
	default:
		return false
	}
}
