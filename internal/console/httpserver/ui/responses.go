package ui

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/OmerTuregun/product-catalog/internal/console/catalog"
	"github.com/OmerTuregun/product-catalog/internal/console/catalogapi"
	custommw "github.com/OmerTuregun/product-catalog/internal/console/httpserver/middleware"
	"github.com/OmerTuregun/product-catalog/internal/console/observability"
	"github.com/OmerTuregun/product-catalog/internal/console/templates/helpers"
)

// Client-side events raised through HX-Trigger.
const (
	eventToast      = "toast"
	eventModalClose = "modal:close"
	eventRefresh    = "catalog:refresh"
)

const uploadTooLargeMessage = "The selected images are too large."

type toast struct {
	Message string `json:"message"`
	Tone    string `json:"tone"`
}

func setTrigger(w http.ResponseWriter, events map[string]any) {
	payload, err := json.Marshal(events)
	if err != nil {
		return
	}
	w.Header().Set("HX-Trigger", string(payload))
}

// mutationSucceeded closes the modal and asks the grid to reload with the current filters.
func mutationSucceeded(w http.ResponseWriter, message string) {
	setTrigger(w, map[string]any{
		eventModalClose: true,
		eventRefresh:    true,
		eventToast:      toast{Message: message, Tone: "success"},
	})
	w.WriteHeader(http.StatusNoContent)
}

// referenceDataChanged reloads the whole page so category lists are fetched again.
func referenceDataChanged(w http.ResponseWriter, r *http.Request, message string) {
	if sess, ok := custommw.SessionFromContext(r.Context()); ok {
		sess.SetFlash(message)
	}
	if custommw.IsHTMXRequest(r.Context()) {
		w.Header().Set("HX-Refresh", "true")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, helpers.BasePath(r.Context()), http.StatusSeeOther)
}

// fail reports err as a blocking alert. A backend 401 means the backend
// session is gone and is handled like any other session failure.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	status := statusFor(err)
	if status == http.StatusUnauthorized {
		if sess, ok := custommw.SessionFromContext(ctx); ok {
			sess.Destroy()
		}
		loginPath := helpers.JoinBase(helpers.BasePath(ctx), "/login")
		if custommw.IsHTMXRequest(ctx) {
			w.Header().Set("HX-Redirect", loginPath)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		http.Redirect(w, r, loginPath, http.StatusFound)
		return
	}

	message := catalog.Message(err)
	if status == http.StatusRequestEntityTooLarge {
		message = uploadTooLargeMessage
	}
	logger := observability.FromContext(ctx)
	if status >= http.StatusInternalServerError {
		logger.Error("catalog request failed", zap.Error(err), zap.Int("status", status))
	} else {
		logger.Info("catalog request rejected", zap.Error(err), zap.Int("status", status))
	}

	if custommw.IsHTMXRequest(ctx) {
		setTrigger(w, map[string]any{eventToast: toast{Message: message, Tone: "error"}})
		w.Header().Set("HX-Reswap", "none")
	}
	http.Error(w, message, status)
}

func statusFor(err error) int {
	var (
		apiErr   *catalogapi.APIError
		validErr *catalog.ValidationError
		tooLarge *http.MaxBytesError
	)
	switch {
	case errors.Is(err, catalog.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, catalog.ErrDuplicateSubmission):
		return http.StatusConflict
	case errors.Is(err, catalog.ErrConfirmationRequired):
		return http.StatusBadRequest
	case errors.Is(err, catalog.ErrImageRequired), errors.Is(err, catalog.ErrInvalidImageType), errors.As(err, &validErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &apiErr):
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			return apiErr.Status
		}
		return http.StatusBadGateway
	default:
		return http.StatusBadGateway
	}
}
