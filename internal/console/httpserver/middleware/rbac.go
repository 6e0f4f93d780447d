package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/OmerTuregun/product-catalog/internal/console/rbac"
)

const forbiddenMessage = "Only administrators can change the catalog."

// RequireCapability aborts the request when the authenticated user lacks the required capability.
func RequireCapability(capability rbac.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || !rbac.HasCapability(user.Role, capability) {
				rejectWithToast(w, r, http.StatusForbidden, forbiddenMessage)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// rejectWithToast ends the request with status. htmx callers also get an
// error toast and no swap, so the current DOM stays intact.
func rejectWithToast(w http.ResponseWriter, r *http.Request, status int, message string) {
	if IsHTMXRequest(r.Context()) {
		payload, err := json.Marshal(map[string]any{
			"toast": map[string]string{"message": message, "tone": "error"},
		})
		if err == nil {
			w.Header().Set("HX-Trigger", string(payload))
		}
		w.Header().Set("HX-Reswap", "none")
	}
	http.Error(w, http.StatusText(status), status)
}
