package ui

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/OmerTuregun/product-catalog/internal/console/catalog"
	"github.com/OmerTuregun/product-catalog/internal/console/catalogapi"
	custommw "github.com/OmerTuregun/product-catalog/internal/console/httpserver/middleware"
)

func TestStatusFor(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"forbidden", catalog.ErrForbidden, http.StatusForbidden},
		{"duplicate", fmt.Errorf("submit: %w", catalog.ErrDuplicateSubmission), http.StatusConflict},
		{"unconfirmed", catalog.ErrConfirmationRequired, http.StatusBadRequest},
		{"no images", catalog.ErrImageRequired, http.StatusUnprocessableEntity},
		{"bad image", catalog.ErrInvalidImageType, http.StatusUnprocessableEntity},
		{"fields", &catalog.ValidationError{Fields: map[string]string{"name": "Name is required."}}, http.StatusUnprocessableEntity},
		{"too large", &http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge},
		{"backend 404", catalogapi.ErrNotFound, http.StatusNotFound},
		{"backend 400", &catalogapi.APIError{Status: http.StatusBadRequest, Message: "name required"}, http.StatusBadRequest},
		{"backend 500", &catalogapi.APIError{Status: http.StatusInternalServerError}, http.StatusBadGateway},
		{"transport", errors.New("dial tcp: refused"), http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, statusFor(tc.err))
		})
	}
}

func serveFail(err error, htmx bool) *httptest.ResponseRecorder {
	handler := custommw.HTMX()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fail(w, r, err)
	}))
	req := httptest.NewRequest(http.MethodPost, "/products", nil)
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestFailRaisesErrorToastForHTMX(t *testing.T) {
	t.Parallel()

	rec := serveFail(&catalogapi.APIError{Status: http.StatusBadRequest, Message: "invalid image type"}, true)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "none", rec.Header().Get("HX-Reswap"))

	var events map[string]toast
	require.NoError(t, json.Unmarshal([]byte(rec.Header().Get("HX-Trigger")), &events))
	require.Equal(t, toast{Message: "invalid image type", Tone: "error"}, events[eventToast])
}

func TestFailReplacesOversizedUploadMessage(t *testing.T) {
	t.Parallel()

	rec := serveFail(fmt.Errorf("parse form: %w", &http.MaxBytesError{Limit: 1}), true)

	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	require.Contains(t, rec.Header().Get("HX-Trigger"), uploadTooLargeMessage)
}

func TestFailRedirectsOnBackendUnauthorized(t *testing.T) {
	t.Parallel()

	rec := serveFail(&catalogapi.APIError{Status: http.StatusUnauthorized}, true)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "/login", rec.Header().Get("HX-Redirect"))
	require.Empty(t, rec.Header().Get("HX-Trigger"))

	rec = serveFail(&catalogapi.APIError{Status: http.StatusUnauthorized}, false)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestMutationSucceededTriggersRefresh(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	mutationSucceeded(rec, "Product saved.")

	require.Equal(t, http.StatusNoContent, rec.Code)
	var events map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(rec.Header().Get("HX-Trigger")), &events))
	require.JSONEq(t, `true`, string(events[eventModalClose]))
	require.JSONEq(t, `true`, string(events[eventRefresh]))
	require.JSONEq(t, `{"message":"Product saved.","tone":"success"}`, string(events[eventToast]))
}
