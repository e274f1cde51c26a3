package web

// errors.go turns errors into responses.
//
// The technical error is logged with the request id. The client receives the
// mapped user message: an HTML fragment for HTMX requests, JSON otherwise.

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/acadflow/acadflow/internal/core"
	"github.com/acadflow/acadflow/internal/logging"
	"github.com/acadflow/acadflow/internal/store"
	"github.com/acadflow/acadflow/internal/tabular"
	"github.com/acadflow/acadflow/internal/web/views"
)

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Error  string `json:"error"`
	Action string `json:"action,omitempty"`
	Code   string `json:"code"`
}

// respondError logs err and writes its user message with status.
func respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	msg := core.MapError(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	)

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_ = views.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w)
		return
	}
	writeJSONStatus(w, status, ErrorResponse{Error: msg.Message, Action: msg.Action, Code: msg.Code})
}

// statusFor picks the HTTP status of a service error.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, core.ErrUnknownKind), errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, tabular.ErrNoRecords), errors.Is(err, tabular.ErrNoColumns):
		return http.StatusUnprocessableEntity
	case errors.Is(err, tabular.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrTooManyImports):
		return http.StatusServiceUnavailable
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
