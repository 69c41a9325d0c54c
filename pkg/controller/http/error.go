package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/m-mizutani/kasumi/pkg/domain/apperr"
	"github.com/m-mizutani/kasumi/pkg/domain/model/conversation"
	"github.com/m-mizutani/kasumi/pkg/domain/model/prompt"
	"github.com/m-mizutani/kasumi/pkg/utils/safe"
)

// handleError maps an error to an HTTP status and writes a JSON error body
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	slog.ErrorContext(r.Context(), "request error",
		"error", err,
		"path", r.URL.Path,
		"method", r.Method,
	)

	statusCode := apperr.HTTPStatusFromError(err)

	// Sentinel errors that reach us without tags
	switch {
	case errors.Is(err, conversation.ErrSessionNotFound),
		errors.Is(err, prompt.ErrVersionNotFound):
		statusCode = http.StatusNotFound
	case errors.Is(err, conversation.ErrNoCurrentSession):
		statusCode = http.StatusConflict
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	body, _ := json.Marshal(map[string]string{"error": err.Error()})
	safe.Write(r.Context(), w, body)
}

// respondJSON writes v as a JSON response
func respondJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	body, err := json.Marshal(v)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to encode response", "error", err)
		return
	}
	safe.Write(r.Context(), w, body)
}
