// Package respond writes JSON responses and errors for the HTTP handlers.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jakubkanna/labguy-manager/internal/dto"
	gerr "github.com/jakubkanna/labguy-manager/internal/errors"
)

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("can't encode response", slog.String("err", err.Error()))
	}
}

// Error writes err as {"error": ...}. Server errors are logged and their details
// are not sent to the client.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := gerr.Status(err)
	if status >= http.StatusInternalServerError {
		slog.Default().ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("err", err.Error()),
		)
	}
	JSON(w, status, dto.ErrorResponse{Error: gerr.Public(err)})
}

// Decode reads a JSON body into v, answering 400 on malformed input.
func Decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return gerr.BadRequest("malformed json body")
	}
	return nil
}
