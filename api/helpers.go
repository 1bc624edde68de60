package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/garnizeh/fairway/internal/fault"
)

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", slog.Any("err", err))
	}
}

type errorBody struct {
	Code    fault.Code        `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// writeError renders a coded error; uncoded errors become an opaque 500 so
// internals never leak to clients.
func writeError(w http.ResponseWriter, err error) {
	status := fault.HTTPStatus(err)

	body := errorBody{Code: fault.CodeOf(err), Message: "internal error"}
	var fe *fault.Error
	if errors.As(err, &fe) {
		body.Message = fe.Message
		body.Fields = fe.Fields
	}
	if status == http.StatusInternalServerError {
		logger.Error("request failed", slog.Any("err", err))
		body.Message = "internal error"
		body.Fields = nil
	}

	writeJSON(w, map[string]any{"error": body}, status)
}
