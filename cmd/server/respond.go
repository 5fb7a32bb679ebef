package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Simplici0/weddingquote/internal/quotedoc"
	"github.com/Simplici0/weddingquote/internal/store"
	"github.com/Simplici0/weddingquote/internal/validation"
)

const maxJSONBody = 1 << 20

type errorBody struct {
	Error  string             `json:"error"`
	Issues []validation.Issue `json:"issues,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		return &validation.ParseError{What: "request body", Err: err}
	}
	return nil
}

// writeError maps domain errors onto status codes. Anything unknown is
// logged and reported as a 500 without details.
func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.Error
	var perr *validation.ParseError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "validation failed", Issues: verr.Issues})
	case errors.As(err, &perr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: perr.Error()})
	case errors.Is(err, store.ErrNotFound), errors.Is(err, quotedoc.ErrUnknownPackage):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, quotedoc.ErrEmptyRequest), errors.Is(err, quotedoc.ErrUnknownAction):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	default:
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}
