package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mind-engage/mindengage-qbank/internal/apperr"
	auth "github.com/mind-engage/mindengage-qbank/internal/auth/middleware"
)

const maxBodyBytes = 1 << 20

var errBodyTooLarge = errors.New("request body too large")

type errorBody struct {
	Error  string `json:"error"`
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the apperr kinds to status codes. Anything unclassified is a
// store failure: logged with the request id, reported as a bare 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if ve, ok := apperr.AsValidation(err); ok {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "validation", Field: ve.Field, Reason: ve.Reason})
		return
	}
	switch {
	case errors.Is(err, errBodyTooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "body too large"})
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	case errors.Is(err, apperr.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody{Error: "conflict", Reason: err.Error()})
	case errors.Is(err, apperr.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
	default:
		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"err", err,
		}
		if u, ok := auth.UserFromContext(r.Context()); ok {
			attrs = append(attrs, "user_id", u.ID)
		}
		slog.ErrorContext(r.Context(), "request failed", attrs...)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal"})
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errBodyTooLarge
		}
		if errors.Is(err, io.EOF) {
			return apperr.Invalid("", "empty body")
		}
		return apperr.Invalid("", "bad json: "+err.Error())
	}
	return nil
}

func idParam(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "id"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Invalid("id", "must be a positive integer")
	}
	return id, nil
}
