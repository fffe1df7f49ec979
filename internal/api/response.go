package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/najdeno/internal/model"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("error encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response. The code is derived from the status.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, errorResponse{Error: message, Code: statusCode(status)})
}

// writeError maps err onto the error taxonomy. Errors outside it are logged
// and reported as a bare 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var e *model.Error
	if errors.As(err, &e) {
		status, code := classify(e.Kind)
		jsonResponse(w, status, errorResponse{Error: e.Message, Code: code})
		return
	}

	slog.Error("request failed", "method", r.Method, "path", r.URL.Path,
		"request_id", requestID(r.Context()), "error", err)
	jsonError(w, http.StatusInternalServerError, "internal error")
}

func classify(kind error) (int, string) {
	switch kind {
	case model.ErrValidation:
		return http.StatusBadRequest, "validation"
	case model.ErrInvalidState:
		return http.StatusBadRequest, "invalid_state"
	case model.ErrConflict:
		return http.StatusBadRequest, "conflict"
	case model.ErrNotFound:
		return http.StatusNotFound, "not_found"
	case model.ErrUnauthorized:
		return http.StatusUnauthorized, "unauthorized"
	case model.ErrForbidden:
		return http.StatusForbidden, "forbidden"
	}
	return http.StatusInternalServerError, "internal"
}

func statusCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "validation"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusTooManyRequests:
		return "rate_limited"
	case http.StatusServiceUnavailable:
		return "unavailable"
	}
	return "internal"
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// pathID parses the {id} path parameter.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, model.Errorf(model.ErrValidation, "invalid id")
	}
	return id, nil
}
