package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"promptbench/internal/batch"
	"promptbench/internal/catalog"
	"promptbench/internal/inference"
	"promptbench/internal/selection"
	"promptbench/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// statusFor maps well-known errors onto HTTP status codes.
func statusFor(err error) int {
	var he HTTPError
	switch {
	case errors.As(err, &he):
		return he.StatusCode()
	case selection.IsUnknownKind(err):
		return http.StatusBadRequest
	case errors.Is(err, batch.ErrRunInProgress):
		return http.StatusConflict
	case errors.Is(err, batch.ErrEmptySelection):
		return http.StatusUnprocessableEntity
	case inference.IsDependencyUnavailable(err), catalog.IsUnavailable(err):
		return http.StatusServiceUnavailable
	case inference.IsInferenceError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSONError(w, statusFor(err), err.Error())
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}
