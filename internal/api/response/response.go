package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/OkanLimitless/webpage-creator-sub002/internal/deploy"
	"github.com/OkanLimitless/webpage-creator-sub002/internal/model"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorResponse{Error: message})
}

// StatusFor maps the error taxonomy to an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, model.ErrProviderUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, deploy.ErrPoolFull), errors.Is(err, deploy.ErrPoolClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WriteServiceError writes err with the status StatusFor picks. Internal
// errors are reported without their detail.
func WriteServiceError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		WriteError(w, status, "internal error")
		return
	}
	WriteError(w, status, err.Error())
}
