// Package httpapi exposes the HTTP API layer of the service.
package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/fairyhunter13/product-description-generator/internal/pipeline"
)

// jsonError represents a JSON error payload.
type jsonError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// WriteJSONError writes a JSON error payload with the given status code.
func WriteJSONError(w http.ResponseWriter, r *http.Request, status int, message, details string) {
	render.Status(r, status)
	render.JSON(w, r, jsonError{Error: message, Details: details})
}

// RunErrorStatus maps a failed run to an HTTP status and error code.
func RunErrorStatus(err error) (int, string) {
	var rejected *pipeline.ErrUpdateRejected
	if errors.As(err, &rejected) {
		return http.StatusUnprocessableEntity, "update_rejected"
	}
	var transport *pipeline.ErrTransport
	if errors.As(err, &transport) {
		return http.StatusBadGateway, "upstream_unavailable"
	}
	return http.StatusInternalServerError, "internal_error"
}
