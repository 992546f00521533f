package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/benvon/sailor-swift/internal/middleware"
	"github.com/benvon/sailor-swift/internal/validation"
	"go.uber.org/zap"
)

var errInvalidBody = errors.New("invalid request body")

// respondJSON writes data as the JSON response body.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// respondMessage writes {"message": message}.
func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}

// sanitizeErrorMessage caps the length of messages returned to clients.
func sanitizeErrorMessage(message string) string {
	if len(message) > 200 {
		return message[:200] + "..."
	}
	return message
}

// respondJSONError writes the shared error body with a sanitized message.
func respondJSONError(w http.ResponseWriter, r *http.Request, status int, message string, logger *zap.Logger) {
	middleware.RespondError(w, r, status, sanitizeErrorMessage(message), logger)
}

// decodeJSON decodes the request body into dst. An empty body decodes to the zero value.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errInvalidBody
	}
	return nil
}

// decodeAndValidate decodes the body into dst and validates it. It writes the
// error response itself and reports whether the handler should continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any, logger *zap.Logger) bool {
	if err := decodeJSON(r, dst); err != nil {
		respondJSONError(w, r, http.StatusBadRequest, "Invalid request body", logger)
		return false
	}
	if err := validation.Struct(dst); err != nil {
		respondJSONError(w, r, http.StatusUnprocessableEntity, err.Error(), logger)
		return false
	}
	return true
}
