package middleware

import (
	"net/http"
	"strings"
)

// ContentType requires application/json on POST, PUT and PATCH requests that carry a body.
// Bodyless requests such as a bare POST /auth/logout pass through.
func ContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			if r.ContentLength == 0 {
				break
			}
			contentType := r.Header.Get("Content-Type")
			if contentType == "" {
				RespondError(w, r, http.StatusBadRequest, "Content-Type header is required", nil)
				return
			}
			if !strings.HasPrefix(strings.ToLower(contentType), "application/json") {
				RespondError(w, r, http.StatusUnsupportedMediaType, "Content-Type must be application/json", nil)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}
