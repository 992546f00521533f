package middleware

import (
	"net/http"
	"time"
)

const (
	// DefaultRequestTimeout is the default request timeout (30 seconds)
	DefaultRequestTimeout = 30 * time.Second

	timeoutBody = `{"success":false,"error":"Service Unavailable","message":"Request timed out","detail":"Request timed out"}`
)

// Timeout cancels the request context and answers 503 once timeout elapses.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return func(next http.Handler) http.Handler {
		th := http.TimeoutHandler(next, timeout, timeoutBody)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			th.ServeHTTP(&jsonUnavailableWriter{ResponseWriter: w}, r)
		})
	}
}

// jsonUnavailableWriter labels an untyped 503 as JSON. http.TimeoutHandler
// writes its body straight to the underlying writer without a Content-Type.
type jsonUnavailableWriter struct {
	http.ResponseWriter
}

func (w *jsonUnavailableWriter) WriteHeader(code int) {
	if code == http.StatusServiceUnavailable && w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *jsonUnavailableWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
