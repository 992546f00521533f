package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// allMethods is every method a browser may preflight. rs/cors has no wildcard for methods.
var allMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodOptions,
	http.MethodConnect,
	http.MethodTrace,
}

// CORSOptions allows credentials, every method and every header for the given origins.
func CORSOptions(allowedOrigins []string) cors.Options {
	return cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   allMethods,
		AllowedHeaders:   []string{"*"},
		MaxAge:           600,
	}
}

// CORS wraps handlers with rs/cors configured by CORSOptions. Preflight requests
// are answered here and never reach the router.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.New(CORSOptions(allowedOrigins)).Handler
}
