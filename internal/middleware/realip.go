package middleware

import (
	"net/http"

	"github.com/benvon/sailor-swift/internal/request"
)

// RealIP resolves the client address behind trustedProxies reverse proxies and
// stores it for request.ClientIP. With zero hops X-Forwarded-For is ignored and
// the socket address is used.
func RealIP(trustedProxies int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if trustedProxies <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := request.ForwardedClientIP(r, trustedProxies)
			next.ServeHTTP(w, r.WithContext(request.WithClientIP(r.Context(), ip)))
		})
	}
}
