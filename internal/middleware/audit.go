package middleware

import (
	"net/http"

	logpkg "github.com/benvon/sailor-swift/internal/logger"
	"github.com/benvon/sailor-swift/internal/request"
	"go.uber.org/zap"
)

// Audit logs security-related events for monitoring and compliance
func Audit(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := newStatusWriter(w)

			next.ServeHTTP(wrapped, r)

			ip := logpkg.SanitizeString(request.ClientIP(r), logpkg.MaxGeneralStringLength)
			path := logpkg.SanitizePath(r.URL.Path)

			switch wrapped.statusCode {
			case http.StatusUnauthorized, http.StatusForbidden:
				logger.Warn("security_event",
					zap.Int("status_code", wrapped.statusCode),
					zap.String("method", r.Method),
					zap.String("path", path),
					zap.String("ip", ip),
				)
			case http.StatusTooManyRequests:
				logger.Warn("rate_limit_violation",
					zap.String("method", r.Method),
					zap.String("path", path),
					zap.String("ip", ip),
				)
			}
		})
	}
}
