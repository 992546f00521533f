package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/benvon/sailor-swift/internal/database"
	logpkg "github.com/benvon/sailor-swift/internal/logger"
	"github.com/benvon/sailor-swift/internal/models"
	"github.com/benvon/sailor-swift/internal/request"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	msgNotAuthenticated   = "Not authenticated"
	msgInvalidCredentials = "Could not validate credentials"
)

// TokenVerifier verifies bearer tokens issued by this API.
type TokenVerifier interface {
	Verify(token string, typ models.TokenType) (*models.TokenClaims, error)
}

// RevocationChecker reports whether a token id was revoked by logout or refresh.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// UserLoader loads the user named by a token subject.
type UserLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// RequireAuth rejects requests without a valid access token. A missing or
// non-bearer Authorization header gets 403; a bad, expired or revoked token,
// or one whose user no longer exists, gets 401 with a Bearer challenge.
// On success the user and claims are stored in the request context.
func RequireAuth(tokens TokenVerifier, revocations RevocationChecker, users UserLoader, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := request.BearerToken(r)
			if !ok {
				RespondError(w, r, http.StatusForbidden, msgNotAuthenticated, logger)
				return
			}

			unauthorized := func() {
				w.Header().Set("WWW-Authenticate", "Bearer")
				RespondError(w, r, http.StatusUnauthorized, msgInvalidCredentials, logger)
			}

			claims, err := tokens.Verify(raw, models.TokenTypeAccess)
			if err != nil {
				logger.Debug("access_token_rejected", zap.String("error", logpkg.SanitizeError(err)))
				unauthorized()
				return
			}

			ctx := r.Context()
			if revocations != nil {
				revoked, err := revocations.IsRevoked(ctx, claims.ID)
				if err != nil {
					logger.Error("revocation_check_failed", zap.Error(err))
					RespondError(w, r, http.StatusServiceUnavailable, "Session store unavailable", logger)
					return
				}
				if revoked {
					unauthorized()
					return
				}
			}

			userID, err := uuid.Parse(claims.Subject)
			if err != nil {
				unauthorized()
				return
			}
			user, err := users.GetByID(ctx, userID)
			if errors.Is(err, database.ErrNotFound) {
				unauthorized()
				return
			}
			if err != nil {
				logger.Error("failed_to_load_user",
					zap.String("user_id", logpkg.SanitizeUserID(claims.Subject)),
					zap.Error(err),
				)
				RespondError(w, r, http.StatusInternalServerError, "Database error", logger)
				return
			}

			ctx = request.WithClaims(request.WithUser(ctx, user), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
