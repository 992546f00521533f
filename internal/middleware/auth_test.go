package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/benvon/sailor-swift/internal/database"
	"github.com/benvon/sailor-swift/internal/models"
	"github.com/benvon/sailor-swift/internal/request"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type mockVerifier struct {
	verifyFunc func(token string, typ models.TokenType) (*models.TokenClaims, error)
}

func (m *mockVerifier) Verify(token string, typ models.TokenType) (*models.TokenClaims, error) {
	return m.verifyFunc(token, typ)
}

type mockRevocations struct {
	revoked map[string]bool
	err     error
}

func (m *mockRevocations) IsRevoked(_ context.Context, id string) (bool, error) {
	return m.revoked[id], m.err
}

type mockUsers struct {
	getByIDFunc func(ctx context.Context, id uuid.UUID) (*models.User, error)
}

func (m *mockUsers) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return m.getByIDFunc(ctx, id)
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	user := &models.User{ID: uuid.New(), Email: "a@b.com", IsActive: true}
	validClaims := &models.TokenClaims{Subject: user.ID.String(), ID: "jti-ok", Type: models.TokenTypeAccess, ExpiresAt: time.Now().Add(time.Minute)}

	verifier := &mockVerifier{verifyFunc: func(token string, typ models.TokenType) (*models.TokenClaims, error) {
		if typ != models.TokenTypeAccess {
			return nil, errors.New("wrong type")
		}
		switch token {
		case "good":
			return validClaims, nil
		case "revoked":
			return &models.TokenClaims{Subject: user.ID.String(), ID: "jti-revoked"}, nil
		case "ghost":
			return &models.TokenClaims{Subject: uuid.NewString(), ID: "jti-ghost"}, nil
		case "dberror":
			return &models.TokenClaims{Subject: uuid.Nil.String(), ID: "jti-db"}, nil
		default:
			return nil, errors.New("invalid token")
		}
	}}
	users := &mockUsers{getByIDFunc: func(_ context.Context, id uuid.UUID) (*models.User, error) {
		switch id {
		case user.ID:
			return user, nil
		case uuid.Nil:
			return nil, errors.New("connection refused")
		default:
			return nil, database.ErrNotFound
		}
	}}
	revocations := &mockRevocations{revoked: map[string]bool{"jti-revoked": true}}

	tests := []struct {
		name          string
		header        string
		revocations   RevocationChecker
		wantStatus    int
		wantChallenge bool
	}{
		{"valid token", "Bearer good", revocations, http.StatusOK, false},
		{"missing header", "", revocations, http.StatusForbidden, false},
		{"wrong scheme", "Basic abc", revocations, http.StatusForbidden, false},
		{"invalid token", "Bearer nope", revocations, http.StatusUnauthorized, true},
		{"revoked token", "Bearer revoked", revocations, http.StatusUnauthorized, true},
		{"unknown user", "Bearer ghost", revocations, http.StatusUnauthorized, true},
		{"database failure", "Bearer dberror", revocations, http.StatusInternalServerError, false},
		{"store failure", "Bearer good", &mockRevocations{err: errors.New("redis down")}, http.StatusServiceUnavailable, false},
		{"no revocation store", "Bearer good", nil, http.StatusOK, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var gotUser *models.User
			var gotClaims *models.TokenClaims
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUser = request.UserFromContext(r)
				gotClaims = request.ClaimsFromContext(r)
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest("GET", "/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			RequireAuth(verifier, tt.revocations, users, zap.NewNop())(next).ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d (%s)", tt.wantStatus, w.Code, w.Body.String())
			}
			if got := w.Header().Get("WWW-Authenticate") == "Bearer"; got != tt.wantChallenge {
				t.Errorf("WWW-Authenticate present = %v, want %v", got, tt.wantChallenge)
			}
			if tt.wantStatus == http.StatusOK {
				if gotUser != user {
					t.Error("Expected user in context")
				}
				if gotClaims != validClaims {
					t.Error("Expected claims in context")
				}
			}
		})
	}
}
