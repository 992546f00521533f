package database

import (
	"context"

	"github.com/benvon/sailor-swift/internal/models"
	"github.com/google/uuid"
)

// UserRepositoryInterface defines the interface for user repository operations
// This interface enables better testability by allowing mock implementations
type UserRepositoryInterface interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	GetByWalletAddress(ctx context.Context, address string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

// AuthEventRepositoryInterface defines the interface for auth event storage
type AuthEventRepositoryInterface interface {
	Insert(ctx context.Context, event *models.AuthEvent) error
}

// RatelimitConfigStore reads the rate limit configuration.
type RatelimitConfigStore interface {
	Get(ctx context.Context) (*models.RatelimitConfig, error)
}

// Ensure concrete types implement the interfaces
var (
	_ UserRepositoryInterface      = (*UserRepository)(nil)
	_ AuthEventRepositoryInterface = (*AuthEventRepository)(nil)
	_ RatelimitConfigStore         = (*RatelimitConfigRepository)(nil)
)
