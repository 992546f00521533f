package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/benvon/sailor-swift/internal/models"
)

// RatelimitConfigRepository stores the sign-in rate limit.
type RatelimitConfigRepository struct {
	db    *DB
	scope string
}

// NewRatelimitConfigRepository returns a repository for the sign-in scope.
func NewRatelimitConfigRepository(db *DB) *RatelimitConfigRepository {
	return &RatelimitConfigRepository{db: db, scope: models.RatelimitScopeSignIn}
}

// Get returns the stored rate, or nil when none has been set.
func (r *RatelimitConfigRepository) Get(ctx context.Context) (*models.RatelimitConfig, error) {
	c := &models.RatelimitConfig{}
	err := r.db.QueryRowContext(ctx,
		`SELECT scope, rate, created_at, updated_at FROM ratelimit_config WHERE scope = $1`,
		r.scope,
	).Scan(&c.Scope, &c.Rate, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get ratelimit config: %w", err)
	}
	return c, nil
}

// Set stores c.Rate for the scope and fills in the scope and timestamps.
func (r *RatelimitConfigRepository) Set(ctx context.Context, c *models.RatelimitConfig) error {
	rate := strings.TrimSpace(c.Rate)
	if rate == "" {
		return errors.New("rate cannot be empty")
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO ratelimit_config (scope, rate)
		VALUES ($1, $2)
		ON CONFLICT (scope) DO UPDATE SET rate = EXCLUDED.rate, updated_at = NOW()
		RETURNING created_at, updated_at
	`, r.scope, rate).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("set ratelimit config: %w", err)
	}
	c.Scope = r.scope
	c.Rate = rate
	return nil
}

// Reset removes the stored rate so the API falls back to RATE_LIMIT_DEFAULT.
// It reports whether a row existed.
func (r *RatelimitConfigRepository) Reset(ctx context.Context) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM ratelimit_config WHERE scope = $1`, r.scope)
	if err != nil {
		return false, fmt.Errorf("reset ratelimit config: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reset ratelimit config: %w", err)
	}
	return n > 0, nil
}
