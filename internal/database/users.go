package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/benvon/sailor-swift/internal/models"
	"github.com/google/uuid"
)

const userColumns = `id, email, username, first_name, last_name, password_hash, google_id,
	wallet_address, is_active, is_verified, created_at, updated_at`

// UserRepository handles user database operations
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user. A zero ID is replaced with a random one.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	query := `
		INSERT INTO users (id, email, username, first_name, last_name, password_hash, google_id,
			wallet_address, is_active, is_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		user.ID,
		user.Email,
		user.Username,
		user.FirstName,
		user.LastName,
		user.PasswordHash,
		user.GoogleID,
		user.WalletAddress,
		user.IsActive,
		user.IsVerified,
		time.Now().UTC(),
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", mapWriteError(err))
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getOne(ctx, "id", id)
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, "email", email)
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, "username", username)
}

// GetByGoogleID retrieves a user by the Google subject identifier
func (r *UserRepository) GetByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	return r.getOne(ctx, "google_id", googleID)
}

// GetByWalletAddress retrieves a user by lowercase wallet address
func (r *UserRepository) GetByWalletAddress(ctx context.Context, address string) (*models.User, error) {
	return r.getOne(ctx, "wallet_address", address)
}

// column is always one of the fixed names above, never user input.
func (r *UserRepository) getOne(ctx context.Context, column string, value any) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, value))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user not found: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by %s: %w", column, err)
	}
	return user, nil
}

// Update writes every mutable field of the user back to the database.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET email = $2, username = $3, first_name = $4, last_name = $5, password_hash = $6,
			google_id = $7, wallet_address = $8, is_active = $9, is_verified = $10, updated_at = $11
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		user.ID,
		user.Email,
		user.Username,
		user.FirstName,
		user.LastName,
		user.PasswordHash,
		user.GoogleID,
		user.WalletAddress,
		user.IsActive,
		user.IsVerified,
		time.Now().UTC(),
	).Scan(&user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("user not found: %w", ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to update user: %w", mapWriteError(err))
	}
	return nil
}

// SetActive enables or disables sign-in for the user with the given email.
func (r *UserRepository) SetActive(ctx context.Context, email string, active bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET is_active = $2, updated_at = $3 WHERE email = $1`,
		email, active, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to set user active: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user not found: %w", ErrNotFound)
	}
	return nil
}

// List returns users ordered by creation time, newest first.
func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	var updatedAt sql.NullTime
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.PasswordHash,
		&user.GoogleID,
		&user.WalletAddress,
		&user.IsActive,
		&user.IsVerified,
		&user.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	if updatedAt.Valid {
		user.UpdatedAt = updatedAt.Time
	}
	return user, nil
}

// mapWriteError turns unique violations into ErrDuplicate, keeping the
// constraint name in the message so callers can tell email from username.
func mapWriteError(err error) error {
	if constraint, ok := isUniqueViolation(err); ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, constraint)
	}
	return err
}
