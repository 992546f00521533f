package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User represents an account. A user signs in with a password, a Google
// identity, a wallet signature, or any combination of the three.
type User struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	Username      *string   `json:"username,omitempty"`
	FirstName     *string   `json:"first_name,omitempty"`
	LastName      *string   `json:"last_name,omitempty"`
	PasswordHash  *string   `json:"-"`
	GoogleID      *string   `json:"-"`
	WalletAddress *string   `json:"wallet_address,omitempty"`
	IsActive      bool      `json:"is_active"`
	IsVerified    bool      `json:"is_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// FullName joins first and last name, falling back to whichever one is set,
// then to the username and finally to the email.
func (u *User) FullName() string {
	first := deref(u.FirstName)
	last := deref(u.LastName)
	switch {
	case first != "" && last != "":
		return first + " " + last
	case first != "":
		return first
	case last != "":
		return last
	case deref(u.Username) != "":
		return *u.Username
	default:
		return u.Email
	}
}

// HasPassword reports whether the user can sign in with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// UserResponse is the public representation of a user returned by the API.
type UserResponse struct {
	ID            uuid.UUID  `json:"id"`
	Email         string     `json:"email"`
	Username      *string    `json:"username"`
	FirstName     *string    `json:"firstName"`
	LastName      *string    `json:"lastName"`
	FullName      string     `json:"fullName"`
	WalletAddress *string    `json:"walletAddress"`
	IsActive      bool       `json:"isActive"`
	IsVerified    bool       `json:"isVerified"`
	CreatedAt     *time.Time `json:"createdAt"`
	UpdatedAt     *time.Time `json:"updatedAt"`
}

// ToResponse converts the user into its API shape. Credentials never leave
// the server.
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		Username:      u.Username,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		FullName:      u.FullName(),
		WalletAddress: u.WalletAddress,
		IsActive:      u.IsActive,
		IsVerified:    u.IsVerified,
		CreatedAt:     timePtr(u.CreatedAt),
		UpdatedAt:     timePtr(u.UpdatedAt),
	}
}

// TokenResponse is returned by every endpoint that signs a user in.
type TokenResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	TokenType    string       `json:"tokenType"`
	User         UserResponse `json:"user"`
}

// NewTokenResponse builds a bearer TokenResponse for the user.
func NewTokenResponse(access, refresh string, user *User) TokenResponse {
	return TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		User:         user.ToResponse(),
	}
}

// StringPtr returns a pointer to the trimmed value, or nil when it is blank.
func StringPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
