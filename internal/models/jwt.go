package models

import "time"

// TokenType distinguishes short-lived access tokens from refresh tokens.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// TokenClaims represents the claims carried by a token issued by this API
type TokenClaims struct {
	Subject   string    `json:"sub"` // user ID
	ID        string    `json:"jti"` // token ID, used for revocation
	Type      TokenType `json:"typ"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

// Remaining returns how long the token stays valid after now, never negative.
func (c *TokenClaims) Remaining(now time.Time) time.Duration {
	d := c.ExpiresAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}
