// Package sessions keeps short-lived authentication state: revoked token ids
// and one-time wallet sign-in nonces.
package sessions

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// ErrNonceNotFound is returned when a nonce was never issued, has expired or was already used.
var ErrNonceNotFound = errors.New("nonce not found")

// Store holds revocations and nonces until they expire.
type Store interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	// PutNonce records nonce as issued to address. Outstanding nonces for the
	// same address stay valid.
	PutNonce(ctx context.Context, nonce, address string, ttl time.Duration) error
	// ConsumeNonce deletes the nonce and returns the address it was issued to,
	// so it can be used only once.
	ConsumeNonce(ctx context.Context, nonce string) (string, error)
}

// NewNonce returns 16 random bytes as hex.
func NewNonce() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	return hex.EncodeToString(b), nil
}
