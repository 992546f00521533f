package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/benvon/sailor-swift/internal/models"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// ErrInvalidToken covers every reason a token is rejected: bad signature,
// expiry, malformed claims or the wrong token type.
var ErrInvalidToken = errors.New("invalid token")

const claimTokenType = "typ"

// TokenPair is an access token with its matching refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenIssuer signs and verifies HS256 tokens.
type TokenIssuer struct {
	key        []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenIssuer creates an issuer for the given secret and lifetimes.
func NewTokenIssuer(secret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		key:        []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// IssuePair issues a fresh access and refresh token for the user.
func (i *TokenIssuer) IssuePair(userID uuid.UUID) (*TokenPair, error) {
	access, err := i.Issue(userID, models.TokenTypeAccess, i.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := i.Issue(userID, models.TokenTypeRefresh, i.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Issue signs a single token of the given type.
func (i *TokenIssuer) Issue(userID uuid.UUID, typ models.TokenType, ttl time.Duration) (string, error) {
	now := i.now().UTC()
	tok, err := jwt.NewBuilder().
		Subject(userID.String()).
		JwtID(uuid.NewString()).
		IssuedAt(now).
		Expiration(now.Add(ttl)).
		Claim(claimTokenType, string(typ)).
		Build()
	if err != nil {
		return "", fmt.Errorf("build %s token: %w", typ, err)
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, i.key))
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", typ, err)
	}
	return string(signed), nil
}

// Verify checks the signature, expiry and type of a token and returns its claims.
func (i *TokenIssuer) Verify(token string, want models.TokenType) (*models.TokenClaims, error) {
	tok, err := jwt.Parse([]byte(token),
		jwt.WithKey(jwa.HS256, i.key),
		jwt.WithValidate(true),
		jwt.WithClock(jwt.ClockFunc(i.now)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	raw, ok := tok.Get(claimTokenType)
	if !ok {
		return nil, fmt.Errorf("%w: missing token type", ErrInvalidToken)
	}
	typ, ok := raw.(string)
	if !ok || models.TokenType(typ) != want {
		return nil, fmt.Errorf("%w: expected %s token", ErrInvalidToken, want)
	}
	if _, err := uuid.Parse(tok.Subject()); err != nil {
		return nil, fmt.Errorf("%w: malformed subject", ErrInvalidToken)
	}
	if tok.JwtID() == "" {
		return nil, fmt.Errorf("%w: missing token id", ErrInvalidToken)
	}

	return &models.TokenClaims{
		Subject:   tok.Subject(),
		ID:        tok.JwtID(),
		Type:      want,
		IssuedAt:  tok.IssuedAt(),
		ExpiresAt: tok.Expiration(),
	}, nil
}
