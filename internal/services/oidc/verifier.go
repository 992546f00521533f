package oidc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	// GoogleJWKSURL serves the keys Google signs ID tokens with.
	GoogleJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"
)

// googleIssuers are the two issuer spellings Google uses for ID tokens.
var googleIssuers = map[string]bool{
	"accounts.google.com":         true,
	"https://accounts.google.com": true,
}

var (
	// ErrNotConfigured is returned when no Google client id is set.
	ErrNotConfigured = errors.New("google sign-in is not configured")
	// ErrInvalidIDToken is returned for any token that fails verification.
	ErrInvalidIDToken = errors.New("invalid google id token")
)

// GoogleIdentity holds the claims of a verified Google ID token.
type GoogleIdentity struct {
	Subject       string
	Email         string
	EmailVerified bool
	GivenName     string
	FamilyName    string
	Name          string
}

// GoogleVerifier verifies Google ID tokens issued for one OAuth client.
type GoogleVerifier struct {
	jwksManager *JWKSManager
	jwksURL     string
	clientID    string
	now         func() time.Time
}

// NewGoogleVerifier creates a verifier for tokens whose audience is clientID.
// An empty jwksURL uses GoogleJWKSURL.
func NewGoogleVerifier(jwksManager *JWKSManager, clientID, jwksURL string) *GoogleVerifier {
	if jwksURL == "" {
		jwksURL = GoogleJWKSURL
	}
	return &GoogleVerifier{
		jwksManager: jwksManager,
		jwksURL:     jwksURL,
		clientID:    clientID,
		now:         time.Now,
	}
}

// Verify checks signature, expiry, issuer and audience of a Google ID token
// and returns the identity it asserts.
func (v *GoogleVerifier) Verify(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	if v.clientID == "" {
		return nil, ErrNotConfigured
	}

	keys, err := v.jwksManager.GetJWKS(ctx, v.jwksURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get JWKS: %w", err)
	}

	token, err := jwt.Parse([]byte(idToken),
		jwt.WithKeySet(keys),
		jwt.WithValidate(true),
		jwt.WithAudience(v.clientID),
		jwt.WithClock(jwt.ClockFunc(v.now)),
		jwt.WithAcceptableSkew(30*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIDToken, err)
	}

	if !googleIssuers[token.Issuer()] {
		return nil, fmt.Errorf("%w: unexpected issuer %q", ErrInvalidIDToken, token.Issuer())
	}

	identity := &GoogleIdentity{
		Subject:       token.Subject(),
		Email:         stringClaim(token, "email"),
		EmailVerified: boolClaim(token, "email_verified"),
		GivenName:     stringClaim(token, "given_name"),
		FamilyName:    stringClaim(token, "family_name"),
		Name:          stringClaim(token, "name"),
	}
	if identity.Subject == "" || identity.Email == "" {
		return nil, fmt.Errorf("%w: missing subject or email", ErrInvalidIDToken)
	}
	return identity, nil
}

func stringClaim(token jwt.Token, name string) string {
	if v, ok := token.Get(name); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// boolClaim accepts both JSON booleans and the "true" string some issuers send.
func boolClaim(token jwt.Token, name string) bool {
	v, ok := token.Get(name)
	if !ok {
		return false
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b == "true"
	default:
		return false
	}
}
