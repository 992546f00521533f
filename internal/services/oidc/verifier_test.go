package oidc

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const testClientID = "client-123.apps.googleusercontent.com"

type testIssuer struct {
	signingKey jwk.Key
	server     *httptest.Server
	fetches    atomic.Int32
}

func newTestIssuer(t *testing.T) *testIssuer {
	t.Helper()

	raw, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	priv, err := jwk.FromRaw(raw)
	if err != nil {
		t.Fatalf("FromRaw() error = %v", err)
	}
	_ = priv.Set(jwk.KeyIDKey, "kid-1")
	_ = priv.Set(jwk.AlgorithmKey, jwa.RS256)

	pub, err := priv.PublicKey()
	if err != nil {
		t.Fatalf("PublicKey() error = %v", err)
	}
	set := jwk.NewSet()
	if err := set.AddKey(pub); err != nil {
		t.Fatalf("AddKey() error = %v", err)
	}

	ti := &testIssuer{signingKey: priv}
	ti.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ti.fetches.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(set)
	}))
	t.Cleanup(ti.server.Close)
	return ti
}

func (ti *testIssuer) sign(t *testing.T, mutate func(*jwt.Builder) *jwt.Builder) string {
	t.Helper()
	now := time.Now()
	b := jwt.NewBuilder().
		Issuer("https://accounts.google.com").
		Subject("google-sub-1").
		Audience([]string{testClientID}).
		IssuedAt(now).
		Expiration(now.Add(time.Hour)).
		Claim("email", "ada@example.com").
		Claim("email_verified", true).
		Claim("given_name", "Ada").
		Claim("family_name", "Lovelace")
	if mutate != nil {
		b = mutate(b)
	}
	tok, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.RS256, ti.signingKey))
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	return string(signed)
}

func TestGoogleVerifier_Verify(t *testing.T) {
	t.Parallel()

	ti := newTestIssuer(t)
	v := NewGoogleVerifier(NewJWKSManager(ti.server.Client()), testClientID, ti.server.URL)

	identity, err := v.Verify(context.Background(), ti.sign(t, nil))
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if identity.Subject != "google-sub-1" {
		t.Errorf("Expected subject 'google-sub-1', got %q", identity.Subject)
	}
	if identity.Email != "ada@example.com" || !identity.EmailVerified {
		t.Errorf("Unexpected email claims: %+v", identity)
	}
	if identity.GivenName != "Ada" || identity.FamilyName != "Lovelace" {
		t.Errorf("Unexpected name claims: %+v", identity)
	}

	if _, err := v.Verify(context.Background(), ti.sign(t, func(b *jwt.Builder) *jwt.Builder {
		return b.Issuer("accounts.google.com")
	})); err != nil {
		t.Errorf("Expected bare issuer to be accepted, got %v", err)
	}

	if got := ti.fetches.Load(); got != 1 {
		t.Errorf("Expected JWKS to be fetched once, got %d", got)
	}
}

func TestGoogleVerifier_Rejects(t *testing.T) {
	t.Parallel()

	ti := newTestIssuer(t)
	v := NewGoogleVerifier(NewJWKSManager(ti.server.Client()), testClientID, ti.server.URL)

	tests := []struct {
		name   string
		mutate func(*jwt.Builder) *jwt.Builder
	}{
		{"wrong audience", func(b *jwt.Builder) *jwt.Builder { return b.Audience([]string{"someone-else"}) }},
		{"wrong issuer", func(b *jwt.Builder) *jwt.Builder { return b.Issuer("https://evil.example.com") }},
		{"expired", func(b *jwt.Builder) *jwt.Builder {
			return b.IssuedAt(time.Now().Add(-3 * time.Hour)).Expiration(time.Now().Add(-2 * time.Hour))
		}},
		{"missing email", func(b *jwt.Builder) *jwt.Builder { return b.Claim("email", "") }},
		{"missing subject", func(b *jwt.Builder) *jwt.Builder { return b.Subject("") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := v.Verify(context.Background(), ti.sign(t, tt.mutate))
			if !errors.Is(err, ErrInvalidIDToken) {
				t.Errorf("Expected ErrInvalidIDToken, got %v", err)
			}
		})
	}

	if _, err := v.Verify(context.Background(), "garbage"); !errors.Is(err, ErrInvalidIDToken) {
		t.Errorf("Expected ErrInvalidIDToken for garbage, got %v", err)
	}
}

func TestGoogleVerifier_NotConfigured(t *testing.T) {
	t.Parallel()

	v := NewGoogleVerifier(NewJWKSManager(nil), "", "")
	if _, err := v.Verify(context.Background(), "x"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Expected ErrNotConfigured, got %v", err)
	}
	if v.jwksURL != GoogleJWKSURL {
		t.Errorf("Expected default JWKS URL, got %q", v.jwksURL)
	}
}

func TestJWKSManager_FetchError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	m := NewJWKSManager(srv.Client())
	if _, err := m.GetJWKS(context.Background(), srv.URL); err == nil {
		t.Error("Expected error for non-200 JWKS response")
	}
}

func TestClient_LoginConfig(t *testing.T) {
	t.Parallel()

	c := NewClient("cid", "secret", "http://localhost:5173/auth/callback")
	cfg := c.LoginConfig()
	if cfg.ClientID != "cid" {
		t.Errorf("Expected ClientID 'cid', got %q", cfg.ClientID)
	}
	if cfg.AuthorizationEndpoint != "https://accounts.google.com/o/oauth2/auth" {
		t.Errorf("Unexpected authorization endpoint %q", cfg.AuthorizationEndpoint)
	}
	if cfg.Scope != "openid email profile" {
		t.Errorf("Unexpected scope %q", cfg.Scope)
	}
	if cfg.RedirectURI != "http://localhost:5173/auth/callback" {
		t.Errorf("Unexpected redirect uri %q", cfg.RedirectURI)
	}

	url := c.AuthCodeURL("state-1")
	if url == "" || !strings.Contains(url, "state=state-1") || !strings.Contains(url, "client_id=cid") {
		t.Errorf("Unexpected auth code URL %q", url)
	}
}
