package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestUser_FullName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		user User
		want string
	}{
		{
			name: "first and last",
			user: User{Email: "a@b.com", FirstName: StringPtr("Ada"), LastName: StringPtr("Lovelace")},
			want: "Ada Lovelace",
		},
		{
			name: "first only",
			user: User{Email: "a@b.com", FirstName: StringPtr("Ada")},
			want: "Ada",
		},
		{
			name: "last only",
			user: User{Email: "a@b.com", LastName: StringPtr("Lovelace")},
			want: "Lovelace",
		},
		{
			name: "username fallback",
			user: User{Email: "a@b.com", Username: StringPtr("ada")},
			want: "ada",
		},
		{
			name: "email fallback",
			user: User{Email: "a@b.com"},
			want: "a@b.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.user.FullName(); got != tt.want {
				t.Errorf("FullName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUser_ToResponseOmitsCredentials(t *testing.T) {
	t.Parallel()

	hash := "$2a$10$secret"
	google := "google-sub"
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	u := User{
		ID:           uuid.New(),
		Email:        "a@b.com",
		PasswordHash: &hash,
		GoogleID:     &google,
		IsActive:     true,
		CreatedAt:    now,
	}

	data, err := json.Marshal(u.ToResponse())
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	for _, key := range []string{"id", "email", "username", "firstName", "lastName", "fullName", "walletAddress", "isActive", "isVerified", "createdAt", "updatedAt"} {
		if _, ok := got[key]; !ok {
			t.Errorf("Expected key %q in response", key)
		}
	}
	for _, key := range []string{"password_hash", "passwordHash", "google_id", "googleId"} {
		if _, ok := got[key]; ok {
			t.Errorf("Response must not contain %q", key)
		}
	}
	if got["updatedAt"] != nil {
		t.Errorf("Expected null updatedAt for zero time, got %v", got["updatedAt"])
	}
	if got["createdAt"] != "2024-01-02T03:04:05Z" {
		t.Errorf("Unexpected createdAt %v", got["createdAt"])
	}
}

func TestNewTokenResponse(t *testing.T) {
	t.Parallel()

	u := &User{ID: uuid.New(), Email: "a@b.com"}
	resp := NewTokenResponse("access", "refresh", u)
	if resp.TokenType != "bearer" {
		t.Errorf("Expected token type 'bearer', got %q", resp.TokenType)
	}
	if resp.User.ID != u.ID {
		t.Errorf("Expected user id %s, got %s", u.ID, resp.User.ID)
	}
}

func TestStringPtr(t *testing.T) {
	t.Parallel()

	if StringPtr("  ") != nil {
		t.Error("Expected nil for blank input")
	}
	if p := StringPtr(" x "); p == nil || *p != "x" {
		t.Errorf("Expected trimmed 'x', got %v", p)
	}
}

func TestTokenClaims_Remaining(t *testing.T) {
	t.Parallel()

	now := time.Now()
	c := TokenClaims{ExpiresAt: now.Add(time.Minute)}
	if got := c.Remaining(now); got != time.Minute {
		t.Errorf("Remaining() = %v, want 1m", got)
	}
	c.ExpiresAt = now.Add(-time.Minute)
	if got := c.Remaining(now); got != 0 {
		t.Errorf("Remaining() = %v, want 0", got)
	}
}
