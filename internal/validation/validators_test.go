package validation

import (
	"strings"
	"testing"
)

type signupLike struct {
	Email    string  `json:"email" validate:"required,email,unreserved_email"`
	Password string  `json:"password" validate:"required,min=8"`
	Username *string `json:"username" validate:"omitempty,username"`
}

type walletLike struct {
	Signature string `json:"signature" validate:"required,wallet_signature"`
}

func strPtr(s string) *string { return &s }

func TestStruct(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		input       any
		wantErr     bool
		errContains string
	}{
		{"valid signup", signupLike{Email: "a@b.com", Password: "password1"}, false, ""},
		{"valid username", signupLike{Email: "a@b.com", Password: "password1", Username: strPtr("ada_l")}, false, ""},
		{"bad email", signupLike{Email: "nope", Password: "password1"}, true, "email must be a valid email address"},
		{"short password", signupLike{Email: "a@b.com", Password: "short"}, true, "password must be at least 8 characters"},
		{"bad username", signupLike{Email: "a@b.com", Password: "password1", Username: strPtr("a b")}, true, "username must be"},
		{"missing email", signupLike{Password: "password1"}, true, "email is required"},
		{
			name:        "reserved wallet domain",
			input:       signupLike{Email: "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266@Wallet.Local", Password: "password1"},
			wantErr:     true,
			errContains: "email must not use the wallet.local domain",
		},
		{"lookalike domain allowed", signupLike{Email: "a@notwallet.local", Password: "password1"}, false, ""},
		{
			name:  "valid signature with prefix",
			input: walletLike{Signature: "0x" + strings.Repeat("ab", 65)},
		},
		{
			name:  "valid signature without prefix",
			input: walletLike{Signature: strings.Repeat("ab", 65)},
		},
		{
			name:        "bad signature",
			input:       walletLike{Signature: "0xabc"},
			wantErr:     true,
			errContains: "signature must be a 65-byte hex signature",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := Struct(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Struct() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("Expected error containing %q, got %q", tt.errContains, err.Error())
			}
		})
	}
}

func TestSanitizeText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"  hello  ", "hello"},
		{"a\x00b", "ab"},
		{"line\nnext", "line\nnext"},
	}
	for _, tt := range tests {
		if got := SanitizeText(tt.input); got != tt.want {
			t.Errorf("SanitizeText(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestIsReservedEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		email string
		want  bool
	}{
		{WalletEmail("0xabc"), true},
		{" 0xABC@WALLET.LOCAL ", true},
		{"a@sub.wallet.local", true},
		{"a@notwallet.local", false},
		{"a@example.com", false},
		{"wallet.local", false},
	}
	for _, tt := range tests {
		if got := IsReservedEmail(tt.email); got != tt.want {
			t.Errorf("IsReservedEmail(%q) = %v, want %v", tt.email, got, tt.want)
		}
	}
}
