package models

import "time"

// RatelimitScopeSignIn covers the unauthenticated sign-in endpoints:
// signup, login, Google and wallet.
const RatelimitScopeSignIn = "sign_in"

// RatelimitConfig is the stored rate for a scope, in limiter notation
// such as "5-S" or "100-M".
type RatelimitConfig struct {
	Scope     string    `json:"scope"`
	Rate      string    `json:"rate"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
