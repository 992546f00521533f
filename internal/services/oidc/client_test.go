package oidc

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/oauth2"
)

func newTestClient(t *testing.T, body string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.Form.Get("code") != "good-code" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	c := NewClient("cid", "secret", "http://localhost:5173/auth/callback")
	c.config.Endpoint = oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"}
	return c
}

func TestExchangeIDToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		code    string
		want    string
		wantErr error
	}{
		{
			name: "returns id token",
			body: `{"access_token":"at","token_type":"Bearer","expires_in":3600,"id_token":"header.payload.sig"}`,
			code: "good-code",
			want: "header.payload.sig",
		},
		{
			name:    "missing id token",
			body:    `{"access_token":"at","token_type":"Bearer"}`,
			code:    "good-code",
			wantErr: ErrNoIDToken,
		},
		{
			name: "rejected code",
			body: `{"access_token":"at","token_type":"Bearer","id_token":"x"}`,
			code: "expired",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := newTestClient(t, tt.body)
			got, err := c.ExchangeIDToken(context.Background(), tt.code)
			switch {
			case tt.want != "":
				if err != nil || got != tt.want {
					t.Fatalf("ExchangeIDToken() = %q, %v; want %q", got, err, tt.want)
				}
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ExchangeIDToken() error = %v, want %v", err, tt.wantErr)
				}
			default:
				if err == nil {
					t.Fatal("Expected error for rejected code")
				}
			}
		})
	}
}
