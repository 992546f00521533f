package request

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/benvon/sailor-swift/internal/models"
)

type contextKey string

const (
	userContextKey     contextKey = "user"
	claimsContextKey   contextKey = "claims"
	clientIPContextKey contextKey = "client_ip"
)

// UserContextKey returns the context key used for the user. Exposed for tests that inject non-user values.
func UserContextKey() contextKey { return userContextKey }

// ClientIP returns the address stored by WithClientIP, or the host part of
// r.RemoteAddr. Forwarding headers are never read here.
func ClientIP(r *http.Request) string {
	if ip, ok := r.Context().Value(clientIPContextKey).(string); ok && ip != "" {
		return ip
	}
	return remoteHost(r)
}

// WithClientIP returns a context carrying the resolved client address.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey, ip)
}

// ForwardedClientIP resolves the client address when trustedProxies reverse
// proxies sit in front of the server, each appending the address it received
// the request from to X-Forwarded-For. The hop list is read right to left and
// the first address not added by a trusted proxy wins. Anything malformed, or
// a chain shorter than the proxy count, falls back to the socket address.
func ForwardedClientIP(r *http.Request, trustedProxies int) string {
	remote := remoteHost(r)
	if trustedProxies <= 0 {
		return remote
	}
	var hops []string
	for _, v := range r.Header.Values("X-Forwarded-For") {
		for _, part := range strings.Split(v, ",") {
			hops = append(hops, strings.TrimSpace(part))
		}
	}
	hops = append(hops, remote)

	i := len(hops) - 1 - trustedProxies
	if i < 0 {
		return remote
	}
	if net.ParseIP(hops[i]) == nil {
		return remote
	}
	return hops[i]
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// BearerToken returns the token from an "Authorization: Bearer <token>" header.
// The scheme is matched case-insensitively.
func BearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// WithUser returns a context with the user attached.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the user from the request context, or nil if missing or wrong type.
func UserFromContext(r *http.Request) *models.User {
	u, _ := r.Context().Value(userContextKey).(*models.User)
	return u
}

// WithClaims returns a context carrying the verified access token claims.
func WithClaims(ctx context.Context, claims *models.TokenClaims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// ClaimsFromContext returns the access token claims, or nil if missing.
func ClaimsFromContext(r *http.Request) *models.TokenClaims {
	c, _ := r.Context().Value(claimsContextKey).(*models.TokenClaims)
	return c
}
