package oidc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var defaultScopes = []string{"openid", "email", "profile"}

// Client wraps the OAuth2 configuration of the Google web client.
type Client struct {
	config *oauth2.Config
}

// NewClient creates a Google OAuth2 client. The secret may be empty for
// frontends that only use the implicit ID token flow.
func NewClient(clientID, clientSecret, redirectURL string) *Client {
	return &Client{config: &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       defaultScopes,
		Endpoint:     google.Endpoint,
	}}
}

// ExchangeCode exchanges an authorization code for tokens
func (c *Client) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	return c.config.Exchange(ctx, code)
}

// ErrNoIDToken is returned when a token response carries no id_token.
var ErrNoIDToken = errors.New("token response has no id_token")

// ExchangeIDToken exchanges an authorization code and returns the ID token
// from the response.
func (c *Client) ExchangeIDToken(ctx context.Context, code string) (string, error) {
	token, err := c.ExchangeCode(ctx, code)
	if err != nil {
		return "", fmt.Errorf("exchange authorization code: %w", err)
	}
	idToken, _ := token.Extra("id_token").(string)
	if idToken == "" {
		return "", ErrNoIDToken
	}
	return idToken, nil
}

// AuthCodeURL returns the authorization URL
func (c *Client) AuthCodeURL(state string) string {
	return c.config.AuthCodeURL(state)
}

// LoginConfig contains the settings a frontend needs to start Google sign-in
type LoginConfig struct {
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	ClientID              string `json:"client_id"`
	RedirectURI           string `json:"redirect_uri"`
	Scope                 string `json:"scope"`
}

// LoginConfig returns the public part of the client configuration.
func (c *Client) LoginConfig() LoginConfig {
	return LoginConfig{
		AuthorizationEndpoint: c.config.Endpoint.AuthURL,
		TokenEndpoint:         c.config.Endpoint.TokenURL,
		ClientID:              c.config.ClientID,
		RedirectURI:           c.config.RedirectURL,
		Scope:                 strings.Join(c.config.Scopes, " "),
	}
}
