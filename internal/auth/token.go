package auth

import (
	"context"
	"time"

	"golang.org/x/oauth2"
)

// Photos Library scopes requested at sign-in.
const (
	ScopePhotosReadonly = "https://www.googleapis.com/auth/photoslibrary.readonly"
	ScopePhotosSharing  = "https://www.googleapis.com/auth/photoslibrary.sharing"
)

// DefaultScopes returns the scopes albumlens asks for by default.
func DefaultScopes() []string {
	return []string{ScopePhotosReadonly, ScopePhotosSharing}
}

// Token is the implicit-grant token response. It lives only in memory for
// the session.
type Token struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope"`
	TokenType   string `json:"token_type"`
	Error       string `json:"error,omitempty"`

	issued time.Time
}

// OAuth2 converts the token for use with golang.org/x/oauth2 helpers.
func (t Token) OAuth2() *oauth2.Token {
	tok := &oauth2.Token{AccessToken: t.AccessToken, TokenType: t.TokenType}
	if t.ExpiresIn > 0 {
		issued := t.issued
		if issued.IsZero() {
			issued = time.Now()
		}
		tok.Expiry = issued.Add(time.Duration(t.ExpiresIn) * time.Second)
	}
	return tok
}

// TokenRequest is what a Provider needs to start a consent flow.
type TokenRequest struct {
	ClientID string
	Scopes   []string
}

// Provider is the identity provider capability: it runs the consent flow
// and revokes tokens.
type Provider interface {
	RequestToken(ctx context.Context, req TokenRequest) (Token, error)
	Revoke(ctx context.Context, accessToken string) error
}
