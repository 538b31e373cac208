package auth

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

const defaultRevokeTimeout = 10 * time.Second

// Gateway wraps a Provider and turns its outcomes into classified errors.
type Gateway struct {
	Provider      Provider
	Logger        *slog.Logger
	Clock         func() time.Time
	RevokeTimeout time.Duration

	revokes sync.WaitGroup
}

// NewGateway constructs a Gateway with sane defaults.
func NewGateway(provider Provider, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return &Gateway{
		Provider:      provider,
		Logger:        logger,
		Clock:         time.Now,
		RevokeTimeout: defaultRevokeTimeout,
	}
}

// RequestToken runs the consent flow. A missing or placeholder client ID
// fails locally without contacting the provider.
func (g *Gateway) RequestToken(ctx context.Context, clientID string, scopes []string) (Token, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" || strings.Contains(clientID, placeholderClientID) {
		return Token{}, &Error{Kind: KindConfiguration, Message: "google client id is missing"}
	}
	if len(scopes) == 0 {
		scopes = DefaultScopes()
	}

	tok, err := g.Provider.RequestToken(ctx, TokenRequest{ClientID: clientID, Scopes: scopes})
	if err != nil {
		g.Logger.ErrorContext(ctx, "consent flow failed", "error", err)
		var perr *PopupError
		if errors.As(err, &perr) && isKnownPopupFailure(perr.Type) {
			return Token{}, &Error{Kind: KindPopup, Message: "sign-in window closed unexpectedly", Err: err}
		}
		return Token{}, &Error{Kind: KindUnexpected, Message: "unexpected error during sign-in", Err: err}
	}
	if tok.AccessToken != "" {
		tok.issued = g.Clock()
		g.Logger.InfoContext(ctx, "signed in", slog.String("scope", tok.Scope), slog.Int("expires_in", tok.ExpiresIn))
		return tok, nil
	}
	if tok.Error != "" {
		g.Logger.ErrorContext(ctx, "google auth error", slog.String("error", tok.Error))
		return Token{}, &Error{Kind: KindDenied, Message: "google authentication failed: " + tok.Error}
	}
	return Token{}, &Error{Kind: KindUnexpected, Message: "provider returned neither a token nor an error"}
}

// RevokeToken revokes tok in the background. Sign-out never waits on it;
// the outcome is only logged.
func (g *Gateway) RevokeToken(tok Token) {
	if tok.AccessToken == "" {
		return
	}
	timeout := g.RevokeTimeout
	if timeout <= 0 {
		timeout = defaultRevokeTimeout
	}
	g.revokes.Add(1)
	go func() {
		defer g.revokes.Done()
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := g.Provider.Revoke(ctx, tok.AccessToken); err != nil {
			g.Logger.Warn("token revoke failed", "error", err)
			return
		}
		g.Logger.Info("token revoked")
	}()
}

// Wait blocks until background revokes have finished.
func (g *Gateway) Wait() {
	g.revokes.Wait()
}

func isKnownPopupFailure(kind string) bool {
	switch kind {
	case PopupClosed, PopupFailedToOpen, PopupTokenFailed:
		return true
	default:
		return false
	}
}
