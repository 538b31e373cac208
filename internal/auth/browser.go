package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/skratchdot/open-golang/open"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	// GoogleRevokeURL is the token revocation endpoint.
	GoogleRevokeURL = "https://oauth2.googleapis.com/revoke"

	DefaultListenAddr     = "127.0.0.1:8085"
	defaultConsentTimeout = 5 * time.Minute
	callbackPath          = "/oauth2callback"
	relayPath             = "/token"
)

// relayPage forwards the implicit-grant fragment to the local listener. The
// fragment never reaches a server on its own.
const relayPage = `<!doctype html>
<html><body><p>Completing sign-in&hellip;</p>
<script>
var q = window.location.hash ? window.location.hash.substring(1) : window.location.search.substring(1);
window.location.replace("` + relayPath + `?" + q);
</script></body></html>`

const (
	donePage   = `<html><body><h1>Signed in</h1><p>You can close this window.</p></body></html>`
	failedPage = `<html><body><h1>Sign-in failed</h1><p>Return to the terminal for details.</p></body></html>`
)

// BrowserProvider runs the implicit-grant consent flow in the system browser
// against a loopback listener.
type BrowserProvider struct {
	Endpoint   oauth2.Endpoint
	RevokeURL  string
	ListenAddr string
	Timeout    time.Duration
	Open       func(rawURL string) error // shows the consent URL to the user
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// NewBrowserProvider returns a provider for Google's consent screen.
func NewBrowserProvider(listenAddr string, logger *slog.Logger) *BrowserProvider {
	if listenAddr == "" {
		listenAddr = DefaultListenAddr
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return &BrowserProvider{
		Endpoint:   google.Endpoint,
		RevokeURL:  GoogleRevokeURL,
		ListenAddr: listenAddr,
		Timeout:    defaultConsentTimeout,
		Open:       open.Run,
		HTTPClient: http.DefaultClient,
		Logger:     logger,
	}
}

type callbackResult struct {
	token Token
	err   error
}

// RequestToken opens the consent page and waits for the redirect.
func (b *BrowserProvider) RequestToken(ctx context.Context, req TokenRequest) (Token, error) {
	ln, err := net.Listen("tcp", b.ListenAddr)
	if err != nil {
		return Token{}, &PopupError{Type: PopupFailedToOpen, Cause: fmt.Errorf("listen %s: %w", b.ListenAddr, err)}
	}
	port := ln.Addr().(*net.TCPAddr).Port
	state := uuid.NewString()
	conf := &oauth2.Config{
		ClientID:    req.ClientID,
		Endpoint:    b.Endpoint,
		RedirectURL: fmt.Sprintf("http://localhost:%d%s", port, callbackPath),
		Scopes:      req.Scopes,
	}
	authURL := conf.AuthCodeURL(
		state,
		oauth2.SetAuthURLParam("response_type", "token"),
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	)

	results := make(chan callbackResult, 1)
	deliver := func(res callbackResult) {
		select {
		case results <- res:
		default:
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, relayPage)
	})
	mux.HandleFunc(relayPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		res := parseCallback(r.URL.Query(), state)
		if res.err != nil || res.token.AccessToken == "" {
			_, _ = io.WriteString(w, failedPage)
		} else {
			_, _ = io.WriteString(w, donePage)
		}
		deliver(res)
	})
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if serveErr := server.Serve(ln); !errors.Is(serveErr, http.ErrServerClosed) {
			deliver(callbackResult{err: &PopupError{Type: PopupFailedToOpen, Cause: serveErr}})
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
			b.Logger.Warn("consent listener shutdown", "error", shutdownErr)
		}
	}()

	b.Logger.InfoContext(ctx, "opening consent page", slog.Int("port", port))
	if openErr := b.Open(authURL); openErr != nil {
		return Token{}, &PopupError{Type: PopupFailedToOpen, Cause: openErr}
	}

	timeout := b.Timeout
	if timeout <= 0 {
		timeout = defaultConsentTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-results:
		return res.token, res.err
	case <-timer.C:
		return Token{}, &PopupError{Type: PopupClosed, Cause: fmt.Errorf("no callback within %s", timeout)}
	case <-ctx.Done():
		return Token{}, fmt.Errorf("wait for consent: %w", ctx.Err())
	}
}

func parseCallback(q url.Values, state string) callbackResult {
	if q.Get("state") != state {
		return callbackResult{err: &PopupError{Type: PopupTokenFailed, Cause: errors.New("state mismatch")}}
	}
	tok := Token{
		AccessToken: q.Get("access_token"),
		Scope:       q.Get("scope"),
		TokenType:   q.Get("token_type"),
		Error:       q.Get("error"),
	}
	if raw := q.Get("expires_in"); raw != "" {
		expires, err := strconv.Atoi(raw)
		if err != nil {
			return callbackResult{err: &PopupError{Type: PopupTokenFailed, Cause: fmt.Errorf("parse expires_in: %w", err)}}
		}
		tok.ExpiresIn = expires
	}
	return callbackResult{token: tok}
}

// Revoke asks the provider to invalidate accessToken.
func (b *BrowserProvider) Revoke(ctx context.Context, accessToken string) error {
	client := b.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	form := url.Values{"token": {accessToken}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.RevokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build revoke request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	res, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("revoke request: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.StatusCode == http.StatusOK {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	reason := gjson.GetBytes(body, "error_description").String()
	if reason == "" {
		reason = gjson.GetBytes(body, "error").String()
	}
	if reason == "" {
		reason = http.StatusText(res.StatusCode)
	}
	return fmt.Errorf("revoke failed with status %d: %s", res.StatusCode, reason)
}

var _ Provider = (*BrowserProvider)(nil)
