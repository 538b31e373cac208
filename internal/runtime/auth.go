// internal/runtime/auth.go
package runtime

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/joshsymonds/albumlens/internal/auth"
)

// GatewayOptions configures the Google consent flow.
type GatewayOptions struct {
	ListenAddr string
	Timeout    time.Duration
	NoBrowser  bool // print the consent URL instead of launching a browser
	Out        io.Writer
}

// NewGoogleGateway wires the browser consent provider into an auth.Gateway.
func NewGoogleGateway(opts GatewayOptions, logger *slog.Logger) *auth.Gateway {
	provider := auth.NewBrowserProvider(opts.ListenAddr, logger)
	if opts.Timeout > 0 {
		provider.Timeout = opts.Timeout
	}
	if opts.NoBrowser {
		out := opts.Out
		if out == nil {
			out = os.Stderr
		}
		provider.Open = func(rawURL string) error {
			_, err := fmt.Fprintf(out, "Open this URL in your browser to sign in:\n\n%s\n\n", rawURL)
			return err
		}
	}
	return auth.NewGateway(provider, logger)
}

func DefaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}
