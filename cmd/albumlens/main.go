package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/joshsymonds/albumlens/internal/album"
	"github.com/joshsymonds/albumlens/internal/auth"
	"github.com/joshsymonds/albumlens/internal/photos"
	"github.com/joshsymonds/albumlens/internal/runtime"
	"github.com/joshsymonds/albumlens/internal/view"
)

const clientIDEnv = "ALBUMLENS_CLIENT_ID"

type explorerConfig struct {
	clientID    string
	scopes      string
	listen      string
	pageSize    int
	baseURL     string
	authTimeout time.Duration
	plain       bool
	noBrowser   bool
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		runtime.DefaultLogger().Warn("load .env", "error", err)
	}
	cfg := parseFlags()
	if err := run(cfg); err != nil {
		runtime.DefaultLogger().Error("albumlens failed", "error", err)
		os.Exit(1)
	}
}

func parseFlags() explorerConfig {
	clientID := flag.String("client-id", os.Getenv(clientIDEnv), "Google OAuth client ID (env "+clientIDEnv+")")
	scopes := flag.String("scopes", strings.Join(auth.DefaultScopes(), ","), "comma separated OAuth scopes")
	listen := flag.String("listen", auth.DefaultListenAddr, "loopback address for the sign-in redirect")
	pageSize := flag.Int("page-size", photos.DefaultPageSize, "albums per page (<=50)")
	baseURL := flag.String("base-url", runtime.DefaultPhotosBaseURL, "Photos Library API base URL")
	authTimeout := flag.Duration("auth-timeout", 5*time.Minute, "how long to wait for the sign-in window")
	plain := flag.Bool("plain", false, "print every album and exit instead of browsing")
	noBrowser := flag.Bool("no-browser", false, "print the sign-in URL instead of opening a browser")
	flag.Parse()

	return explorerConfig{
		clientID:    *clientID,
		scopes:      *scopes,
		listen:      *listen,
		pageSize:    *pageSize,
		baseURL:     *baseURL,
		authTimeout: *authTimeout,
		plain:       *plain,
		noBrowser:   *noBrowser,
	}
}

func run(cfg explorerConfig) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := runtime.DefaultLogger()
	gateway := runtime.NewGoogleGateway(runtime.GatewayOptions{
		ListenAddr: cfg.listen,
		Timeout:    cfg.authTimeout,
		NoBrowser:  cfg.noBrowser,
	}, logger)
	defer gateway.Wait()

	client := runtime.NewPhotosClient(cfg.baseURL, nil, logger)
	pager := album.NewPager(client, logger, cfg.pageSize)
	signIn := func(ctx context.Context) (auth.Token, error) {
		return gateway.RequestToken(ctx, cfg.clientID, splitList(cfg.scopes))
	}

	if cfg.plain {
		token, err := signIn(ctx)
		if err != nil {
			writeLoginError(os.Stderr, err)
			return fmt.Errorf("sign in: %w", err)
		}
		state := pager.LoadAll(ctx, token.AccessToken)
		if printErr := view.PrintAlbums(state, os.Stdout); printErr != nil {
			return fmt.Errorf("print albums: %w", printErr)
		}
		if state.Phase == album.PhaseFailed {
			return fmt.Errorf("list albums: %w", state.Failure.Err)
		}
		return nil
	}

	stdin := bufio.NewReader(os.Stdin)
	s := session{
		signIn: signIn,
		explore: func(ctx context.Context, token auth.Token) (bool, error) {
			explorer := view.NewExplorer(ctx, pager, gateway, token)
			if _, runErr := tea.NewProgram(explorer, tea.WithContext(ctx)).Run(); runErr != nil {
				return false, fmt.Errorf("run explorer: %w", runErr)
			}
			return explorer.LoggedOut(), nil
		},
		confirm: func(prompt string) bool {
			return confirm(stdin, os.Stderr, prompt)
		},
		stderr: os.Stderr,
		logger: logger,
	}
	return s.run(ctx)
}

// session alternates between signing in and browsing until the user quits
// without logging out.
type session struct {
	signIn  func(ctx context.Context) (auth.Token, error)
	explore func(ctx context.Context, token auth.Token) (loggedOut bool, err error)
	confirm func(prompt string) bool
	stderr  io.Writer
	logger  *slog.Logger
}

func (s session) run(ctx context.Context) error {
	for {
		token, err := s.signIn(ctx)
		if err != nil {
			writeLoginError(s.stderr, err)
			if ctx.Err() == nil && auth.KindOf(err) == auth.KindPopup && s.confirm("Press Enter to try signing in again, or q to quit: ") {
				continue
			}
			return fmt.Errorf("sign in: %w", err)
		}

		loggedOut, err := s.explore(ctx, token)
		if err != nil {
			return err
		}
		if !loggedOut {
			return nil
		}
		s.logger.Info("signed out")
		if ctx.Err() != nil || !s.confirm("Signed out. Press Enter to sign in again, or q to quit: ") {
			return nil
		}
	}
}

func writeLoginError(w io.Writer, err error) {
	if _, writeErr := io.WriteString(w, view.RenderLoginError(err)); writeErr != nil {
		runtime.DefaultLogger().Warn("write login error", "error", writeErr)
	}
}

// confirm prints prompt and reports whether the answer is anything but q.
// A closed input counts as q.
func confirm(in *bufio.Reader, out io.Writer, prompt string) bool {
	if _, err := io.WriteString(out, prompt); err != nil {
		return false
	}
	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer != "q" && answer != "quit"
}

func splitList(input string) []string {
	if strings.TrimSpace(input) == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
