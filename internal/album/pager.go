// Package album accumulates paginated album listings into a single ordered
// list and classifies failures for display.
package album

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/joshsymonds/albumlens/internal/photos"
)

// Phase is the pager's loading state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoadingFirst
	PhaseLoadingMore
	PhaseReady
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoadingFirst:
		return "loading-first"
	case PhaseLoadingMore:
		return "loading-more"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Loading reports whether a request is outstanding.
func (p Phase) Loading() bool {
	return p == PhaseLoadingFirst || p == PhaseLoadingMore
}

// OutcomeKind selects the error surface shown for a failed load.
type OutcomeKind int

const (
	// OutcomeFailure is any failure that may clear up after signing in again.
	OutcomeFailure OutcomeKind = iota + 1
	// OutcomeSetupRequired means the Photos Library API must be enabled in
	// the Cloud console before any request can succeed.
	OutcomeSetupRequired
)

// SessionHint accompanies generic failures.
const SessionHint = "Your session may have expired. Please try logging out and back in."

// EnableAPIURL is where the Photos Library API is enabled for a project.
const EnableAPIURL = "https://console.cloud.google.com/apis/library/photoslibrary.googleapis.com"

// Failure describes the last failed load.
type Failure struct {
	Kind    OutcomeKind
	Message string
	Hint    string
	Err     error
}

// State is a snapshot of the pager.
type State struct {
	Albums        []photos.Album
	NextPageToken string
	Phase         Phase
	Failure       *Failure
}

// HasMore reports whether another page can be requested.
func (s State) HasMore() bool { return s.NextPageToken != "" }

// Pager drives album retrieval. Start and LoadMore serialize on the phase:
// while a load is outstanding both are no-ops.
type Pager struct {
	Client   photos.Client
	Logger   *slog.Logger
	PageSize int

	mu    sync.Mutex
	state State
}

// NewPager constructs a Pager with sane defaults.
func NewPager(client photos.Client, logger *slog.Logger, pageSize int) *Pager {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	if pageSize <= 0 {
		pageSize = photos.DefaultPageSize
	}
	return &Pager{Client: client, Logger: logger, PageSize: pageSize}
}

// Snapshot returns a copy of the current state.
func (p *Pager) Snapshot() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// Start clears the list and loads the first page. It reports false without
// issuing a request when a load is already outstanding.
func (p *Pager) Start(ctx context.Context, accessToken string) (State, bool) {
	p.mu.Lock()
	if p.state.Phase.Loading() {
		snap := p.snapshotLocked()
		p.mu.Unlock()
		return snap, false
	}
	p.state = State{Phase: PhaseLoadingFirst}
	p.mu.Unlock()

	p.Logger.InfoContext(ctx, "loading albums")
	page, err := p.Client.ListAlbums(ctx, accessToken, p.PageSize, "")

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.failLocked(ctx, err)
		return p.snapshotLocked(), true
	}
	p.state.Albums = append([]photos.Album(nil), page.Albums...)
	p.state.NextPageToken = page.NextPageToken
	p.state.Phase = PhaseReady
	p.Logger.InfoContext(ctx, "albums loaded",
		slog.Int("count", len(p.state.Albums)),
		slog.Bool("more", page.NextPageToken != ""))
	return p.snapshotLocked(), true
}

// LoadMore appends the next page. It reports false without issuing a
// request when there is no continuation token or a load is outstanding.
func (p *Pager) LoadMore(ctx context.Context, accessToken string) (State, bool) {
	p.mu.Lock()
	if p.state.NextPageToken == "" || p.state.Phase.Loading() {
		snap := p.snapshotLocked()
		p.mu.Unlock()
		return snap, false
	}
	pageToken := p.state.NextPageToken
	p.state.Phase = PhaseLoadingMore
	p.mu.Unlock()

	page, err := p.Client.ListAlbums(ctx, accessToken, p.PageSize, pageToken)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.failLocked(ctx, err)
		return p.snapshotLocked(), true
	}
	p.state.Albums = append(p.state.Albums, page.Albums...)
	p.state.NextPageToken = page.NextPageToken
	p.state.Phase = PhaseReady
	p.state.Failure = nil
	p.Logger.InfoContext(ctx, "more albums loaded",
		slog.Int("page", len(page.Albums)),
		slog.Int("total", len(p.state.Albums)),
		slog.Bool("more", page.NextPageToken != ""))
	return p.snapshotLocked(), true
}

// LoadAll starts a listing and follows continuation tokens to the end or
// the first failure.
func (p *Pager) LoadAll(ctx context.Context, accessToken string) State {
	state, _ := p.Start(ctx, accessToken)
	for state.Phase == PhaseReady && state.HasMore() {
		var fired bool
		state, fired = p.LoadMore(ctx, accessToken)
		if !fired {
			break
		}
	}
	return state
}

// failLocked records a failure. The accumulated list is kept.
func (p *Pager) failLocked(ctx context.Context, err error) {
	p.state.Phase = PhaseFailed
	p.state.Failure = classify(err)
	p.Logger.WarnContext(ctx, "album load failed",
		slog.String("kind", photos.KindOf(err).String()),
		slog.Any("error", err))
}

func classify(err error) *Failure {
	if photos.KindOf(err) == photos.KindAPIDisabled {
		return &Failure{
			Kind:    OutcomeSetupRequired,
			Message: "Enable the Photos Library API for your Google Cloud project, then log out and sign back in.",
			Hint:    EnableAPIURL,
			Err:     err,
		}
	}
	message := photos.MessageOf(err)
	if message == "" {
		message = "An unknown error occurred."
	}
	return &Failure{Kind: OutcomeFailure, Message: message, Hint: SessionHint, Err: err}
}

func (p *Pager) snapshotLocked() State {
	snap := p.state
	snap.Albums = append([]photos.Album(nil), p.state.Albums...)
	if p.state.Failure != nil {
		f := *p.state.Failure
		snap.Failure = &f
	}
	return snap
}
