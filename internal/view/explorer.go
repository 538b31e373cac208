package view

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/joshsymonds/albumlens/internal/album"
	"github.com/joshsymonds/albumlens/internal/auth"
)

// Revoker revokes a token without waiting on the result.
type Revoker interface {
	RevokeToken(tok auth.Token)
}

// loadedMsg reports that a pager operation returned.
type loadedMsg struct {
	state album.State
	fired bool
}

// Explorer is the interactive album browser. It renders whatever the pager
// reports and never keeps album state of its own.
type Explorer struct {
	ctx     context.Context
	pager   *album.Pager
	revoker Revoker
	token   auth.Token

	loggedOut bool
}

// NewExplorer builds the model for tea.NewProgram.
func NewExplorer(ctx context.Context, pager *album.Pager, revoker Revoker, token auth.Token) *Explorer {
	return &Explorer{ctx: ctx, pager: pager, revoker: revoker, token: token}
}

// LoggedOut reports whether the user signed out before quitting.
func (e *Explorer) LoggedOut() bool { return e.loggedOut }

func (e *Explorer) Init() tea.Cmd {
	return e.startCmd()
}

func (e *Explorer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return e, tea.Quit
		case "m", " ", "space":
			snap := e.pager.Snapshot()
			if !snap.HasMore() || snap.Phase.Loading() {
				return e, nil
			}
			return e, e.loadMoreCmd()
		case "r":
			if e.pager.Snapshot().Phase.Loading() {
				return e, nil
			}
			return e, e.startCmd()
		case "o":
			// The caller decides whether to sign in again.
			e.revoker.RevokeToken(e.token)
			e.loggedOut = true
			return e, tea.Quit
		}
	case loadedMsg:
		return e, nil
	}
	return e, nil
}

func (e *Explorer) View() string {
	snap := e.pager.Snapshot()
	var b strings.Builder
	b.WriteString(titleStyle.Render("Google Photos Album Explorer"))
	b.WriteString("\n\n")

	switch snap.Phase {
	case album.PhaseIdle, album.PhaseLoadingFirst:
		b.WriteString(mutedStyle.Render("Loading albums…"))
		b.WriteString("\n")
	case album.PhaseFailed:
		b.WriteString(RenderFailure(snap.Failure))
	default:
		b.WriteString(RenderAlbums(snap))
		if snap.Phase == album.PhaseLoadingMore {
			b.WriteString(mutedStyle.Render("Loading more…"))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(e.footer(snap)))
	b.WriteString("\n")
	return b.String()
}

// footer lists the available keys and flags an expired token.
func (e *Explorer) footer(snap album.State) string {
	keys := make([]string, 0, 5)
	if !e.token.OAuth2().Valid() {
		keys = append(keys, "session expired")
	}
	if snap.HasMore() && !snap.Phase.Loading() {
		keys = append(keys, "m load more")
	}
	keys = append(keys, "r reload", "o log out", "q quit")
	return fmt.Sprintf("%d albums · %s", len(snap.Albums), strings.Join(keys, " · "))
}

func (e *Explorer) startCmd() tea.Cmd {
	return func() tea.Msg {
		state, fired := e.pager.Start(e.ctx, e.token.AccessToken)
		return loadedMsg{state: state, fired: fired}
	}
}

func (e *Explorer) loadMoreCmd() tea.Cmd {
	return func() tea.Msg {
		state, fired := e.pager.LoadMore(e.ctx, e.token.AccessToken)
		return loadedMsg{state: state, fired: fired}
	}
}

var _ tea.Model = (*Explorer)(nil)
