package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/joshsymonds/albumlens/internal/album"
	"github.com/joshsymonds/albumlens/internal/auth"
	"github.com/joshsymonds/albumlens/internal/photos"
	"github.com/joshsymonds/albumlens/internal/view"
)

type recordingClient struct {
	mu     sync.Mutex
	tokens []string
}

func (r *recordingClient) ListAlbums(ctx context.Context, accessToken string, pageSize int, pageToken string) (photos.ListPage, error) {
	_ = ctx
	_ = pageSize
	_ = pageToken
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens = append(r.tokens, accessToken)
	return photos.ListPage{Albums: []photos.Album{{ID: "a1"}}}, nil
}

type recordingRevoker struct {
	revoked []string
}

func (r *recordingRevoker) RevokeToken(tok auth.Token) {
	r.revoked = append(r.revoked, tok.AccessToken)
}

// driveExplorer loads the first page and then presses keyOut.
func driveExplorer(pager *album.Pager, revoker view.Revoker, keyOut rune) func(context.Context, auth.Token) (bool, error) {
	return func(ctx context.Context, token auth.Token) (bool, error) {
		e := view.NewExplorer(ctx, pager, revoker, token)
		e.Update(e.Init()())
		e.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{keyOut}})
		return e.LoggedOut(), nil
	}
}

func TestSessionSignsInAgainAfterLogout(t *testing.T) {
	client := &recordingClient{}
	pager := album.NewPager(client, slogDiscard(), 0)
	revoker := &recordingRevoker{}

	tokens := []auth.Token{{AccessToken: "first"}, {AccessToken: "second"}}
	keys := []rune{'o', 'q'}
	var prompts []string

	s := session{
		signIn: func(context.Context) (auth.Token, error) {
			tok := tokens[0]
			tokens = tokens[1:]
			return tok, nil
		},
		explore: func(ctx context.Context, token auth.Token) (bool, error) {
			k := keys[0]
			keys = keys[1:]
			return driveExplorer(pager, revoker, k)(ctx, token)
		},
		confirm: func(prompt string) bool {
			prompts = append(prompts, prompt)
			return true
		},
		stderr: io.Discard,
		logger: slogDiscard(),
	}

	if err := s.run(context.Background()); err != nil {
		t.Fatalf("session failed: %v", err)
	}
	if got := strings.Join(client.tokens, ","); got != "first,second" {
		t.Fatalf("expected both tokens to reach the pager, got %q", got)
	}
	if len(revoker.revoked) != 1 || revoker.revoked[0] != "first" {
		t.Fatalf("only the logged-out token should be revoked: %v", revoker.revoked)
	}
	if len(prompts) != 1 || !strings.HasPrefix(prompts[0], "Signed out") {
		t.Fatalf("expected one sign-in-again prompt, got %q", prompts)
	}
}

func TestSessionSignInFailures(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		confirm     bool
		wantSignIns int
		wantErr     bool
	}{
		{
			name:        "popup-retry",
			err:         &auth.Error{Kind: auth.KindPopup, Message: "sign-in window closed unexpectedly"},
			confirm:     true,
			wantSignIns: 2,
		},
		{
			name:        "popup-give-up",
			err:         &auth.Error{Kind: auth.KindPopup, Message: "sign-in window closed unexpectedly"},
			wantSignIns: 1,
			wantErr:     true,
		},
		{
			name:        "configuration-exits",
			err:         &auth.Error{Kind: auth.KindConfiguration, Message: "google client id is missing"},
			confirm:     true,
			wantSignIns: 1,
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signIns := 0
			var stderr bytes.Buffer
			s := session{
				signIn: func(context.Context) (auth.Token, error) {
					signIns++
					if signIns == 1 {
						return auth.Token{}, tt.err
					}
					return auth.Token{AccessToken: "tok"}, nil
				},
				explore: func(context.Context, auth.Token) (bool, error) { return false, nil },
				confirm: func(string) bool { return tt.confirm },
				stderr:  &stderr,
				logger:  slogDiscard(),
			}

			err := s.run(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("error mismatch: got %v, want error %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, tt.err) {
				t.Fatalf("expected wrapped sign-in error, got %v", err)
			}
			if signIns != tt.wantSignIns {
				t.Fatalf("sign-in attempts: got %d want %d", signIns, tt.wantSignIns)
			}
			if stderr.Len() == 0 {
				t.Fatalf("login error should be written")
			}
		})
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{input: "\n", want: true},
		{input: "yes\n", want: true},
		{input: "q\n", want: false},
		{input: " Quit \n", want: false},
		{input: "", want: false},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		if got := confirm(bufio.NewReader(strings.NewReader(tt.input)), &out, "again? "); got != tt.want {
			t.Fatalf("confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
		if out.String() != "again? " {
			t.Fatalf("prompt not written: %q", out.String())
		}
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" a, ,b ,")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected split: %v", got)
	}
	if splitList("  ") != nil {
		t.Fatalf("blank input should give nil")
	}
}

func slogDiscard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
