package album

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/joshsymonds/albumlens/internal/photos"
)

type listCall struct {
	token     string
	pageSize  int
	pageToken string
}

type fakeClient struct {
	mu      sync.Mutex
	pages   []photos.ListPage
	errs    []error
	calls   []listCall
	gate    chan struct{} // blocks each call until closed
	entered chan struct{} // signalled when a call begins
}

func (f *fakeClient) ListAlbums(
	ctx context.Context,
	accessToken string,
	pageSize int,
	pageToken string,
) (photos.ListPage, error) {
	_ = ctx
	f.mu.Lock()
	f.calls = append(f.calls, listCall{token: accessToken, pageSize: pageSize, pageToken: pageToken})
	f.mu.Unlock()
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return photos.ListPage{}, err
		}
	}
	if len(f.pages) == 0 {
		return photos.ListPage{}, nil
	}
	page := f.pages[0]
	f.pages = f.pages[1:]
	return page, nil
}

func (f *fakeClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func albums(ids ...string) []photos.Album {
	out := make([]photos.Album, 0, len(ids))
	for _, id := range ids {
		out = append(out, photos.Album{ID: id, Title: "album " + id})
	}
	return out
}

func ids(list []photos.Album) []string {
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.ID)
	}
	return out
}

func assertIDs(t *testing.T, got []photos.Album, want ...string) {
	t.Helper()
	gotIDs := ids(got)
	if len(gotIDs) != len(want) {
		t.Fatalf("album ids: got %v want %v", gotIDs, want)
	}
	for i := range want {
		if gotIDs[i] != want[i] {
			t.Fatalf("album ids: got %v want %v", gotIDs, want)
		}
	}
}

func TestStartThenLoadMoreScenario(t *testing.T) {
	client := &fakeClient{pages: []photos.ListPage{
		{Albums: albums("a1"), NextPageToken: "tok2"},
		{Albums: albums("a2")},
	}}
	p := NewPager(client, slogDiscard(), 0)

	state, fired := p.Start(context.Background(), "ya29.tok")
	if !fired {
		t.Fatalf("start should fire a request")
	}
	if state.Phase != PhaseReady || state.NextPageToken != "tok2" {
		t.Fatalf("unexpected state after start: %+v", state)
	}
	assertIDs(t, state.Albums, "a1")

	state, fired = p.LoadMore(context.Background(), "ya29.tok")
	if !fired {
		t.Fatalf("load more should fire a request")
	}
	if state.Phase != PhaseReady || state.NextPageToken != "" {
		t.Fatalf("unexpected state after load more: %+v", state)
	}
	assertIDs(t, state.Albums, "a1", "a2")

	if _, fired = p.LoadMore(context.Background(), "ya29.tok"); fired {
		t.Fatalf("load more without a token must not fire")
	}
	if client.callCount() != 2 {
		t.Fatalf("expected 2 requests, got %d", client.callCount())
	}
	if client.calls[0].pageToken != "" || client.calls[1].pageToken != "tok2" {
		t.Fatalf("unexpected page tokens: %+v", client.calls)
	}
	if client.calls[0].pageSize != photos.DefaultPageSize {
		t.Fatalf("unexpected page size %d", client.calls[0].pageSize)
	}
}

func TestLoadMoreConcatenatesPagesInOrder(t *testing.T) {
	client := &fakeClient{pages: []photos.ListPage{
		{Albums: albums("p1a", "p1b"), NextPageToken: "t2"},
		{Albums: albums("p2a"), NextPageToken: "t3"},
		{Albums: nil, NextPageToken: "t4"},
		{Albums: albums("p4a", "p4b", "p4c")},
	}}
	p := NewPager(client, slogDiscard(), 10)

	p.Start(context.Background(), "tok")
	for i := 0; i < 3; i++ {
		if _, fired := p.LoadMore(context.Background(), "tok"); !fired {
			t.Fatalf("load more %d did not fire", i)
		}
	}
	state := p.Snapshot()
	assertIDs(t, state.Albums, "p1a", "p1b", "p2a", "p4a", "p4b", "p4c")
	if state.HasMore() {
		t.Fatalf("expected pagination to end")
	}
}

func TestLoadMoreNoTokenIsNoop(t *testing.T) {
	client := &fakeClient{pages: []photos.ListPage{{Albums: albums("a1")}}}
	p := NewPager(client, slogDiscard(), 0)

	if _, fired := p.LoadMore(context.Background(), "tok"); fired {
		t.Fatalf("idle pager without token must not fire")
	}
	if client.callCount() != 0 {
		t.Fatalf("expected no requests, got %d", client.callCount())
	}

	p.Start(context.Background(), "tok")
	before := p.Snapshot()
	after, fired := p.LoadMore(context.Background(), "tok")
	if fired {
		t.Fatalf("load more without token must not fire")
	}
	if after.Phase != before.Phase || len(after.Albums) != len(before.Albums) {
		t.Fatalf("state changed: before %+v after %+v", before, after)
	}
	if client.callCount() != 1 {
		t.Fatalf("expected 1 request, got %d", client.callCount())
	}
}

func TestLoadMoreWhileLoadingIsNoop(t *testing.T) {
	client := &fakeClient{pages: []photos.ListPage{
		{Albums: albums("a1"), NextPageToken: "tok2"},
		{Albums: albums("a2"), NextPageToken: "tok3"},
	}}
	p := NewPager(client, slogDiscard(), 0)
	p.Start(context.Background(), "tok")

	client.gate = make(chan struct{})
	client.entered = make(chan struct{}, 1)
	done := make(chan State)
	go func() {
		state, _ := p.LoadMore(context.Background(), "tok")
		done <- state
	}()
	<-client.entered

	if got := p.Snapshot().Phase; got != PhaseLoadingMore {
		t.Fatalf("expected loading-more, got %s", got)
	}
	if _, fired := p.LoadMore(context.Background(), "tok"); fired {
		t.Fatalf("second load more must not fire while one is outstanding")
	}
	if _, fired := p.Start(context.Background(), "tok"); fired {
		t.Fatalf("start must not fire while a load is outstanding")
	}

	close(client.gate)
	state := <-done
	assertIDs(t, state.Albums, "a1", "a2")
	if client.callCount() != 2 {
		t.Fatalf("expected 2 requests, got %d", client.callCount())
	}
}

func TestFailureClassification(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantKind    OutcomeKind
		wantMessage string
	}{
		{
			name: "api-disabled",
			err: photos.NewResponseError(
				"Photos Library API has not been used in project 42 before or it is disabled.",
				"PERMISSION_DENIED",
				403,
			),
			wantKind: OutcomeSetupRequired,
		},
		{
			name:        "quota",
			err:         photos.NewResponseError("quota exceeded", "RESOURCE_EXHAUSTED", 429),
			wantKind:    OutcomeFailure,
			wantMessage: "quota exceeded",
		},
		{
			name:        "malformed-body",
			err:         photos.NewResponseError("API request failed with status 502", "", 502),
			wantKind:    OutcomeFailure,
			wantMessage: "API request failed with status 502",
		},
		{
			name:        "transport",
			err:         photos.NewTransportError(errors.New("dial tcp: connection refused")),
			wantKind:    OutcomeFailure,
			wantMessage: "dial tcp: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{errs: []error{tt.err}}
			p := NewPager(client, slogDiscard(), 0)

			state, _ := p.Start(context.Background(), "tok")
			if state.Phase != PhaseFailed {
				t.Fatalf("expected failed phase, got %s", state.Phase)
			}
			if state.Failure == nil || state.Failure.Kind != tt.wantKind {
				t.Fatalf("unexpected failure: %+v", state.Failure)
			}
			if tt.wantMessage != "" && state.Failure.Message != tt.wantMessage {
				t.Fatalf("message mismatch: got %q want %q", state.Failure.Message, tt.wantMessage)
			}
			if tt.wantKind == OutcomeFailure && state.Failure.Hint != SessionHint {
				t.Fatalf("generic failures carry the session hint, got %q", state.Failure.Hint)
			}
		})
	}
}

func TestFailureKeepsAlbumsAndStartRecovers(t *testing.T) {
	client := &fakeClient{
		pages: []photos.ListPage{
			{Albums: albums("a1"), NextPageToken: "tok2"},
			{Albums: albums("b1")},
		},
		errs: []error{nil, photos.NewResponseError("boom", "INTERNAL", 500)},
	}
	p := NewPager(client, slogDiscard(), 0)

	p.Start(context.Background(), "tok")
	state, _ := p.LoadMore(context.Background(), "tok")
	if state.Phase != PhaseFailed {
		t.Fatalf("expected failed phase, got %s", state.Phase)
	}
	assertIDs(t, state.Albums, "a1")
	if state.NextPageToken != "tok2" {
		t.Fatalf("token should survive a failed load, got %q", state.NextPageToken)
	}

	state, fired := p.Start(context.Background(), "fresh")
	if !fired || state.Phase != PhaseReady || state.Failure != nil {
		t.Fatalf("start should recover from failure: %+v", state)
	}
	assertIDs(t, state.Albums, "b1")
}

func TestLoadAll(t *testing.T) {
	client := &fakeClient{pages: []photos.ListPage{
		{Albums: albums("a1"), NextPageToken: "t2"},
		{Albums: albums("a2"), NextPageToken: "t3"},
		{Albums: albums("a3")},
	}}
	p := NewPager(client, slogDiscard(), 0)

	state := p.LoadAll(context.Background(), "tok")
	if state.Phase != PhaseReady {
		t.Fatalf("unexpected phase %s", state.Phase)
	}
	assertIDs(t, state.Albums, "a1", "a2", "a3")
	if client.callCount() != 3 {
		t.Fatalf("expected 3 requests, got %d", client.callCount())
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	client := &fakeClient{pages: []photos.ListPage{{Albums: albums("a1")}}}
	p := NewPager(client, slogDiscard(), 0)
	p.Start(context.Background(), "tok")

	snap := p.Snapshot()
	snap.Albums[0].ID = "mutated"
	assertIDs(t, p.Snapshot().Albums, "a1")
}

func slogDiscard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
