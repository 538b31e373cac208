package photos

import "context"

// DefaultPageSize is the album page size requested when callers pass zero.
const DefaultPageSize = 50

// Client is the narrow Photos Library surface required by albumlens.
type Client interface {
	ListAlbums(ctx context.Context, accessToken string, pageSize int, pageToken string) (ListPage, error)
}
