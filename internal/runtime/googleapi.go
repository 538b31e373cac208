// internal/runtime/googleapi.go: Photos Library REST client behind our small interface
package runtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"github.com/joshsymonds/albumlens/internal/photos"
)

// DefaultPhotosBaseURL is the Photos Library API root.
const DefaultPhotosBaseURL = "https://photoslibrary.googleapis.com/v1"

type photosClient struct {
	base   string
	http   *http.Client
	logger *slog.Logger
}

// NewPhotosClient returns an HTTP-backed photos.Client. Empty base selects
// the public API; nil httpClient selects http.DefaultClient.
func NewPhotosClient(base string, httpClient *http.Client, logger *slog.Logger) *photosClient {
	if base == "" {
		base = DefaultPhotosBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = DefaultLogger()
	}
	return &photosClient{base: strings.TrimSuffix(base, "/"), http: httpClient, logger: logger}
}

func (p *photosClient) ListAlbums(ctx context.Context, accessToken string, pageSize int, pageToken string) (photos.ListPage, error) {
	page, err := p.listAlbums(ctx, accessToken, pageSize, pageToken)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to fetch albums",
			slog.String("kind", photos.KindOf(err).String()),
			slog.Any("error", err))
		return photos.ListPage{}, err
	}
	return page, nil
}

func (p *photosClient) listAlbums(ctx context.Context, accessToken string, pageSize int, pageToken string) (photos.ListPage, error) {
	if pageSize <= 0 {
		pageSize = photos.DefaultPageSize
	}
	params := url.Values{"pageSize": {strconv.Itoa(pageSize)}}
	if pageToken != "" {
		params.Set("pageToken", pageToken)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.base+"/albums?"+params.Encode(), nil)
	if err != nil {
		return photos.ListPage{}, photos.NewTransportError(fmt.Errorf("build request: %w", err))
	}
	(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}).SetAuthHeader(req)
	req.Header.Set("Accept", "application/json")

	res, err := p.http.Do(req)
	if err != nil {
		return photos.ListPage{}, photos.NewTransportError(err)
	}
	defer googleapi.CloseBody(res)

	if checkErr := googleapi.CheckResponse(res); checkErr != nil {
		return photos.ListPage{}, classifyResponse(res.StatusCode, checkErr)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return photos.ListPage{}, photos.NewTransportError(fmt.Errorf("read body: %w", err))
	}
	var page photos.ListPage
	if len(strings.TrimSpace(string(body))) == 0 {
		return page, nil
	}
	if decodeErr := json.Unmarshal(body, &page); decodeErr != nil {
		return photos.ListPage{}, photos.NewDecodeError(decodeErr)
	}
	return page, nil
}

// classifyResponse builds the classified error from a non-2xx response.
// A missing or malformed envelope degrades to a status-only message.
func classifyResponse(httpStatus int, checkErr error) *photos.Error {
	var body string
	var gerr *googleapi.Error
	if errors.As(checkErr, &gerr) {
		body = gerr.Body
	}
	fallback := fmt.Sprintf("API request failed with status %d", httpStatus)
	if !gjson.Valid(body) {
		return photos.NewResponseError(fallback, "", httpStatus)
	}
	envelope := gjson.Get(body, "error")
	if !envelope.IsObject() {
		return photos.NewResponseError(fallback, "", httpStatus)
	}
	message := envelope.Get("message").String()
	if message == "" {
		message = fallback
	}
	code := httpStatus
	if c := envelope.Get("code"); c.Type == gjson.Number && c.Int() != 0 {
		code = int(c.Int())
	}
	return photos.NewResponseError(message, envelope.Get("status").String(), code)
}

var _ photos.Client = (*photosClient)(nil)
