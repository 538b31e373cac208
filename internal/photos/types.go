// internal/photos/types.go
package photos

import "fmt"

type Album struct {
	ID                    string `json:"id"`
	Title                 string `json:"title"`
	ProductURL            string `json:"productUrl"`
	MediaItemsCount       string `json:"mediaItemsCount"` // numeric string, as the API sends it
	CoverPhotoBaseURL     string `json:"coverPhotoBaseUrl"`
	CoverPhotoMediaItemID string `json:"coverPhotoMediaItemId"`
}

// ListPage is one page of the album listing. A missing albums field decodes to nil.
type ListPage struct {
	Albums        []Album `json:"albums"`
	NextPageToken string  `json:"nextPageToken"`
}

// DisplayTitle falls back to a placeholder for untitled albums.
func (a Album) DisplayTitle() string {
	if a.Title == "" {
		return "Untitled Album"
	}
	return a.Title
}

func (a Album) ItemCount() string {
	if a.MediaItemsCount == "" {
		return "0"
	}
	return a.MediaItemsCount
}

// CoverURL returns the cover base URL with a cropped size suffix. Base URLs
// do not render without one.
func (a Album) CoverURL(width, height int) string {
	if a.CoverPhotoBaseURL == "" {
		return ""
	}
	return fmt.Sprintf("%s=w%d-h%d-c", a.CoverPhotoBaseURL, width, height)
}
