package chi

import (
	"time"

	"github.com/kailas-cloud/sitetrends/internal/domain/document"
	"github.com/kailas-cloud/sitetrends/internal/usecase/trending"
)

// ErrorCode is a machine-readable error code in API responses.
type ErrorCode string

// API error codes.
const (
	ErrorCodeBadRequest         ErrorCode = "bad_request"
	ErrorCodeUnauthorized       ErrorCode = "unauthorized"
	ErrorCodeSearchUnavailable  ErrorCode = "search_unavailable"
	ErrorCodeInternalError      ErrorCode = "internal_error"
	ErrorCodeServiceUnavailable ErrorCode = "service_unavailable"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// TrendingResponse is the body of GET /trending.
type TrendingResponse struct {
	Site      string         `json:"site"`
	Documents []DocumentItem `json:"documents"`
	Skipped   int            `json:"skipped"`
}

// DocumentItem is one trending document ready for display.
type DocumentItem struct {
	Title                  string    `json:"title"`
	URL                    string    `json:"url"`
	PreviewImageURL        string    `json:"preview_image_url"`
	LastModified           time.Time `json:"last_modified"`
	LastModifiedByName     string    `json:"last_modified_by_name"`
	LastModifiedByPhotoURL string    `json:"last_modified_by_photo_url"`
	DisplayDate            string    `json:"display_date"`
}

func trendingToResponse(site string, feed trending.Feed, now time.Time, loc *time.Location) TrendingResponse {
	items := make([]DocumentItem, len(feed.Documents))
	for i, d := range feed.Documents {
		items[i] = documentToItem(d, now, loc)
	}
	return TrendingResponse{Site: site, Documents: items, Skipped: feed.Skipped}
}

func documentToItem(d document.Document, now time.Time, loc *time.Location) DocumentItem {
	return DocumentItem{
		Title:                  d.Title(),
		URL:                    d.URL(),
		PreviewImageURL:        d.PreviewImageURL(),
		LastModified:           d.LastModified(),
		LastModifiedByName:     d.LastModifiedByName(),
		LastModifiedByPhotoURL: d.LastModifiedByPhotoURL(),
		DisplayDate:            d.DisplayDate(now, loc),
	}
}
