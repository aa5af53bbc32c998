package sitetrends

import "time"

// Document is one trending document ready for display.
type Document struct {
	Title                  string
	URL                    string
	PreviewImageURL        string
	LastModified           time.Time
	LastModifiedByName     string
	LastModifiedByPhotoURL string
	// DisplayDate is the relative last-modified label, e.g. "Yesterday at 3:04 PM".
	DisplayDate string
}

// Feed is a site's trending feed in rank order.
type Feed struct {
	Documents []Document
	// Skipped counts backend rows dropped as malformed.
	Skipped int
}
