// Package document holds the display-ready trending document.
package document

import (
	"fmt"
	"time"
)

// Document is a trending document summary (immutable value object).
type Document struct {
	title                  string
	url                    string
	previewImageURL        string
	lastModified           time.Time
	lastModifiedByName     string
	lastModifiedByPhotoURL string
}

// New validates and creates a Document. Title and URL are required.
func New(
	title, url, previewImageURL string,
	lastModified time.Time,
	lastModifiedByName, lastModifiedByPhotoURL string,
) (Document, error) {
	if title == "" {
		return Document{}, fmt.Errorf("title is required")
	}
	if url == "" {
		return Document{}, fmt.Errorf("url is required")
	}
	return Document{
		title:                  title,
		url:                    url,
		previewImageURL:        previewImageURL,
		lastModified:           lastModified,
		lastModifiedByName:     lastModifiedByName,
		lastModifiedByPhotoURL: lastModifiedByPhotoURL,
	}, nil
}

// Title returns the document title.
func (d *Document) Title() string { return d.title }

// URL returns the canonical (server-redirected) document URL.
func (d *Document) URL() string { return d.url }

// PreviewImageURL returns the thumbnail URL.
func (d *Document) PreviewImageURL() string { return d.previewImageURL }

// LastModified returns the last-modified timestamp.
func (d *Document) LastModified() time.Time { return d.lastModified }

// LastModifiedByName returns the display name of the last editor.
func (d *Document) LastModifiedByName() string { return d.lastModifiedByName }

// LastModifiedByPhotoURL returns the photo URL of the last editor.
func (d *Document) LastModifiedByPhotoURL() string { return d.lastModifiedByPhotoURL }

// DisplayDate returns the relative last-modified label as seen at now,
// rendered in loc (nil means the timestamp's own location).
func (d *Document) DisplayDate(now time.Time, loc *time.Location) string {
	t := d.lastModified
	if loc != nil {
		t = t.In(loc)
	}
	return RelativeDate(t, now)
}
