package trending

import (
	"net/url"
	"strings"

	"github.com/kailas-cloud/sitetrends/internal/domain"
	"github.com/kailas-cloud/sitetrends/internal/domain/document"
	"github.com/kailas-cloud/sitetrends/internal/domain/search/result"
)

// URL templates on the site host.
const (
	previewPath        = "/_layouts/15/getpreview.ashx"
	photoPath          = "/_layouts/15/userphoto.aspx"
	previewMetadataTok = "300x424x2"
	previewSize        = "small"
	photoSize          = "S"
)

// MapRow converts the row at index into a Document. Rows whose editor field
// is not "<account>|<name>" or that lack required fields fail with
// domain.ErrMalformedRow.
func MapRow(index int, row result.Row, siteURL string) (document.Document, error) {
	title, err := row.Required(FieldTitle)
	if err != nil {
		return document.Document{}, domain.NewMalformedRow(index, FieldTitle, err.Error())
	}

	docURL := row.String(FieldServerRedirectedURL)
	if docURL == "" {
		docURL = row.String(FieldPath)
	}
	if docURL == "" {
		return document.Document{}, domain.NewMalformedRow(index, FieldServerRedirectedURL, "no document url")
	}

	modified, err := row.Time(FieldLastModifiedTime)
	if err != nil {
		return document.Document{}, domain.NewMalformedRow(index, FieldLastModifiedTime, err.Error())
	}

	account, name, ok := ParseEditor(row.String(FieldEditor))
	if !ok {
		return document.Document{}, domain.NewMalformedRow(index, FieldEditor, "expected <account>|<display name>")
	}

	ids := make([]string, 0, 4)
	for _, f := range []string{FieldUniqueID, FieldSiteID, FieldWebID, FieldDocID} {
		v, err := row.Required(f)
		if err != nil {
			return document.Document{}, domain.NewMalformedRow(index, f, err.Error())
		}
		ids = append(ids, v)
	}

	doc, err := document.New(
		title, docURL,
		PreviewImageURL(siteURL, ids[0], ids[1], ids[2], ids[3]),
		modified,
		name, PhotoURL(siteURL, account),
	)
	if err != nil {
		return document.Document{}, domain.NewMalformedRow(index, "", err.Error())
	}
	return doc, nil
}

// ParseEditor splits an editor field of the form "<account>|<display name>".
// Segments are trimmed; both must be non-empty. Trailing segments (claims
// appended by some backends) are ignored.
func ParseEditor(v string) (account, name string, ok bool) {
	parts := strings.Split(v, "|")
	if len(parts) < 2 {
		return "", "", false
	}
	account = strings.TrimSpace(parts[0])
	name = strings.TrimSpace(parts[1])
	if account == "" || name == "" {
		return "", "", false
	}
	return account, name, true
}

// PreviewImageURL returns the thumbnail URL for a document on siteURL.
func PreviewImageURL(siteURL, uniqueID, siteID, webID, docID string) string {
	var b strings.Builder
	b.WriteString(siteURL)
	b.WriteString(previewPath)
	b.WriteString("?guidFile=")
	b.WriteString(url.QueryEscape(uniqueID))
	b.WriteString("&guidSite=")
	b.WriteString(url.QueryEscape(siteID))
	b.WriteString("&guidWeb=")
	b.WriteString(url.QueryEscape(webID))
	b.WriteString("&docid=")
	b.WriteString(url.QueryEscape(docID))
	b.WriteString("&metadatatoken=" + previewMetadataTok)
	b.WriteString("&ClientType=" + ClientType)
	b.WriteString("&size=" + previewSize)
	return b.String()
}

// PhotoURL returns the small profile photo URL for account on siteURL.
func PhotoURL(siteURL, account string) string {
	return siteURL + photoPath + "?size=" + photoSize + "&accountname=" + url.QueryEscape(account)
}
