package trending

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/sitetrends/internal/domain"
	"github.com/kailas-cloud/sitetrends/internal/domain/search/result"
)

const testSite = "https://contoso.sharepoint.com/sites/eng"

func validRow() result.Row {
	return result.Row{
		FieldTitle:               "Roadmap.docx",
		FieldServerRedirectedURL: testSite + "/_layouts/15/WopiFrame.aspx?sourcedoc=roadmap",
		FieldPath:                testSite + "/Shared Documents/Roadmap.docx",
		FieldLastModifiedTime:    "2024-03-05T14:30:00.0000000Z",
		FieldEditor:              "jdoe|John Doe",
		FieldUniqueID:            "u-1",
		FieldSiteID:              "s-1",
		FieldWebID:               "w-1",
		FieldDocID:               "17",
	}
}

func TestMapRow_HappyPath(t *testing.T) {
	doc, err := MapRow(0, validRow(), testSite)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title() != "Roadmap.docx" {
		t.Errorf("Title() = %q", doc.Title())
	}
	if doc.URL() != testSite+"/_layouts/15/WopiFrame.aspx?sourcedoc=roadmap" {
		t.Errorf("URL() = %q", doc.URL())
	}
	if !doc.LastModified().Equal(time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)) {
		t.Errorf("LastModified() = %v", doc.LastModified())
	}
	if doc.LastModifiedByName() != "John Doe" {
		t.Errorf("LastModifiedByName() = %q", doc.LastModifiedByName())
	}
	if !strings.Contains(doc.LastModifiedByPhotoURL(), "accountname=jdoe") {
		t.Errorf("LastModifiedByPhotoURL() = %q", doc.LastModifiedByPhotoURL())
	}

	wantPreview := testSite + "/_layouts/15/getpreview.ashx?guidFile=u-1&guidSite=s-1&guidWeb=w-1&docid=17" +
		"&metadatatoken=300x424x2&ClientType=DocumentsTrendingInThisSite&size=small"
	if doc.PreviewImageURL() != wantPreview {
		t.Errorf("PreviewImageURL() =\n%q\nwant\n%q", doc.PreviewImageURL(), wantPreview)
	}
	wantPhoto := testSite + "/_layouts/15/userphoto.aspx?size=S&accountname=jdoe"
	if doc.LastModifiedByPhotoURL() != wantPhoto {
		t.Errorf("LastModifiedByPhotoURL() = %q, want %q", doc.LastModifiedByPhotoURL(), wantPhoto)
	}
}

func TestMapRow_FallsBackToPath(t *testing.T) {
	row := validRow()
	delete(row, FieldServerRedirectedURL)

	doc, err := MapRow(0, row, testSite)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.URL() != testSite+"/Shared Documents/Roadmap.docx" {
		t.Errorf("URL() = %q", doc.URL())
	}
}

func TestMapRow_EscapesAccount(t *testing.T) {
	row := validRow()
	row[FieldEditor] = " jdoe@contoso.com | John Doe | i:0#.f|membership|jdoe@contoso.com"

	doc, err := MapRow(0, row, testSite)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.LastModifiedByName() != "John Doe" {
		t.Errorf("LastModifiedByName() = %q", doc.LastModifiedByName())
	}
	if !strings.HasSuffix(doc.LastModifiedByPhotoURL(), "accountname=jdoe%40contoso.com") {
		t.Errorf("LastModifiedByPhotoURL() = %q", doc.LastModifiedByPhotoURL())
	}
}

func TestMapRow_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		field string
		edit  func(result.Row)
	}{
		{"editor one segment", FieldEditor, func(r result.Row) { r[FieldEditor] = "onlyonesegment" }},
		{"editor empty name", FieldEditor, func(r result.Row) { r[FieldEditor] = "jdoe| " }},
		{"editor empty account", FieldEditor, func(r result.Row) { r[FieldEditor] = " |John" }},
		{"editor missing", FieldEditor, func(r result.Row) { delete(r, FieldEditor) }},
		{"title missing", FieldTitle, func(r result.Row) { delete(r, FieldTitle) }},
		{"no url", FieldServerRedirectedURL, func(r result.Row) {
			delete(r, FieldServerRedirectedURL)
			delete(r, FieldPath)
		}},
		{"bad timestamp", FieldLastModifiedTime, func(r result.Row) { r[FieldLastModifiedTime] = "last week" }},
		{"missing unique id", FieldUniqueID, func(r result.Row) { delete(r, FieldUniqueID) }},
		{"missing doc id", FieldDocID, func(r result.Row) { r[FieldDocID] = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := validRow()
			tt.edit(row)

			_, err := MapRow(3, row, testSite)
			if !errors.Is(err, domain.ErrMalformedRow) {
				t.Fatalf("expected ErrMalformedRow, got %v", err)
			}
			var mre *domain.MalformedRowError
			if !errors.As(err, &mre) {
				t.Fatalf("expected *MalformedRowError, got %T", err)
			}
			if mre.Index != 3 || mre.Field != tt.field {
				t.Errorf("MalformedRowError = %+v, want index 3 field %q", mre, tt.field)
			}
		})
	}
}

func TestParseEditor(t *testing.T) {
	tests := []struct {
		in      string
		account string
		name    string
		ok      bool
	}{
		{"jdoe|John Doe", "jdoe", "John Doe", true},
		{"  jdoe  |  John Doe  ", "jdoe", "John Doe", true},
		{"a|b|c", "a", "b", true},
		{"onlyonesegment", "", "", false},
		{"", "", "", false},
		{"|", "", "", false},
	}
	for _, tt := range tests {
		account, name, ok := ParseEditor(tt.in)
		if account != tt.account || name != tt.name || ok != tt.ok {
			t.Errorf("ParseEditor(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tt.in, account, name, ok, tt.account, tt.name, tt.ok)
		}
	}
}
