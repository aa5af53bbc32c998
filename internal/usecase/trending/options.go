package trending

import "slices"

// Backend constants of the trending query.
const (
	// DefaultRankingModelID selects the server-side graph ranking pipeline.
	DefaultRankingModelID = "0c77ded8-c3ef-466d-929d-905670ea1d72"
	// ClientType identifies this caller to the backend.
	ClientType = "DocumentsTrendingInThisSite"
	// RankingFeatures ranks documents by summed edge weight across matched edges.
	RankingFeatures = `{"features":[{"function":"EdgeWeight"}],"featureCombination":"sum","actorCombination":"sum"}`
	// MaxDocuments is the size of the trending feed.
	MaxDocuments = 5
)

// Result fields read by the mapper.
const (
	FieldDocID               = "DocId"
	FieldEditor              = "EditorOwsUser"
	FieldLastModifiedTime    = "LastModifiedTime"
	FieldPath                = "Path"
	FieldServerRedirectedURL = "ServerRedirectedURL"
	FieldSiteID              = "siteID"
	FieldTitle               = "Title"
	FieldUniqueID            = "uniqueID"
	FieldWebID               = "webID"
)

// selectFields is every field requested from the backend.
var selectFields = []string{
	"Author", "AuthorOwsUser", FieldDocID, "DocumentPreviewMetadata", "Edges", FieldEditor,
	"FileExtension", "FileType", "HitHighlightedProperties", "HitHighlightedSummary",
	FieldLastModifiedTime, "LikeCountLifetime", "ListID", "ListItemID", "OriginalPath",
	FieldPath, "Rank", "SPWebUrl", "SecondaryFileExtension", FieldServerRedirectedURL,
	"SiteTitle", FieldTitle, "ViewCountLifetime", FieldSiteID, FieldUniqueID, FieldWebID,
}

// Options holds the fixed parameters of the trending query.
type Options struct {
	RankingModelID  string
	RankingFeatures string
	ClientType      string
	SelectFields    []string
	RowLimit        int
}

// DefaultOptions returns the production trending query parameters.
func DefaultOptions() Options {
	return Options{
		RankingModelID:  DefaultRankingModelID,
		RankingFeatures: RankingFeatures,
		ClientType:      ClientType,
		SelectFields:    slices.Clone(selectFields),
		RowLimit:        MaxDocuments,
	}
}
