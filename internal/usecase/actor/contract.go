package actor

import (
	"context"

	"github.com/kailas-cloud/sitetrends/internal/domain/search/request"
	"github.com/kailas-cloud/sitetrends/internal/domain/search/result"
)

// Searcher runs keyword queries against the search backend.
type Searcher interface {
	RunKeywordSearch(ctx context.Context, q *request.Keyword) ([]result.Row, error)
}
