package trending

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/sitetrends/internal/domain"
	"github.com/kailas-cloud/sitetrends/internal/domain/search/graph"
	"github.com/kailas-cloud/sitetrends/internal/domain/search/request"
	"github.com/kailas-cloud/sitetrends/internal/domain/search/result"
)

// SearchClient issues the ranked, site-scoped trending query.
type SearchClient struct {
	searcher GraphSearcher
	opts     Options
}

// NewSearchClient creates a trending search client.
func NewSearchClient(searcher GraphSearcher, opts Options) *SearchClient {
	return &SearchClient{searcher: searcher, opts: opts}
}

// Request builds the trending query for siteURL and expr.
func (c *SearchClient) Request(siteURL string, expr graph.Expression) (request.Graph, error) {
	return request.NewGraph(siteURL, expr, request.GraphOptions{
		RankingFeatures:   c.opts.RankingFeatures,
		RankingModelID:    c.opts.RankingModelID,
		ClientType:        c.opts.ClientType,
		SelectFields:      c.opts.SelectFields,
		RowLimit:          c.opts.RowLimit,
		BypassResultTypes: true,
	})
}

// Fetch runs the trending query and returns rows in backend rank order.
// Zero rows is a valid, empty result.
func (c *SearchClient) Fetch(ctx context.Context, siteURL string, expr graph.Expression) ([]result.Row, error) {
	q, err := c.Request(siteURL, expr)
	if err != nil {
		return nil, fmt.Errorf("build trending query: %w", err)
	}

	rows, err := c.searcher.RunGraphRankedSearch(ctx, &q)
	if err != nil {
		return nil, domain.BackendFailure("trending search", err)
	}
	return rows, nil
}
