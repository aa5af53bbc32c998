package sharepoint

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kailas-cloud/sitetrends/internal/domain"
	"github.com/kailas-cloud/sitetrends/internal/domain/search/request"
	"github.com/kailas-cloud/sitetrends/internal/domain/search/result"
)

const searchPath = "/_api/search/postquery"

// RunKeywordSearch runs q against the site in ctx with the caller's token.
func (c *Client) RunKeywordSearch(ctx context.Context, q *request.Keyword) ([]result.Row, error) {
	return c.search(ctx, OpKeywordSearch, keywordBody(q))
}

// RunGraphRankedSearch runs the graph-ranked query q against the site in ctx
// with the caller's token, so "me" clauses resolve to the caller.
func (c *Client) RunGraphRankedSearch(ctx context.Context, q *request.Graph) ([]result.Row, error) {
	return c.search(ctx, OpGraphSearch, graphBody(q))
}

func (c *Client) search(ctx context.Context, op string, body postQueryBody) ([]result.Row, error) {
	rc, ok := domain.RequestFromContext(ctx)
	if !ok || rc.SiteURL == "" {
		return nil, fmt.Errorf("%w: no site in request context", domain.ErrInvalidArgument)
	}

	token, err := callerToken(ctx)
	if err != nil {
		return nil, &Error{Op: op, Err: err}
	}

	var resp searchResponse
	if err := c.do(ctx, op, http.MethodPost, rc.SiteURL+searchPath, token, body, &resp); err != nil {
		return nil, err
	}
	return resp.rows(), nil
}
