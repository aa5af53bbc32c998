package trending

import (
	"context"

	"github.com/kailas-cloud/sitetrends/internal/domain/search/request"
	"github.com/kailas-cloud/sitetrends/internal/domain/search/result"
)

// MemberLister lists the contact identifiers (emails) of a site's members.
type MemberLister interface {
	ListSiteMembers(ctx context.Context, siteURL string) ([]string, error)
}

// ActorResolver turns contact identifiers into graph actor identifiers.
type ActorResolver interface {
	Resolve(ctx context.Context, identifiers []string) ([]string, error)
}

// GraphSearcher runs graph-ranked queries against the search backend.
type GraphSearcher interface {
	RunGraphRankedSearch(ctx context.Context, q *request.Graph) ([]result.Row, error)
}
