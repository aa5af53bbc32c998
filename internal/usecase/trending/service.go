package trending

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/kailas-cloud/sitetrends/internal/domain"
	"github.com/kailas-cloud/sitetrends/internal/domain/document"
	"github.com/kailas-cloud/sitetrends/internal/domain/search/graph"
	"github.com/kailas-cloud/sitetrends/internal/logger"
	"github.com/kailas-cloud/sitetrends/internal/tracing"
)

// Feed is the ranked trending feed of a site.
type Feed struct {
	// Documents are in backend rank order, highest first.
	Documents []document.Document
	// Skipped counts rows dropped as malformed.
	Skipped int
}

// Service assembles the trending feed: members, actors, graph query,
// ranked search, row mapping.
type Service struct {
	members MemberLister
	actors  ActorResolver
	client  *SearchClient
	skipped prometheus.Counter
}

// New creates a trending service with the default query options.
func New(members MemberLister, actors ActorResolver, searcher GraphSearcher) *Service {
	return &Service{
		members: members,
		actors:  actors,
		client:  NewSearchClient(searcher, DefaultOptions()),
	}
}

// WithSkippedRowsCounter counts malformed rows on c.
func (s *Service) WithSkippedRowsCounter(c prometheus.Counter) *Service {
	s.skipped = c
	return s
}

// GetTrendingDocuments returns the trending documents of rc.SiteURL as seen
// by the caller in rc. An empty membership or actor set yields an empty feed.
func (s *Service) GetTrendingDocuments(ctx context.Context, rc domain.RequestContext) (feed Feed, err error) {
	if rc.SiteURL == "" {
		return Feed{}, fmt.Errorf("%w: site url is required", domain.ErrInvalidArgument)
	}
	ctx = domain.ContextWithRequest(ctx, rc)
	ctx, end := tracing.StartSpan(ctx, "trending.get_documents", attribute.String("site", rc.SiteURL))
	defer func() { end(err) }()

	log := logger.FromContext(ctx).With(zap.String("site", rc.SiteURL))

	emails, err := s.members.ListSiteMembers(ctx, rc.SiteURL)
	if err != nil {
		return Feed{}, domain.BackendFailure("list site members", err)
	}
	emails = nonEmpty(emails)
	if len(emails) == 0 {
		log.Debug("Site has no members with contact identifiers")
		return Feed{}, nil
	}

	actors, err := s.actors.Resolve(ctx, emails)
	if err != nil {
		return Feed{}, fmt.Errorf("resolve actors: %w", err)
	}
	actors = usableActors(log, actors)
	if len(actors) == 0 {
		log.Debug("No actors resolved", zap.Int("members", len(emails)))
		return Feed{}, nil
	}

	expr, err := graph.Build(actors)
	if err != nil {
		return Feed{}, fmt.Errorf("build graph query: %w", err)
	}

	rows, err := s.client.Fetch(ctx, rc.SiteURL, expr)
	if err != nil {
		return Feed{}, err
	}

	feed.Documents = make([]document.Document, 0, len(rows))
	for i, row := range rows {
		doc, mapErr := MapRow(i, row, rc.SiteURL)
		if mapErr != nil {
			if !errors.Is(mapErr, domain.ErrMalformedRow) {
				return Feed{}, fmt.Errorf("map row %d: %w", i, mapErr)
			}
			feed.Skipped++
			if s.skipped != nil {
				s.skipped.Inc()
			}
			log.Warn("Skipping malformed trending row", zap.Error(mapErr))
			continue
		}
		feed.Documents = append(feed.Documents, doc)
	}

	tracing.SetAttributes(ctx,
		attribute.Int("members", len(emails)),
		attribute.Int("actors", len(actors)),
		attribute.Int("documents", len(feed.Documents)),
		attribute.Int("skipped", feed.Skipped),
	)
	log.Debug("Trending feed assembled",
		zap.Int("actors", len(actors)),
		zap.Int("documents", len(feed.Documents)),
		zap.Int("skipped", feed.Skipped),
	)
	return feed, nil
}

// usableActors drops ids the backend returned that cannot be expressed
// in a graph query. Order is preserved.
func usableActors(log *zap.Logger, actors []string) []string {
	out := actors[:0:0]
	for _, id := range actors {
		if err := graph.ValidateActor(id); err != nil {
			log.Warn("Skipping unusable actor id", zap.Error(err))
			continue
		}
		out = append(out, id)
	}
	return out
}

func nonEmpty(values []string) []string {
	out := values[:0:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
