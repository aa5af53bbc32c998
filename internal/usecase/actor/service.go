package actor

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/kailas-cloud/sitetrends/internal/domain"
	"github.com/kailas-cloud/sitetrends/internal/domain/search/request"
	"github.com/kailas-cloud/sitetrends/internal/logger"
	"github.com/kailas-cloud/sitetrends/internal/tracing"
)

// Lookup policy for the people index.
const (
	// PeopleSourceID is the result source holding one document per person.
	PeopleSourceID = "b09a7990-05ea-4af9-81ef-edfab16c4e31"
	// IdentityField carries the actor identifier of a person document.
	IdentityField = "DocId"
	// MaxActors caps the number of actors returned by one lookup.
	MaxActors = 100
)

// Service resolves contact identifiers (emails) into graph actor identifiers.
type Service struct {
	searcher Searcher
}

// New creates an actor resolver.
func New(searcher Searcher) *Service {
	return &Service{searcher: searcher}
}

// Resolve looks up the actor identifiers for identifiers in one query and
// returns them in backend order. Identities without a match yield nothing.
// An empty identifier set still issues the query.
func (s *Service) Resolve(ctx context.Context, identifiers []string) (actors []string, err error) {
	ctx, end := tracing.StartSpan(ctx, "actor.resolve", attribute.Int("identifiers", len(identifiers)))
	defer func() { end(err) }()

	q, err := request.NewKeyword(QueryText(identifiers), PeopleSourceID, []string{IdentityField}, MaxActors)
	if err != nil {
		return nil, fmt.Errorf("build actor query: %w", err)
	}

	rows, err := s.searcher.RunKeywordSearch(ctx, &q)
	if err != nil {
		return nil, domain.BackendFailure("resolve actors", err)
	}

	log := logger.FromContext(ctx)
	actors = make([]string, 0, len(rows))
	for i, row := range rows {
		id := row.String(IdentityField)
		if id == "" {
			log.Debug("People row without identity", zap.Int("row", i))
			continue
		}
		actors = append(actors, id)
	}

	log.Debug("Actors resolved",
		zap.Int("identifiers", len(identifiers)),
		zap.Int("actors", len(actors)),
	)
	return actors, nil
}

// QueryText builds the people lookup: one UserName clause per identifier joined by OR.
func QueryText(identifiers []string) string {
	clauses := make([]string, len(identifiers))
	for i, id := range identifiers {
		clauses[i] = "UserName:" + id
	}
	return strings.Join(clauses, " OR ")
}
