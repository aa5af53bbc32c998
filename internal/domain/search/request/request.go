package request

import (
	"fmt"
	"slices"

	"github.com/kailas-cloud/sitetrends/internal/domain"
	"github.com/kailas-cloud/sitetrends/internal/domain/search/graph"
)

// MaxRowLimit is the largest row limit the backend accepts per query.
const MaxRowLimit = 500

// Named query properties understood by the backend.
const (
	PropertyGraphQuery        = "GraphQuery"
	PropertyGraphRankingModel = "GraphRankingModel"
)

// PropertyType is the backend value-type discriminator of a query property.
type PropertyType int

// PropertyString marks a string-typed property value.
const PropertyString PropertyType = 1

// Property is a named, typed query property.
type Property struct {
	Name  string
	Value string
	Type  PropertyType
}

// Keyword is a plain keyword query against a result source.
type Keyword struct {
	queryText    string
	sourceID     string
	selectFields []string
	rowLimit     int
}

// NewKeyword validates and creates a keyword query.
// An empty query text is allowed and still reaches the backend.
func NewKeyword(queryText, sourceID string, selectFields []string, rowLimit int) (Keyword, error) {
	if err := validateRowLimit(rowLimit); err != nil {
		return Keyword{}, err
	}
	if len(selectFields) == 0 {
		return Keyword{}, fmt.Errorf("%w: at least one select field is required", domain.ErrInvalidArgument)
	}
	return Keyword{
		queryText:    queryText,
		sourceID:     sourceID,
		selectFields: slices.Clone(selectFields),
		rowLimit:     rowLimit,
	}, nil
}

// QueryText returns the keyword query text.
func (k *Keyword) QueryText() string { return k.queryText }

// SourceID returns the result source the query is scoped to.
func (k *Keyword) SourceID() string { return k.sourceID }

// SelectFields returns a copy of the requested field names.
func (k *Keyword) SelectFields() []string { return slices.Clone(k.selectFields) }

// RowLimit returns the maximum rows to return.
func (k *Keyword) RowLimit() int { return k.rowLimit }

// GraphOptions holds the fixed ranking parameters of a graph query.
type GraphOptions struct {
	RankingFeatures   string
	RankingModelID    string
	ClientType        string
	SelectFields      []string
	RowLimit          int
	BypassResultTypes bool
}

// Graph is a ranked, site-scoped query carrying a graph expression.
type Graph struct {
	queryText         string
	graphQuery        graph.Expression
	rankingFeatures   string
	rankingModelID    string
	clientType        string
	selectFields      []string
	rowLimit          int
	bypassResultTypes bool
}

// NewGraph validates and creates a graph-ranked query scoped to siteURL.
func NewGraph(siteURL string, expr graph.Expression, opts GraphOptions) (Graph, error) {
	if siteURL == "" {
		return Graph{}, fmt.Errorf("%w: site url is required", domain.ErrInvalidArgument)
	}
	if expr.IsEmpty() {
		return Graph{}, fmt.Errorf("%w: graph query is required", domain.ErrInvalidArgument)
	}
	if opts.RankingModelID == "" {
		return Graph{}, fmt.Errorf("%w: ranking model id is required", domain.ErrInvalidArgument)
	}
	if len(opts.SelectFields) == 0 {
		return Graph{}, fmt.Errorf("%w: at least one select field is required", domain.ErrInvalidArgument)
	}
	if err := validateRowLimit(opts.RowLimit); err != nil {
		return Graph{}, err
	}
	return Graph{
		queryText:         "Path:" + siteURL,
		graphQuery:        expr,
		rankingFeatures:   opts.RankingFeatures,
		rankingModelID:    opts.RankingModelID,
		clientType:        opts.ClientType,
		selectFields:      slices.Clone(opts.SelectFields),
		rowLimit:          opts.RowLimit,
		bypassResultTypes: opts.BypassResultTypes,
	}, nil
}

// QueryText returns the path-scoped query text.
func (g *Graph) QueryText() string { return g.queryText }

// GraphQuery returns the graph expression.
func (g *Graph) GraphQuery() graph.Expression { return g.graphQuery }

// RankingModelID returns the server-side ranking pipeline identifier.
func (g *Graph) RankingModelID() string { return g.rankingModelID }

// ClientType returns the caller tag reported to the backend.
func (g *Graph) ClientType() string { return g.clientType }

// SelectFields returns a copy of the requested field names.
func (g *Graph) SelectFields() []string { return slices.Clone(g.selectFields) }

// RowLimit returns the maximum rows to return.
func (g *Graph) RowLimit() int { return g.rowLimit }

// BypassResultTypes reports whether display-template post-processing is skipped.
func (g *Graph) BypassResultTypes() bool { return g.bypassResultTypes }

// Properties returns the named query properties: the graph query and,
// when set, the graph ranking model. Both are string-typed.
func (g *Graph) Properties() []Property {
	props := []Property{
		{Name: PropertyGraphQuery, Value: g.graphQuery.String(), Type: PropertyString},
	}
	if g.rankingFeatures != "" {
		props = append(props, Property{
			Name: PropertyGraphRankingModel, Value: g.rankingFeatures, Type: PropertyString,
		})
	}
	return props
}

func validateRowLimit(n int) error {
	if n <= 0 || n > MaxRowLimit {
		return fmt.Errorf("%w: row limit must be between 1 and %d, got %d", domain.ErrInvalidArgument, MaxRowLimit, n)
	}
	return nil
}
