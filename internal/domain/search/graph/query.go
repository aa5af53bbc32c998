package graph

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/sitetrends/internal/domain"
)

// Me is the backend alias for the calling user.
const Me = "me"

// Backend action codes. The values are opaque and defined by the search service.
const (
	ActionOthers       = 1020
	ActionCaller       = 1021
	ActionCallerExtra1 = 1036
	ActionCallerExtra2 = 1037
	ActionCallerExtra3 = 1039
)

// reservedChars would change the structure of the serialised query.
const reservedChars = "(),"

// callerClause matches documents the caller has acted on themselves.
func callerClause() Node {
	return And(
		Actor(Me, Action(ActionCaller)),
		Actor(Me, Or(
			Action(ActionCaller),
			Action(ActionCallerExtra1),
			Action(ActionCallerExtra2),
			Action(ActionCallerExtra3),
		)),
	)
}

// Build returns the trending graph query for the given actors:
// any actor's ActionOthers edges, or the caller's own qualifying actions.
// Actor order is preserved; duplicates are kept.
func Build(actors []string) (Expression, error) {
	if len(actors) == 0 {
		return Expression{}, fmt.Errorf("%w: graph query needs at least one actor", domain.ErrInvalidArgument)
	}

	terms := make([]Node, 0, len(actors)+1)
	for i, id := range actors {
		if err := ValidateActor(id); err != nil {
			return Expression{}, fmt.Errorf("actor %d: %w", i, err)
		}
		terms = append(terms, Actor(id, Action(ActionOthers)))
	}
	terms = append(terms, callerClause())

	return Compile(Or(terms...)), nil
}

// ValidateActor reports ErrInvalidArgument for ids that cannot appear in
// an actor clause.
func ValidateActor(id string) error {
	if id == "" {
		return fmt.Errorf("%w: actor id is empty", domain.ErrInvalidArgument)
	}
	if strings.ContainsAny(id, reservedChars) {
		return fmt.Errorf("%w: actor %q contains reserved characters", domain.ErrInvalidArgument, id)
	}
	return nil
}
