package sitetrends

import "github.com/kailas-cloud/sitetrends/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrSearchUnavailable = domain.ErrSearchUnavailable
	ErrInvalidArgument   = domain.ErrInvalidArgument
	ErrMalformedRow      = domain.ErrMalformedRow
)
