package domain

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// KeyPrefix namespaces every key written to the shared cache.
const KeyPrefix = "sitetrends:"

// SitePolicy restricts which site hosts the service will talk to.
// The zero value allows no host.
type SitePolicy struct {
	hosts map[string]struct{}
}

// NewSitePolicy allows sites on the given hosts. Entries are compared
// case-insensitively against either "host" or "host:port".
func NewSitePolicy(hosts []string) SitePolicy {
	p := SitePolicy{hosts: make(map[string]struct{}, len(hosts))}
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			p.hosts[h] = struct{}{}
		}
	}
	return p
}

// Check parses siteURL and reports ErrInvalidArgument unless it is an
// https URL on an allowed host.
func (p SitePolicy) Check(siteURL string) (*url.URL, error) {
	u, err := url.Parse(siteURL)
	if err != nil {
		return nil, fmt.Errorf("%w: site url: %w", ErrInvalidArgument, err)
	}
	if u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("%w: site url must be an absolute https url, got %q", ErrInvalidArgument, siteURL)
	}
	if u.User != nil {
		return nil, fmt.Errorf("%w: site url must not carry credentials", ErrInvalidArgument)
	}
	if !p.allows(u) {
		return nil, fmt.Errorf("%w: site host %q is not allowed", ErrInvalidArgument, u.Host)
	}
	return u, nil
}

func (p SitePolicy) allows(u *url.URL) bool {
	if _, ok := p.hosts[strings.ToLower(u.Host)]; ok {
		return true
	}
	_, ok := p.hosts[strings.ToLower(u.Hostname())]
	return ok
}

// RequestContext carries the per-request site scope and caller identity
// into the trending pipeline. It replaces ambient "current site" lookups.
type RequestContext struct {
	// SiteURL is the absolute URL of the site whose trending feed is built.
	SiteURL string
	// UserToken is the caller's delegated backend token. Searches run as
	// this identity and graph clauses on "me" resolve against it.
	UserToken string
}

// NewRequestContext validates the site URL against policy, requires the
// caller's token and strips any trailing slash from the site.
func NewRequestContext(siteURL, userToken string, policy SitePolicy) (RequestContext, error) {
	siteURL = strings.TrimRight(strings.TrimSpace(siteURL), "/")
	if siteURL == "" {
		return RequestContext{}, fmt.Errorf("%w: site url is required", ErrInvalidArgument)
	}
	if _, err := policy.Check(siteURL); err != nil {
		return RequestContext{}, err
	}
	userToken = strings.TrimSpace(userToken)
	if userToken == "" {
		return RequestContext{}, fmt.Errorf("%w: user token is required", ErrInvalidArgument)
	}
	return RequestContext{
		SiteURL:   siteURL,
		UserToken: userToken,
	}, nil
}

// SiteHost returns the lower-cased host of rc.SiteURL, or "" if it does
// not parse.
func (rc RequestContext) SiteHost() string {
	u, err := url.Parse(rc.SiteURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}

type requestKey struct{}

// ContextWithRequest attaches rc to ctx so backend adapters can address
// the site's endpoints and act on the caller's behalf.
func ContextWithRequest(ctx context.Context, rc RequestContext) context.Context {
	return context.WithValue(ctx, requestKey{}, rc)
}

// RequestFromContext returns the request context attached to ctx.
func RequestFromContext(ctx context.Context) (RequestContext, bool) {
	rc, ok := ctx.Value(requestKey{}).(RequestContext)
	return rc, ok
}

// UserTokenFromContext returns the caller's token, or "" if none is set.
func UserTokenFromContext(ctx context.Context) string {
	rc, _ := RequestFromContext(ctx)
	return rc.UserToken
}
