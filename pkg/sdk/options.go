package sitetrends

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	appToken     string
	allowedHosts []string
	timeout      time.Duration
	httpClient   *http.Client

	breakerMaxRequests uint32
	breakerTimeout     time.Duration
	breakerTripRatio   float64

	rateLimit float64
	rateBurst int

	cacheAddrs    []string
	cachePassword string
	cacheTTL      time.Duration

	location *time.Location

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithAppToken sets the app-only token used to list site members and as
// the search token when a call carries no user token. Required.
func WithAppToken(token string) Option {
	return optionFunc(func(c *clientConfig) {
		c.appToken = token
	})
}

// WithAllowedHosts sets the tenant hosts (e.g. "contoso.sharepoint.com")
// a site URL may point at. Tokens are never sent to any other host.
// Required.
func WithAllowedHosts(hosts ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.allowedHosts = append(c.allowedHosts, hosts...)
	})
}

// WithTimeout bounds each backend request. Default: 10s.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithHTTPClient replaces the HTTP client used for backend calls.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// WithCircuitBreaker tunes the backend circuit breaker.
// Defaults: 1 half-open trial request, 30s open timeout, 0.6 failure ratio.
// A non-positive tripRatio keeps the default.
func WithCircuitBreaker(maxRequests uint32, openTimeout time.Duration, tripRatio float64) Option {
	return optionFunc(func(c *clientConfig) {
		if tripRatio <= 0 {
			tripRatio = defaultTripRatio
		}
		c.breakerMaxRequests = maxRequests
		c.breakerTimeout = openTimeout
		c.breakerTripRatio = tripRatio
	})
}

// WithRateLimit caps outbound backend requests per second.
// Disabled by default.
func WithRateLimit(perSecond float64, burst int) Option {
	return optionFunc(func(c *clientConfig) {
		c.rateLimit = perSecond
		c.rateBurst = burst
	})
}

// WithActorCache caches resolved actors in Valkey for ttl.
// Disabled by default.
func WithActorCache(addr, password string, ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheAddrs = []string{addr}
		c.cachePassword = password
		c.cacheTTL = ttl
	})
}

// WithLocation sets the timezone of display dates. Default: UTC.
func WithLocation(loc *time.Location) Option {
	return optionFunc(func(c *clientConfig) {
		c.location = loc
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
