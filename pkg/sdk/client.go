package sitetrends

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/sitetrends/internal/db"
	dbValkey "github.com/kailas-cloud/sitetrends/internal/db/valkey"
	"github.com/kailas-cloud/sitetrends/internal/domain"
	"github.com/kailas-cloud/sitetrends/internal/repository/actorcache"
	"github.com/kailas-cloud/sitetrends/internal/transport/sharepoint"
	actoruc "github.com/kailas-cloud/sitetrends/internal/usecase/actor"
	healthuc "github.com/kailas-cloud/sitetrends/internal/usecase/health"
	"github.com/kailas-cloud/sitetrends/internal/usecase/trending"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultTimeout          = 10 * time.Second
	defaultBreakerTimeout   = 30 * time.Second
	defaultTripRatio        = 0.6
)

// trendingUseCase is the internal interface for the trending pipeline.
type trendingUseCase interface {
	GetTrendingDocuments(ctx context.Context, rc domain.RequestContext) (trending.Feed, error)
}

// Client is the sitetrends SDK entry point.
type Client struct {
	store       db.Store // nil without an actor cache
	trendingSvc trendingUseCase
	healthSvc   healthUseCase
	sites       domain.SitePolicy
	loc         *time.Location
	now         func() time.Time
	obs         *observer
}

// New creates a Client. When an actor cache is configured the provided
// context bounds the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		timeout:          defaultTimeout,
		breakerTimeout:   defaultBreakerTimeout,
		breakerTripRatio: defaultTripRatio,
		location:         time.UTC,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.appToken == "" {
		return nil, errors.New("sitetrends: app token required (use WithAppToken)")
	}
	if len(cfg.allowedHosts) == 0 {
		return nil, errors.New("sitetrends: allowed hosts required (use WithAllowedHosts)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	var store db.Store
	if len(cfg.cacheAddrs) > 0 {
		s, err := dbValkey.NewStore(dbValkey.Config{
			Addrs:    cfg.cacheAddrs,
			Password: cfg.cachePassword,
		})
		if err != nil {
			return nil, fmt.Errorf("sitetrends: create valkey store: %w", err)
		}
		if err := s.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			s.Close()
			return nil, fmt.Errorf("sitetrends: cache not ready: %w", err)
		}
		store = s
	}

	return wireClient(cfg, store, obs), nil
}

func wireClient(cfg *clientConfig, store db.Store, obs *observer) *Client {
	backend := sharepoint.New(sharepoint.Config{
		AppToken:     cfg.appToken,
		AllowedHosts: cfg.allowedHosts,
		Timeout:      cfg.timeout,
		HTTPClient:   cfg.httpClient,
		Breaker: sharepoint.BreakerConfig{
			MaxRequests: cfg.breakerMaxRequests,
			Timeout:     cfg.breakerTimeout,
			TripRatio:   cfg.breakerTripRatio,
		},
		RateLimit: cfg.rateLimit,
		Burst:     cfg.rateBurst,
	})

	var resolver trending.ActorResolver = actoruc.New(backend)
	var cache healthuc.CachePinger
	if store != nil {
		resolver = actorcache.New(resolver, store, cfg.cacheTTL, nil, zap.NewNop())
		cache = store
	}

	return &Client{
		store:       store,
		trendingSvc: trending.New(backend, resolver, backend),
		healthSvc:   healthuc.New(backend, cache),
		sites:       domain.NewSitePolicy(cfg.allowedHosts),
		loc:         cfg.location,
		now:         time.Now,
		obs:         obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Trending returns the trending feed of siteURL as seen by the user whose
// delegated backend token is userToken. siteURL must be an https URL on
// an allowed host and userToken must not be empty.
func (c *Client) Trending(ctx context.Context, siteURL, userToken string) (feed Feed, err error) {
	start := time.Now()
	defer func() { c.obs.observeFeed("trending", start, feed.Skipped, err) }()

	rc, err := domain.NewRequestContext(siteURL, userToken, c.sites)
	if err != nil {
		return Feed{}, fmt.Errorf("trending: %w", err)
	}

	f, err := c.trendingSvc.GetTrendingDocuments(ctx, rc)
	if err != nil {
		return Feed{}, fmt.Errorf("trending: %w", err)
	}

	now := c.now()
	feed = Feed{Documents: make([]Document, len(f.Documents)), Skipped: f.Skipped}
	for i, d := range f.Documents {
		feed.Documents[i] = Document{
			Title:                  d.Title(),
			URL:                    d.URL(),
			PreviewImageURL:        d.PreviewImageURL(),
			LastModified:           d.LastModified(),
			LastModifiedByName:     d.LastModifiedByName(),
			LastModifiedByPhotoURL: d.LastModifiedByPhotoURL(),
			DisplayDate:            d.DisplayDate(now, c.loc),
		}
	}
	return feed, nil
}
