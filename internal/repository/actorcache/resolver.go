package actorcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/sitetrends/internal/db"
	"github.com/kailas-cloud/sitetrends/internal/domain"
)

var cacheKeyPrefix = domain.KeyPrefix + "actors:"

// Resolver maps contact identifiers to actor identifiers.
type Resolver interface {
	Resolve(ctx context.Context, identifiers []string) ([]string, error)
}

// store is the consumer interface for the actor cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedResolver caches resolved actor sets in a key-value store.
type CachedResolver struct {
	inner      Resolver
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"/"bypass"), passed explicitly.
func New(
	inner Resolver,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedResolver {
	return &CachedResolver{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Resolve returns cached actors for identifiers or calls the inner resolver.
// Entries are scoped to the site host in ctx, since actor ids belong to a
// tenant's people index. Without a site host the cache is bypassed.
// Empty results and errors are never cached.
func (c *CachedResolver) Resolve(ctx context.Context, identifiers []string) ([]string, error) {
	rc, _ := domain.RequestFromContext(ctx)
	host := rc.SiteHost()
	if host == "" {
		c.incCache("bypass")
		return c.inner.Resolve(ctx, identifiers)
	}
	key := cacheKey(host, identifiers)

	if actors, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return actors, nil
	}

	c.incCache("miss")

	actors, err := c.inner.Resolve(ctx, identifiers)
	if err != nil {
		return nil, err
	}

	if len(actors) > 0 {
		c.putToCache(ctx, key, actors)
	}
	return actors, nil
}

func (c *CachedResolver) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

// cacheKey hashes identifiers in order under the tenant host; the backend
// ranks actors by the clause order, so reordered inputs are distinct entries.
func cacheKey(host string, identifiers []string) string {
	h := sha256.New()
	for _, id := range identifiers {
		h.Write([]byte(id))
		h.Write([]byte{0})
	}
	return cacheKeyPrefix + host + ":" + hex.EncodeToString(h.Sum(nil))
}

func (c *CachedResolver) getFromCache(ctx context.Context, key string) ([]string, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached actors", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	var actors []string
	if err := json.Unmarshal(data, &actors); err != nil {
		c.logger.Warn("Failed to parse cached actors", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if len(actors) == 0 {
		return nil, false
	}
	return actors, true
}

func (c *CachedResolver) putToCache(ctx context.Context, key string, actors []string) {
	data, err := json.Marshal(actors)
	if err != nil {
		c.logger.Warn("Failed to encode actors", zap.Error(fmt.Errorf("marshal: %w", err)))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache actors", zap.String("key", key), zap.Error(err))
	}
}
