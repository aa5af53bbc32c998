package actorcache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/sitetrends/internal/db"
	"github.com/kailas-cloud/sitetrends/internal/domain"
)

const testHost = "contoso.sharepoint.com"

func siteCtx(host string) context.Context {
	return domain.ContextWithRequest(context.Background(), domain.RequestContext{
		SiteURL:   "https://" + host + "/sites/eng",
		UserToken: "tok",
	})
}

type mockResolver struct {
	actors []string
	err    error
	calls  int
	// byHost overrides actors per site host when set.
	byHost map[string][]string
}

func (m *mockResolver) Resolve(ctx context.Context, _ []string) ([]string, error) {
	m.calls++
	if m.byHost != nil {
		rc, _ := domain.RequestFromContext(ctx)
		return m.byHost[rc.SiteHost()], m.err
	}
	return m.actors, m.err
}

// mockKVStore is an in-memory store recording the last TTL.
type mockKVStore struct {
	data    map[string][]byte
	getErr  error
	setErr  error
	lastTTL time.Duration
}

func (m *mockKVStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockKVStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	if m.data == nil {
		m.data = map[string][]byte{}
	}
	m.data[key] = value
	m.lastTTL = ttl
	return nil
}

func newTestCachedResolver(t *testing.T, inner *mockResolver) (*CachedResolver, *mockKVStore) {
	t.Helper()
	ms := &mockKVStore{}
	return New(inner, ms, 5*time.Minute, nil, zap.NewNop()), ms
}
