package actorcache

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/sitetrends/internal/db"
)

func TestResolve_MissThenHit(t *testing.T) {
	inner := &mockResolver{actors: []string{"300", "100"}}
	cacheTotal := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_actor_cache_total"}, []string{"result"})
	ms := &mockKVStore{}
	cr := New(inner, ms, 5*time.Minute, cacheTotal, zap.NewNop())
	ids := []string{"a@x", "b@x"}

	first, err := cr.Resolve(siteCtx(testHost), ids)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := cr.Resolve(siteCtx(testHost), ids)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(first, []string{"300", "100"}) || !reflect.DeepEqual(second, first) {
		t.Errorf("first = %v, second = %v", first, second)
	}
	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1", inner.calls)
	}
	if ms.lastTTL != 5*time.Minute {
		t.Errorf("ttl = %v, want 5m", ms.lastTTL)
	}
	if got := testutil.ToFloat64(cacheTotal.WithLabelValues("miss")); got != 1 {
		t.Errorf("miss = %v, want 1", got)
	}
	if got := testutil.ToFloat64(cacheTotal.WithLabelValues("hit")); got != 1 {
		t.Errorf("hit = %v, want 1", got)
	}
}

func TestResolve_InnerError(t *testing.T) {
	backend := errors.New("search down")
	cr, ms := newTestCachedResolver(t, &mockResolver{err: backend})

	_, err := cr.Resolve(siteCtx(testHost), []string{"a@x"})
	if !errors.Is(err, backend) {
		t.Fatalf("expected inner error, got %v", err)
	}
	if len(ms.data) != 0 {
		t.Errorf("error result was cached")
	}
}

func TestResolve_EmptyNotCached(t *testing.T) {
	inner := &mockResolver{}
	cr, ms := newTestCachedResolver(t, inner)

	for range 2 {
		if _, err := cr.Resolve(siteCtx(testHost), []string{"a@x"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if inner.calls != 2 {
		t.Errorf("inner calls = %d, want 2", inner.calls)
	}
	if len(ms.data) != 0 {
		t.Errorf("empty result was cached")
	}
}

func TestResolve_StoreFailuresFallThrough(t *testing.T) {
	inner := &mockResolver{actors: []string{"1"}}
	cr, ms := newTestCachedResolver(t, inner)
	ms.getErr = &db.Error{Op: db.OpGet, Err: errors.New("timeout")}
	ms.setErr = &db.Error{Op: db.OpSet, Err: errors.New("timeout")}

	got, err := cr.Resolve(siteCtx(testHost), []string{"a@x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"1"}) {
		t.Errorf("got %v", got)
	}
}

func TestResolve_CorruptEntry(t *testing.T) {
	inner := &mockResolver{actors: []string{"1"}}
	cr, ms := newTestCachedResolver(t, inner)
	ms.data = map[string][]byte{cacheKey(testHost, []string{"a@x"}): []byte("not json")}

	got, err := cr.Resolve(siteCtx(testHost), []string{"a@x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 || !reflect.DeepEqual(got, []string{"1"}) {
		t.Errorf("calls = %d, got %v", inner.calls, got)
	}
}

func TestCacheKey(t *testing.T) {
	k1 := cacheKey(testHost, []string{"a", "b"})
	if !strings.HasPrefix(k1, "sitetrends:actors:"+testHost+":") {
		t.Errorf("key %q lacks prefix", k1)
	}
	if k1 != cacheKey(testHost, []string{"a", "b"}) {
		t.Error("key is not deterministic")
	}
	if k1 == cacheKey(testHost, []string{"b", "a"}) {
		t.Error("reordered identifiers share a key")
	}
	if cacheKey(testHost, []string{"ab"}) == cacheKey(testHost, []string{"a", "b"}) {
		t.Error("concatenation collision")
	}
	if k1 == cacheKey("fabrikam.sharepoint.com", []string{"a", "b"}) {
		t.Error("different hosts share a key")
	}
}

func TestResolve_ScopedToSiteHost(t *testing.T) {
	inner := &mockResolver{byHost: map[string][]string{
		"contoso.sharepoint.com":  {"c-1"},
		"fabrikam.sharepoint.com": {"f-1"},
	}}
	cr, ms := newTestCachedResolver(t, inner)
	ids := []string{"guest@partner.com"}

	contoso, err := cr.Resolve(siteCtx("contoso.sharepoint.com"), ids)
	if err != nil {
		t.Fatal(err)
	}
	fabrikam, err := cr.Resolve(siteCtx("fabrikam.sharepoint.com"), ids)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(contoso, []string{"c-1"}) || !reflect.DeepEqual(fabrikam, []string{"f-1"}) {
		t.Errorf("contoso = %v, fabrikam = %v", contoso, fabrikam)
	}
	if inner.calls != 2 {
		t.Errorf("inner calls = %d, want 2", inner.calls)
	}
	if len(ms.data) != 2 {
		t.Errorf("cache entries = %d, want 2", len(ms.data))
	}
}

func TestResolve_BypassesCacheWithoutSite(t *testing.T) {
	inner := &mockResolver{actors: []string{"1"}}
	cr, ms := newTestCachedResolver(t, inner)

	for range 2 {
		if _, err := cr.Resolve(context.Background(), []string{"a@x"}); err != nil {
			t.Fatal(err)
		}
	}
	if inner.calls != 2 {
		t.Errorf("inner calls = %d, want 2", inner.calls)
	}
	if len(ms.data) != 0 {
		t.Errorf("entry cached without a site host")
	}
}
