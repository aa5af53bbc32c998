package actor

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/sitetrends/internal/domain"
	"github.com/kailas-cloud/sitetrends/internal/domain/search/request"
	"github.com/kailas-cloud/sitetrends/internal/domain/search/result"
)

// --- Mocks ---

type mockSearcher struct {
	rows    []result.Row
	err     error
	calls   int
	lastReq request.Keyword
}

func (m *mockSearcher) RunKeywordSearch(_ context.Context, q *request.Keyword) ([]result.Row, error) {
	m.calls++
	m.lastReq = *q
	return m.rows, m.err
}

// --- Tests ---

func TestQueryText(t *testing.T) {
	tests := []struct {
		name string
		ids  []string
		want string
	}{
		{"empty", nil, ""},
		{"single", []string{"a@contoso.com"}, "UserName:a@contoso.com"},
		{"multiple", []string{"a@x", "b@x", "c@x"}, "UserName:a@x OR UserName:b@x OR UserName:c@x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := QueryText(tt.ids); got != tt.want {
				t.Errorf("QueryText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolve_HappyPath(t *testing.T) {
	ms := &mockSearcher{rows: []result.Row{
		{"DocId": "300"},
		{"DocId": "100"},
		{"DocId": "200"},
	}}
	svc := New(ms)

	actors, err := svc.Resolve(context.Background(), []string{"a@x", "b@x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"300", "100", "200"}
	if len(actors) != len(want) {
		t.Fatalf("expected %d actors, got %v", len(want), actors)
	}
	for i := range want {
		if actors[i] != want[i] {
			t.Errorf("actors[%d] = %q, want %q (backend order)", i, actors[i], want[i])
		}
	}

	if ms.lastReq.QueryText() != "UserName:a@x OR UserName:b@x" {
		t.Errorf("QueryText = %q", ms.lastReq.QueryText())
	}
	if ms.lastReq.SourceID() != PeopleSourceID {
		t.Errorf("SourceID = %q", ms.lastReq.SourceID())
	}
	if f := ms.lastReq.SelectFields(); len(f) != 1 || f[0] != "DocId" {
		t.Errorf("SelectFields = %v", f)
	}
	if ms.lastReq.RowLimit() != 100 {
		t.Errorf("RowLimit = %d", ms.lastReq.RowLimit())
	}
}

func TestResolve_EmptyIdentifiersStillQueries(t *testing.T) {
	ms := &mockSearcher{}
	svc := New(ms)

	actors, err := svc.Resolve(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(actors) != 0 {
		t.Errorf("expected no actors, got %v", actors)
	}
	if ms.calls != 1 {
		t.Errorf("expected 1 backend call, got %d", ms.calls)
	}
	if ms.lastReq.QueryText() != "" {
		t.Errorf("QueryText = %q, want empty", ms.lastReq.QueryText())
	}
}

func TestResolve_SkipsRowsWithoutIdentity(t *testing.T) {
	ms := &mockSearcher{rows: []result.Row{
		{"DocId": "1"},
		{"Other": "x"},
		{"DocId": ""},
		{"DocId": "2"},
	}}

	actors, err := New(ms).Resolve(context.Background(), []string{"a@x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(actors) != 2 || actors[0] != "1" || actors[1] != "2" {
		t.Errorf("actors = %v, want [1 2]", actors)
	}
}

func TestResolve_BackendError(t *testing.T) {
	ms := &mockSearcher{err: errors.New("connection reset")}

	_, err := New(ms).Resolve(context.Background(), []string{"a@x"})
	if !errors.Is(err, domain.ErrSearchUnavailable) {
		t.Fatalf("expected ErrSearchUnavailable, got %v", err)
	}
	if ms.calls != 1 {
		t.Errorf("expected exactly 1 call (no retry), got %d", ms.calls)
	}
}
