package listing

import (
	"context"
	"fmt"
	"path"
	"reflect"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-blog-cache/cache"
	blogerrors "github.com/goliatone/go-blog-cache/pkg/errors"
	"github.com/goliatone/go-blog-cache/pkg/testsupport"
)

// postRow is the listing item type used in tests. The service is generic, so
// tests run against a flat struct rather than the full blog entity.
type postRow struct {
	ID        string    `json:"id" msgpack:"id"`
	Title     string    `json:"title" msgpack:"title"`
	Author    string    `json:"author" msgpack:"author"`
	CreatedAt time.Time `json:"created_at" msgpack:"created_at"`
}

// fakeStore is an in-memory cache.Store with failure injection and call
// counting.
type fakeStore struct {
	mu         sync.Mutex
	entries    map[string]string
	failReads  bool
	failWrites bool
	failScans  bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: make(map[string]string)}
}

func (s *fakeStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failReads {
		return "", false, fmt.Errorf("store down")
	}
	value, ok := s.entries[key]
	return value, ok, nil
}

func (s *fakeStore) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites {
		return fmt.Errorf("store down")
	}
	s.entries[key] = value
	return nil
}

func (s *fakeStore) KeysMatching(ctx context.Context, pattern string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failScans {
		return nil, fmt.Errorf("store down")
	}
	var keys []string
	for key := range s.entries {
		if ok, err := path.Match(pattern, key); err == nil && ok {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (s *fakeStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *fakeStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// fakeSource is a Source[postRow] over a slice, counting queries so tests can
// assert which path served a request.
type fakeSource struct {
	mu         sync.Mutex
	rows       []postRow
	findCalls  int
	countCalls int
	err        error
}

func (f *fakeSource) FindPage(ctx context.Context, scope Scope, offset, limit int) ([]postRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findCalls++
	if f.err != nil {
		return nil, f.err
	}

	matched := f.matchedLocked(scope)
	if offset >= len(matched) {
		return []postRow{}, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (f *fakeSource) Count(ctx context.Context, scope Scope) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.countCalls++
	if f.err != nil {
		return 0, f.err
	}
	return len(f.matchedLocked(scope)), nil
}

func (f *fakeSource) matchedLocked(scope Scope) []postRow {
	var matched []postRow
	for _, row := range f.rows {
		if scope.Author == "" || row.Author == scope.Author {
			matched = append(matched, row)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return matched
}

func (f *fakeSource) calls() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.findCalls, f.countCalls
}

func (f *fakeSource) remove(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, row := range f.rows {
		if row.ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return
		}
	}
}

func loadSeedRows(t *testing.T) []postRow {
	t.Helper()
	var rows []postRow
	testsupport.LoadFixtureJSON(t, testsupport.FixturePath("posts.json"), &rows)
	if len(rows) != 25 {
		t.Fatalf("fixture should contain 25 posts, got %d", len(rows))
	}
	return rows
}

func newTestService(t *testing.T, store cache.Store, source *fakeSource) *Service[postRow] {
	t.Helper()
	svc, err := New[postRow](store, source, cache.NewKeys("posts"), cache.DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return svc
}

func TestGetPage_ColdWarmTransparency(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	source := &fakeSource{rows: loadSeedRows(t)}
	svc := newTestService(t, store, source)

	cold, err := svc.GetPage(ctx, All(), 1, 10)
	if err != nil {
		t.Fatalf("cold GetPage failed: %v", err)
	}

	if len(cold.Items) != 10 {
		t.Errorf("expected 10 items on page 1, got %d", len(cold.Items))
	}
	if cold.TotalPages != 3 {
		t.Errorf("expected 3 total pages, got %d", cold.TotalPages)
	}
	if cold.TotalCount != 25 {
		t.Errorf("expected total count 25, got %d", cold.TotalCount)
	}
	if cold.Items[0].ID != "post-25" {
		t.Errorf("expected newest post first, got %s", cold.Items[0].ID)
	}

	warm, err := svc.GetPage(ctx, All(), 1, 10)
	if err != nil {
		t.Fatalf("warm GetPage failed: %v", err)
	}

	if !reflect.DeepEqual(cold, warm) {
		t.Errorf("cold and warm results differ:\ncold: %+v\nwarm: %+v", cold, warm)
	}

	finds, counts := source.calls()
	if finds != 1 || counts != 1 {
		t.Errorf("warm request should not touch the source, got %d find / %d count calls", finds, counts)
	}
}

func TestGetPage_PaginationArithmetic(t *testing.T) {
	ctx := context.Background()

	var rows []postRow
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 95; i++ {
		rows = append(rows, postRow{
			ID:        fmt.Sprintf("post-%03d", i),
			Author:    "alice",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	svc := newTestService(t, newFakeStore(), &fakeSource{rows: rows})

	page, err := svc.GetPage(ctx, All(), 1, 10)
	if err != nil {
		t.Fatalf("GetPage failed: %v", err)
	}
	if page.TotalPages != 10 {
		t.Errorf("95 posts at size 10 should make 10 pages, got %d", page.TotalPages)
	}

	empty := newTestService(t, newFakeStore(), &fakeSource{})
	page, err = empty.GetPage(ctx, All(), 1, 10)
	if err != nil {
		t.Fatalf("GetPage on empty source failed: %v", err)
	}
	if page.TotalPages != 0 {
		t.Errorf("empty collection should have 0 pages, got %d", page.TotalPages)
	}
	if len(page.Items) != 0 {
		t.Errorf("empty collection should return no items, got %d", len(page.Items))
	}
}

func TestGetPage_NormalizesInvalidInputs(t *testing.T) {
	ctx := context.Background()
	source := &fakeSource{rows: loadSeedRows(t)}
	svc := newTestService(t, newFakeStore(), source)

	page, err := svc.GetPage(ctx, All(), 0, 10)
	if err != nil {
		t.Fatalf("GetPage failed: %v", err)
	}
	if page.Page != 1 {
		t.Errorf("page 0 should normalize to 1, got %d", page.Page)
	}

	page, err = svc.GetPage(ctx, All(), 1, 0)
	if err != nil {
		t.Fatalf("GetPage failed: %v", err)
	}
	if len(page.Items) != 10 {
		t.Errorf("pageSize 0 should fall back to the default of 10, got %d items", len(page.Items))
	}
}

func TestGetPage_LastPageIsPartial(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newFakeStore(), &fakeSource{rows: loadSeedRows(t)})

	page, err := svc.GetPage(ctx, All(), 3, 10)
	if err != nil {
		t.Fatalf("GetPage failed: %v", err)
	}
	if len(page.Items) != 5 {
		t.Errorf("page 3 of 25 posts should hold 5 items, got %d", len(page.Items))
	}
	if page.TotalPages != 3 || page.TotalCount != 25 {
		t.Errorf("unexpected page arithmetic: %+v", page)
	}
}

func TestInvalidate_ScopeIsolation(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	source := &fakeSource{rows: loadSeedRows(t)}
	svc := newTestService(t, store, source)

	warm := func(scope Scope) {
		t.Helper()
		if _, err := svc.GetPage(ctx, scope, 1, 10); err != nil {
			t.Fatalf("GetPage failed: %v", err)
		}
	}

	warm(All())
	warm(ByAuthor("alice"))
	warm(ByAuthor("bob"))

	finds, _ := source.calls()
	if finds != 3 {
		t.Fatalf("expected 3 cold fetches, got %d", finds)
	}

	// A post by alice was written: purge the global listing and alice's.
	keys := svc.Keys()
	if err := svc.Invalidate(ctx, keys.AllPagesPattern()); err != nil {
		t.Fatalf("invalidate failed: %v", err)
	}
	if err := svc.Invalidate(ctx, keys.AuthorPattern("alice")); err != nil {
		t.Fatalf("invalidate failed: %v", err)
	}

	warm(All())
	warm(ByAuthor("alice"))
	finds, _ = source.calls()
	if finds != 5 {
		t.Errorf("purged scopes should refetch, expected 5 source calls, got %d", finds)
	}

	warm(ByAuthor("bob"))
	finds, _ = source.calls()
	if finds != 5 {
		t.Errorf("bob's listing was not invalidated and should stay cached, got %d source calls", finds)
	}
}

func TestGetPage_SimilarAuthorNamesStayIsolated(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	source := &fakeSource{rows: []postRow{
		{ID: "dash-1", Title: "Dash", Author: "john-doe", CreatedAt: base},
		{ID: "underscore-1", Title: "Underscore", Author: "john_doe", CreatedAt: base.Add(time.Minute)},
	}}
	svc := newTestService(t, newFakeStore(), source)

	// Warm the cache for one author, then read the near-identical name: the
	// second read must miss and serve its own author's posts, never the
	// cached page of the first.
	dash, err := svc.GetPage(ctx, ByAuthor("john-doe"), 1, 10)
	if err != nil {
		t.Fatalf("GetPage failed: %v", err)
	}
	if dash.TotalCount != 1 || dash.Items[0].ID != "dash-1" {
		t.Fatalf("unexpected page for john-doe: %+v", dash)
	}

	underscore, err := svc.GetPage(ctx, ByAuthor("john_doe"), 1, 10)
	if err != nil {
		t.Fatalf("GetPage failed: %v", err)
	}
	if underscore.TotalCount != 1 || underscore.Items[0].ID != "underscore-1" {
		t.Errorf("john_doe was served another author's page: %+v", underscore)
	}

	finds, _ := source.calls()
	if finds != 2 {
		t.Errorf("each author should fetch its own page, expected 2 source calls, got %d", finds)
	}
}

func TestInvalidate_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := newTestService(t, store, &fakeSource{rows: loadSeedRows(t)})

	if _, err := svc.GetPage(ctx, All(), 1, 10); err != nil {
		t.Fatalf("GetPage failed: %v", err)
	}
	if _, err := svc.GetPage(ctx, All(), 2, 10); err != nil {
		t.Fatalf("GetPage failed: %v", err)
	}

	pattern := svc.Keys().AllPagesPattern()
	if err := svc.Invalidate(ctx, pattern); err != nil {
		t.Fatalf("first invalidate failed: %v", err)
	}
	if err := svc.Invalidate(ctx, pattern); err != nil {
		t.Fatalf("second invalidate failed: %v", err)
	}

	if store.len() != 0 {
		t.Errorf("expected an empty store after invalidation, %d entries remain", store.len())
	}
}

func TestInvalidate_EmptyCacheIsNoop(t *testing.T) {
	svc := newTestService(t, newFakeStore(), &fakeSource{})

	if err := svc.Invalidate(context.Background(), "posts:page:*"); err != nil {
		t.Errorf("invalidating an empty cache should not error: %v", err)
	}
}

func TestGetPage_StoreFailureDegradesToSource(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.failReads = true
	store.failWrites = true
	source := &fakeSource{rows: loadSeedRows(t)}
	svc := newTestService(t, store, source)

	for i := 0; i < 2; i++ {
		page, err := svc.GetPage(ctx, All(), 1, 10)
		if err != nil {
			t.Fatalf("a cache outage must not fail the request: %v", err)
		}
		if page.TotalCount != 25 || len(page.Items) != 10 {
			t.Errorf("degraded read returned wrong page: %+v", page)
		}
	}

	finds, _ := source.calls()
	if finds != 2 {
		t.Errorf("with the store down every read goes to the source, expected 2 calls, got %d", finds)
	}
}

func TestGetPage_SourceErrorPropagates(t *testing.T) {
	source := &fakeSource{err: fmt.Errorf("connection refused")}
	svc := newTestService(t, newFakeStore(), source)

	_, err := svc.GetPage(context.Background(), All(), 1, 10)
	if err == nil {
		t.Fatal("expected an error when the source is down")
	}
	if code := blogerrors.CodeOf(err); code != blogerrors.ErrDataUnavailable {
		t.Errorf("expected code %q, got %q", blogerrors.ErrDataUnavailable, code)
	}
}

func TestInvalidate_StoreFailureIsCoded(t *testing.T) {
	store := newFakeStore()
	store.failScans = true
	svc := newTestService(t, store, &fakeSource{})

	err := svc.Invalidate(context.Background(), "posts:page:*")
	if err == nil {
		t.Fatal("expected an error when the store scan fails")
	}
	if code := blogerrors.CodeOf(err); code != blogerrors.ErrCacheUnavailable {
		t.Errorf("expected code %q, got %q", blogerrors.ErrCacheUnavailable, code)
	}
}

func TestGetPage_DeleteThenInvalidate(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	source := &fakeSource{rows: loadSeedRows(t)}
	svc := newTestService(t, store, source)

	before, err := svc.GetPage(ctx, All(), 1, 10)
	if err != nil {
		t.Fatalf("GetPage failed: %v", err)
	}
	if before.TotalCount != 25 {
		t.Fatalf("expected 25 posts before delete, got %d", before.TotalCount)
	}

	source.remove("post-13")
	keys := svc.Keys()
	if err := svc.Invalidate(ctx, keys.AllPagesPattern()); err != nil {
		t.Fatalf("invalidate failed: %v", err)
	}
	if err := svc.Invalidate(ctx, keys.AuthorPattern("alice")); err != nil {
		t.Fatalf("invalidate failed: %v", err)
	}

	after, err := svc.GetPage(ctx, All(), 1, 10)
	if err != nil {
		t.Fatalf("GetPage failed: %v", err)
	}
	if after.TotalCount != 24 {
		t.Errorf("expected total count 24 after delete, got %d", after.TotalCount)
	}
	if after.TotalPages != 3 {
		t.Errorf("expected 3 total pages after delete, got %d", after.TotalPages)
	}
}
