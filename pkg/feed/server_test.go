package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/waterfall/pkg/cache"
	"github.com/matzehuels/waterfall/pkg/errors"
)

func newTestServer(t *testing.T, n int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := NewServer(NewMemoryStore(Generate(5, 0, n)), nil)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/items" {
			hits.Add(1)
		}
		srv.ServeHTTP(w, r)
	}))
	t.Cleanup(ts.Close)
	return ts, &hits
}

func TestServerItems(t *testing.T) {
	ts, _ := newTestServer(t, 30)

	tests := []struct {
		query  string
		status int
		count  int
	}{
		{"", http.StatusOK, DefaultPageSize - 20},
		{"?offset=10&limit=5", http.StatusOK, 5},
		{"?offset=28&limit=5", http.StatusOK, 2},
		{"?offset=100", http.StatusOK, 0},
		{"?offset=abc", http.StatusBadRequest, 0},
		{"?limit=0", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp, err := http.Get(ts.URL + "/items" + tt.query)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if tt.status != http.StatusOK {
				var e errorResponse
				if err := json.NewDecoder(resp.Body).Decode(&e); err != nil || e.Code != errors.ErrCodeInvalidInput {
					t.Errorf("error body = %+v, %v", e, err)
				}
				return
			}
			var page PageResponse
			if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
				t.Fatal(err)
			}
			if len(page.Items) != tt.count || page.Total != 30 {
				t.Errorf("page = %d items of %d, want %d of 30", len(page.Items), page.Total, tt.count)
			}
		})
	}
}

func TestServerHealth(t *testing.T) {
	ts, _ := newTestServer(t, 0)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestClientPage(t *testing.T) {
	ts, _ := newTestServer(t, 12)
	c, err := NewClient(ts.URL)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	want := Generate(5, 0, 12)

	items, err := c.Page(context.Background(), 4, 5)
	if err != nil {
		t.Fatalf("Page() error = %v", err)
	}
	for i, it := range items {
		if it.ID != want[4+i].ID {
			t.Errorf("items[%d].ID = %s, want %s", i, it.ID, want[4+i].ID)
		}
	}
}

func TestClientCachesFullPages(t *testing.T) {
	ts, hits := newTestServer(t, 12)
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c, _ := NewClient(ts.URL, WithCache(fc, time.Hour))
	ctx := context.Background()

	for range 2 {
		if _, err := c.Page(ctx, 0, 10); err != nil {
			t.Fatalf("Page() error = %v", err)
		}
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("full page fetched %d times, want 1", got)
	}

	for range 2 {
		if _, err := c.Page(ctx, 10, 10); err != nil {
			t.Fatalf("Page() error = %v", err)
		}
	}
	if got := hits.Load(); got != 3 {
		t.Errorf("server hits = %d, want 3 (short pages are not cached)", got)
	}

	refreshing, _ := NewClient(ts.URL, WithCache(fc, time.Hour), WithRefresh(true))
	if _, err := refreshing.Page(ctx, 0, 10); err != nil {
		t.Fatalf("Page() error = %v", err)
	}
	if got := hits.Load(); got != 4 {
		t.Errorf("server hits = %d, want 4 after refresh", got)
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, PageResponse{Items: Generate(1, 0, 2), Total: 2})
	}))
	defer ts.Close()

	c, _ := NewClient(ts.URL, WithRetry(3, time.Millisecond))
	items, err := c.Page(context.Background(), 0, 5)
	if err != nil || len(items) != 2 {
		t.Fatalf("Page() = %d items, %v; want 2, nil", len(items), err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestClientDoesNotRetryBadRequest(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer ts.Close()

	c, _ := NewClient(ts.URL, WithRetry(3, time.Millisecond))
	_, err := c.Page(context.Background(), 0, 5)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Page() error = %v, want INVALID_INPUT", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestNewClientRejectsBadURL(t *testing.T) {
	if _, err := NewClient("ftp://example.com"); err == nil {
		t.Error("NewClient() should reject non-http URLs")
	}
}
