package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/openmeteo-stats/internal/cache"
)

func newTestClient(respCache cache.Cache) *Client {
	return New(2*time.Second, 100, respCache, 300*time.Second, "in_memory", zap.NewNop())
}

// TestClient_Get_Success verifies query-parameter encoding, the correlation
// header and body passthrough.
func TestClient_Get_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if got := r.URL.Query().Get("name"); got != "London" {
			t.Errorf("name param = %q, want %q", got, "London")
		}
		if got := r.URL.Query().Get("count"); got != "1" {
			t.Errorf("count param = %q, want %q", got, "1")
		}
		if r.Header.Get("X-Correlation-ID") == "" {
			t.Error("expected X-Correlation-ID header")
		}
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("Accept = %q, want application/json", r.Header.Get("Accept"))
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer server.Close()

	c := newTestClient(nil)
	params := url.Values{}
	params.Set("name", "London")
	params.Set("count", "1")

	body, err := c.Get(context.Background(), server.URL, params, false)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(body) != `{"results":[]}` {
		t.Errorf("body = %q", body)
	}
}

// TestClient_Get_NonSuccessStatus verifies non-2xx responses wrap
// ErrRequestFailed and carry the status code and body text.
func TestClient_Get_NonSuccessStatus(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
	}{
		{"500 internal", http.StatusInternalServerError, "upstream exploded"},
		{"404 not found", http.StatusNotFound, "no such resource"},
		{"429 rate limited", http.StatusTooManyRequests, "slow down"},
		{"400 bad request", http.StatusBadRequest, `{"error":true,"reason":"invalid dates"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.statusCode)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			c := newTestClient(nil)
			_, err := c.Get(context.Background(), server.URL, url.Values{}, false)
			if !errors.Is(err, ErrRequestFailed) {
				t.Fatalf("Get() error = %v, want ErrRequestFailed", err)
			}
			if !strings.Contains(err.Error(), fmt.Sprintf("HTTP %d", tc.statusCode)) {
				t.Errorf("error %q should carry status %d", err, tc.statusCode)
			}
			if !strings.Contains(err.Error(), tc.body) {
				t.Errorf("error %q should carry response body %q", err, tc.body)
			}
		})
	}
}

// TestClient_Get_CacheAside verifies a second identical request inside the
// TTL is served from the cache without a network round trip.
func TestClient_Get_CacheAside(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	c := newTestClient(cache.NewInMemoryCache())
	params := url.Values{}
	params.Set("latitude", "51.5")

	for i := 0; i < 3; i++ {
		body, err := c.Get(context.Background(), server.URL, params, true)
		if err != nil {
			t.Fatalf("Get() #%d error = %v", i, err)
		}
		if string(body) != `{"ok":true}` {
			t.Errorf("Get() #%d body = %q", i, body)
		}
	}

	if hits != 1 {
		t.Errorf("server hits = %d, want 1 (subsequent requests served from cache)", hits)
	}
}

// TestClient_Get_CacheKeyIncludesParams verifies different query parameters
// do not collide in the cache.
func TestClient_Get_CacheKeyIncludesParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"lat":"` + r.URL.Query().Get("latitude") + `"}`))
	}))
	defer server.Close()

	c := newTestClient(cache.NewInMemoryCache())

	p1 := url.Values{}
	p1.Set("latitude", "51.5")
	p2 := url.Values{}
	p2.Set("latitude", "48.8")

	b1, err := c.Get(context.Background(), server.URL, p1, true)
	if err != nil {
		t.Fatalf("Get(p1) error = %v", err)
	}
	b2, err := c.Get(context.Background(), server.URL, p2, true)
	if err != nil {
		t.Fatalf("Get(p2) error = %v", err)
	}

	if string(b1) == string(b2) {
		t.Errorf("distinct parameters must not share a cache entry: %q == %q", b1, b2)
	}
}

// TestClient_Get_NoCacheBypasses verifies useCache=false always hits the
// network even when a cache is configured.
func TestClient_Get_NoCacheBypasses(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := newTestClient(cache.NewInMemoryCache())
	for i := 0; i < 2; i++ {
		if _, err := c.Get(context.Background(), server.URL, url.Values{}, false); err != nil {
			t.Fatalf("Get() #%d error = %v", i, err)
		}
	}
	if hits != 2 {
		t.Errorf("server hits = %d, want 2 with caching bypassed", hits)
	}
}

// TestClient_Get_ErrorNotCached verifies failed responses are not stored,
// so no partial or error payload can ever be replayed from the cache.
func TestClient_Get_ErrorNotCached(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	c := newTestClient(cache.NewInMemoryCache())

	if _, err := c.Get(context.Background(), server.URL, url.Values{}, true); !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("first Get() error = %v, want ErrRequestFailed", err)
	}
	body, err := c.Get(context.Background(), server.URL, url.Values{}, true)
	if err != nil {
		t.Fatalf("second Get() error = %v", err)
	}
	if string(body) != `{"ok":true}` {
		t.Errorf("second Get() body = %q", body)
	}
	if hits != 2 {
		t.Errorf("server hits = %d, want 2 (error must not populate the cache)", hits)
	}
}

// TestClient_Get_Timeout verifies exceeding the request timeout is reported
// as an ordinary request failure.
func TestClient_Get_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := New(20*time.Millisecond, 100, nil, 0, "off", zap.NewNop())
	_, err := c.Get(context.Background(), server.URL, url.Values{}, false)
	if !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("Get() error = %v, want ErrRequestFailed on timeout", err)
	}
}

// TestClient_Get_InvalidURL verifies malformed base URLs fail before any
// network activity.
func TestClient_Get_InvalidURL(t *testing.T) {
	c := newTestClient(nil)
	_, err := c.Get(context.Background(), "://not-a-url", url.Values{}, false)
	if err == nil {
		t.Fatal("Get() expected error for invalid URL")
	}
}

// TestCacheKey_Deterministic verifies identical URLs map to identical keys
// and distinct URLs to distinct keys.
func TestCacheKey_Deterministic(t *testing.T) {
	a := cacheKey("http://example.com/v1/forecast?latitude=51.5")
	b := cacheKey("http://example.com/v1/forecast?latitude=51.5")
	c := cacheKey("http://example.com/v1/forecast?latitude=48.8")

	if a != b {
		t.Errorf("cacheKey not deterministic: %q != %q", a, b)
	}
	if a == c {
		t.Error("distinct URLs must not share a key")
	}
}
