package attack

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func newFeedServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleBundle))
	}))
}

func TestClientTechniques(t *testing.T) {
	server := newFeedServer(t, nil)
	defer server.Close()

	client := NewClient(WithBundleURL(server.URL), WithTimeout(5*time.Second))

	techniques, err := client.Techniques(context.Background())
	if err != nil {
		t.Fatalf("Techniques() error = %v", err)
	}

	if len(techniques) != 3 {
		t.Errorf("Techniques() returned %d techniques, want 3", len(techniques))
	}
}

func TestClientFeedErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "empty bundle",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"type": "bundle", "objects": []}`))
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("not json"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := NewClient(WithBundleURL(server.URL))
			if _, err := client.Techniques(context.Background()); err == nil {
				t.Error("Techniques() expected error, got nil")
			}
		})
	}
}

func TestClientContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := NewClient(WithBundleURL(server.URL))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := client.Techniques(ctx); err == nil {
		t.Error("Techniques() expected context error, got nil")
	}
}

func TestCachedSourceAvoidsRefetch(t *testing.T) {
	var hits atomic.Int32
	server := newFeedServer(t, &hits)
	defer server.Close()

	cacheDir := t.TempDir()
	source := NewCachedSource(
		NewClient(WithBundleURL(server.URL)),
		CachedSourceOptions{CacheDir: cacheDir, TTL: time.Hour},
	)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		techniques, err := source.Techniques(ctx)
		if err != nil {
			t.Fatalf("Techniques() call %d error = %v", i, err)
		}
		if len(techniques) != 3 {
			t.Fatalf("Techniques() call %d returned %d techniques, want 3", i, len(techniques))
		}
	}

	if got := hits.Load(); got != 1 {
		t.Errorf("feed fetched %d times, want 1", got)
	}

	if _, err := os.Stat(filepath.Join(cacheDir, cacheFileName)); err != nil {
		t.Errorf("expected snapshot file: %v", err)
	}
}

func TestCachedSourceSnapshotSurvivesRestart(t *testing.T) {
	var hits atomic.Int32
	server := newFeedServer(t, &hits)
	defer server.Close()

	cacheDir := t.TempDir()
	options := CachedSourceOptions{CacheDir: cacheDir, TTL: time.Hour}

	first := NewCachedSource(NewClient(WithBundleURL(server.URL)), options)
	if _, err := first.Techniques(context.Background()); err != nil {
		t.Fatalf("initial fetch error = %v", err)
	}

	// New instance, same cache dir: must read the snapshot, not the feed.
	second := NewCachedSource(NewClient(WithBundleURL(server.URL)), options)
	techniques, err := second.Techniques(context.Background())
	if err != nil {
		t.Fatalf("snapshot load error = %v", err)
	}
	if len(techniques) != 3 {
		t.Errorf("snapshot returned %d techniques, want 3", len(techniques))
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("feed fetched %d times, want 1", got)
	}
}

func TestCachedSourceOffline(t *testing.T) {
	source := NewCachedSource(
		NewClient(WithBundleURL("http://127.0.0.1:1")),
		CachedSourceOptions{CacheDir: t.TempDir(), Offline: true},
	)

	if _, err := source.Techniques(context.Background()); err == nil {
		t.Error("offline mode without snapshot must fail")
	}
}

func TestCachedSourceServesStaleOnFeedFailure(t *testing.T) {
	server := newFeedServer(t, nil)

	cacheDir := t.TempDir()
	source := NewCachedSource(
		NewClient(WithBundleURL(server.URL)),
		CachedSourceOptions{CacheDir: cacheDir, TTL: time.Nanosecond},
	)

	if _, err := source.Techniques(context.Background()); err != nil {
		t.Fatalf("initial fetch error = %v", err)
	}

	// Feed goes away; the expired snapshot should still be served.
	server.Close()
	time.Sleep(time.Millisecond)

	techniques, err := source.Techniques(context.Background())
	if err != nil {
		t.Fatalf("expected stale snapshot, got error: %v", err)
	}
	if len(techniques) != 3 {
		t.Errorf("stale snapshot returned %d techniques, want 3", len(techniques))
	}
}
