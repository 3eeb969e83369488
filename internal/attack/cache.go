package attack

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// cacheFileName is the corpus snapshot stored under the cache directory
const cacheFileName = "techniques.json"

// cacheEnvelope wraps the cached corpus with fetch metadata
type cacheEnvelope struct {
	FetchedAt  time.Time   `json:"fetched_at"`
	Source     string      `json:"source"`
	Techniques []Technique `json:"techniques"`
}

// CachedSourceOptions configures corpus caching
type CachedSourceOptions struct {
	CacheDir string
	TTL      time.Duration
	Offline  bool
}

// CachedSource wraps a Source with an on-disk JSON snapshot so repeated
// queries do not re-download the bundle. A zero TTL means the snapshot
// never expires; Offline serves the snapshot without touching the
// network and fails if none exists.
type CachedSource struct {
	mu       sync.Mutex
	upstream Source
	options  CachedSourceOptions

	// in-process copy, populated on first load
	techniques []Technique
	fetchedAt  time.Time
}

// NewCachedSource creates a caching decorator around upstream
func NewCachedSource(upstream Source, options CachedSourceOptions) *CachedSource {
	return &CachedSource{
		upstream: upstream,
		options:  options,
	}
}

// Techniques returns the corpus, preferring memory, then disk, then the
// upstream feed. A stale snapshot is refreshed; if the refresh fails the
// stale snapshot is served rather than failing the request.
func (s *CachedSource) Techniques(ctx context.Context) ([]Technique, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.techniques == nil {
		s.loadSnapshot()
	}

	if s.options.Offline {
		if s.techniques == nil {
			return nil, fmt.Errorf("offline mode requested but no corpus snapshot exists in %s (run \"attackmap corpus update\" first)", s.options.CacheDir)
		}
		return s.techniques, nil
	}

	if s.techniques != nil && !s.expired() {
		return s.techniques, nil
	}

	techniques, err := s.upstream.Techniques(ctx)
	if err != nil {
		if s.techniques != nil {
			// Serve the stale snapshot when the feed is unreachable.
			return s.techniques, nil
		}
		return nil, err
	}

	s.techniques = techniques
	s.fetchedAt = time.Now()
	if saveErr := s.saveSnapshot(); saveErr != nil {
		// Cache write failures do not fail the request.
		_ = saveErr
	}

	return s.techniques, nil
}

// Refresh forces a feed fetch and snapshot rewrite.
func (s *CachedSource) Refresh(ctx context.Context) (int, error) {
	techniques, err := s.upstream.Techniques(ctx)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.techniques = techniques
	s.fetchedAt = time.Now()
	if err := s.saveSnapshot(); err != nil {
		return len(techniques), fmt.Errorf("corpus fetched but snapshot write failed: %w", err)
	}

	return len(techniques), nil
}

// FetchedAt reports when the current corpus was fetched; zero when no
// corpus has been loaded yet.
func (s *CachedSource) FetchedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.techniques == nil {
		s.loadSnapshot()
	}
	return s.fetchedAt
}

func (s *CachedSource) expired() bool {
	if s.options.TTL <= 0 {
		return false
	}
	return time.Since(s.fetchedAt) > s.options.TTL
}

func (s *CachedSource) snapshotPath() string {
	return filepath.Join(s.options.CacheDir, cacheFileName)
}

func (s *CachedSource) loadSnapshot() {
	data, err := os.ReadFile(s.snapshotPath())
	if err != nil {
		return
	}

	var envelope cacheEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return
	}
	if len(envelope.Techniques) == 0 {
		return
	}

	s.techniques = envelope.Techniques
	s.fetchedAt = envelope.FetchedAt
}

func (s *CachedSource) saveSnapshot() error {
	if s.options.CacheDir == "" {
		return nil
	}

	if err := os.MkdirAll(s.options.CacheDir, 0o750); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	envelope := cacheEnvelope{
		FetchedAt:  s.fetchedAt,
		Source:     "mitre-attack/attack-stix-data",
		Techniques: s.techniques,
	}

	data, err := json.Marshal(&envelope)
	if err != nil {
		return fmt.Errorf("failed to encode corpus snapshot: %w", err)
	}

	tmp := s.snapshotPath() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write corpus snapshot: %w", err)
	}

	return os.Rename(tmp, s.snapshotPath())
}
