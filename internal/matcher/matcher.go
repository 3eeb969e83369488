package matcher

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/yildizm/attackmap/internal/ai"
	"github.com/yildizm/attackmap/internal/attack"
	"github.com/yildizm/attackmap/internal/vectorstore"
)

// Progress milestones reported while a match request runs.
const (
	ProgressQueryEmbedded = 20
	ProgressCorpusLoaded  = 50
	ProgressComplete      = 100
)

// DefaultTopK is the number of matches returned unless configured otherwise.
const DefaultTopK = 3

// ErrEmptyQuery is returned synchronously when the query is blank.
var ErrEmptyQuery = errors.New("query text is empty")

// Candidate pairs a technique with its embedding vector.
type Candidate struct {
	Technique attack.Technique
	Vector    []float32
}

// Match is a ranked technique with its similarity to the query.
type Match struct {
	Technique  attack.Technique `json:"technique"`
	Similarity float32          `json:"similarity"`
}

// Result holds the outcome of a match request.
type Result struct {
	Query       string        `json:"query"`
	Matches     []Match       `json:"matches"`
	Explanation string        `json:"explanation,omitempty"`
	CorpusSize  int           `json:"corpus_size"`
	Elapsed     time.Duration `json:"elapsed"`
}

// ProgressFunc receives progress percentages as the pipeline advances.
// It is called from the goroutine running Match; a nil func disables
// reporting.
type ProgressFunc func(percent int)

// Options configures a Matcher.
type Options struct {
	// TopK is the maximum number of matches to return.
	TopK int

	// Cache holds technique embeddings between requests. Optional.
	Cache *vectorstore.MemoryStore

	// CacheNamespace prefixes cache keys so vectors from different
	// embedding models never mix. Defaults to the provider name.
	CacheNamespace string

	// MinScore drops matches below this similarity. Zero or negative
	// disables the filter so low-scoring corners still return top-k.
	MinScore float32
}

// Option is a function type for configuring a Matcher
type Option func(*Options)

// WithTopK sets the maximum number of matches returned.
func WithTopK(k int) Option {
	return func(o *Options) {
		o.TopK = k
	}
}

// WithCache sets a vector store used to cache technique embeddings.
func WithCache(store *vectorstore.MemoryStore) Option {
	return func(o *Options) {
		o.Cache = store
	}
}

// WithCacheNamespace sets the cache key prefix, typically the
// embedding model name.
func WithCacheNamespace(namespace string) Option {
	return func(o *Options) {
		o.CacheNamespace = namespace
	}
}

// WithMinScore drops matches below the given similarity.
func WithMinScore(minScore float32) Option {
	return func(o *Options) {
		o.MinScore = minScore
	}
}

// Matcher maps free-text behavior descriptions to ATT&CK techniques by
// embedding similarity.
type Matcher struct {
	provider ai.EmbeddingProvider
	source   attack.Source
	options  Options
}

// New creates a Matcher backed by the given embedding provider and
// technique source.
func New(provider ai.EmbeddingProvider, source attack.Source, opts ...Option) (*Matcher, error) {
	if provider == nil {
		return nil, errors.New("embedding provider is required")
	}
	if source == nil {
		return nil, errors.New("technique source is required")
	}

	options := Options{TopK: DefaultTopK}
	for _, opt := range opts {
		opt(&options)
	}

	if options.TopK <= 0 {
		options.TopK = DefaultTopK
	}
	if options.CacheNamespace == "" {
		options.CacheNamespace = provider.Name()
	}

	return &Matcher{
		provider: provider,
		source:   source,
		options:  options,
	}, nil
}

// Match runs the full pipeline: embed the query, load the corpus,
// embed candidates, and rank. Empty queries fail before any provider
// call is made.
func (m *Matcher) Match(ctx context.Context, query string, onProgress ProgressFunc) (*Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	report := func(percent int) {
		if onProgress != nil {
			onProgress(percent)
		}
	}

	start := time.Now()

	queryVector, err := m.provider.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	report(ProgressQueryEmbedded)

	techniques, err := m.source.Techniques(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load technique corpus: %w", err)
	}
	report(ProgressCorpusLoaded)

	candidates, err := m.embedCandidates(ctx, techniques)
	if err != nil {
		return nil, err
	}

	matches := Rank(queryVector, candidates, m.options.TopK)
	if m.options.MinScore > 0 {
		matches = filterByScore(matches, m.options.MinScore)
	}
	report(ProgressComplete)

	return &Result{
		Query:      query,
		Matches:    matches,
		CorpusSize: len(techniques),
		Elapsed:    time.Since(start),
	}, nil
}

// embedCandidates returns an embedding for every technique, reading
// from the cache where possible and batch-embedding the rest.
func (m *Matcher) embedCandidates(ctx context.Context, techniques []attack.Technique) ([]Candidate, error) {
	candidates := make([]Candidate, len(techniques))

	var missing []int
	for i, technique := range techniques {
		candidates[i].Technique = technique

		if m.options.Cache != nil {
			if entry, ok := m.options.Cache.Get(m.cacheKey(technique)); ok {
				candidates[i].Vector = entry.Vector
				continue
			}
		}

		missing = append(missing, i)
	}

	if len(missing) == 0 {
		return candidates, nil
	}

	texts := make([]string, len(missing))
	for j, i := range missing {
		texts[j] = embedText(candidates[i].Technique)
	}

	vectors, err := m.provider.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed techniques: %w", err)
	}

	if len(vectors) != len(missing) {
		return nil, fmt.Errorf("provider returned %d vectors for %d texts", len(vectors), len(missing))
	}

	for j, i := range missing {
		candidates[i].Vector = vectors[j]

		if m.options.Cache != nil {
			if err := m.options.Cache.Store(m.cacheKey(candidates[i].Technique), texts[j], vectors[j]); err != nil {
				return nil, fmt.Errorf("failed to cache embedding: %w", err)
			}
		}
	}

	return candidates, nil
}

func (m *Matcher) cacheKey(technique attack.Technique) string {
	return m.options.CacheNamespace + "/" + technique.ID
}

// embedText builds the text that represents a technique in embedding
// space. Name and description together outperform either alone.
func embedText(technique attack.Technique) string {
	name := strings.TrimSpace(technique.Name)
	description := strings.TrimSpace(technique.Description)

	if description == "" {
		return name
	}
	if name == "" {
		return description
	}

	return name + ". " + description
}

// Rank scores every candidate against the query vector and returns the
// top k by cosine similarity, descending. Ties keep candidate order,
// so results are deterministic for a fixed corpus. Returns min(k, n)
// matches.
func Rank(query []float32, candidates []Candidate, k int) []Match {
	matches := make([]Match, 0, len(candidates))
	for _, candidate := range candidates {
		matches = append(matches, Match{
			Technique:  candidate.Technique,
			Similarity: vectorstore.CosineSimilarity(query, candidate.Vector),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	if k < 0 {
		k = 0
	}
	if k > len(matches) {
		k = len(matches)
	}

	return matches[:k]
}

// filterByScore keeps matches at or above minScore. The input is
// sorted descending, so the cut is a prefix.
func filterByScore(matches []Match, minScore float32) []Match {
	for i, match := range matches {
		if match.Similarity < minScore {
			return matches[:i]
		}
	}
	return matches
}
