package vectorstore

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"
)

// VectorEntry is a stored vector with its source text
type VectorEntry struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Vector    []float32 `json:"vector"`
	Timestamp time.Time `json:"timestamp"`
}

// MemoryStoreOptions configures the in-memory vector store
type MemoryStoreOptions struct {
	PersistenceFile  string
	MaxVectors       int
	NormalizeVectors bool
}

// MemoryStoreOption is a function type for configuring MemoryStore
type MemoryStoreOption func(*MemoryStoreOptions)

// WithPersistence enables disk persistence for the memory store
func WithPersistence(filename string) MemoryStoreOption {
	return func(opts *MemoryStoreOptions) {
		opts.PersistenceFile = filename
	}
}

// WithMaxVectors limits the number of vectors stored
func WithMaxVectors(maxVectors int) MemoryStoreOption {
	return func(opts *MemoryStoreOptions) {
		opts.MaxVectors = maxVectors
	}
}

// WithNormalization normalizes vectors on insert and on search
func WithNormalization() MemoryStoreOption {
	return func(opts *MemoryStoreOptions) {
		opts.NormalizeVectors = true
	}
}

// MemoryStore implements VectorStore with insertion-ordered in-memory
// storage. Search results are tie-broken by insertion order, which
// callers rely on for deterministic top-k output.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []VectorEntry
	index   map[string]int
	options MemoryStoreOptions
}

// NewMemoryStore creates a new in-memory vector store
func NewMemoryStore(options ...MemoryStoreOption) *MemoryStore {
	opts := MemoryStoreOptions{
		MaxVectors: 10000,
	}

	for _, option := range options {
		option(&opts)
	}

	return &MemoryStore{
		index:   make(map[string]int),
		options: opts,
	}
}

// Store adds or replaces a vector. Replacing keeps the original
// insertion position.
func (ms *MemoryStore) Store(id, text string, vector []float32) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if ms.options.NormalizeVectors {
		vector = NormalizeVector(vector)
	}

	entry := VectorEntry{
		ID:        id,
		Text:      text,
		Vector:    vector,
		Timestamp: time.Now(),
	}

	if pos, exists := ms.index[id]; exists {
		ms.entries[pos] = entry
		return nil
	}

	if ms.options.MaxVectors > 0 && len(ms.entries) >= ms.options.MaxVectors {
		return fmt.Errorf("vector store is full (max %d vectors)", ms.options.MaxVectors)
	}

	ms.index[id] = len(ms.entries)
	ms.entries = append(ms.entries, entry)
	return nil
}

// Search returns the topK most similar entries by cosine similarity,
// sorted descending. Equal scores keep insertion order.
func (ms *MemoryStore) Search(vector []float32, topK int) ([]SearchResult, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	if len(ms.entries) == 0 {
		return []SearchResult{}, nil
	}

	query := vector
	if ms.options.NormalizeVectors {
		query = NormalizeVector(vector)
	}

	results := make([]SearchResult, 0, len(ms.entries))
	for i := range ms.entries {
		entry := &ms.entries[i]
		results = append(results, SearchResult{
			ID:    entry.ID,
			Score: CosineSimilarity(query, entry.Vector),
			Text:  entry.Text,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if topK > len(results) {
		topK = len(results)
	}
	return results[:topK], nil
}

// Delete removes a vector from the store
func (ms *MemoryStore) Delete(id string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	pos, exists := ms.index[id]
	if !exists {
		return fmt.Errorf("vector with ID %s not found", id)
	}

	ms.entries = append(ms.entries[:pos], ms.entries[pos+1:]...)
	delete(ms.index, id)
	for i := pos; i < len(ms.entries); i++ {
		ms.index[ms.entries[i].ID] = i
	}
	return nil
}

// Get retrieves a vector entry by ID
func (ms *MemoryStore) Get(id string) (VectorEntry, bool) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	pos, exists := ms.index[id]
	if !exists {
		return VectorEntry{}, false
	}
	return ms.entries[pos], true
}

// Size returns the number of vectors in the store
func (ms *MemoryStore) Size() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return len(ms.entries)
}

// Clear removes all vectors from the store
func (ms *MemoryStore) Clear() {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.entries = nil
	ms.index = make(map[string]int)
}

// Close persists the store if a persistence file is configured
func (ms *MemoryStore) Close() error {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	if ms.options.PersistenceFile != "" {
		return ms.saveLocked(ms.options.PersistenceFile)
	}
	return nil
}

// SaveToFile writes all entries to a JSON file
func (ms *MemoryStore) SaveToFile(filename string) error {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return ms.saveLocked(filename)
}

func (ms *MemoryStore) saveLocked(filename string) error {
	file, err := os.Create(filename) // #nosec G304 -- filename is controlled by caller
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", filename, err)
	}
	defer func() { _ = file.Close() }()

	if err := json.NewEncoder(file).Encode(ms.entries); err != nil {
		return fmt.Errorf("failed to encode vectors: %w", err)
	}
	return nil
}

// LoadFromFile replaces the store contents with entries from a JSON
// file, preserving their stored order.
func (ms *MemoryStore) LoadFromFile(filename string) error {
	file, err := os.Open(filename) // #nosec G304 -- filename is controlled by caller
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer func() { _ = file.Close() }()

	var entries []VectorEntry
	if err := json.NewDecoder(file).Decode(&entries); err != nil {
		return fmt.Errorf("failed to decode vectors: %w", err)
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.entries = entries
	ms.index = make(map[string]int, len(entries))
	for i := range entries {
		ms.index[entries[i].ID] = i
	}
	return nil
}
