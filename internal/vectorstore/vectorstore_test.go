package vectorstore

import (
	"fmt"
	"math"
	"path/filepath"
	"sync"
	"testing"
)

// TestCosineSimilarity tests the cosine similarity function
func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float32
	}{
		{
			name:     "identical vectors",
			a:        []float32{1, 2, 3},
			b:        []float32{1, 2, 3},
			expected: 1.0,
		},
		{
			name:     "orthogonal vectors",
			a:        []float32{1, 0},
			b:        []float32{0, 1},
			expected: 0.0,
		},
		{
			name:     "opposite vectors",
			a:        []float32{1, 0},
			b:        []float32{-1, 0},
			expected: -1.0,
		},
		{
			name:     "different length vectors",
			a:        []float32{1, 2},
			b:        []float32{1, 2, 3},
			expected: 0.0,
		},
		{
			name:     "zero vector",
			a:        []float32{0, 0, 0},
			b:        []float32{1, 2, 3},
			expected: 0.0,
		},
		{
			name:     "both zero vectors",
			a:        []float32{0, 0},
			b:        []float32{0, 0},
			expected: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CosineSimilarity(tt.a, tt.b)
			if math.Abs(float64(result-tt.expected)) > 1e-6 {
				t.Errorf("CosineSimilarity() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestNormalizeVector(t *testing.T) {
	normalized := NormalizeVector([]float32{3, 4})
	if math.Abs(float64(Magnitude(normalized)-1.0)) > 1e-6 {
		t.Errorf("normalized magnitude = %v, want 1.0", Magnitude(normalized))
	}

	zero := NormalizeVector([]float32{0, 0})
	if zero[0] != 0 || zero[1] != 0 {
		t.Errorf("zero vector must normalize to itself, got %v", zero)
	}
}

func TestMemoryStoreSearch(t *testing.T) {
	store := NewMemoryStore()

	vectors := map[string][]float32{
		"east":  {1, 0},
		"north": {0, 1},
		"west":  {-1, 0},
	}
	for _, id := range []string{"east", "north", "west"} {
		if err := store.Store(id, id, vectors[id]); err != nil {
			t.Fatalf("Store(%s) error = %v", id, err)
		}
	}

	results, err := store.Search([]float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("Search() returned %d results, want 2", len(results))
	}
	if results[0].ID != "east" {
		t.Errorf("top result = %s, want east", results[0].ID)
	}
	if results[0].Score < results[1].Score {
		t.Error("results not sorted by descending score")
	}
}

func TestMemoryStoreSearchStableTies(t *testing.T) {
	store := NewMemoryStore()

	// Three identical vectors: ties must keep insertion order.
	for _, id := range []string{"first", "second", "third"} {
		if err := store.Store(id, id, []float32{1, 1}); err != nil {
			t.Fatalf("Store(%s) error = %v", id, err)
		}
	}

	results, err := store.Search([]float32{1, 1}, 3)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	want := []string{"first", "second", "third"}
	for i, id := range want {
		if results[i].ID != id {
			t.Errorf("results[%d].ID = %s, want %s", i, results[i].ID, id)
		}
	}
}

func TestMemoryStoreSearchBounds(t *testing.T) {
	store := NewMemoryStore()

	results, err := store.Search([]float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("Search() on empty store error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("empty store returned %d results, want 0", len(results))
	}

	if err := store.Store("only", "only", []float32{1, 0}); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	results, err = store.Search([]float32{1, 0}, 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 {
		t.Errorf("topK larger than store returned %d results, want 1", len(results))
	}
}

func TestMemoryStoreMaxVectors(t *testing.T) {
	store := NewMemoryStore(WithMaxVectors(2))

	if err := store.Store("a", "a", []float32{1}); err != nil {
		t.Fatalf("Store(a) error = %v", err)
	}
	if err := store.Store("b", "b", []float32{2}); err != nil {
		t.Fatalf("Store(b) error = %v", err)
	}
	if err := store.Store("c", "c", []float32{3}); err == nil {
		t.Error("expected error when store is full")
	}
	// Replacing an existing id is always allowed.
	if err := store.Store("a", "a2", []float32{4}); err != nil {
		t.Errorf("replace in full store error = %v", err)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore()

	for i := 0; i < 3; i++ {
		id := fmt.Sprintf("v%d", i)
		if err := store.Store(id, id, []float32{float32(i)}); err != nil {
			t.Fatalf("Store(%s) error = %v", id, err)
		}
	}

	if err := store.Delete("v1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if store.Size() != 2 {
		t.Errorf("Size() = %d after delete, want 2", store.Size())
	}
	if _, exists := store.Get("v1"); exists {
		t.Error("deleted entry still retrievable")
	}
	if entry, exists := store.Get("v2"); !exists || entry.ID != "v2" {
		t.Error("index broken after delete")
	}

	if err := store.Delete("missing"); err == nil {
		t.Error("expected error deleting unknown id")
	}
}

func TestMemoryStorePersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.json")

	store := NewMemoryStore(WithPersistence(path))
	for _, id := range []string{"a", "b", "c"} {
		if err := store.Store(id, "text-"+id, []float32{1, 2}); err != nil {
			t.Fatalf("Store(%s) error = %v", id, err)
		}
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	loaded := NewMemoryStore()
	if err := loaded.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if loaded.Size() != 3 {
		t.Fatalf("loaded Size() = %d, want 3", loaded.Size())
	}

	// Insertion order must survive the round trip.
	results, err := loaded.Search([]float32{1, 2}, 3)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	want := []string{"a", "b", "c"}
	for i, id := range want {
		if results[i].ID != id {
			t.Errorf("results[%d].ID = %s, want %s", i, results[i].ID, id)
		}
	}
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("v%d", n)
			if err := store.Store(id, id, []float32{float32(n), 1}); err != nil {
				t.Errorf("Store(%s) error = %v", id, err)
			}
			if _, err := store.Search([]float32{1, 1}, 3); err != nil {
				t.Errorf("Search() error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	if store.Size() != 10 {
		t.Errorf("Size() = %d, want 10", store.Size())
	}
}
