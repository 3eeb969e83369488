package vectorstore

// VectorStore defines the interface for vector storage operations
type VectorStore interface {
	Store(id, text string, vector []float32) error
	Search(vector []float32, topK int) ([]SearchResult, error)
	Delete(id string) error
	Close() error
}

// SearchResult is one entry of a top-k similarity search
type SearchResult struct {
	ID    string
	Score float32
	Text  string
}
