package port

import "github.com/RentoYabuki06/wikipedia-rag/internal/domain"

// VectorIndex stores unit vectors and answers exact top-k inner-product
// queries. Build and Load are exclusive-access operations; Search may
// run concurrently once they have completed.
type VectorIndex interface {
	// Build replaces the index contents with the given vectors.
	Build(vectors [][]float32) error

	// Search returns the k highest inner-product matches, descending
	// by score with ties broken by ascending stored position. k is
	// clamped to the stored count.
	Search(query []float32, k int) ([]domain.SearchHit, error)

	// Save persists the full index state to path.
	Save(path string) error

	// Load restores the index state from path.
	Load(path string) error

	// Count returns the number of stored vectors.
	Count() int

	// Dimension returns the declared vector dimension.
	Dimension() int
}
