package index

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/RentoYabuki06/wikipedia-rag/internal/domain"
)

var blobMagic = [4]byte{'W', 'V', 'I', 'X'}

const blobVersion uint32 = 1

// FlatIndex is an exact inner-product index over unit vectors. With
// unit-normalized inputs the inner product equals cosine similarity,
// so brute-force scoring gives exact recall; at the target scale that
// is cheap and keeps the correctness story simple.
//
// Build and Load are exclusive-access operations. Search performs no
// mutation and may run concurrently once they have completed; callers
// needing a hot reload construct a fresh index and swap the reference.
type FlatIndex struct {
	dimension int
	vectors   [][]float32
}

func NewFlatIndex(dimension int) *FlatIndex {
	return &FlatIndex{dimension: dimension}
}

// Build replaces the index contents. Every vector must match the
// declared dimension.
func (x *FlatIndex) Build(vectors [][]float32) error {
	stored := make([][]float32, len(vectors))
	for i, v := range vectors {
		if len(v) != x.dimension {
			return fmt.Errorf("%w: vector %d has dimension %d, index expects %d",
				domain.ErrDimensionMismatch, i, len(v), x.dimension)
		}
		c := make([]float32, len(v))
		copy(c, v)
		stored[i] = c
	}
	x.vectors = stored
	return nil
}

// Search returns the k highest inner-product matches, descending by
// score. Ties are broken by ascending stored position so results are
// deterministic. k larger than the stored count is clamped.
func (x *FlatIndex) Search(query []float32, k int) ([]domain.SearchHit, error) {
	if len(query) != x.dimension {
		return nil, fmt.Errorf("%w: query has dimension %d, index expects %d",
			domain.ErrDimensionMismatch, len(query), x.dimension)
	}
	if k <= 0 || len(x.vectors) == 0 {
		return nil, nil
	}
	if k > len(x.vectors) {
		k = len(x.vectors)
	}

	hits := make([]domain.SearchHit, len(x.vectors))
	for i, v := range x.vectors {
		hits[i] = domain.SearchHit{Position: i, Score: dot(query, v)}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Position < hits[j].Position
	})

	return hits[:k], nil
}

// Count returns the number of stored vectors.
func (x *FlatIndex) Count() int {
	return len(x.vectors)
}

// Dimension returns the declared vector dimension.
func (x *FlatIndex) Dimension() int {
	return x.dimension
}

// Save persists the index as a single blob: magic, version, vector
// count, dimension, then the raw little-endian float32 data in stored
// order.
func (x *FlatIndex) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := w.Write(blobMagic[:]); err != nil {
		return fmt.Errorf("write index header: %w", err)
	}
	header := []uint32{blobVersion, uint32(len(x.vectors)), uint32(x.dimension)}
	for _, h := range header {
		if err := binary.Write(w, binary.LittleEndian, h); err != nil {
			return fmt.Errorf("write index header: %w", err)
		}
	}
	for _, v := range x.vectors {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("write index data: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush index file: %w", err)
	}
	return nil
}

// Load restores the index from a blob written by Save. A corrupt,
// truncated or dimension-incompatible file fails with ErrIndexLoad;
// it never silently yields an empty index.
func (x *FlatIndex) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrIndexLoad, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)

	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return fmt.Errorf("%w: truncated header", domain.ErrIndexLoad)
	}
	if magic != blobMagic {
		return fmt.Errorf("%w: bad magic %q", domain.ErrIndexLoad, magic[:])
	}

	var version, count, dim uint32
	for _, p := range []*uint32{&version, &count, &dim} {
		if err := binary.Read(r, binary.LittleEndian, p); err != nil {
			return fmt.Errorf("%w: truncated header", domain.ErrIndexLoad)
		}
	}
	if version != blobVersion {
		return fmt.Errorf("%w: unsupported version %d", domain.ErrIndexLoad, version)
	}
	if int(dim) != x.dimension {
		return fmt.Errorf("%w: file dimension %d, index expects %d", domain.ErrIndexLoad, dim, x.dimension)
	}

	vectors := make([][]float32, count)
	for i := range vectors {
		v := make([]float32, dim)
		if err := binary.Read(r, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("%w: truncated vector data at %d of %d", domain.ErrIndexLoad, i, count)
		}
		vectors[i] = v
	}

	if _, err := r.ReadByte(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing bytes after vector data", domain.ErrIndexLoad)
	}

	x.vectors = vectors
	return nil
}

// dot accumulates in float64 to keep scoring stable.
func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
