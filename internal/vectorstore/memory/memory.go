// Package memory holds an index entirely in memory and answers queries with
// brute-force cosine similarity.
package memory

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"pdfchat/internal/domain"
)

// ErrDimensionMismatch is returned when a vector does not match the index dimension.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Index is safe for concurrent searches.
type Index struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float64
	norms     []float64
	docs      []domain.Document
}

func NewIndex() *Index { return &Index{} }

// Add appends a document and its vector. The first vector fixes the dimension.
func (s *Index) Add(doc domain.Document, vector []float64) error {
	if len(vector) == 0 {
		return errors.New("empty vector")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension == 0 {
		s.dimension = len(vector)
	}
	if len(vector) != s.dimension {
		return ErrDimensionMismatch
	}
	s.docs = append(s.docs, doc)
	s.vectors = append(s.vectors, vector)
	s.norms = append(s.norms, norm(vector))
	return nil
}

// Len returns the number of indexed documents.
func (s *Index) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Dimension returns the vector size, zero for an empty index.
func (s *Index) Dimension() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimension
}

// Search returns up to topK documents ordered by descending similarity.
func (s *Index) Search(_ context.Context, vector []float64, topK int) ([]domain.SearchHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if topK <= 0 || len(s.docs) == 0 {
		return []domain.SearchHit{}, nil
	}
	if len(vector) != s.dimension {
		return nil, ErrDimensionMismatch
	}
	qn := norm(vector)
	scores := make([]float64, len(s.vectors))
	for i := range s.vectors {
		if qn == 0 || s.norms[i] == 0 {
			continue
		}
		scores[i] = dot(s.vectors[i], vector) / (qn * s.norms[i])
	}
	idxs := argsortDesc(scores)
	if topK > len(idxs) {
		topK = len(idxs)
	}
	results := make([]domain.SearchHit, 0, topK)
	for i := 0; i < topK; i++ {
		j := idxs[i]
		results = append(results, domain.SearchHit{Document: s.docs[j], Score: scores[j]})
	}
	return results, nil
}

// Close releases nothing; the index lives in process memory.
func (s *Index) Close() error { return nil }

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func norm(v []float64) float64 { return math.Sqrt(dot(v, v)) }

// argsortDesc orders indexes by descending score. Ties keep insertion order so
// results are deterministic.
func argsortDesc(vals []float64) []int {
	idxs := make([]int, len(vals))
	for i := range vals {
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(a, b int) bool { return vals[idxs[a]] > vals[idxs[b]] })
	return idxs
}
