// Package vectorindex implements the exact top-k dense vector index: an
// append-only row-major matrix of f16 vectors keyed by document id, with
// cosine or dot scoring and atomic on-disk persistence.
package vectorindex

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/x448/float16"

	"github.com/amancerp/hybridsearch/internal/errkind"
)

// Distance selects the scoring function used by Search.
type Distance int

const (
	// Cosine scores by cosine similarity; rows are stored L2-normalized.
	Cosine Distance = iota
	// Dot scores by raw dot product; rows are stored as provided.
	Dot
)

func (d Distance) String() string {
	if d == Dot {
		return "dot"
	}
	return "cosine"
}

// Hit is a single scored document.
type Hit struct {
	DocID string
	Score float64
}

// Index owns the matrix, the doc_id mapping, and the embedder-compatibility
// metadata. Mutations are serialized; reads may proceed concurrently with
// other reads.
type Index struct {
	mu sync.RWMutex

	dimension   int
	distance    Distance
	embedderID  string
	rows        []float16.Float16 // row-major, len == count*dimension
	docIDs      []string          // insertion order, row i -> docIDs[i]
	rowOfDocID  map[string]int
}

// New creates an empty index for vectors of the given dimension, produced
// by the named embedder, scored with the given distance kind.
func New(dimension int, embedderID string, distance Distance) (*Index, error) {
	if dimension <= 0 {
		return nil, &ValidationError{Msg: "dimension must be positive"}
	}
	if embedderID == "" {
		return nil, &ValidationError{Msg: "embedder_id must be non-empty"}
	}
	return &Index{
		dimension:  dimension,
		distance:   distance,
		embedderID: embedderID,
		rowOfDocID: make(map[string]int),
	}, nil
}

// Dimension returns D.
func (idx *Index) Dimension() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.dimension
}

// EmbedderID returns the embedder_id recorded at construction.
func (idx *Index) EmbedderID() string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.embedderID
}

// DistanceKind returns the scoring kind.
func (idx *Index) DistanceKind() Distance {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.distance
}

// Count returns the number of rows currently stored.
func (idx *Index) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.docIDs)
}

// Contains reports whether doc_id already has a row.
func (idx *Index) Contains(docID string) bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	_, ok := idx.rowOfDocID[docID]
	return ok
}

// Add appends a vector for doc_id. It fails with DuplicateIDError if doc_id
// is known, or DimensionMismatchError if the vector length disagrees with
// D. On Cosine, the stored row is the L2-normalized vector (a zero vector
// is stored as-is and always scores 0). No partial state is left on
// failure.
func (idx *Index) Add(docID string, vector []float32) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, ok := idx.rowOfDocID[docID]; ok {
		return &DuplicateIDError{DocID: docID}
	}
	if len(vector) != idx.dimension {
		return &DimensionMismatchError{Want: idx.dimension, Got: len(vector)}
	}

	stored := vector
	if idx.distance == Cosine {
		stored = normalizeL2(vector)
	}

	row := make([]float16.Float16, idx.dimension)
	for i, v := range stored {
		row[i] = float16.Fromfloat32(v)
	}

	idx.rows = append(idx.rows, row...)
	idx.rowOfDocID[docID] = len(idx.docIDs)
	idx.docIDs = append(idx.docIDs, docID)
	return nil
}

// Search returns the exact top-k hits by score, descending, ties broken by
// ascending insertion order (row index). Runs in O(count*D).
func (idx *Index) Search(queryVector []float32, k int) ([]Hit, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if len(queryVector) != idx.dimension {
		return nil, &DimensionMismatchError{Want: idx.dimension, Got: len(queryVector)}
	}
	count := len(idx.docIDs)
	if k > count {
		k = count
	}
	if k <= 0 || count == 0 {
		return []Hit{}, nil
	}

	query := queryVector
	if idx.distance == Cosine {
		query = normalizeL2(queryVector)
	}

	type scored struct {
		row   int
		score float64
	}
	all := make([]scored, count)
	for r := 0; r < count; r++ {
		offset := r * idx.dimension
		var sum float64
		for d := 0; d < idx.dimension; d++ {
			sum += float64(idx.rows[offset+d].Float32()) * float64(query[d])
		}
		all[r] = scored{row: r, score: sum}
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].score != all[j].score {
			return all[i].score > all[j].score
		}
		return all[i].row < all[j].row
	})

	hits := make([]Hit, k)
	for i := 0; i < k; i++ {
		hits[i] = Hit{DocID: idx.docIDs[all[i].row], Score: all[i].score}
	}
	return hits, nil
}

// VectorFor returns the stored (possibly normalized) vector for a doc_id,
// or false if unknown. Used by the orchestrator's REFINED phase to reuse
// already-computed vectors when the candidate's embedder_id matches.
func (idx *Index) VectorFor(docID string) ([]float32, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	row, ok := idx.rowOfDocID[docID]
	if !ok {
		return nil, false
	}
	offset := row * idx.dimension
	out := make([]float32, idx.dimension)
	for i := 0; i < idx.dimension; i++ {
		out[i] = idx.rows[offset+i].Float32()
	}
	return out, true
}

// AllDocIDs returns the doc ids in insertion order.
func (idx *Index) AllDocIDs() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make([]string, len(idx.docIDs))
	copy(out, idx.docIDs)
	return out
}

func normalizeL2(v []float32) []float32 {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	if sumSq == 0 {
		out := make([]float32, len(v))
		copy(out, v)
		return out
	}
	norm := math.Sqrt(sumSq)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

// ValidationError reports a bad construction argument.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return fmt.Sprintf("vectorindex: validation: %s", e.Msg) }
func (e *ValidationError) Unwrap() error { return errkind.ErrValidation }

// DuplicateIDError is returned by Add when doc_id is already present.
type DuplicateIDError struct{ DocID string }

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("vectorindex: duplicate doc_id %q", e.DocID)
}
func (e *DuplicateIDError) Unwrap() error { return errkind.ErrValidation }

// DimensionMismatchError is returned by Add/Search when a vector's length
// disagrees with the index dimension.
type DimensionMismatchError struct{ Want, Got int }

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("vectorindex: dimension mismatch: want %d, got %d", e.Want, e.Got)
}
func (e *DimensionMismatchError) Unwrap() error { return errkind.ErrValidation }
