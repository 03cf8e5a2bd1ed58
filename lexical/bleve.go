package lexical

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
)

// bleveDocument is the document shape indexed into bleve.
type bleveDocument struct {
	Content string `json:"content"`
}

// BleveBackend is the default Backend, wrapping an in-memory bleve index
// for BM25-family scoring. It is built once from a fixed document sequence
// and is not incrementally mutable.
type BleveBackend struct {
	mu     sync.RWMutex
	index  bleve.Index
	order  map[string]int // doc_id -> insertion rank, for deterministic tie-breaking
	closed bool
}

// NewBleveBackend builds a backend from a sequence of canonicalized
// documents. Document order defines the tie-break order used when bleve
// returns equal scores; it must agree with the vector index's insertion
// order for a given corpus.
func NewBleveBackend(docs []Document) (*BleveBackend, error) {
	indexMapping, err := newCodeIndexMapping()
	if err != nil {
		return nil, fmt.Errorf("lexical: building index mapping: %w", err)
	}

	idx, err := bleve.NewMemOnly(indexMapping)
	if err != nil {
		return nil, fmt.Errorf("lexical: creating bleve index: %w", err)
	}

	order := make(map[string]int, len(docs))
	batch := idx.NewBatch()
	for i, d := range docs {
		order[d.DocID] = i
		if err := batch.Index(d.DocID, bleveDocument{Content: d.Text}); err != nil {
			return nil, fmt.Errorf("lexical: indexing doc %q: %w", d.DocID, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		return nil, fmt.Errorf("lexical: committing batch: %w", err)
	}

	return &BleveBackend{index: idx, order: order}, nil
}

func newCodeIndexMapping() (*mapping.IndexMappingImpl, error) {
	indexMapping := bleve.NewIndexMapping()
	if err := indexMapping.AddCustomAnalyzer(codeAnalyzerName, map[string]interface{}{
		"type":      "custom",
		"tokenizer": codeTokenizerName,
	}); err != nil {
		return nil, fmt.Errorf("lexical: registering code analyzer: %w", err)
	}
	indexMapping.DefaultAnalyzer = codeAnalyzerName
	return indexMapping, nil
}

// Search returns up to k hits in descending BM25-family score, ties broken
// by ascending insertion order.
func (b *BleveBackend) Search(_ context.Context, canonQuery string, k int) ([]Hit, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, fmt.Errorf("lexical: backend is closed")
	}
	if k <= 0 {
		return []Hit{}, nil
	}

	query := bleve.NewMatchQuery(canonQuery)
	req := bleve.NewSearchRequestOptions(query, k, 0, false)
	result, err := b.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("lexical: search: %w", err)
	}

	hits := make([]Hit, 0, len(result.Hits))
	for _, h := range result.Hits {
		hits = append(hits, Hit{DocID: h.ID, Score: h.Score})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return b.order[hits[i].DocID] < b.order[hits[j].DocID]
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Close releases the underlying bleve index.
func (b *BleveBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.index.Close()
}
