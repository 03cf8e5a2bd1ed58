// Package lexical defines the BM25-family lexical backend contract and a
// bleve-backed default implementation.
package lexical

import "context"

// Hit is a single scored document from a lexical backend.
type Hit struct {
	DocID string
	Score float64
}

// Backend is an abstract tokenized-document store with an inverted index.
// A backend is built once from a sequence of canonicalized documents and is
// not incrementally mutable inside the core; the core does not prescribe
// tokenization, only that doc ids agree with the vector index's.
type Backend interface {
	// Search returns up to k hits in descending score order, ties broken
	// by insertion order.
	Search(ctx context.Context, canonQuery string, k int) ([]Hit, error)
	// Close releases backend resources.
	Close() error
}

// Document is one canonicalized document handed to a backend builder.
type Document struct {
	DocID string
	Text  string
}
