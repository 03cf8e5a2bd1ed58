// Package embed defines the embedder contract used by the orchestrator and
// provides a deterministic, dependency-free fallback implementation.
package embed

import "context"

// Vector is a fixed-dimension sequence of embedding components.
type Vector []float32

// Embedder is the capability interface any vectorizer must satisfy.
// Implementations are stateless with respect to queries and may be shared
// across concurrent callers.
type Embedder interface {
	// ModelID identifies the embedder; used as the vector index's
	// embedder_id for compatibility checks.
	ModelID() string
	// Dimension is the length of every Vector this embedder produces.
	Dimension() int
	// Embed returns the vector for a single canonical text.
	Embed(ctx context.Context, text string) (Vector, error)
	// EmbedBatch returns one vector per input text, in order.
	EmbedBatch(ctx context.Context, texts []string) ([]Vector, error)
}
