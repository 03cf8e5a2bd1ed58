package embed

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

const hashModelID = "hash-fnv1a-v1"

// HashEmbedder is a deterministic, dependency-free embedder: it projects
// FNV-1a hashes of token 3-grams into a fixed-dimension signed accumulator,
// then L2-normalizes. Same input yields identical output within a process
// and across processes, since the hash is seedless.
type HashEmbedder struct {
	dimension int
}

// NewHashEmbedder constructs a HashEmbedder producing vectors of the given
// dimension. Dimension must be positive.
func NewHashEmbedder(dimension int) *HashEmbedder {
	if dimension <= 0 {
		dimension = 256
	}
	return &HashEmbedder{dimension: dimension}
}

func (h *HashEmbedder) ModelID() string { return hashModelID }

func (h *HashEmbedder) Dimension() int { return h.dimension }

func (h *HashEmbedder) Embed(_ context.Context, text string) (Vector, error) {
	return h.generateVector(text), nil
}

func (h *HashEmbedder) EmbedBatch(_ context.Context, texts []string) ([]Vector, error) {
	out := make([]Vector, len(texts))
	for i, t := range texts {
		out[i] = h.generateVector(t)
	}
	return out, nil
}

func (h *HashEmbedder) generateVector(text string) Vector {
	acc := make([]float32, h.dimension)

	for _, gram := range tokenTrigrams(text) {
		idx, sign := hashToIndex(gram, h.dimension)
		acc[idx] += sign
	}

	return normalizeL2(acc)
}

// tokenTrigrams tokenizes text on non-alphanumeric boundaries and returns
// overlapping runs of three consecutive tokens joined by a separator.
func tokenTrigrams(text string) []string {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return nil
	}
	if len(tokens) < 3 {
		return []string{strings.Join(tokens, "\x00")}
	}
	grams := make([]string, 0, len(tokens)-2)
	for i := 0; i+3 <= len(tokens); i++ {
		grams = append(grams, strings.Join(tokens[i:i+3], "\x00"))
	}
	return grams
}

func tokenize(text string) []string {
	lower := strings.ToLower(text)
	return strings.FieldsFunc(lower, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
}

// hashToIndex hashes s with FNV-1a and maps it to a bucket in [0, dim) and
// a sign in {-1, +1} derived from a separate bit of the same hash.
func hashToIndex(s string, dim int) (int, float32) {
	hsh := fnv.New32a()
	_, _ = hsh.Write([]byte(s))
	sum := hsh.Sum32()

	idx := int(sum % uint32(dim))
	sign := float32(1)
	if sum&0x80000000 != 0 {
		sign = -1
	}
	return idx, sign
}

func normalizeL2(v []float32) Vector {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	if sumSq == 0 {
		return Vector(v)
	}
	norm := float32(math.Sqrt(sumSq))
	out := make(Vector, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}
