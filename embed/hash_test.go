package embed

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashEmbedderDeterministic(t *testing.T) {
	e := NewHashEmbedder(64)
	v1, err := e.Embed(context.Background(), "oauth refresh token")
	require.NoError(t, err)
	v2, err := e.Embed(context.Background(), "oauth refresh token")
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
}

func TestHashEmbedderDimension(t *testing.T) {
	e := NewHashEmbedder(128)
	v, err := e.Embed(context.Background(), "some text here")
	require.NoError(t, err)
	assert.Len(t, v, 128)
}

func TestHashEmbedderL2Normalized(t *testing.T) {
	e := NewHashEmbedder(32)
	v, err := e.Embed(context.Background(), "a reasonably long query about searching")
	require.NoError(t, err)

	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	norm := math.Sqrt(sumSq)
	assert.InDelta(t, 1.0, norm, 1e-5)
}

func TestHashEmbedderDifferentTextsDiffer(t *testing.T) {
	e := NewHashEmbedder(64)
	v1, _ := e.Embed(context.Background(), "kubernetes pod scheduling")
	v2, _ := e.Embed(context.Background(), "bearer token refresh")
	assert.NotEqual(t, v1, v2)
}

func TestHashEmbedderBatchMatchesSingle(t *testing.T) {
	e := NewHashEmbedder(48)
	texts := []string{"first text", "second text"}
	batch, err := e.EmbedBatch(context.Background(), texts)
	require.NoError(t, err)
	for i, text := range texts {
		single, _ := e.Embed(context.Background(), text)
		assert.Equal(t, single, batch[i])
	}
}
