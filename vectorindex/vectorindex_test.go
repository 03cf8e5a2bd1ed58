package vectorindex

import (
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddDuplicateID(t *testing.T) {
	idx, err := New(4, "m1", Cosine)
	require.NoError(t, err)
	require.NoError(t, idx.Add("a", []float32{1, 0, 0, 0}))
	err = idx.Add("a", []float32{0, 1, 0, 0})
	require.Error(t, err)
	var dup *DuplicateIDError
	assert.ErrorAs(t, err, &dup)
}

func TestAddDimensionMismatch(t *testing.T) {
	idx, err := New(4, "m1", Cosine)
	require.NoError(t, err)
	err = idx.Add("a", []float32{1, 0, 0})
	require.Error(t, err)
	var mismatch *DimensionMismatchError
	assert.ErrorAs(t, err, &mismatch)
}

func TestSearchDimensionMismatch(t *testing.T) {
	idx, err := New(4, "m1", Cosine)
	require.NoError(t, err)
	require.NoError(t, idx.Add("a", []float32{1, 0, 0, 0}))
	_, err = idx.Search([]float32{1, 0}, 1)
	require.Error(t, err)
	var mismatch *DimensionMismatchError
	assert.ErrorAs(t, err, &mismatch)
}

func TestSearchTopKExactness(t *testing.T) {
	idx, err := New(2, "m1", Cosine)
	require.NoError(t, err)
	require.NoError(t, idx.Add("a", []float32{1, 0}))
	require.NoError(t, idx.Add("b", []float32{0, 1}))
	require.NoError(t, idx.Add("c", []float32{0.9, 0.1}))

	hits, err := idx.Search([]float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "a", hits[0].DocID)
	assert.Equal(t, "c", hits[1].DocID)
}

func TestSearchTieBreakByInsertionOrder(t *testing.T) {
	idx, err := New(2, "m1", Dot)
	require.NoError(t, err)
	require.NoError(t, idx.Add("first", []float32{1, 0}))
	require.NoError(t, idx.Add("second", []float32{1, 0}))

	hits, err := idx.Search([]float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "first", hits[0].DocID)
	assert.Equal(t, "second", hits[1].DocID)
}

func TestSearchKGreaterThanCount(t *testing.T) {
	idx, err := New(2, "m1", Cosine)
	require.NoError(t, err)
	require.NoError(t, idx.Add("a", []float32{1, 0}))
	hits, err := idx.Search([]float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestPersistenceRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "idx")

	idx, err := New(8, "model-x", Cosine)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(42))
	const n = 50
	for i := 0; i < n; i++ {
		vec := make([]float32, 8)
		for d := range vec {
			vec[d] = rng.Float32()*2 - 1
		}
		require.NoError(t, idx.Add(docIDFor(i), vec))
	}

	require.NoError(t, idx.Save(path))
	_, err = os.Stat(path + ".npz")
	require.NoError(t, err)
	_, err = os.Stat(path + ".json")
	require.NoError(t, err)

	loaded, err := Load(path, "model-x")
	require.NoError(t, err)

	assert.Equal(t, idx.Dimension(), loaded.Dimension())
	assert.Equal(t, idx.Count(), loaded.Count())
	assert.Equal(t, idx.AllDocIDs(), loaded.AllDocIDs())

	for i := 0; i < n; i++ {
		want, ok := idx.VectorFor(docIDFor(i))
		require.True(t, ok)
		got, ok := loaded.VectorFor(docIDFor(i))
		require.True(t, ok)
		assert.Equal(t, want, got)
	}

	query := make([]float32, 8)
	for d := range query {
		query[d] = rng.Float32()
	}
	wantHits, err := idx.Search(query, 10)
	require.NoError(t, err)
	gotHits, err := loaded.Search(query, 10)
	require.NoError(t, err)
	assert.Equal(t, wantHits, gotHits)
}

func TestLoadEmbedderMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "idx")

	idx, err := New(2, "model-a", Cosine)
	require.NoError(t, err)
	require.NoError(t, idx.Add("a", []float32{1, 0}))
	require.NoError(t, idx.Save(path))

	_, err = Load(path, "model-b")
	require.Error(t, err)
	var mismatch *EmbedderMismatchError
	assert.ErrorAs(t, err, &mismatch)
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(filepath.Join(dir, "nope"), "")
	require.Error(t, err)
	var missing *MissingFileError
	assert.ErrorAs(t, err, &missing)
}

func docIDFor(i int) string {
	return "doc-" + strconv.Itoa(i)
}
