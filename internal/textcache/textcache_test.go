package textcache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutGetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	store, err := Open(path)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "doc-1", "oauth refresh flow"))

	text, err := store.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "oauth refresh flow", text)
}

func TestGetMissingDocID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	store, err := Open(path)
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Get(context.Background(), "nope")
	assert.Error(t, err)
}

func TestPutOverwritesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	store, err := Open(path)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "doc-1", "first"))
	require.NoError(t, store.Put(ctx, "doc-1", "second"))

	text, err := store.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "second", text)
}

func TestAllReturnsInsertionOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	store, err := Open(path)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "c", "third"))
	require.NoError(t, store.Put(ctx, "a", "first"))
	require.NoError(t, store.Put(ctx, "b", "second"))

	entries, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, []Entry{
		{DocID: "c", Text: "third"},
		{DocID: "a", Text: "first"},
		{DocID: "b", Text: "second"},
	}, entries)
}
