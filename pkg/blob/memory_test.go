package blob

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	meta := Metadata{FileName: "list.pdf", ContentType: "application/pdf"}
	require.NoError(t, store.Put(ctx, PayloadKey("a1"), []byte("content"), meta))

	data, got, err := store.Get(ctx, PayloadKey("a1"))
	require.NoError(t, err)
	assert.Equal(t, []byte("content"), data)
	assert.Equal(t, meta, got)
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStoreGetMissing(t *testing.T) {
	store := NewMemoryStore()
	_, _, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreDeleteIsIdempotent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "k", []byte("v"), Metadata{}))
	require.NoError(t, store.Delete(ctx, "k"))
	require.NoError(t, store.Delete(ctx, "k"), "deleting an absent key is not an error")
	assert.Zero(t, store.Len())
}

func TestMemoryStorePutCopiesData(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	original := []byte("abc")
	require.NoError(t, store.Put(ctx, "k", original, Metadata{}))
	original[0] = 'z'

	data, _, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), data)
}

func TestKeyScheme(t *testing.T) {
	assert.Equal(t, "artefact:a1:payload", PayloadKey("a1"))
	assert.Equal(t, "artefact:a1:html", RenderedHTMLKey("a1"))
	assert.Equal(t, "artefact:a1:spreadsheet", SpreadsheetKey("a1"))
}
