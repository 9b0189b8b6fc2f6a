package lib

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookImageKey(t *testing.T) {
	key, id := BookImageKey("Cien Años de Soledad", ".PNG")
	assert.True(t, strings.HasPrefix(key, "books/cien-anos-de-soledad/"), key)
	assert.True(t, strings.HasSuffix(key, id.String()+".png"), key)
}

func TestLocalFileStore(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalFileStore(dir, "/uploads/")

	url, err := store.Put(context.Background(), "books/dune/cover.jpg", "image/jpeg", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/books/dune/cover.jpg", url)

	data, err := os.ReadFile(filepath.Join(dir, "books", "dune", "cover.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))

	require.NoError(t, store.Delete(context.Background(), url))
	_, err = os.Stat(filepath.Join(dir, "books", "dune", "cover.jpg"))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, store.Delete(context.Background(), url), "deleting twice is fine")
	assert.Error(t, store.Delete(context.Background(), "/elsewhere/cover.jpg"))
	assert.Error(t, store.Delete(context.Background(), "/uploads/../secret"))
}
