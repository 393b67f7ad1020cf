package media

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_Resolve(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "books", "pdfs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "books", "pdfs", "dune.pdf"), []byte("%PDF"), 0o644))

	r := NewResolver(root, "/media")

	src, err := r.Resolve("books/pdfs/dune.pdf")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "books", "pdfs", "dune.pdf"), src.Path)
	assert.Empty(t, src.URL)

	src, err = r.Resolve("https://cdn.example.com/dune.mp3")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/dune.mp3", src.URL)

	_, err = r.Resolve("books/pdfs/missing.pdf")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = r.Resolve("books/pdfs")
	assert.ErrorIs(t, err, ErrNotFound)

	for _, bad := range []string{"../etc/passwd", "books/../../secret", "/../x"} {
		_, err = r.Resolve(bad)
		assert.ErrorIs(t, err, ErrInvalidPath, bad)
	}
}

func TestResolver_PublicURL(t *testing.T) {
	r := NewResolver("/srv/media", "/media")

	ref := "books/covers/dune.jpg"
	assert.Equal(t, "/media/books/covers/dune.jpg", *r.PublicURL(&ref))

	abs := "http://img.example.com/dune.jpg"
	assert.Equal(t, abs, *r.PublicURL(&abs))

	empty := "  "
	assert.Nil(t, r.PublicURL(&empty))
	assert.Nil(t, r.PublicURL(nil))
}
