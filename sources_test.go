package aientity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextSource(t *testing.T) {
	src := NewTextSource("张三, 30, 工程师")
	assert.Equal(t, "text", src.Name())

	content, err := src.Content(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "张三, 30, 工程师", content)
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()

	t.Run("text file", func(t *testing.T) {
		path := filepath.Join(dir, "people.md")
		require.NoError(t, os.WriteFile(path, []byte("# People\n\n张三, 30, 工程师\n"), 0o600))

		src := NewFileSource(path)
		assert.Equal(t, path, src.Name())
		content, err := src.Content(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "# People\n\n张三, 30, 工程师\n", content)
	})

	t.Run("json file", func(t *testing.T) {
		path := filepath.Join(dir, "people.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"name":"张三"}`), 0o600))

		content, err := NewFileSource(path).Content(context.Background())
		require.NoError(t, err)
		assert.Equal(t, `{"name":"张三"}`, content)
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(dir, "empty.txt")
		require.NoError(t, os.WriteFile(path, nil, 0o600))

		content, err := NewFileSource(path).Content(context.Background())
		require.NoError(t, err)
		assert.Empty(t, content)
	})

	t.Run("binary file", func(t *testing.T) {
		path := filepath.Join(dir, "image.png")
		png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}
		require.NoError(t, os.WriteFile(path, png, 0o600))

		_, err := NewFileSource(path).Content(context.Background())
		var target *SourceUnavailableError
		require.ErrorAs(t, err, &target)
		assert.Equal(t, path, target.Source)
		assert.Contains(t, err.Error(), "not a text file")
	})

	t.Run("missing file", func(t *testing.T) {
		path := filepath.Join(dir, "missing.txt")
		_, err := NewFileSource(path).Content(context.Background())
		var target *SourceUnavailableError
		require.ErrorAs(t, err, &target)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("directory", func(t *testing.T) {
		_, err := NewFileSource(dir).Content(context.Background())
		var target *SourceUnavailableError
		assert.ErrorAs(t, err, &target)
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := NewFileSource("").Content(context.Background())
		var target *SourceUnavailableError
		assert.ErrorAs(t, err, &target)
	})
}

func TestURLSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/people.txt" {
			_, _ = w.Write([]byte("张三, 30, 工程师"))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	src := &URLSource{URL: srv.URL + "/people.txt", Client: srv.Client()}
	assert.Equal(t, srv.URL+"/people.txt", src.Name())
	content, err := src.Content(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "张三, 30, 工程师", content)

	_, err = NewURLSource(srv.URL + "/missing").Content(context.Background())
	var target *SourceUnavailableError
	require.ErrorAs(t, err, &target)
	assert.Contains(t, err.Error(), "status 404")

	_, err = NewURLSource("://bad url").Content(context.Background())
	assert.ErrorAs(t, err, &target)
}
