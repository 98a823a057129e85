package jsonstore_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/backstage/internal/jsonstore"
)

type doc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestEnsure(t *testing.T) {
	t.Parallel()

	t.Run("creates missing file with default", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "nested", "docs.json")
		require.NoError(t, jsonstore.Ensure(path, doc{Name: "seed"}))

		got, err := jsonstore.Read[doc](path)
		require.NoError(t, err)
		assert.Equal(t, "seed", got.Name)
	})

	t.Run("leaves existing file untouched", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "docs.json")
		require.NoError(t, jsonstore.Write(path, doc{Name: "original"}))
		require.NoError(t, jsonstore.Ensure(path, doc{Name: "default"}))

		got, err := jsonstore.Read[doc](path)
		require.NoError(t, err)
		assert.Equal(t, "original", got.Name)
	})
}

func TestReadWrite(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "docs.json")
		require.NoError(t, jsonstore.Write(path, doc{Name: "a", Count: 3}))

		got, err := jsonstore.Read[doc](path)
		require.NoError(t, err)
		assert.Equal(t, doc{Name: "a", Count: 3}, got)
	})

	t.Run("indented output with trailing newline", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "docs.json")
		require.NoError(t, jsonstore.Write(path, doc{Name: "a"}))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "{\n  "))
		assert.True(t, strings.HasSuffix(string(data), "\n"))
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := jsonstore.Read[doc](filepath.Join(t.TempDir(), "absent.json"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("malformed content", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

		_, err := jsonstore.Read[doc](path)
		require.ErrorIs(t, err, jsonstore.ErrParse)
	})

	t.Run("no temp files left behind", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "docs.json")
		require.NoError(t, jsonstore.Write(path, doc{Name: "a"}))
		require.NoError(t, jsonstore.Write(path, doc{Name: "b"}))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "docs.json", entries[0].Name())
	})
}
