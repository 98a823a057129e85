package upload_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/backstage/internal/upload"
)

func multipartFile(t *testing.T, filename, contentType string, data []byte) (multipart.File, *multipart.FileHeader) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	file, header, err := req.FormFile("file")
	require.NoError(t, err)
	t.Cleanup(func() { file.Close() })
	return file, header
}

func TestSave(t *testing.T) {
	t.Parallel()

	t.Run("stores accepted image and returns url", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		s, err := upload.NewLocalStorage(dir)
		require.NoError(t, err)

		file, header := multipartFile(t, "photo.png", "image/png", []byte{0x89, 'P', 'N', 'G'})
		url, err := s.Save(file, header)
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(url, upload.URLPrefix))
		assert.True(t, strings.HasSuffix(url, ".png"))

		name := strings.TrimPrefix(url, upload.URLPrefix)
		assert.True(t, s.Exists(name))
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data)
	})

	t.Run("rejects unsupported extension", func(t *testing.T) {
		t.Parallel()

		s, err := upload.NewLocalStorage(t.TempDir())
		require.NoError(t, err)

		file, header := multipartFile(t, "notes.txt", "text/plain", []byte("hi"))
		_, err = s.Save(file, header)
		assert.ErrorIs(t, err, upload.ErrUnsupportedType)
	})

	t.Run("rejects mismatched content type", func(t *testing.T) {
		t.Parallel()

		s, err := upload.NewLocalStorage(t.TempDir())
		require.NoError(t, err)

		file, header := multipartFile(t, "sneaky.png", "application/octet-stream", []byte{1, 2})
		_, err = s.Save(file, header)
		assert.ErrorIs(t, err, upload.ErrUnsupportedType)
	})

	t.Run("rejects oversized files", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		s, err := upload.NewLocalStorage(dir)
		require.NoError(t, err)

		file, header := multipartFile(t, "big.png", "image/png", make([]byte, upload.MaxFileSize+1))
		_, err = s.Save(file, header)
		assert.ErrorIs(t, err, upload.ErrTooLarge)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries, "rejected upload must not leave a file")
	})

	t.Run("generated names are unique", func(t *testing.T) {
		t.Parallel()

		s, err := upload.NewLocalStorage(t.TempDir())
		require.NoError(t, err)

		seen := make(map[string]bool)
		for range 10 {
			file, header := multipartFile(t, "a.gif", "image/gif", []byte("GIF89a"))
			url, err := s.Save(file, header)
			require.NoError(t, err)
			assert.False(t, seen[url])
			seen[url] = true
		}
	})
}

func TestDelete(t *testing.T) {
	t.Parallel()

	s, err := upload.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	file, header := multipartFile(t, "photo.jpg", "image/jpeg", []byte{0xFF, 0xD8})
	url, err := s.Save(file, header)
	require.NoError(t, err)

	name := strings.TrimPrefix(url, upload.URLPrefix)
	require.NoError(t, s.Delete(name))
	assert.False(t, s.Exists(name))

	assert.NoError(t, s.Delete("never-existed.png"))
}
