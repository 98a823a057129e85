// Package upload stores uploaded images on the local filesystem and serves
// them back under a public URL prefix.
package upload

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

const (
	// MaxFileSize is the upload size limit (5 MiB).
	MaxFileSize = 5 << 20

	// URLPrefix is where stored files are served from.
	URLPrefix = "/uploads/"
)

var (
	// ErrTooLarge is returned when the file exceeds MaxFileSize.
	ErrTooLarge = errors.New("upload: file too large")

	// ErrUnsupportedType is returned when the extension or declared content
	// type is not an accepted image format.
	ErrUnsupportedType = errors.New("upload: unsupported file type")
)

var allowedExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

var allowedMIMEs = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
}

// LocalStorage saves files into a directory on disk.
type LocalStorage struct {
	dir string
}

// NewLocalStorage creates the directory if needed and returns a storage
// rooted there.
func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("upload: create dir %s: %w", dir, err)
	}
	return &LocalStorage{dir: dir}, nil
}

// Dir returns the storage root, for mounting a static file server.
func (s *LocalStorage) Dir() string {
	return s.dir
}

// Save validates and stores one uploaded image, returning its public URL
// path. The stored name combines a millisecond timestamp and a random
// number, keeping names unique and unguessable enough for this use.
func (s *LocalStorage) Save(file multipart.File, header *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExts[ext] {
		return "", ErrUnsupportedType
	}

	if declared := header.Header.Get("Content-Type"); declared != "" && !allowedMIMEs[declared] {
		return "", ErrUnsupportedType
	}

	if header.Size > MaxFileSize {
		return "", ErrTooLarge
	}

	name := fmt.Sprintf("%d-%d%s", time.Now().UnixMilli(), rand.Int63(), ext)
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("upload: create file: %w", err)
	}
	defer dst.Close()

	// The size header is client-supplied; enforce the limit on actual bytes.
	written, err := io.Copy(dst, io.LimitReader(file, MaxFileSize+1))
	if err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("upload: write file: %w", err)
	}
	if written > MaxFileSize {
		os.Remove(dst.Name())
		return "", ErrTooLarge
	}

	return path.Join(URLPrefix, name), nil
}

// Exists reports whether a stored file with the given name is present.
func (s *LocalStorage) Exists(name string) bool {
	_, err := os.Stat(filepath.Join(s.dir, filepath.Base(name)))
	return err == nil
}

// Delete removes a stored file. Missing files are not an error.
func (s *LocalStorage) Delete(name string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("upload: delete %s: %w", name, err)
	}
	return nil
}
