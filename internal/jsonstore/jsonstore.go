// Package jsonstore persists documents as flat JSON files and layers an
// in-memory read cache with TTL and modification-time staleness checks on top.
package jsonstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrParse is returned when a file exists but does not contain valid JSON for
// the requested type.
var ErrParse = errors.New("jsonstore: parse failed")

// Ensure creates the file with the given default document if it does not
// exist. Parent directories are created as needed. Existing files are left
// untouched.
func Ensure[T any](path string, def T) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("jsonstore: stat %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("jsonstore: mkdir for %s: %w", path, err)
	}
	return Write(path, def)
}

// Read loads and decodes the document at path.
func Read[T any](path string) (T, error) {
	var doc T

	data, err := os.ReadFile(path)
	if err != nil {
		return doc, fmt.Errorf("jsonstore: read %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("%w: %s: %w", ErrParse, path, err)
	}
	return doc, nil
}

// Write encodes the document with two-space indentation and replaces the file
// atomically: the content lands in a temp file first and is renamed over the
// target, so readers never observe a partially written file.
func Write[T any](path string, doc T) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("jsonstore: marshal for %s: %w", path, err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("jsonstore: temp file for %s: %w", path, err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("jsonstore: write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("jsonstore: close %s: %w", path, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("jsonstore: rename %s: %w", path, err)
	}
	return nil
}
