// Package content manages the bilingual site content blob: one schemaless
// JSON document keyed by locale.
package content

import (
	"github.com/dmitrymomot/backstage/internal/jsonstore"
)

// Document is the site content, keyed by locale ("en", "fr") at the top
// level with arbitrary structure below.
type Document map[string]any

// Seed is the initial document for a fresh installation.
func Seed() Document {
	return Document{"en": map[string]any{}, "fr": map[string]any{}}
}

// Store provides read and full-replace access to the content document.
type Store struct {
	docs *jsonstore.Cached[Document]
}

// NewStore creates a store over the given content document.
func NewStore(docs *jsonstore.Cached[Document]) *Store {
	return &Store{docs: docs}
}

// Get returns the content document verbatim.
func (s *Store) Get() (Document, error) {
	return s.docs.Get()
}

// Replace overwrites the whole document. No merging happens; clients send
// the complete content.
func (s *Store) Replace(doc Document) error {
	if doc == nil {
		doc = Document{}
	}
	return s.docs.Set(doc)
}
