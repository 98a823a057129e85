// Package speaker manages the speakers collection: schemaless JSON objects
// with a numeric id, persisted as one flat JSON array.
package speaker

import (
	"encoding/json"
	"errors"
	"maps"
	"sync"

	"github.com/dmitrymomot/backstage/internal/jsonstore"
)

// ErrNotFound is returned when no speaker has the requested id.
var ErrNotFound = errors.New("speaker: not found")

// Speaker is a schemaless speaker record. All fields are caller-defined
// except "id", which the store owns.
type Speaker map[string]any

// ID returns the numeric id of the record, or 0 when absent or non-numeric.
// Decoded JSON carries numbers as float64; values set in-process may be int
// or json.Number.
func (s Speaker) ID() int {
	switch v := s["id"].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0
		}
		return int(n)
	default:
		return 0
	}
}

// Store provides CRUD over the speakers document. Ids are strictly
// increasing: the next id is max+1, held up by an in-process high-water mark
// so deleting the highest record never causes id reuse.
type Store struct {
	docs *jsonstore.Cached[[]Speaker]

	mu     sync.Mutex
	nextID int
}

// NewStore creates a store over the given speakers document.
func NewStore(docs *jsonstore.Cached[[]Speaker]) *Store {
	return &Store{docs: docs}
}

// List returns all speakers in file order.
func (s *Store) List() ([]Speaker, error) {
	return s.docs.Get()
}

// Get returns the speaker with the given id.
func (s *Store) Get(id int) (Speaker, error) {
	speakers, err := s.docs.Get()
	if err != nil {
		return nil, err
	}
	for _, sp := range speakers {
		if sp.ID() == id {
			return sp, nil
		}
	}
	return nil, ErrNotFound
}

// Create appends a new speaker with a freshly assigned id. Any id in the
// input is overwritten.
func (s *Store) Create(fields Speaker) (Speaker, error) {
	created := maps.Clone(fields)
	if created == nil {
		created = Speaker{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.docs.Update(func(speakers []Speaker) ([]Speaker, error) {
		id := s.nextID
		for _, sp := range speakers {
			if sid := sp.ID(); sid >= id {
				id = sid + 1
			}
		}
		if id == 0 {
			id = 1
		}
		s.nextID = id + 1

		created["id"] = id
		out := make([]Speaker, 0, len(speakers)+1)
		out = append(out, speakers...)
		return append(out, created), nil
	})
	if err != nil {
		return nil, err
	}
	return result[len(result)-1], nil
}

// Update shallow-merges fields into the existing record. The id cannot be
// changed; an id in the input is discarded.
func (s *Store) Update(id int, fields Speaker) (Speaker, error) {
	var updated Speaker

	_, err := s.docs.Update(func(speakers []Speaker) ([]Speaker, error) {
		for i, sp := range speakers {
			if sp.ID() != id {
				continue
			}

			merged := maps.Clone(sp)
			maps.Copy(merged, fields)
			merged["id"] = sp["id"]

			out := make([]Speaker, len(speakers))
			copy(out, speakers)
			out[i] = merged
			updated = merged
			return out, nil
		}
		return nil, ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the speaker with the given id.
func (s *Store) Delete(id int) error {
	_, err := s.docs.Update(func(speakers []Speaker) ([]Speaker, error) {
		out := make([]Speaker, 0, len(speakers))
		for _, sp := range speakers {
			if sp.ID() != id {
				out = append(out, sp)
			}
		}
		if len(out) == len(speakers) {
			return nil, ErrNotFound
		}
		return out, nil
	})
	return err
}
