// Package docstore holds the single active document as a versioned handle.
// Readers capture an immutable snapshot at request start and work against it
// for the request's duration; replacement is all-or-nothing.
package docstore

import (
	"errors"
	"sync"

	"github.com/dgallion1/docask/internal/document"
	"github.com/dgallion1/docask/internal/search"
)

// ErrNoDocument is returned when no document has been ingested (or the active
// one was cleared).
var ErrNoDocument = errors.New("no active document")

// Snapshot is one consistent generation of the active document: the parsed
// chunks, both retrieval indexes, and the cached starter questions. Immutable
// once published.
type Snapshot struct {
	Doc              *document.Document
	Tool             *search.Tool
	StarterQuestions []string
	Generation       uint64
}

// Store is the process-wide active-document handle with
// single-writer/multiple-reader semantics.
type Store struct {
	mu      sync.RWMutex
	current *Snapshot
	gen     uint64
}

func New() *Store {
	return &Store{}
}

// Snapshot returns the current generation, or ErrNoDocument.
func (s *Store) Snapshot() (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, ErrNoDocument
	}
	return s.current, nil
}

// Replace runs build under the write lock and swaps in its result. New readers
// block until the replacement completes; in-flight readers keep their old
// snapshot. If build fails nothing changes: the prior document and its chunk
// ids stay fully valid.
func (s *Store) Replace(build func() (*document.Document, *search.Tool, []string, error)) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, tool, starters, err := build()
	if err != nil {
		return nil, err
	}

	s.gen++
	s.current = &Snapshot{
		Doc:              doc,
		Tool:             tool,
		StarterQuestions: starters,
		Generation:       s.gen,
	}
	return s.current, nil
}

// Clear drops the active document and its indexes. Subsequent reads see
// ErrNoDocument until a new ingest.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
}
