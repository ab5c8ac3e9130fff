package api

import (
	"errors"
	"net/http"

	"github.com/dgallion1/docask/internal/docstore"
)

func (s *Server) handleDocumentInfo(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.Snapshot()
	if errors.Is(err, docstore.ErrNoDocument) {
		jsonResponse(w, http.StatusOK, map[string]any{
			"has_document":      false,
			"filename":          nil,
			"chunk_count":       0,
			"pages":             0,
			"starter_questions": []string{},
		})
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"has_document":      true,
		"filename":          snap.Doc.Name,
		"chunk_count":       len(snap.Doc.Chunks),
		"pages":             lastPage(snap),
		"generation":        snap.Generation,
		"starter_questions": starters(snap.StarterQuestions),
	})
}

func (s *Server) handleClearDocument(w http.ResponseWriter, r *http.Request) {
	s.store.Clear()
	jsonResponse(w, http.StatusOK, map[string]any{"cleared": true})
}

// lastPage reports the highest page number among the chunks.
func lastPage(snap *docstore.Snapshot) int {
	last := 0
	for _, c := range snap.Doc.Chunks {
		if c.Page > last {
			last = c.Page
		}
	}
	return last
}
