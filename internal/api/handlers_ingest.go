package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/dgallion1/docask/internal/ingest"
	"github.com/dgallion1/docask/internal/parser"
)

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	// Limit total request size, with headroom for form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := ingest.SanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	snap, err := s.ingester.Ingest(r.Context(), filename, bytes.NewReader(data))
	if err != nil {
		switch {
		case errors.Is(err, ingest.ErrParse), errors.Is(err, ingest.ErrEmptyDocument):
			jsonError(w, err.Error(), http.StatusBadRequest)
		default:
			// Provider exhaustion: the indexes were left untouched.
			s.log.Error("ingest failed", "filename", filename, "error", err)
			jsonError(w, "ingestion failed: "+err.Error(), http.StatusServiceUnavailable)
		}
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"filename":          snap.Doc.Name,
		"chunk_count":       len(snap.Doc.Chunks),
		"pages":             lastPage(snap),
		"generation":        snap.Generation,
		"starter_questions": starters(snap.StarterQuestions),
	})
}

func starters(qs []string) []string {
	if qs == nil {
		return []string{}
	}
	return qs
}
