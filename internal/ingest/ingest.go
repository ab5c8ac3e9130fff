// Package ingest turns an uploaded file into the active document: parse,
// strip, chunk, embed, index, swap. The swap is all-or-nothing: a failure at
// any step leaves the prior document and indexes untouched.
package ingest

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/dgallion1/docask/internal/agent"
	"github.com/dgallion1/docask/internal/chunker"
	"github.com/dgallion1/docask/internal/config"
	"github.com/dgallion1/docask/internal/docstore"
	"github.com/dgallion1/docask/internal/document"
	"github.com/dgallion1/docask/internal/parser"
	"github.com/dgallion1/docask/internal/search"
)

// ErrParse marks ingestion failures caused by the document itself, as opposed
// to provider failures.
var ErrParse = errors.New("parse failed")

// ErrEmptyDocument is returned when parsing succeeds but yields no chunkable text.
var ErrEmptyDocument = errors.New("no extractable content")

// DocumentEmbedder produces document-mode embeddings for chunk texts.
type DocumentEmbedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// Service runs the ingestion pipeline and owns the atomic swap.
type Service struct {
	store     *docstore.Store
	embedder  DocumentEmbedder
	completer agent.Completer
	log       *slog.Logger
	cfg       config.Config
}

func NewService(store *docstore.Store, embedder DocumentEmbedder, completer agent.Completer, log *slog.Logger, cfg config.Config) *Service {
	return &Service{
		store:     store,
		embedder:  embedder,
		completer: completer,
		log:       log,
		cfg:       cfg,
	}
}

// Ingest parses and indexes one uploaded file, replacing the active document.
// The whole build runs inside the store's exclusive section, so new questions
// block until the replacement completes and never see a mix of old and new
// chunks.
func (s *Service) Ingest(ctx context.Context, filename string, r io.Reader) (*docstore.Snapshot, error) {
	p, err := parser.ForFile(filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	pages, err := p.Parse(r, filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if len(pages) == 0 {
		return nil, ErrEmptyDocument
	}

	log := s.log.With("filename", filename, "pages", len(pages))

	return s.store.Replace(func() (*document.Document, *search.Tool, []string, error) {
		pieces := chunker.ChunkPages(pages, chunker.Config{
			ChunkSize:    s.cfg.DefaultChunkSize,
			ChunkOverlap: s.cfg.DefaultChunkOverlap,
			MinChunk:     s.cfg.MinChunkTokens,
		})
		if len(pieces) == 0 {
			return nil, nil, nil, ErrEmptyDocument
		}
		log.Info("chunked document", "chunks", len(pieces))

		texts := make([]string, len(pieces))
		for i, piece := range pieces {
			texts[i] = piece.Text
		}

		embeddings, err := s.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("embed chunks: %w", err)
		}

		// Chunk ids are derived from the content hash, so they are stable
		// within a generation and can never collide with a prior document's.
		hash := contentHashHex(pages)[:12]
		chunks := make([]document.Chunk, len(pieces))
		for i, piece := range pieces {
			chunks[i] = document.Chunk{
				ID:        fmt.Sprintf("%s-%04d", hash, piece.Index),
				Text:      piece.Text,
				Page:      piece.Page,
				Terms:     search.Tokenize(piece.Text),
				Embedding: embeddings[i],
			}
		}

		doc := &document.Document{Name: filename, Chunks: chunks}
		tool := search.NewTool(chunks, s.cfg.RRFK, s.cfg.RelevanceFloor)

		starters := agent.SuggestFollowUps(ctx, s.completer, chunks, "", s.cfg.FollowUpCount)
		log.Info("indexed document", "starter_questions", len(starters))

		return doc, tool, starters, nil
	})
}

// contentHashHex hashes the document's extracted text.
func contentHashHex(pages []document.Page) string {
	h := sha256.New()
	for _, page := range pages {
		io.WriteString(h, page.Text)
		io.WriteString(h, "\n")
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// SanitizeFilename strips path components from an uploaded filename.
func SanitizeFilename(name string) string {
	if idx := strings.LastIndexAny(name, "/\\"); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
