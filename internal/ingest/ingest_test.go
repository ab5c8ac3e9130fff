package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/dgallion1/docask/internal/config"
	"github.com/dgallion1/docask/internal/docstore"
	"github.com/dgallion1/docask/internal/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEmbedder struct {
	err   error
	calls int
}

func (e *stubEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i + 1), 1, 0}
	}
	return out, nil
}

type stubCompleter struct {
	text string
	err  error
}

func (c *stubCompleter) Generate(ctx context.Context, messages []provider.Message) (provider.Completion, error) {
	if c.err != nil {
		return provider.Completion{}, c.err
	}
	return provider.Completion{Text: c.text}, nil
}

func testService(embedder *stubEmbedder, completer *stubCompleter) (*Service, *docstore.Store) {
	cfg := config.Config{
		TopK:                6,
		RRFK:                60,
		RelevanceFloor:      0.02,
		DefaultChunkSize:    1000,
		DefaultChunkOverlap: 100,
		MinChunkTokens:      5,
		FollowUpCount:       3,
	}
	store := docstore.New()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(store, embedder, completer, log, cfg), store
}

const sampleText = `The warranty covers manufacturing defects for one full year after purchase.
Claims must include the original receipt and a description of the defect.`

func TestIngestPublishesDocument(t *testing.T) {
	svc, store := testService(&stubEmbedder{}, &stubCompleter{text: `["What does the warranty cover?"]`})

	snap, err := svc.Ingest(context.Background(), "warranty.txt", strings.NewReader(sampleText))
	require.NoError(t, err)

	assert.Equal(t, "warranty.txt", snap.Doc.Name)
	assert.NotEmpty(t, snap.Doc.Chunks)
	assert.Equal(t, uint64(1), snap.Generation)
	assert.Equal(t, []string{"What does the warranty cover?"}, snap.StarterQuestions)

	got, err := store.Snapshot()
	require.NoError(t, err)
	assert.Same(t, snap, got)
}

func TestIngestChunkIDsCarryContentHash(t *testing.T) {
	svc, _ := testService(&stubEmbedder{}, &stubCompleter{text: `[]`})

	snap, err := svc.Ingest(context.Background(), "warranty.txt", strings.NewReader(sampleText))
	require.NoError(t, err)

	for i, chunk := range snap.Doc.Chunks {
		parts := strings.SplitN(chunk.ID, "-", 2)
		require.Len(t, parts, 2, "id %q", chunk.ID)
		assert.Len(t, parts[0], 12)
		assert.Equal(t, snap.Doc.Chunks[0].ID[:12], parts[0], "all chunks share the document hash")
		assert.Len(t, parts[1], 4, "chunk %d", i)
	}

	// Different content yields different ids.
	again, err := svc.Ingest(context.Background(), "other.txt",
		strings.NewReader("Completely different material about shipping rates and delivery."))
	require.NoError(t, err)
	assert.NotEqual(t, snap.Doc.Chunks[0].ID[:12], again.Doc.Chunks[0].ID[:12])
}

func TestIngestUnsupportedExtension(t *testing.T) {
	svc, store := testService(&stubEmbedder{}, &stubCompleter{})

	_, err := svc.Ingest(context.Background(), "malware.exe", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrParse)

	_, err = store.Snapshot()
	assert.ErrorIs(t, err, docstore.ErrNoDocument)
}

func TestIngestEmptyDocument(t *testing.T) {
	svc, _ := testService(&stubEmbedder{}, &stubCompleter{})

	_, err := svc.Ingest(context.Background(), "empty.txt", strings.NewReader("   \n  "))
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

func TestIngestEmbedFailurePreservesPriorDocument(t *testing.T) {
	embedder := &stubEmbedder{}
	svc, store := testService(embedder, &stubCompleter{text: `[]`})

	first, err := svc.Ingest(context.Background(), "warranty.txt", strings.NewReader(sampleText))
	require.NoError(t, err)

	embedder.err = errors.New("ollama unreachable")
	_, err = svc.Ingest(context.Background(), "next.txt",
		strings.NewReader("Replacement content that will fail to embed properly today."))
	require.Error(t, err)

	snap, err := store.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, first.Generation, snap.Generation)
	assert.Equal(t, "warranty.txt", snap.Doc.Name)
}

func TestIngestSurvivesStarterQuestionFailure(t *testing.T) {
	svc, _ := testService(&stubEmbedder{}, &stubCompleter{err: errors.New("model missing")})

	snap, err := svc.Ingest(context.Background(), "warranty.txt", strings.NewReader(sampleText))
	require.NoError(t, err)
	// Canned fallbacks, never a failed ingest.
	assert.NotEmpty(t, snap.StarterQuestions)
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"report.pdf":             "report.pdf",
		"/etc/passwd":            "passwd",
		`C:\docs\a.txt`:          "a.txt",
		"../../escape.txt":       "escape.txt",
		"weird..name.pdf":        "weird_name.pdf",
		"":                       "unnamed",
		".":                      "unnamed",
		"nested/dir/file.docx":   "file.docx",
	}
	for in, want := range cases {
		assert.Equal(t, want, SanitizeFilename(in), "input %q", in)
	}
}
