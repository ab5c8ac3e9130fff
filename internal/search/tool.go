package search

import (
	"context"

	"github.com/dgallion1/docask/internal/document"
	"golang.org/x/sync/errgroup"
)

// Hit pairs a retrieved chunk with its fusion ranking.
type Hit struct {
	Chunk document.Chunk
	Fused FusedHit
}

// Tool is the single retrieval capability the agent may invoke. It runs the
// lexical and vector indexes concurrently, fuses the rankings, and applies a
// relevance gate. Immutable once built; safe for concurrent queries.
type Tool struct {
	lexical *Lexical
	vector  *Vector
	chunks  map[string]document.Chunk

	rrfK           int
	relevanceFloor float64
}

// NewTool builds both indexes over the chunk set.
func NewTool(chunks []document.Chunk, rrfK int, relevanceFloor float64) *Tool {
	byID := make(map[string]document.Chunk, len(chunks))
	for _, c := range chunks {
		byID[c.ID] = c
	}
	return &Tool{
		lexical:        BuildLexical(chunks),
		vector:         BuildVector(chunks),
		chunks:         byID,
		rrfK:           rrfK,
		relevanceFloor: relevanceFloor,
	}
}

// ChunkCount returns the number of indexed chunks.
func (t *Tool) ChunkCount() int { return t.lexical.Len() }

// Retrieve queries both indexes in parallel and fuses the results.
// ok=false is the "no relevant content" signal: the top fused score fell below
// the gate floor (or nothing matched at all). That is a normal outcome the
// orchestrator turns into an off-topic rejection, not an error.
func (t *Tool) Retrieve(ctx context.Context, questionEmbedding []float32, questionText string, topK int) (hits []Hit, ok bool, err error) {
	var lexHits, vecHits []RankedHit

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		lexHits = t.lexical.Query(questionText, topK)
		return nil
	})
	g.Go(func() error {
		vecHits = t.vector.Query(questionEmbedding, topK)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, false, err
	}

	fused := Fuse(lexHits, vecHits, t.rrfK, topK)
	if len(fused) == 0 || fused[0].Score < t.relevanceFloor {
		return nil, false, nil
	}

	hits = make([]Hit, 0, len(fused))
	for _, f := range fused {
		chunk, found := t.chunks[f.ChunkID]
		if !found {
			continue
		}
		hits = append(hits, Hit{Chunk: chunk, Fused: f})
	}
	return hits, true, nil
}
