package search

import (
	"math"
	"sort"

	"github.com/dgallion1/docask/internal/document"
)

// Vector is a nearest-neighbor index over chunk embeddings. The stored
// embeddings are document-mode; queries must be embedded in query-mode by the
// caller. The two are never mixed within one ranked list.
type Vector struct {
	ids  []string
	embs [][]float32
}

// BuildVector stores each chunk's embedding.
func BuildVector(chunks []document.Chunk) *Vector {
	v := &Vector{
		ids:  make([]string, len(chunks)),
		embs: make([][]float32, len(chunks)),
	}
	for i, chunk := range chunks {
		v.ids[i] = chunk.ID
		v.embs[i] = chunk.Embedding
	}
	return v
}

// Len returns the number of indexed chunks.
func (v *Vector) Len() int { return len(v.ids) }

// Query returns up to topK hits by descending cosine similarity. Score ties
// break on ascending chunk id for determinism.
func (v *Vector) Query(embedding []float32, topK int) []RankedHit {
	if len(v.ids) == 0 || topK <= 0 {
		return nil
	}

	hits := make([]RankedHit, 0, len(v.ids))
	for i := range v.ids {
		hits = append(hits, RankedHit{
			ChunkID: v.ids[i],
			Source:  SourceVector,
			Score:   cosine(embedding, v.embs[i]),
		})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}
	for i := range hits {
		hits[i].Rank = i + 1
	}
	return hits
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
