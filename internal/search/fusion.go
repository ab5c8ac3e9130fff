package search

import "sort"

// FusedHit is a chunk's combined ranking across both retrieval methods.
type FusedHit struct {
	ChunkID string
	Score   float64
	Ranks   map[Source]int // contributing 1-indexed ranks, absent source omitted
}

// Fuse merges the two ranked lists with reciprocal-rank fusion:
// score = Σ 1/(k + rank_s) over each source that returned the chunk. A chunk
// returned by only one source still scores; it is never dropped before the
// topK cut. Ordering is fully deterministic: score desc, then raw lexical
// score desc, then chunk id asc.
func Fuse(lexical, vector []RankedHit, k, topK int) []FusedHit {
	if k <= 0 {
		k = 60
	}

	fused := make(map[string]*FusedHit)
	lexScore := make(map[string]float64)

	add := func(hits []RankedHit) {
		for _, hit := range hits {
			f := fused[hit.ChunkID]
			if f == nil {
				f = &FusedHit{ChunkID: hit.ChunkID, Ranks: make(map[Source]int)}
				fused[hit.ChunkID] = f
			}
			f.Score += 1 / float64(k+hit.Rank)
			f.Ranks[hit.Source] = hit.Rank
			if hit.Source == SourceLexical {
				lexScore[hit.ChunkID] = hit.Score
			}
		}
	}
	add(lexical)
	add(vector)

	out := make([]FusedHit, 0, len(fused))
	for _, f := range fused {
		out = append(out, *f)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if lexScore[out[i].ChunkID] != lexScore[out[j].ChunkID] {
			return lexScore[out[i].ChunkID] > lexScore[out[j].ChunkID]
		}
		return out[i].ChunkID < out[j].ChunkID
	})

	if topK > 0 && len(out) > topK {
		out = out[:topK]
	}
	return out
}
