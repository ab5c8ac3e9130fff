package search

import (
	"math"
	"sort"

	"github.com/dgallion1/docask/internal/document"
)

// Source identifies which index produced a RankedHit.
type Source string

const (
	SourceLexical Source = "lexical"
	SourceVector  Source = "vector"
)

// RankedHit is one chunk ranked by a single retrieval method. Rank is
// 1-indexed within that method's result list.
type RankedHit struct {
	ChunkID string
	Source  Source
	Rank    int
	Score   float64
}

// BM25 free parameters. k1 saturates term frequency, b scales the chunk-length
// normalization against the corpus average.
const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

// Lexical is a term-frequency index over the active document's chunks.
// Immutable once built.
type Lexical struct {
	ids      []string
	postings map[string]map[int]int // term -> chunk ordinal -> term frequency
	docLens  []int
	avgLen   float64
}

// BuildLexical indexes the chunks' precomputed term streams.
func BuildLexical(chunks []document.Chunk) *Lexical {
	l := &Lexical{
		ids:      make([]string, len(chunks)),
		postings: make(map[string]map[int]int),
		docLens:  make([]int, len(chunks)),
	}

	total := 0
	for i, chunk := range chunks {
		l.ids[i] = chunk.ID
		terms := chunk.Terms
		if terms == nil {
			terms = Tokenize(chunk.Text)
		}
		l.docLens[i] = len(terms)
		total += len(terms)
		for _, term := range terms {
			if l.postings[term] == nil {
				l.postings[term] = make(map[int]int)
			}
			l.postings[term][i]++
		}
	}
	if len(chunks) > 0 {
		l.avgLen = float64(total) / float64(len(chunks))
	}
	return l
}

// Len returns the number of indexed chunks.
func (l *Lexical) Len() int { return len(l.ids) }

// Query scores chunks against the query text with BM25 and returns up to topK
// hits with positive scores, best first. Deterministic for identical input:
// score ties break on ascending chunk id.
func (l *Lexical) Query(text string, topK int) []RankedHit {
	if len(l.ids) == 0 || topK <= 0 {
		return nil
	}

	n := float64(len(l.ids))
	scores := make(map[int]float64)

	for _, term := range Tokenize(text) {
		posting := l.postings[term]
		if len(posting) == 0 {
			continue
		}
		df := float64(len(posting))
		idf := math.Log((n-df+0.5)/(df+0.5) + 1)
		for doc, tf := range posting {
			norm := 1 - bm25B + bm25B*float64(l.docLens[doc])/l.avgLen
			sat := float64(tf) * (bm25K1 + 1) / (float64(tf) + bm25K1*norm)
			scores[doc] += idf * sat
		}
	}

	hits := make([]RankedHit, 0, len(scores))
	for doc, score := range scores {
		if score > 0 {
			hits = append(hits, RankedHit{ChunkID: l.ids[doc], Source: SourceLexical, Score: score})
		}
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
