package chunker

import (
	"strings"

	"github.com/dgallion1/docask/internal/document"
)

// Config controls chunking behavior.
type Config struct {
	ChunkSize    int // Target chunk size in tokens.
	ChunkOverlap int // Overlap between consecutive chunks in tokens.
	MinChunk     int // Minimum chunk size in tokens to emit.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ChunkSize:    1000,
		ChunkOverlap: 100,
		MinChunk:     20,
	}
}

// Piece is a sized text segment with page provenance, ready for embedding.
type Piece struct {
	Text  string
	Page  int // 1-indexed source page
	Index int // Sequence number within document
}

// ChunkPages strips boilerplate and splits each page into pieces. Chunks never
// span page boundaries, so every piece has exact page provenance.
func ChunkPages(pages []document.Page, cfg Config) []Piece {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 1000
	}
	if cfg.ChunkOverlap < 0 {
		cfg.ChunkOverlap = 100
	}
	if cfg.MinChunk <= 0 {
		cfg.MinChunk = 20
	}

	pages = StripBoilerplate(pages)

	var pieces []Piece
	for _, page := range pages {
		text := strings.TrimSpace(page.Text)
		if text == "" {
			continue
		}
		if EstimateTokens(text) <= cfg.ChunkSize {
			if EstimateTokens(text) >= cfg.MinChunk {
				pieces = append(pieces, Piece{Text: text, Page: page.Number, Index: len(pieces)})
			}
			continue
		}
		for _, part := range splitText(text, cfg.ChunkSize, cfg.ChunkOverlap) {
			if EstimateTokens(part) >= cfg.MinChunk {
				pieces = append(pieces, Piece{Text: part, Page: page.Number, Index: len(pieces)})
			}
		}
	}
	return pieces
}

// boilerplateFraction is the share of pages a line must appear on before it is
// treated as a running header or footer.
const boilerplateFraction = 0.8

// minBoilerplateLen keeps short recurring lines (page numbers, bullets) from
// being stripped along with real headers.
const minBoilerplateLen = 5

// StripBoilerplate removes lines that repeat across most pages. Documents
// with fewer than 3 pages are returned untouched since frequency says nothing
// there.
func StripBoilerplate(pages []document.Page) []document.Page {
	if len(pages) < 3 {
		return pages
	}

	counts := make(map[string]int)
	for _, page := range pages {
		seen := make(map[string]bool)
		for _, line := range strings.Split(page.Text, "\n") {
			line = strings.TrimSpace(line)
			if !seen[line] {
				seen[line] = true
				counts[line]++
			}
		}
	}

	threshold := int(float64(len(pages)) * boilerplateFraction)
	bad := make(map[string]bool)
	for line, count := range counts {
		if count > threshold && len(line) > minBoilerplateLen {
			bad[line] = true
		}
	}
	if len(bad) == 0 {
		return pages
	}

	out := make([]document.Page, 0, len(pages))
	for _, page := range pages {
		var kept []string
		for _, line := range strings.Split(page.Text, "\n") {
			if !bad[strings.TrimSpace(line)] {
				kept = append(kept, line)
			}
		}
		out = append(out, document.Page{Number: page.Number, Text: strings.Join(kept, "\n")})
	}
	return out
}

// EstimateTokens gives a rough token count using a words-per-token heuristic.
// Exact tokenization is not required for chunking.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	words := len(strings.Fields(text))
	tokens := int(float64(words) * 1.33)
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}

// splitText breaks text into chunks of approximately targetTokens, with overlap.
func splitText(text string, targetTokens, overlapTokens int) []string {
	paragraphs := splitByParagraphs(text)

	var result []string
	var current strings.Builder
	currentTokens := 0

	for _, para := range paragraphs {
		paraTokens := EstimateTokens(para)

		// A single oversized paragraph gets split by sentences.
		if paraTokens > targetTokens {
			if currentTokens > 0 {
				result = append(result, current.String())
				current.Reset()
				currentTokens = 0
			}
			result = append(result, splitBySentences(para, targetTokens, overlapTokens)...)
			continue
		}

		if currentTokens+paraTokens > targetTokens && currentTokens > 0 {
			result = append(result, current.String())

			overlap := overlapText(current.String(), overlapTokens)
			current.Reset()
			currentTokens = 0
			if overlap != "" {
				current.WriteString(overlap)
				currentTokens = EstimateTokens(overlap)
			}
		}

		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
		currentTokens += paraTokens
	}

	if currentTokens > 0 {
		result = append(result, current.String())
	}
	return result
}

func splitByParagraphs(text string) []string {
	parts := strings.Split(text, "\n\n")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// splitBySentences breaks a large paragraph into sentence-based chunks.
func splitBySentences(text string, targetTokens, overlapTokens int) []string {
	sentences := SplitSentences(text)

	var result []string
	var current strings.Builder
	currentTokens := 0

	for _, sent := range sentences {
		sentTokens := EstimateTokens(sent)

		if currentTokens+sentTokens > targetTokens && currentTokens > 0 {
			result = append(result, current.String())
			overlap := overlapText(current.String(), overlapTokens)
			current.Reset()
			currentTokens = 0
			if overlap != "" {
				current.WriteString(overlap)
				currentTokens = EstimateTokens(overlap)
			}
		}

		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sent)
		currentTokens += sentTokens
	}

	if currentTokens > 0 {
		result = append(result, current.String())
	}
	return result
}

// SplitSentences does basic sentence splitting on terminal punctuation
// followed by a space. Exported for the guardrail's claim-level checks.
func SplitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(text) && text[i+1] == ' ' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// overlapText extracts the last N tokens worth of text for overlap.
func overlapText(text string, targetTokens int) string {
	words := strings.Fields(text)
	targetWords := int(float64(targetTokens) / 1.33)
	if targetWords <= 0 || len(words) <= targetWords {
		return ""
	}
	return strings.Join(words[len(words)-targetWords:], " ")
}
