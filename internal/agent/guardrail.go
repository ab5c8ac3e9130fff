package agent

import (
	"regexp"
	"strings"

	"github.com/dgallion1/docask/internal/chunker"
	"github.com/dgallion1/docask/internal/document"
	"github.com/dgallion1/docask/internal/search"
)

// Guardrail rejection reasons, machine-readable for the orchestrator.
const (
	ReasonUnknownCitation  = "unknown_citation"   // citation names the wrong document
	ReasonPageNotRetrieved = "page_not_retrieved" // citation page absent from retrieved set
	ReasonUngroundedClaim  = "ungrounded_claim"   // citation-free sentence unsupported by any chunk
)

// Verdict is the guardrail's decision on a drafted answer.
type Verdict struct {
	Accepted  bool
	Reason    string
	Citations []document.Citation // parsed from the draft, valid only when accepted
}

var citationRe = regexp.MustCompile(`\[([^\[\]]+?),\s*[Pp]age\s+(\d+)\]`)

// groundingThreshold is the minimum share of a sentence's content words that
// must appear in the retrieved chunks for the sentence to count as grounded.
const groundingThreshold = 0.5

// Validate checks that a drafted answer does not exceed the retrieved context:
// every citation resolves to a retrieved chunk, and every citation-free
// sentence is approximately contained in the retrieved text. Any violation
// rejects the draft; the orchestrator decides whether to regenerate.
func Validate(draft, docName string, retrieved []document.Chunk) Verdict {
	pages := make(map[int]bool)
	corpus := make(map[string]bool)
	for _, chunk := range retrieved {
		pages[chunk.Page] = true
		terms := chunk.Terms
		if terms == nil {
			terms = search.Tokenize(chunk.Text)
		}
		for _, t := range terms {
			corpus[t] = true
		}
	}

	// (a) + (c): citations must resolve to the active document and a retrieved page.
	var citations []document.Citation
	seen := make(map[int]bool)
	for _, m := range citationRe.FindAllStringSubmatch(draft, -1) {
		name := strings.TrimSpace(m[1])
		if !strings.EqualFold(name, docName) {
			return Verdict{Reason: ReasonUnknownCitation}
		}
		page := atoiSafe(m[2])
		if !pages[page] {
			return Verdict{Reason: ReasonPageNotRetrieved}
		}
		if !seen[page] {
			seen[page] = true
			citations = append(citations, document.Citation{DocumentName: docName, PageNumber: page})
		}
	}

	// (b): citation-free sentences must be approximately contained in the
	// retrieved text. Token overlap, not exact substring.
	for _, sentence := range chunker.SplitSentences(stripSources(draft)) {
		if citationRe.MatchString(sentence) {
			continue
		}
		if isScaffold(sentence) || strings.Contains(strings.ToLower(sentence), refusalPhrase) {
			continue
		}
		content := contentTerms(sentence)
		if len(content) < 3 {
			continue
		}
		matched := 0
		for _, t := range content {
			if corpus[t] {
				matched++
			}
		}
		if float64(matched)/float64(len(content)) < groundingThreshold {
			return Verdict{Reason: ReasonUngroundedClaim}
		}
	}

	return Verdict{Accepted: true, Citations: citations}
}

// stripSources removes the trailing Sources section; its lines are citation
// bookkeeping, not claims.
func stripSources(draft string) string {
	if idx := strings.LastIndex(draft, "Sources:"); idx >= 0 {
		return draft[:idx]
	}
	return draft
}

// isScaffold skips markdown structure that carries no standalone claim.
func isScaffold(sentence string) bool {
	s := strings.TrimSpace(sentence)
	return s == "" ||
		strings.HasPrefix(s, "|") ||
		strings.HasPrefix(s, "#") ||
		strings.HasPrefix(s, "---")
}

// contentTerms keeps the discriminating words of a sentence; short function
// words match anything and would dilute the containment check.
func contentTerms(sentence string) []string {
	var out []string
	for _, t := range search.Tokenize(sentence) {
		if len(t) >= 4 {
			out = append(out, t)
		}
	}
	return out
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
