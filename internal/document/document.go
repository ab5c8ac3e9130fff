package document

// Page is a single page of extracted document text, the unit parsers emit.
type Page struct {
	Number int    // 1-indexed source page (or logical section for non-paged formats)
	Text   string
}

// Chunk is a bounded span of document text with page provenance, the unit of
// retrieval. Chunks are immutable once created and safely shared without locking.
type Chunk struct {
	ID        string    // Stable across re-ranking: "<hash12>-<seq>"
	Text      string
	Page      int       // 1-indexed source page
	Terms     []string  // Normalized token stream, computed once at creation
	Embedding []float32 // Document-mode embedding
}

// Document is the active document's parsed content.
type Document struct {
	Name   string
	Chunks []Chunk
}

// Citation points a claim back to a page of the active document.
type Citation struct {
	DocumentName string `json:"document_name"`
	PageNumber   int    `json:"page_number"`
}
