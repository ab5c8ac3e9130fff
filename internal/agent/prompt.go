package agent

import (
	"fmt"
	"strings"

	"github.com/dgallion1/docask/internal/document"
	"github.com/dgallion1/docask/internal/provider"
)

const systemPrompt = `You are a document-based assistant. Follow these rules strictly:

1. ONLY answer using the document excerpts provided below. Do not use outside knowledge.

2. After every claim taken from an excerpt, cite it inline as [%[1]s, Page N] using the excerpt's page number. Then add a "Sources:" section at the end listing each cited page on its own line:
- [%[1]s, Page N]
Only list pages you actually used.

3. If the excerpts do not contain the answer, respond exactly:
"The provided document does not contain this information."

4. Be concise. Format with Markdown where it helps readability.`

const correctivePrompt = `Your previous answer failed validation (%s). Rewrite it so that every claim comes directly from the excerpts, every citation uses the form [%s, Page N] with a page that appears in the excerpts, and nothing beyond the excerpts is asserted.`

// refusalPhrase is the grounded no-answer the model is instructed to use.
const refusalPhrase = "does not contain this information"

// askMessages assembles the conversation for a draft generation. The
// corrective instruction is non-empty only on the single guardrail-driven
// regeneration.
func askMessages(docName string, chunks []document.Chunk, history []provider.Message, question, corrective string) []provider.Message {
	var ctxBuilder strings.Builder
	ctxBuilder.WriteString("Document excerpts:\n")
	for _, chunk := range chunks {
		fmt.Fprintf(&ctxBuilder, "\n--- [Page %d] ---\n%s\n", chunk.Page, chunk.Text)
	}

	msgs := make([]provider.Message, 0, len(history)+4)
	msgs = append(msgs, provider.Message{Role: "system", Content: fmt.Sprintf(systemPrompt, docName)})
	msgs = append(msgs, history...)
	msgs = append(msgs, provider.Message{Role: "user", Content: ctxBuilder.String() + "\nQuestion: " + question})
	if corrective != "" {
		msgs = append(msgs, provider.Message{Role: "system", Content: corrective})
	}
	return msgs
}
