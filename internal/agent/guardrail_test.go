package agent

import (
	"testing"

	"github.com/dgallion1/docask/internal/document"
	"github.com/dgallion1/docask/internal/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const guardDocName = "policy.pdf"

func guardChunks() []document.Chunk {
	texts := map[int]string{
		2: "The refund policy allows returns within thirty days of purchase.",
		5: "Shipping is free for orders above fifty dollars in the continental region.",
	}
	var chunks []document.Chunk
	for page, text := range texts {
		chunks = append(chunks, document.Chunk{
			ID:    "c",
			Text:  text,
			Page:  page,
			Terms: search.Tokenize(text),
		})
	}
	return chunks
}

func TestValidateAcceptsCitedGroundedAnswer(t *testing.T) {
	draft := "Returns are allowed within thirty days of purchase [policy.pdf, Page 2].\n\nSources:\n- [policy.pdf, Page 2]"

	v := Validate(draft, guardDocName, guardChunks())
	require.True(t, v.Accepted)
	assert.Empty(t, v.Reason)
	assert.Equal(t, []document.Citation{{DocumentName: guardDocName, PageNumber: 2}}, v.Citations)
}

func TestValidateDedupesCitations(t *testing.T) {
	draft := "Returns take thirty days [policy.pdf, Page 2]. Shipping is free above fifty dollars [policy.pdf, Page 5]. The refund policy allows returns [policy.pdf, Page 2]."

	v := Validate(draft, guardDocName, guardChunks())
	require.True(t, v.Accepted)
	assert.Len(t, v.Citations, 2)
}

func TestValidateRejectsUnknownDocument(t *testing.T) {
	draft := "Returns are allowed within thirty days [other.pdf, Page 2]."

	v := Validate(draft, guardDocName, guardChunks())
	assert.False(t, v.Accepted)
	assert.Equal(t, ReasonUnknownCitation, v.Reason)
	assert.Empty(t, v.Citations)
}

func TestValidateRejectsUnretrievedPage(t *testing.T) {
	draft := "Returns are allowed within thirty days [policy.pdf, Page 9]."

	v := Validate(draft, guardDocName, guardChunks())
	assert.False(t, v.Accepted)
	assert.Equal(t, ReasonPageNotRetrieved, v.Reason)
}

func TestValidateRejectsUngroundedSentence(t *testing.T) {
	draft := "Returns are allowed within thirty days [policy.pdf, Page 2]. Quantum computers dramatically outperform classical machines today."

	v := Validate(draft, guardDocName, guardChunks())
	assert.False(t, v.Accepted)
	assert.Equal(t, ReasonUngroundedClaim, v.Reason)
}

func TestValidateAcceptsGroundedCitationFreeSentence(t *testing.T) {
	draft := "The refund policy allows returns within thirty days."

	v := Validate(draft, guardDocName, guardChunks())
	assert.True(t, v.Accepted)
}

func TestValidateAcceptsRefusal(t *testing.T) {
	draft := "The provided document does not contain this information."

	v := Validate(draft, guardDocName, guardChunks())
	require.True(t, v.Accepted)
	assert.Empty(t, v.Citations)
}

func TestValidateCaseInsensitivePageKeyword(t *testing.T) {
	draft := "Shipping is free above fifty dollars [policy.pdf, page 5]."

	v := Validate(draft, guardDocName, guardChunks())
	require.True(t, v.Accepted)
	assert.Equal(t, 5, v.Citations[0].PageNumber)
}

func TestValidateCaseInsensitiveDocumentName(t *testing.T) {
	draft := "Returns are allowed within thirty days of purchase [Policy.PDF, Page 2]."

	v := Validate(draft, guardDocName, guardChunks())
	assert.True(t, v.Accepted)
}

func TestValidateEmptyDraft(t *testing.T) {
	v := Validate("", guardDocName, guardChunks())
	assert.True(t, v.Accepted)
	assert.Empty(t, v.Citations)
}

func TestValidateSkipsShortSentences(t *testing.T) {
	// Fewer than three content words carries no checkable claim.
	v := Validate("Yes, exactly so.", guardDocName, guardChunks())
	assert.True(t, v.Accepted)
}
