package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/dgallion1/docask/internal/document"
	"github.com/dgallion1/docask/internal/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedCompleter returns canned completions in sequence, or err on every call.
type scriptedCompleter struct {
	responses []provider.Completion
	err       error
	calls     [][]provider.Message
}

func (c *scriptedCompleter) Generate(ctx context.Context, messages []provider.Message) (provider.Completion, error) {
	c.calls = append(c.calls, messages)
	if c.err != nil {
		return provider.Completion{}, c.err
	}
	if len(c.responses) == 0 {
		return provider.Completion{}, errors.New("script exhausted")
	}
	resp := c.responses[0]
	if len(c.responses) > 1 {
		c.responses = c.responses[1:]
	}
	return resp, nil
}

func followUpChunks() []document.Chunk {
	return []document.Chunk{
		{ID: "a", Text: "The warranty covers manufacturing defects for one year.", Page: 1},
	}
}

func TestSuggestFollowUpsParsesJSONArray(t *testing.T) {
	completer := &scriptedCompleter{responses: []provider.Completion{
		{Text: `["What does the warranty cover?", "How long is the warranty?"]`},
	}}

	got := SuggestFollowUps(context.Background(), completer, followUpChunks(), "", 3)
	assert.Equal(t, []string{"What does the warranty cover?", "How long is the warranty?"}, got)
}

func TestSuggestFollowUpsUnwrapsCodeFence(t *testing.T) {
	completer := &scriptedCompleter{responses: []provider.Completion{
		{Text: "```json\n[\"What does the warranty cover?\"]\n```"},
	}}

	got := SuggestFollowUps(context.Background(), completer, followUpChunks(), "", 3)
	assert.Equal(t, []string{"What does the warranty cover?"}, got)
}

func TestSuggestFollowUpsDedupesAndClips(t *testing.T) {
	completer := &scriptedCompleter{responses: []provider.Completion{
		{Text: `["One?", "one?", "Two?", "Three?", "Four?"]`},
	}}

	got := SuggestFollowUps(context.Background(), completer, followUpChunks(), "", 3)
	assert.Equal(t, []string{"One?", "Two?", "Three?"}, got)
}

func TestSuggestFollowUpsFallsBackOnProviderError(t *testing.T) {
	completer := &scriptedCompleter{err: errors.New("connection refused")}

	got := SuggestFollowUps(context.Background(), completer, followUpChunks(), "", 3)
	assert.Equal(t, fallbackQuestions, got)
}

func TestSuggestFollowUpsFallsBackOnMalformedJSON(t *testing.T) {
	completer := &scriptedCompleter{responses: []provider.Completion{
		{Text: "Here are some questions: 1. What?"},
	}}

	got := SuggestFollowUps(context.Background(), completer, followUpChunks(), "", 2)
	assert.Equal(t, fallbackQuestions[:2], got)
}

func TestSuggestFollowUpsIncludesDraftAnswer(t *testing.T) {
	completer := &scriptedCompleter{responses: []provider.Completion{
		{Text: `["Next?"]`},
	}}

	SuggestFollowUps(context.Background(), completer, followUpChunks(), "The warranty lasts one year.", 3)
	require.Len(t, completer.calls, 1)
	require.Len(t, completer.calls[0], 2)
	assert.Equal(t, "assistant", completer.calls[0][0].Role)
}

func TestSuggestFollowUpsNoChunks(t *testing.T) {
	completer := &scriptedCompleter{}
	assert.Nil(t, SuggestFollowUps(context.Background(), completer, nil, "", 3))
	assert.Empty(t, completer.calls)
}

func TestStripCodeBlock(t *testing.T) {
	assert.Equal(t, `["a"]`, stripCodeBlock("```json\n[\"a\"]\n```"))
	assert.Equal(t, `["a"]`, stripCodeBlock("```\n[\"a\"]\n```"))
	assert.Equal(t, `["a"]`, stripCodeBlock(`["a"]`))
}
