package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordSink collects events; failAfter > 0 makes Send fail once that many
// events have been accepted.
type recordSink struct {
	events    []Event
	failAfter int
}

func (s *recordSink) Send(e Event) error {
	if s.failAfter > 0 && len(s.events) >= s.failAfter {
		return errors.New("consumer gone")
	}
	s.events = append(s.events, e)
	return nil
}

func (s *recordSink) tokens() string {
	var b strings.Builder
	for _, e := range s.events {
		if e.Type == EventToken {
			b.WriteString(e.Content)
		}
	}
	return b.String()
}

func TestStreamSendsTokensInOrder(t *testing.T) {
	sink := &recordSink{}
	var em Emitter

	ok := em.Stream(context.Background(), []string{"hello ", "there ", "world"}, sink)
	require.True(t, ok)
	require.Len(t, sink.events, 3)
	assert.Equal(t, "hello there world", sink.tokens())
}

func TestStreamStopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sink := &recordSink{}
	var em Emitter

	ok := em.Stream(ctx, []string{"a", "b"}, sink)
	assert.False(t, ok)
	assert.Empty(t, sink.events)
}

func TestStreamStopsOnDeadSink(t *testing.T) {
	sink := &recordSink{failAfter: 1}
	var em Emitter

	ok := em.Stream(context.Background(), []string{"a", "b", "c"}, sink)
	assert.False(t, ok)
	assert.Len(t, sink.events, 1)
}

func TestFinishSuppressedAfterCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sink := &recordSink{}
	var em Emitter

	assert.False(t, em.Finish(ctx, Event{Type: EventDone}, sink))
	assert.Empty(t, sink.events)
}

func TestSplitTokensPreservesWhitespace(t *testing.T) {
	tokens := splitTokens("one two  three\nfour")
	assert.Equal(t, "one two  three\nfour", strings.Join(tokens, ""))
	assert.Equal(t, []string{"one ", "two  ", "three\n", "four"}, tokens)
}

func TestSplitTokensEmpty(t *testing.T) {
	assert.Empty(t, splitTokens(""))
}
