package agent

import (
	"context"
	"strings"
	"unicode"
)

// Emitter delivers a validated answer as an ordered token stream. Cancellation
// is cooperative: the context is checked between tokens, and a canceled stream
// produces no further events. That is a valid early termination, not an error.
type Emitter struct{}

// Stream sends every token in order. It returns false when the stream was cut
// short by cancellation or a dead sink, in which case nothing further may be
// sent on this turn.
func (Emitter) Stream(ctx context.Context, tokens []string, sink Sink) bool {
	for _, token := range tokens {
		select {
		case <-ctx.Done():
			return false
		default:
		}
		if err := sink.Send(Event{Type: EventToken, Content: token}); err != nil {
			return false
		}
	}
	return ctx.Err() == nil
}

// Finish appends the terminal event carrying citations, follow-ups and
// completion status.
func (Emitter) Finish(ctx context.Context, terminal Event, sink Sink) bool {
	if ctx.Err() != nil {
		return false
	}
	return sink.Send(terminal) == nil
}

// splitTokens breaks text into word-sized tokens preserving whitespace, for
// completions that produced no streamed chunks and for canned messages.
func splitTokens(text string) []string {
	var tokens []string
	var current strings.Builder
	inSpace := false

	for _, r := range text {
		isSpace := unicode.IsSpace(r)
		if current.Len() > 0 && inSpace && !isSpace {
			tokens = append(tokens, current.String())
			current.Reset()
		}
		current.WriteRune(r)
		inSpace = isSpace
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}
