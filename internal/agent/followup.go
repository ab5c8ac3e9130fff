package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/dgallion1/docask/internal/document"
	"github.com/dgallion1/docask/internal/provider"
)

// fallbackQuestions is returned when the completion provider cannot produce
// suggestions; a turn never fails because follow-ups did.
var fallbackQuestions = []string{
	"What is this document about?",
	"Summarize the key points.",
	"List the most important details.",
}

const followUpPrompt = `Based on the following document excerpts%s, generate %d short, specific questions a reader might ask next.
Return ONLY a JSON array of strings, e.g. ["Question 1", "Question 2"].

Excerpts:
%s`

// maxContextChunks bounds the excerpt context for question generation to an
// overview rather than the whole retrieved set.
const maxContextChunks = 3

// SuggestFollowUps derives up to count distinct questions from the retrieved
// context. With an empty draftAnswer it produces document-level starter
// questions, which is how ingestion uses it.
func SuggestFollowUps(ctx context.Context, completer Completer, chunks []document.Chunk, draftAnswer string, count int) []string {
	if count <= 0 || len(chunks) == 0 {
		return nil
	}

	var excerpt strings.Builder
	for i, chunk := range chunks {
		if i >= maxContextChunks {
			break
		}
		excerpt.WriteString(chunk.Text)
		excerpt.WriteString("\n")
	}

	qualifier := ""
	if draftAnswer != "" {
		qualifier = " and the answer just given"
	}
	prompt := fmt.Sprintf(followUpPrompt, qualifier, count, excerpt.String())

	msgs := []provider.Message{{Role: "user", Content: prompt}}
	if draftAnswer != "" {
		msgs = append([]provider.Message{{Role: "assistant", Content: draftAnswer}}, msgs...)
	}

	completion, err := completer.Generate(ctx, msgs)
	if err != nil {
		return clipQuestions(fallbackQuestions, count)
	}

	var questions []string
	if err := json.Unmarshal([]byte(stripCodeBlock(completion.Text)), &questions); err != nil {
		return clipQuestions(fallbackQuestions, count)
	}

	return clipQuestions(dedupeQuestions(questions), count)
}

// dedupeQuestions drops duplicates by normalized text equality, preserving order.
func dedupeQuestions(questions []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, q := range questions {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		key := strings.ToLower(strings.TrimRight(q, "?!. "))
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, q)
	}
	return out
}

func clipQuestions(questions []string, count int) []string {
	if len(questions) > count {
		return questions[:count]
	}
	return questions
}

var codeBlockRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

// stripCodeBlock unwraps a fenced code block if the model returned one.
func stripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}
