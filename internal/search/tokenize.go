package search

import (
	"strings"
	"unicode"
)

// Tokenize normalizes text for lexical matching: case-folded, split on word
// boundaries. A hyphenated compound emits the compound itself plus each part,
// so "multi-agent" and "multi agent" retrieve each other regardless of which
// form the document uses.
func Tokenize(text string) []string {
	text = strings.ToLower(text)

	var tokens []string
	var word strings.Builder

	flush := func() {
		if word.Len() == 0 {
			return
		}
		w := strings.Trim(word.String(), "-")
		word.Reset()
		if w == "" {
			return
		}
		tokens = append(tokens, w)
		if strings.Contains(w, "-") {
			for _, part := range strings.Split(w, "-") {
				if part != "" {
					tokens = append(tokens, part)
				}
			}
		}
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			word.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()

	return tokens
}
