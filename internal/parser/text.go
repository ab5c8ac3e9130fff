package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/docask/internal/document"
)

// TextParser handles plain text files. Form feeds split pages; a file without
// them is a single page.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) ([]document.Page, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var all strings.Builder
	for scanner.Scan() {
		all.WriteString(scanner.Text())
		all.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return numberPages(strings.Split(all.String(), "\f")), nil
}
