package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docask/internal/document"
)

// CSVParser flattens rows into "Header: value" lines so row data survives
// chunking and lexical matching. Rows are grouped into pages of 20.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) ([]document.Page, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) < 2 {
		return nil, nil
	}

	headers := records[0]
	dataRows := records[1:]

	const batchSize = 20
	var sections []string
	for i := 0; i < len(dataRows); i += batchSize {
		end := min(i+batchSize, len(dataRows))

		var text strings.Builder
		for _, row := range dataRows[i:end] {
			var parts []string
			for j, cell := range row {
				cell = strings.TrimSpace(cell)
				if cell == "" {
					continue
				}
				if j < len(headers) && strings.TrimSpace(headers[j]) != "" {
					parts = append(parts, strings.TrimSpace(headers[j])+": "+cell)
				} else {
					parts = append(parts, cell)
				}
			}
			if len(parts) > 0 {
				text.WriteString(strings.Join(parts, " | "))
				text.WriteString("\n")
			}
		}
		sections = append(sections, text.String())
	}

	return numberPages(sections), nil
}
