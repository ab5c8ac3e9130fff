package parser

import (
	"strings"
	"testing"
)

func TestMarkdownParserSectionsOnHeadings(t *testing.T) {
	src := `# Introduction

Opening paragraph about the product.

## Pricing

The plan costs ten dollars per month.

## Support

Email support is available on weekdays.
`
	p := &MarkdownParser{}
	pages, err := p.Parse(strings.NewReader(src), "doc.md")
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) != 3 {
		t.Fatalf("pages = %d, want 3: %+v", len(pages), pages)
	}
	if !strings.Contains(pages[1].Text, "Pricing") {
		t.Fatalf("heading text lost from its section: %q", pages[1].Text)
	}
	if !strings.Contains(pages[1].Text, "ten dollars") {
		t.Fatalf("section body lost: %q", pages[1].Text)
	}
}

func TestMarkdownParserDeepHeadingsStayInSection(t *testing.T) {
	src := `# Only Section

### Sub-detail

Body under the sub-heading.
`
	p := &MarkdownParser{}
	pages, err := p.Parse(strings.NewReader(src), "doc.md")
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) != 1 {
		t.Fatalf("h3 must not start a new page: %d pages", len(pages))
	}
}

func TestMarkdownParserNoHeadings(t *testing.T) {
	p := &MarkdownParser{}
	pages, err := p.Parse(strings.NewReader("Just a paragraph.\n\nAnd another one.\n"), "doc.md")
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) != 1 {
		t.Fatalf("pages = %d, want 1", len(pages))
	}
	if !strings.Contains(pages[0].Text, "another one") {
		t.Fatalf("content lost: %q", pages[0].Text)
	}
}

func TestMarkdownParserEmpty(t *testing.T) {
	p := &MarkdownParser{}
	pages, err := p.Parse(strings.NewReader(""), "doc.md")
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) != 0 {
		t.Fatalf("pages = %d, want 0", len(pages))
	}
}
