package parser

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var md = goldmark.New()

// PlainText flattens card markdown to the words a reader sees: text and
// inline code, single-space separated. Code blocks and raw HTML are dropped.
func PlainText(content string) string {
	src := []byte(content)
	doc := md.Parser().Parse(text.NewReader(src))

	var parts []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock, *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			if s := strings.TrimSpace(string(t.Segment.Value(src))); s != "" {
				parts = append(parts, s)
			}
		case *ast.String:
			if s := strings.TrimSpace(string(t.Value)); s != "" {
				parts = append(parts, s)
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(parts, " ")
}
