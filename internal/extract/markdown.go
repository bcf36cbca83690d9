package extract

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/OlhaSokur/Test-task-2/internal/models"
)

// extractMarkdown yields one fragment per top-level block so headings arrive
// as their own fragments ahead of the text they introduce.
func extractMarkdown(content []byte) ([]models.RawFragment, error) {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(content))

	var fragments []models.RawFragment
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		t := strings.TrimSpace(nodeText(n, content))
		if t == "" {
			continue
		}
		fragments = append(fragments, models.RawFragment{Text: t})
	}
	return fragments, nil
}

// nodeText gets the text content of a goldmark AST node. Blocks with source
// lines use them directly; container blocks (lists, quotes) recurse.
func nodeText(n ast.Node, src []byte) string {
	if t, ok := n.(*ast.Text); ok {
		return string(t.Value(src))
	}
	if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
		var buf bytes.Buffer
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(src))
		}
		return buf.String()
	}
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		part := nodeText(c, src)
		if part == "" {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(part)
	}
	return buf.String()
}
