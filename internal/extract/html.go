package extract

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/OlhaSokur/Test-task-2/internal/models"
)

// blockTags are HTML elements treated as fragment boundaries.
var blockTags = map[string]bool{
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"p": true, "li": true, "td": true, "th": true, "blockquote": true, "pre": true,
}

// skipTags are elements whose text is never content.
var skipTags = map[string]bool{
	"script": true, "style": true, "head": true, "noscript": true,
}

// extractHTML yields one fragment per block-level element in document order.
func extractHTML(content []byte) ([]models.RawFragment, error) {
	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}
	var fragments []models.RawFragment
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if skipTags[n.Data] {
				return
			}
			if blockTags[n.Data] {
				if text := strings.TrimSpace(textContent(n)); text != "" {
					fragments = append(fragments, models.RawFragment{Text: text})
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return fragments, nil
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textContent(c))
	}
	return b.String()
}
