package htmlutil

import (
	"bytes"
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var tracer = otel.Tracer("deephole.lib.htmlutil")

// OwnText returns only the text nodes that are direct children of the
// selection's first node, so a container's label is not mixed up with the
// text of the cards nested inside of it.
func OwnText(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	var buffer bytes.Buffer
	for child := sel.Nodes[0].FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.TextNode {
			buffer.WriteString(child.Data)
			buffer.WriteByte(' ')
		}
	}
	return buffer.String()
}

func skipped(node *html.Node) bool {
	if node.Type != html.ElementNode {
		return false
	}
	switch node.DataAtom {
	case atom.Script, atom.Style, atom.Noscript, atom.Template:
		return true
	}
	return false
}

// FlattenText renders the visible text of a document, one trimmed text node
// per line. script, style, noscript and template contents are dropped. The
// document is not modified.
func FlattenText(ctx context.Context, sel *goquery.Selection) string {
	_, span := tracer.Start(ctx, "FlattenText")
	defer span.End()

	var lines []string
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if skipped(node) {
			return
		}
		if node.Type == html.TextNode {
			text := strings.TrimSpace(node.Data)
			if text != "" {
				lines = append(lines, text)
			}
			return
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	for _, node := range sel.Nodes {
		walk(node)
	}

	span.SetAttributes(attribute.Int("lines", len(lines)))
	return strings.Join(lines, "\n")
}
