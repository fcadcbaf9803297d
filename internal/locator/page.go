package locator

import (
	"context"
	"fmt"
	"io"
	"strings"

	"deephole/lib/htmlutil"
	"deephole/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

// Digit is one position of a componentized countdown display.
type Digit struct {
	// State is the numeric value the widget holds for this position, read
	// from a style property or data attribute.
	State string `json:"state"`
	// Text is what is visibly rendered, it may be empty or mid-animation.
	Text string `json:"text"`
}

// Widget is a rendered countdown together with the text around it.
type Widget struct {
	Label  string    `json:"label"`
	Groups [][]Digit `json:"groups"`
}

// Page is a retrieved tracker page.
type Page struct {
	URL string
	// Doc is the parsed markup, for rendered pages it is the serialized live DOM.
	Doc *goquery.Document
	// Text is the flattened visible text used for proximity scans.
	Text string
	// Widgets is only populated for rendered pages.
	Widgets  []Widget
	Rendered bool
}

// NewStaticPage parses markup into a Page.
func NewStaticPage(ctx context.Context, url string, markup io.Reader) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(markup)
	if err != nil {
		return Page{}, fmt.Errorf("parse html: %w", err)
	}
	return Page{
		URL:  url,
		Doc:  doc,
		Text: textutil.NFC(htmlutil.FlattenText(ctx, doc.Selection)),
	}, nil
}

// NewRenderedPage builds a Page out of what a browser session collected.
// When the session could not produce text, it is flattened from the markup.
func NewRenderedPage(ctx context.Context, url, outerHTML, text string, widgets []Widget) (Page, error) {
	page, err := NewStaticPage(ctx, url, strings.NewReader(outerHTML))
	if err != nil {
		return Page{}, err
	}
	if strings.TrimSpace(text) != "" {
		page.Text = textutil.NFC(text)
	}
	page.Widgets = widgets
	page.Rendered = true
	return page, nil
}
