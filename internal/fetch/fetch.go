// Package fetch retrieves tracker pages, either with a plain HTTP request or
// through a headless browser session when the countdowns only exist in the
// rendered DOM.
package fetch

import (
	"context"

	"deephole/internal/locator"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("deephole.internal.fetch")

// Retriever turns a url into a page ready for the locator.
type Retriever interface {
	Retrieve(ctx context.Context, url string) (locator.Page, error)
}
