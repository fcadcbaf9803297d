// Package locator finds the countdown of each zone in a retrieved page.
//
// Extraction is best effort and runs a priority list of strategies: a
// strategy only fills zones that every strategy before it left absent.
package locator

import (
	"context"

	"deephole/internal/zone"
	"deephole/lib/telemetry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("deephole.internal.locator")

// Strategy extracts whatever zone values it can from a page.
type Strategy interface {
	Name() string
	Locate(ctx context.Context, page Page, table zone.Table) zone.Result
}

type Locator struct {
	strategies []Strategy
	tel        telemetry.API
}

func New(tel telemetry.API, strategies ...Strategy) Locator {
	return Locator{
		strategies: strategies,
		tel:        telemetry.NewScopedAPI("locator", tel),
	}
}

// Options configures the default strategy list.
type Options struct {
	CardSelector      string
	CountdownSelector string
	ProximityWindow   int
}

// Default is card scan, then proximity scan, then digit reconstruction.
func Default(tel telemetry.API, opts Options) Locator {
	return New(
		tel,
		CardStrategy{
			CardSelector:      opts.CardSelector,
			CountdownSelector: opts.CountdownSelector,
		},
		ProximityStrategy{Window: opts.ProximityWindow},
		DigitStrategy{},
	)
}

// Locate runs the strategies in order over a single page.
func (l Locator) Locate(ctx context.Context, page Page, table zone.Table) zone.Result {
	result := zone.Result{}
	for _, s := range l.strategies {
		if result.Complete(table) {
			break
		}

		spanCtx, span := tracer.Start(ctx, s.Name())
		found := s.Locate(spanCtx, page, table)
		kept := 0
		for _, z := range table {
			v, ok := found[z.Name]
			if !ok || !result.Set(z.Name, v) {
				continue
			}
			kept++
			l.tel.ReportDebug("located", page.URL, s.Name(), z.Name, v.String())
		}
		span.SetAttributes(
			attribute.String("url", page.URL),
			attribute.Int("found", len(found)),
			attribute.Int("kept", kept),
		)
		span.End()
	}
	return result
}

// Merge folds per-page results in visit order, the first page that
// produced a value for a zone wins.
func Merge(results ...zone.Result) zone.Result {
	merged := zone.Result{}
	for _, r := range results {
		merged.Fill(r)
	}
	return merged
}
