// Package tracker drives a single update run: retrieve every source page,
// locate the zone countdowns, merge with the previous snapshot and write it.
package tracker

import (
	"context"
	"strings"

	"deephole/internal/assert"
	"deephole/internal/fetch"
	"deephole/internal/locator"
	"deephole/internal/snapshot"
	"deephole/internal/zone"
	"deephole/lib/chrono"
	"deephole/lib/telemetry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const (
	report_run_static   = "run.static"
	report_run_rendered = "run.rendered"
	report_run_snapshot = "run.load-snapshot"
	report_run_write    = "run.write"
	report_run_located  = "run.located"
	report_run_missing  = "run.missing"
)

var (
	tracer = otel.Tracer("deephole.internal.tracker")
	meter  = otel.Meter("deephole.internal.tracker")
)

var locatedGauge, _ = meter.Int64Gauge("zones_located")

type Options struct {
	Sources []string
	Static  fetch.Retriever
	// Rendered is optional, it is only used for urls that left zones missing
	// after the static retrieval.
	Rendered        fetch.Retriever
	Locator         locator.Locator
	Zones           zone.Table
	ProximityWindow int
	OutputPath      string
	SourceName      string
	Clock           chrono.API
	Tel             telemetry.API
}

type Tracker struct {
	opts Options
	tel  telemetry.API
}

func New(opts Options) Tracker {
	assert.NotNil(opts.Static, "static retriever")
	assert.NotNil(opts.Clock, "clock")
	assert.NotNil(opts.Tel, "telemetry")
	assert.NotEmptyStr(opts.OutputPath, "output path")
	if len(opts.Zones) == 0 {
		opts.Zones = zone.Default
	}

	return Tracker{
		opts: opts,
		tel:  telemetry.NewScopedAPI("tracker", opts.Tel),
	}
}

// Extract visits every source in order and returns what could be located.
// Retrieval failures skip the url. The accumulated text of every retrieved
// page gets a final proximity scan when zones are still missing.
func (t Tracker) Extract(ctx context.Context) zone.Result {
	ctx, span := tracer.Start(ctx, "Extract")
	defer span.End()

	result := zone.Result{}
	var texts []string

	visit := func(retriever fetch.Retriever, url, reportID string) {
		page, err := retriever.Retrieve(ctx, url)
		if err != nil {
			t.tel.ReportWarning(reportID, err, url)
			return
		}
		texts = append(texts, page.Text)
		result = locator.Merge(result, t.opts.Locator.Locate(ctx, page, t.opts.Zones))
	}

	for _, url := range t.opts.Sources {
		visit(t.opts.Static, url, report_run_static)
		if result.Complete(t.opts.Zones) {
			break
		}
		if t.opts.Rendered != nil {
			visit(t.opts.Rendered, url, report_run_rendered)
			if result.Complete(t.opts.Zones) {
				break
			}
		}
	}

	if !result.Complete(t.opts.Zones) && len(texts) > 0 {
		merged := "\n" + strings.Join(texts, "\n")
		result = locator.Merge(result, locator.ScanText(merged, t.opts.Zones, t.opts.ProximityWindow))
	}
	if missing := zone.Table(result.Missing(t.opts.Zones)); len(missing) > 0 {
		t.tel.ReportWarning(report_run_missing, missing.Names())
	}

	span.SetAttributes(attribute.Int("located", len(result)))
	return result
}

// Run performs a full update. The only error returned is a failure to
// write the snapshot, everything else degrades to absent values.
func (t Tracker) Run(ctx context.Context) (snapshot.Snapshot, error) {
	fresh := t.Extract(ctx)
	t.tel.ReportCount(report_run_located, int64(len(fresh)))
	locatedGauge.Record(ctx, int64(len(fresh)))

	prev, err := snapshot.Load(t.opts.OutputPath)
	if err != nil {
		t.tel.ReportWarning(report_run_snapshot, err)
	}

	now := t.opts.Clock.Now()
	snap := snapshot.Merge(now, fresh, prev, t.opts.Zones, t.opts.SourceName)

	err = snapshot.Write(t.opts.OutputPath, snap)
	if err != nil {
		t.tel.ReportBroken(report_run_write, err, t.opts.OutputPath)
		return snap, err
	}
	return snap, nil
}
