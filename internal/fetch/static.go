package fetch

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"deephole/internal/locator"
	"deephole/lib/restyutil"
	"deephole/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	report_static_fetch = "static-fetcher.fetch"
	report_static_parse = "static-fetcher.parse"
)

const DefaultStaticTimeout = 15 * time.Second

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// StaticFetcher retrieves pages with a single GET and no javascript.
type StaticFetcher struct {
	http *resty.Client
	tel  telemetry.API
}

func NewStaticFetcher(tel telemetry.API, timeout time.Duration) StaticFetcher {
	if timeout <= 0 {
		timeout = DefaultStaticTimeout
	}
	tel = telemetry.NewScopedAPI("fetch", tel)

	client := resty.New()
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetHeaders(map[string]string{
		"user-agent":                userAgent,
		"referer":                   "https://www.google.com/",
		"accept-language":           "ko-KR,ko;q=0.9,en-US;q=0.7",
		"accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"upgrade-insecure-requests": "1",
	})
	client.SetTimeout(timeout)
	telemetry.InstrumentResty(client, tel)

	return StaticFetcher{http: client, tel: tel}
}

// WithDump keeps a copy of every exchange in output.
func (f StaticFetcher) WithDump(output restyutil.Output) StaticFetcher {
	restyutil.Dump(f.http, output)
	return f
}

func (f StaticFetcher) Retrieve(ctx context.Context, url string) (locator.Page, error) {
	ctx, span := tracer.Start(ctx, "StaticFetcher.Retrieve")
	defer span.End()
	span.SetAttributes(attribute.String("url", url))

	res, err := f.http.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		f.tel.ReportWarning(report_static_fetch, err, url)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch")
		return locator.Page{}, fmt.Errorf("fetch %s: %w", url, err)
	}
	span.SetAttributes(attribute.Int("status", res.StatusCode()))
	if res.IsError() {
		err = fmt.Errorf("fetch %s: unexpected status %s", url, res.Status())
		f.tel.ReportWarning(report_static_fetch, err)
		span.SetStatus(codes.Error, "unexpected status")
		return locator.Page{}, err
	}

	page, err := locator.NewStaticPage(ctx, url, bytes.NewReader(res.Body()))
	if err != nil {
		f.tel.ReportBroken(report_static_parse, err, url)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		return locator.Page{}, err
	}
	return page, nil
}
