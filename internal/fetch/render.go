package fetch

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"deephole/internal/locator"
	"deephole/lib/restyutil"
	"deephole/lib/telemetry"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	report_renderer_launch   = "renderer.launch"
	report_renderer_navigate = "renderer.navigate"
	report_renderer_idle     = "renderer.network-idle"
	report_renderer_collect  = "renderer.collect"
	report_renderer_rss      = "renderer.rss_mb"
)

//go:embed collect.js
var collectScript string

var DefaultLoadTimeouts = []time.Duration{
	15 * time.Second,
	25 * time.Second,
	35 * time.Second,
}

const (
	DefaultRenderAttempts     = 3
	DefaultNetworkIdleTimeout = 5 * time.Second
	// no request may start for this long for the network to count as idle
	requestQuiet   = 500 * time.Millisecond
	collectTimeout = 10 * time.Second
)

type RenderOptions struct {
	// RemoteURL is the devtools websocket of an already running browser,
	// empty launches a local headless one.
	RemoteURL string
	Attempts  int
	// LoadTimeouts is the patience of each attempt, the last entry is reused
	// when there are more attempts than timeouts.
	LoadTimeouts []time.Duration
	// NetworkIdleTimeout bounds the wait for in-flight requests to settle
	// after the load event.
	NetworkIdleTimeout time.Duration
	// Dump receives the rendered markup of every page when set.
	Dump restyutil.Output
}

func (o RenderOptions) withDefaults() RenderOptions {
	if o.Attempts <= 0 {
		o.Attempts = DefaultRenderAttempts
	}
	if len(o.LoadTimeouts) == 0 {
		o.LoadTimeouts = DefaultLoadTimeouts
	}
	if o.NetworkIdleTimeout <= 0 {
		o.NetworkIdleTimeout = DefaultNetworkIdleTimeout
	}
	return o
}

// sessionTimeout is the load timeout of an attempt followed by the network
// idle wait.
func (o RenderOptions) sessionTimeout(load time.Duration) time.Duration {
	return load + o.NetworkIdleTimeout
}

func (o RenderOptions) loadTimeout(attempt int) time.Duration {
	if attempt >= len(o.LoadTimeouts) {
		return o.LoadTimeouts[len(o.LoadTimeouts)-1]
	}
	return o.LoadTimeouts[attempt]
}

// Renderer retrieves pages through a stealth headless browser tab.
type Renderer struct {
	opts    RenderOptions
	tel     telemetry.API
	browser *rod.Browser
	lnch    *launcher.Launcher
	dumped  atomic.Uint64
}

func NewRenderer(tel telemetry.API, opts RenderOptions) (*Renderer, error) {
	tel = telemetry.NewScopedAPI("fetch", tel)
	r := &Renderer{opts: opts.withDefaults(), tel: tel}

	controlURL := r.opts.RemoteURL
	if controlURL == "" {
		l := launcher.New().
			Headless(true).
			Set("disable-blink-features", "AutomationControlled")
		u, err := l.Launch()
		if err != nil {
			tel.ReportBroken(report_renderer_launch, err)
			return nil, fmt.Errorf("launch browser: %w", err)
		}
		controlURL = u
		r.lnch = l
	}

	browser := rod.New().ControlURL(controlURL)
	err := browser.Connect()
	if err != nil {
		tel.ReportBroken(report_renderer_launch, err, controlURL)
		r.cleanup()
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	r.browser = browser
	return r, nil
}

func (r *Renderer) cleanup() {
	if r.lnch != nil {
		r.lnch.Cleanup()
		r.lnch = nil
	}
}

// Close shuts the browser down and removes the launched profile.
func (r *Renderer) Close() error {
	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	r.cleanup()
	return err
}

type collected struct {
	HTML    string           `json:"html"`
	Text    string           `json:"text"`
	Widgets []locator.Widget `json:"widgets"`
}

// Retrieve renders url, retrying with more patience on each attempt. The
// url is given up on only once every attempt has failed.
func (r *Renderer) Retrieve(ctx context.Context, url string) (locator.Page, error) {
	ctx, span := tracer.Start(ctx, "Renderer.Retrieve")
	defer span.End()
	span.SetAttributes(attribute.String("url", url))

	var errs []error
	for attempt := 0; attempt < r.opts.Attempts; attempt++ {
		timeout := r.opts.loadTimeout(attempt)
		result, err := r.render(ctx, url, timeout)
		if err != nil {
			r.tel.ReportWarning(report_renderer_navigate, err, url, attempt+1, timeout.String())
			errs = append(errs, err)
			continue
		}

		span.SetAttributes(attribute.Int("attempts", attempt+1))
		if r.opts.Dump != nil {
			id := restyutil.MessageID(r.dumped.Add(1), url)
			r.opts.Dump.Write("rendered-"+id, result.HTML)
		}
		if r.lnch != nil {
			telemetry.ReportProcessMemory(r.tel, report_renderer_rss, r.lnch.PID())
		}
		return locator.NewRenderedPage(ctx, url, result.HTML, result.Text, result.Widgets)
	}
	err := fmt.Errorf("render %s: %w", url, errors.Join(errs...))
	span.RecordError(err)
	span.SetStatus(codes.Error, "every attempt failed")
	return locator.Page{}, err
}

func (r *Renderer) render(ctx context.Context, url string, timeout time.Duration) (collected, error) {
	page, err := stealth.Page(r.browser)
	if err != nil {
		return collected{}, fmt.Errorf("create tab: %w", err)
	}
	defer page.Close()

	navCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// the request listener has to be attached before navigating, its deadline
	// covers the load and the idle wait following it
	idleCtx, cancelIdle := context.WithTimeout(ctx, r.opts.sessionTimeout(timeout))
	defer cancelIdle()
	waitRequestIdle := page.Context(idleCtx).WaitRequestIdle(requestQuiet, nil, nil, nil)

	err = page.Context(navCtx).Navigate(url)
	if err != nil {
		return collected{}, fmt.Errorf("navigate: %w", err)
	}
	err = page.Context(navCtx).WaitLoad()
	if err != nil {
		return collected{}, fmt.Errorf("wait load: %w", err)
	}

	// countdown widgets are usually hydrated by requests made after the load event
	waitRequestIdle()
	if idleCtx.Err() != nil {
		r.tel.ReportDebug(report_renderer_idle, url, idleCtx.Err())
	}

	evalCtx, cancelEval := context.WithTimeout(ctx, collectTimeout)
	defer cancelEval()

	res, err := page.Context(evalCtx).Eval(collectScript)
	if err != nil {
		r.tel.ReportBroken(report_renderer_collect, err, url)
		return collected{}, fmt.Errorf("collect: %w", err)
	}

	var out collected
	err = json.Unmarshal([]byte(res.Value.Str()), &out)
	if err != nil {
		r.tel.ReportBroken(report_renderer_collect, err, url)
		return collected{}, fmt.Errorf("decode collected page: %w", err)
	}
	r.tel.ReportDebug("rendered", url, len(out.Widgets))
	return out, nil
}
