// Package rod provides the rendered fetch strategy: pages are loaded in a
// headless Chrome session so that client-side rendering has run before the
// DOM is captured.
package rod

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fwojciec/scrapetmpl"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

const (
	// DefaultNavigationTimeout bounds navigation, load and capture of a page.
	DefaultNavigationTimeout = 60 * time.Second

	// DefaultSettle is the pause after the load event for late scripts.
	DefaultSettle = 3 * time.Second

	// DefaultCloseTimeout bounds closing a page, so a wedged browser cannot
	// hold a fetch after its navigation deadline.
	DefaultCloseTimeout = 5 * time.Second

	// DefaultUserAgent is set on every page unless overridden.
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// metaJS collects name and property meta pairs. The first occurrence of a
// key wins.
const metaJS = `() => {
	const metas = {};
	document.querySelectorAll('meta').forEach(meta => {
		const content = meta.getAttribute('content');
		if (content === null) return;
		for (const attr of ['name', 'property']) {
			const key = (meta.getAttribute(attr) || '').trim();
			if (key && !(key in metas)) metas[key] = content;
		}
	});
	return metas;
}`

// Ensure Fetcher implements scrapetmpl.Strategy at compile time.
var _ scrapetmpl.Strategy = (*Fetcher)(nil)

// Fetcher retrieves rendered pages using Chrome browser automation.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	manager      *BrowserManager
	ownManager   bool
	timeout      time.Duration
	settle       time.Duration
	closeTimeout time.Duration
	userAgent    string
	closed       atomic.Bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithManager makes the Fetcher borrow an existing browser session. The
// caller keeps ownership: Close does not close a borrowed manager.
func WithManager(bm *BrowserManager) Option {
	return func(f *Fetcher) {
		f.manager = bm
	}
}

// WithFetchTimeout sets the navigation timeout.
// Defaults to DefaultNavigationTimeout (60s) if not specified.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithSettle sets the pause after the load event.
// Defaults to DefaultSettle (3s) if not specified.
func WithSettle(d time.Duration) Option {
	return func(f *Fetcher) {
		f.settle = d
	}
}

// WithCloseTimeout bounds closing the page after a fetch.
// Defaults to DefaultCloseTimeout (5s) if not specified.
func WithCloseTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.closeTimeout = d
	}
}

// WithUserAgent overrides the page user agent.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// NewFetcher creates a new rendered Fetcher. Without WithManager it owns a
// private BrowserManager that is closed by Close. The browser is launched
// lazily on the first fetch.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:   DefaultNavigationTimeout,
		settle:       DefaultSettle,
		closeTimeout: DefaultCloseTimeout,
		userAgent:    DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.manager == nil {
		f.manager = NewBrowserManager()
		f.ownManager = true
	}
	return f
}

// Kind returns scrapetmpl.StrategyRendered.
func (f *Fetcher) Kind() scrapetmpl.FetchStrategy {
	return scrapetmpl.StrategyRendered
}

// Fetch navigates to url in a fresh stealth page, waits for the load event
// and the settle pause, and captures the DOM, title, meta tags and the
// status of the main document.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*scrapetmpl.PageSnapshot, error) {
	if f.closed.Load() {
		return nil, scrapetmpl.Errorf(scrapetmpl.EINVALID, "rendered fetcher is closed")
	}
	if err := ctx.Err(); err != nil {
		return nil, classify(url, err)
	}

	browser, release, err := f.manager.Browser()
	if err != nil {
		return nil, &scrapetmpl.FetchError{Cause: scrapetmpl.CauseNoEngine, URL: url, Err: err}
	}
	defer release()
	page, err := stealth.Page(browser)
	if err != nil {
		return nil, &scrapetmpl.FetchError{Cause: scrapetmpl.CauseNoEngine, URL: url, Err: err}
	}
	// Closed with its own deadline: page is rebound to ctx below.
	defer func(p *rod.Page) { _ = p.Timeout(f.closeTimeout).Close() }(page)

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	page = page.Context(ctx)

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: f.userAgent}); err != nil {
		return nil, classify(url, err)
	}

	statusCh := make(chan int, 1)
	go page.EachEvent(func(e *proto.NetworkResponseReceived) bool {
		if e.Type != proto.NetworkResourceTypeDocument {
			return false
		}
		statusCh <- e.Response.Status
		return true
	})()

	if err := page.Navigate(url); err != nil {
		return nil, classify(url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, classify(url, err)
	}
	select {
	case <-time.After(f.settle):
	case <-ctx.Done():
		return nil, classify(url, ctx.Err())
	}

	status := 0
	select {
	case status = <-statusCh:
	default:
	}
	if status >= 400 {
		return nil, &scrapetmpl.FetchError{Cause: scrapetmpl.CauseHTTPStatus, URL: url, StatusCode: status}
	}
	if status == 0 {
		status = 200
	}

	html, err := page.HTML()
	if err != nil {
		return nil, classify(url, err)
	}

	snap := &scrapetmpl.PageSnapshot{
		URL:        url,
		HTML:       html,
		StatusCode: status,
		MetaTags:   map[string]string{},
		FetchedAt:  time.Now().UTC(),
		Strategy:   scrapetmpl.StrategyRendered,
	}
	if info, err := page.Info(); err == nil {
		snap.Title = info.Title
	}
	if res, err := page.Eval(metaJS); err == nil {
		for k, v := range res.Value.Map() {
			snap.MetaTags[k] = v.Str()
		}
	}
	return snap, nil
}

// Close releases the browser session if the Fetcher owns it.
// Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	if f.ownManager {
		return f.manager.Close()
	}
	return nil
}

// LauncherPID returns the process ID of the browser launcher, or 0 when no
// browser is running.
func (f *Fetcher) LauncherPID() int {
	return f.manager.LauncherPID()
}

// classify wraps err in a FetchError with a cause derived from the
// navigation failure reason.
func classify(url string, err error) *scrapetmpl.FetchError {
	cause := scrapetmpl.CauseConnection
	var navErr *rod.NavigationError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		cause = scrapetmpl.CauseTimeout
	case errors.As(err, &navErr):
		switch {
		case strings.Contains(navErr.Reason, "ERR_CERT"), strings.Contains(navErr.Reason, "ERR_SSL"):
			cause = scrapetmpl.CauseTLS
		case strings.Contains(navErr.Reason, "TIMED_OUT"):
			cause = scrapetmpl.CauseTimeout
		}
	}
	return &scrapetmpl.FetchError{Cause: cause, URL: url, Err: err}
}
