// Package http provides the lightweight fetch strategy and sitemap discovery
// over plain HTTP. Pages are fetched without executing JavaScript.
package http

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/fwojciec/scrapetmpl"
	"github.com/fwojciec/scrapetmpl/goquery"
	"golang.org/x/net/html/charset"
)

const (
	// DefaultFetchTimeout is the default timeout for HTTP requests.
	DefaultFetchTimeout = 30 * time.Second

	// DefaultUserAgent is sent with every request unless overridden.
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// MaxBodySize caps the number of response bytes read.
	MaxBodySize = 10 << 20
)

// Ensure Fetcher implements scrapetmpl.Strategy at compile time.
var _ scrapetmpl.Strategy = (*Fetcher)(nil)

// Fetcher retrieves pages with a single GET request.
// Unlike rod.Fetcher, this does not execute JavaScript.
type Fetcher struct {
	client    *http.Client
	insecure  *http.Client
	transport *http.Transport
	timeout   time.Duration
	userAgent string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (30s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithTransport sets the base transport. The relaxed-verification retry
// uses a clone of it.
func WithTransport(t *http.Transport) Option {
	return func(f *Fetcher) {
		f.transport = t
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:   DefaultFetchTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}

	base := f.transport
	if base == nil {
		base = http.DefaultTransport.(*http.Transport).Clone()
	}
	relaxed := base.Clone()
	if relaxed.TLSClientConfig == nil {
		relaxed.TLSClientConfig = &tls.Config{}
	}
	relaxed.TLSClientConfig.InsecureSkipVerify = true

	f.client = &http.Client{Timeout: f.timeout, Transport: base}
	f.insecure = &http.Client{Timeout: f.timeout, Transport: relaxed}
	return f
}

// Kind returns scrapetmpl.StrategyLightweight.
func (f *Fetcher) Kind() scrapetmpl.FetchStrategy {
	return scrapetmpl.StrategyLightweight
}

// Fetch retrieves the page at url. A certificate verification failure is
// retried once with verification disabled; the error of that second attempt
// is the one returned.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*scrapetmpl.PageSnapshot, error) {
	resp, err := f.do(ctx, f.client, url)
	if err != nil && isTLSError(err) && ctx.Err() == nil {
		resp, err = f.do(ctx, f.insecure, url)
	}
	if err != nil {
		return nil, classify(url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &scrapetmpl.FetchError{
			Cause:      scrapetmpl.CauseHTTPStatus,
			URL:        url,
			StatusCode: resp.StatusCode,
		}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		return nil, classify(url, err)
	}
	html, err := decode(raw, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, classify(url, err)
	}

	title, meta := goquery.PageMeta(html)
	return &scrapetmpl.PageSnapshot{
		URL:        url,
		HTML:       html,
		Title:      title,
		StatusCode: resp.StatusCode,
		MetaTags:   meta,
		FetchedAt:  time.Now().UTC(),
		Strategy:   scrapetmpl.StrategyLightweight,
	}, nil
}

// decode converts body to UTF-8 using the declared or sniffed charset.
// An empty body is a valid, empty page.
func decode(body []byte, contentType string) (string, error) {
	if len(body) == 0 {
		return "", nil
	}
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return "", err
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (f *Fetcher) do(ctx context.Context, client *http.Client, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	return client.Do(req)
}

// Close releases idle connections.
func (f *Fetcher) Close() error {
	f.client.CloseIdleConnections()
	f.insecure.CloseIdleConnections()
	return nil
}

// classify wraps err in a FetchError with a cause derived from its type.
func classify(url string, err error) *scrapetmpl.FetchError {
	cause := scrapetmpl.CauseConnection
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		cause = scrapetmpl.CauseTimeout
	case isTLSError(err):
		cause = scrapetmpl.CauseTLS
	}
	return &scrapetmpl.FetchError{Cause: cause, URL: url, Err: err}
}

func isTLSError(err error) bool {
	var (
		verifyErr    *tls.CertificateVerificationError
		recordErr    tls.RecordHeaderError
		alertErr     tls.AlertError
		unknownAuth  x509.UnknownAuthorityError
		hostnameErr  x509.HostnameError
		invalidErr   x509.CertificateInvalidError
		systemRoots  x509.SystemRootsError
		constraintEr x509.ConstraintViolationError
	)
	return errors.As(err, &verifyErr) ||
		errors.As(err, &recordErr) ||
		errors.As(err, &alertErr) ||
		errors.As(err, &unknownAuth) ||
		errors.As(err, &hostnameErr) ||
		errors.As(err, &invalidErr) ||
		errors.As(err, &systemRoots) ||
		errors.As(err, &constraintEr)
}
