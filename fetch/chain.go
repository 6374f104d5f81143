// Package fetch implements scrapetmpl.Fetcher as an ordered chain of fetch
// strategies with a single classified-failure fallback.
package fetch

import (
	"context"
	"errors"
	"io"
	"net/url"

	"github.com/fwojciec/scrapetmpl"
)

// Ensure Chain implements scrapetmpl.Fetcher at compile time.
var _ scrapetmpl.Fetcher = (*Chain)(nil)

// Chain selects between a lightweight and a rendered strategy.
//
// By default the lightweight strategy runs first. A lightweight failure
// classified as timeout, connection or tls falls back to the rendered
// strategy once; any other failure, and any rendered failure, is returned
// as is. Hosts the render policy selects, and calls with PreferRendered,
// go to the rendered strategy first and never fall back.
type Chain struct {
	lightweight scrapetmpl.Strategy
	rendered    scrapetmpl.Strategy
	policy      scrapetmpl.RenderPolicy
}

// Option configures a Chain.
type Option func(*Chain)

// WithLightweight sets the lightweight strategy.
func WithLightweight(s scrapetmpl.Strategy) Option {
	return func(c *Chain) {
		c.lightweight = s
	}
}

// WithRendered sets the rendered strategy.
func WithRendered(s scrapetmpl.Strategy) Option {
	return func(c *Chain) {
		c.rendered = s
	}
}

// WithRenderPolicy sets the policy that routes hosts to the rendered
// strategy first.
func WithRenderPolicy(p scrapetmpl.RenderPolicy) Option {
	return func(c *Chain) {
		c.policy = p
	}
}

// NewChain creates a Chain. A Chain without strategies fails every fetch
// with a no-engine FetchError.
func NewChain(opts ...Option) *Chain {
	c := &Chain{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch retrieves rawURL using the configured strategies.
func (c *Chain) Fetch(ctx context.Context, rawURL string, opts scrapetmpl.FetchOptions) (*scrapetmpl.PageSnapshot, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, scrapetmpl.Errorf(scrapetmpl.EINVALID, "invalid URL %q", rawURL)
	}

	switch {
	case c.lightweight == nil && c.rendered == nil:
		return nil, &scrapetmpl.FetchError{Cause: scrapetmpl.CauseNoEngine, URL: rawURL}
	case c.lightweight == nil:
		return c.rendered.Fetch(ctx, rawURL)
	case c.rendered != nil && c.preferRendered(u.Hostname(), opts):
		return c.rendered.Fetch(ctx, rawURL)
	}

	snap, err := c.lightweight.Fetch(ctx, rawURL)
	if err == nil {
		return snap, nil
	}
	var fe *scrapetmpl.FetchError
	if c.rendered != nil && errors.As(err, &fe) && fe.Retryable() && ctx.Err() == nil {
		return c.rendered.Fetch(ctx, rawURL)
	}
	return nil, err
}

func (c *Chain) preferRendered(host string, opts scrapetmpl.FetchOptions) bool {
	if opts.PreferRendered {
		return true
	}
	return c.policy != nil && c.policy.PreferRendered(host)
}

// Close closes every strategy that holds resources.
func (c *Chain) Close() error {
	var errs []error
	for _, s := range []scrapetmpl.Strategy{c.lightweight, c.rendered} {
		if closer, ok := s.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
