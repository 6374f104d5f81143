package mock

import (
	"context"

	"github.com/fwojciec/scrapetmpl"
)

var _ scrapetmpl.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of scrapetmpl.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string, opts scrapetmpl.FetchOptions) (*scrapetmpl.PageSnapshot, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string, opts scrapetmpl.FetchOptions) (*scrapetmpl.PageSnapshot, error) {
	return f.FetchFn(ctx, url, opts)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}

var _ scrapetmpl.Strategy = (*Strategy)(nil)

// Strategy is a mock implementation of scrapetmpl.Strategy.
type Strategy struct {
	KindFn  func() scrapetmpl.FetchStrategy
	FetchFn func(ctx context.Context, url string) (*scrapetmpl.PageSnapshot, error)
	CloseFn func() error
}

func (s *Strategy) Kind() scrapetmpl.FetchStrategy {
	return s.KindFn()
}

func (s *Strategy) Fetch(ctx context.Context, url string) (*scrapetmpl.PageSnapshot, error) {
	return s.FetchFn(ctx, url)
}

// Close calls CloseFn when set.
func (s *Strategy) Close() error {
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}
