package scrapetmpl

import (
	"context"
	"time"
)

// FetchStrategy identifies how a page was retrieved.
type FetchStrategy string

const (
	// StrategyLightweight is a plain HTTP GET without script execution.
	StrategyLightweight FetchStrategy = "lightweight"
	// StrategyRendered is a headless browser navigation.
	StrategyRendered FetchStrategy = "rendered"
)

// PageSnapshot is the raw markup and metadata of a fetched page.
// A snapshot is never modified after it is returned.
type PageSnapshot struct {
	URL        string
	HTML       string
	Title      string
	StatusCode int
	// MetaTags maps both meta[name] and meta[property] keys to their content.
	MetaTags  map[string]string
	FetchedAt time.Time
	Strategy  FetchStrategy
}

// FetchOptions tunes a single Fetch call.
type FetchOptions struct {
	// PreferRendered asks for the rendered strategy to be tried first.
	PreferRendered bool
}

// Fetcher retrieves page snapshots. Implementations hide the choice of
// strategy and the fallback between them.
type Fetcher interface {
	// Fetch returns a snapshot of the page or a *FetchError.
	Fetch(ctx context.Context, url string, opts FetchOptions) (*PageSnapshot, error)

	// Close releases any session held by the fetcher.
	Close() error
}

// Strategy is one way of fetching a page. Higher layers never call a
// strategy directly; they go through a Fetcher.
type Strategy interface {
	Kind() FetchStrategy
	Fetch(ctx context.Context, url string) (*PageSnapshot, error)
}

// RenderPolicy decides whether a host should be fetched with the rendered
// strategy first.
type RenderPolicy interface {
	PreferRendered(host string) bool
}

// RenderPolicyFunc adapts a function to RenderPolicy.
type RenderPolicyFunc func(host string) bool

// PreferRendered calls f(host).
func (f RenderPolicyFunc) PreferRendered(host string) bool {
	return f(host)
}
