package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/scrapetmpl"
)

// Ensure LoggingFetcher implements scrapetmpl.Fetcher.
var _ scrapetmpl.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher and logs every fetch with the strategy
// that served it.
type LoggingFetcher struct {
	next   scrapetmpl.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next scrapetmpl.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the operation.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string, opts scrapetmpl.FetchOptions) (snap *scrapetmpl.PageSnapshot, err error) {
	defer func(begin time.Time) {
		var bytes int
		var strategy scrapetmpl.FetchStrategy
		if snap != nil {
			bytes = len(snap.HTML)
			strategy = snap.Strategy
		}
		f.logger.Info("fetch",
			"url", url,
			"bytes", bytes,
			"strategy", strategy,
			"cause", scrapetmpl.FetchCauseOf(err),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url, opts)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}
