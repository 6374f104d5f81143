package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/scrapetmpl"
)

// Ensure LoggingGenerator implements scrapetmpl.SelectorGenerator.
var _ scrapetmpl.SelectorGenerator = (*LoggingGenerator)(nil)

// LoggingGenerator wraps a SelectorGenerator with logging.
type LoggingGenerator struct {
	next   scrapetmpl.SelectorGenerator
	logger *slog.Logger
}

// NewLoggingGenerator creates a new LoggingGenerator.
func NewLoggingGenerator(next scrapetmpl.SelectorGenerator, logger *slog.Logger) *LoggingGenerator {
	return &LoggingGenerator{next: next, logger: logger}
}

// Generate delegates to the wrapped generator and logs the call.
func (g *LoggingGenerator) Generate(ctx context.Context, pc scrapetmpl.PromptContext) (raw string, err error) {
	defer func(begin time.Time) {
		g.logger.Info("generate selectors",
			"url", pc.URL,
			"repair", pc.IsRepair(),
			"fields", len(pc.Schema),
			"html_bytes", len(pc.HTML),
			"response_bytes", len(raw),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return g.next.Generate(ctx, pc)
}
