package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/scrapetmpl"
)

// Ensure LoggingTemplateService implements scrapetmpl.TemplateService.
var _ scrapetmpl.TemplateService = (*LoggingTemplateService)(nil)

// LoggingTemplateService wraps a TemplateService with debug logging. Reads
// and writes are logged at debug level; failed writes at warn level.
type LoggingTemplateService struct {
	next   scrapetmpl.TemplateService
	logger *slog.Logger
}

// NewLoggingTemplateService creates a new LoggingTemplateService.
func NewLoggingTemplateService(next scrapetmpl.TemplateService, logger *slog.Logger) *LoggingTemplateService {
	return &LoggingTemplateService{next: next, logger: logger}
}

// CreateTemplate delegates to the wrapped service and logs the operation.
func (s *LoggingTemplateService) CreateTemplate(ctx context.Context, t *scrapetmpl.Template) (err error) {
	defer func(begin time.Time) {
		s.log(ctx, err, "template store",
			"op", "create",
			"id", t.ID,
			"domain", t.Domain,
			"confidence", t.Confidence,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.CreateTemplate(ctx, t)
}

// FindTemplateByID delegates to the wrapped service and logs the operation.
func (s *LoggingTemplateService) FindTemplateByID(ctx context.Context, id string) (t *scrapetmpl.Template, err error) {
	defer func(begin time.Time) {
		s.logger.DebugContext(ctx, "template store",
			"op", "find_by_id",
			"id", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindTemplateByID(ctx, id)
}

// FindTemplateByDomain delegates to the wrapped service and logs the operation.
func (s *LoggingTemplateService) FindTemplateByDomain(ctx context.Context, domain string) (t *scrapetmpl.Template, err error) {
	defer func(begin time.Time) {
		var id string
		if t != nil {
			id = t.ID
		}
		s.logger.DebugContext(ctx, "template store",
			"op", "find_by_domain",
			"domain", domain,
			"id", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindTemplateByDomain(ctx, domain)
}

// FindTemplates delegates to the wrapped service and logs the operation.
func (s *LoggingTemplateService) FindTemplates(ctx context.Context, filter scrapetmpl.TemplateFilter) (ts []*scrapetmpl.Template, err error) {
	defer func(begin time.Time) {
		s.logger.DebugContext(ctx, "template store",
			"op", "find",
			"count", len(ts),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindTemplates(ctx, filter)
}

// UpdateUsage delegates to the wrapped service and logs the operation.
func (s *LoggingTemplateService) UpdateUsage(ctx context.Context, id string, success bool) (t *scrapetmpl.Template, err error) {
	defer func(begin time.Time) {
		attrs := []any{"op", "update_usage", "id", id, "success", success}
		if t != nil {
			attrs = append(attrs, "usage_count", t.UsageCount, "success_rate", t.SuccessRate)
		}
		attrs = append(attrs, "duration", time.Since(begin), "err", err)
		s.log(ctx, err, "template store", attrs...)
	}(time.Now())
	return s.next.UpdateUsage(ctx, id, success)
}

// DeleteTemplate delegates to the wrapped service and logs the operation.
func (s *LoggingTemplateService) DeleteTemplate(ctx context.Context, id string) (err error) {
	defer func(begin time.Time) {
		s.log(ctx, err, "template store",
			"op", "delete",
			"id", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.DeleteTemplate(ctx, id)
}

func (s *LoggingTemplateService) log(ctx context.Context, err error, msg string, args ...any) {
	level := slog.LevelDebug
	if err != nil {
		level = slog.LevelWarn
	}
	s.logger.Log(ctx, level, msg, args...)
}
