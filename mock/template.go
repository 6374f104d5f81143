package mock

import (
	"context"

	"github.com/fwojciec/scrapetmpl"
)

var _ scrapetmpl.TemplateService = (*TemplateService)(nil)

// TemplateService is a mock implementation of scrapetmpl.TemplateService.
type TemplateService struct {
	CreateTemplateFn       func(ctx context.Context, t *scrapetmpl.Template) error
	FindTemplateByIDFn     func(ctx context.Context, id string) (*scrapetmpl.Template, error)
	FindTemplateByDomainFn func(ctx context.Context, domain string) (*scrapetmpl.Template, error)
	FindTemplatesFn        func(ctx context.Context, filter scrapetmpl.TemplateFilter) ([]*scrapetmpl.Template, error)
	UpdateUsageFn          func(ctx context.Context, id string, success bool) (*scrapetmpl.Template, error)
	DeleteTemplateFn       func(ctx context.Context, id string) error
}

func (s *TemplateService) CreateTemplate(ctx context.Context, t *scrapetmpl.Template) error {
	return s.CreateTemplateFn(ctx, t)
}

func (s *TemplateService) FindTemplateByID(ctx context.Context, id string) (*scrapetmpl.Template, error) {
	return s.FindTemplateByIDFn(ctx, id)
}

func (s *TemplateService) FindTemplateByDomain(ctx context.Context, domain string) (*scrapetmpl.Template, error) {
	return s.FindTemplateByDomainFn(ctx, domain)
}

func (s *TemplateService) FindTemplates(ctx context.Context, filter scrapetmpl.TemplateFilter) ([]*scrapetmpl.Template, error) {
	return s.FindTemplatesFn(ctx, filter)
}

func (s *TemplateService) UpdateUsage(ctx context.Context, id string, success bool) (*scrapetmpl.Template, error) {
	return s.UpdateUsageFn(ctx, id, success)
}

func (s *TemplateService) DeleteTemplate(ctx context.Context, id string) error {
	return s.DeleteTemplateFn(ctx, id)
}
