package scrapetmpl

import (
	"context"
	"net/url"
	"strings"
	"time"
)

// Template is a persisted field-to-selector map for one domain together
// with its usage statistics.
type Template struct {
	ID         string      `json:"id"`
	Domain     string      `json:"domain"`
	Selectors  SelectorMap `json:"selectors"`
	Confidence float64     `json:"confidence_score"`
	UsageCount int         `json:"usage_count"`
	// SuccessRate is a running average of scrape outcomes. It is only ever
	// changed through TemplateService.UpdateUsage.
	SuccessRate float64    `json:"success_rate"`
	CreatedAt   time.Time  `json:"created_at"`
	LastUsedAt  *time.Time `json:"last_used,omitempty"`
	OwnerID     string     `json:"owner_id,omitempty"`
}

// Validate returns an error if the template is missing required fields.
func (t *Template) Validate() error {
	if t.Domain == "" {
		return Errorf(EINVALID, "template domain required")
	}
	if len(t.Selectors) == 0 {
		return Errorf(EINVALID, "template selectors required")
	}
	if t.Confidence < 0 || t.Confidence > 1 {
		return Errorf(EINVALID, "template confidence must be between 0 and 1")
	}
	return nil
}

// TemplateFilter represents a filter for FindTemplates.
type TemplateFilter struct {
	Domain  *string
	OwnerID *string

	Offset int
	Limit  int
}

// TemplateService represents a service for managing templates.
type TemplateService interface {
	// CreateTemplate stores a new template. The ID and CreatedAt are
	// assigned by the service; UsageCount starts at 0 and SuccessRate at 1.
	CreateTemplate(ctx context.Context, t *Template) error

	// FindTemplateByID retrieves a template by ID.
	// Returns ENOTFOUND if the template does not exist.
	FindTemplateByID(ctx context.Context, id string) (*Template, error)

	// FindTemplateByDomain retrieves the most recently created template for
	// a domain. Returns ENOTFOUND if the domain has none.
	FindTemplateByDomain(ctx context.Context, domain string) (*Template, error)

	// FindTemplates retrieves templates matching the filter, newest first.
	FindTemplates(ctx context.Context, filter TemplateFilter) ([]*Template, error)

	// UpdateUsage records one scrape outcome and returns the updated template.
	// Updates for the same ID are applied one at a time.
	UpdateUsage(ctx context.Context, id string, success bool) (*Template, error)

	// DeleteTemplate permanently removes a template.
	// Returns ENOTFOUND if the template does not exist.
	DeleteTemplate(ctx context.Context, id string) error
}

// NormalizeDomain returns the lowercased host of a URL or bare host name,
// without port and without a leading "www.".
func NormalizeDomain(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", Errorf(EINVALID, "domain required")
	}
	if !strings.Contains(s, "://") {
		s = "http://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", Errorf(EINVALID, "invalid URL %q", raw)
	}
	host := strings.ToLower(u.Hostname())
	host = strings.TrimSuffix(host, ".")
	host = strings.TrimPrefix(host, "www.")
	if host == "" {
		return "", Errorf(EINVALID, "no host in %q", raw)
	}
	return host, nil
}
