package scrapetmpl

import (
	"context"
	"time"
)

// Article is the scraped content of one page, ready to be written out.
type Article struct {
	URL        string            `json:"url"`
	Domain     string            `json:"domain"`
	TemplateID string            `json:"template_id"`
	Format     OutputFormat      `json:"format"`
	Fields     map[string]string `json:"fields"`
	ScrapedAt  time.Time         `json:"scraped_at"`
}

// Validate returns an error if the article contains invalid fields.
func (a *Article) Validate() error {
	if a.URL == "" {
		return Errorf(EINVALID, "article URL required")
	}
	if a.Domain == "" {
		return Errorf(EINVALID, "article domain required")
	}
	return nil
}

// ArticleWriter writes scraped articles to storage.
type ArticleWriter interface {
	WriteArticle(ctx context.Context, a *Article) error
}
