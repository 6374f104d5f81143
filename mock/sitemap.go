package mock

import (
	"context"

	"github.com/fwojciec/scrapetmpl"
)

var _ scrapetmpl.SitemapService = (*SitemapService)(nil)

// SitemapService is a mock implementation of scrapetmpl.SitemapService.
type SitemapService struct {
	DiscoverURLsFn func(ctx context.Context, baseURL string, filter *scrapetmpl.URLFilter) ([]string, error)
}

func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *scrapetmpl.URLFilter) ([]string, error) {
	return s.DiscoverURLsFn(ctx, baseURL, filter)
}
