package fetch

import (
	"strings"

	"github.com/fwojciec/scrapetmpl"
)

// DefaultRenderDomains are government news sites that serve their article
// bodies through client-side rendering.
var DefaultRenderDomains = []string{
	"go.id",
	"gov.id",
	"kemenkeu.go.id",
	"ekon.go.id",
	"kemenperin.go.id",
	"kemendag.go.id",
	"bps.go.id",
}

// Ensure DomainPolicy implements scrapetmpl.RenderPolicy at compile time.
var _ scrapetmpl.RenderPolicy = (*DomainPolicy)(nil)

// DomainPolicy prefers the rendered strategy for hosts equal to, or below,
// one of its domains. Matching respects label boundaries: "go.id" matches
// "kemenkeu.go.id" but not "logo.id".
type DomainPolicy struct {
	domains []string
}

// NewDomainPolicy creates a DomainPolicy. Entries are lowercased and
// stripped of surrounding dots; empty entries are ignored.
func NewDomainPolicy(domains ...string) *DomainPolicy {
	p := &DomainPolicy{}
	for _, d := range domains {
		d = strings.Trim(strings.ToLower(strings.TrimSpace(d)), ".")
		if d != "" {
			p.domains = append(p.domains, d)
		}
	}
	return p
}

// ParseDomainList splits a comma-separated list of domains.
func ParseDomainList(s string) []string {
	var out []string
	for _, d := range strings.Split(s, ",") {
		if d = strings.TrimSpace(d); d != "" {
			out = append(out, d)
		}
	}
	return out
}

// PreferRendered reports whether host falls under one of the domains.
func (p *DomainPolicy) PreferRendered(host string) bool {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	for _, d := range p.domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// Domains returns the policy's domains.
func (p *DomainPolicy) Domains() []string {
	return append([]string(nil), p.domains...)
}
