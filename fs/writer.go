// Package fs writes scraped articles to a directory tree.
package fs

import (
	"bytes"
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/scrapetmpl"
	"gopkg.in/yaml.v3"
)

// BodyField is written as the file body instead of the frontmatter.
const BodyField = "content"

// ArticlePath converts an article URL to a relative file path below a
// directory named after the host. The extension follows the output format.
// Example: https://news.example/2024/05/rates → news.example/2024/05/rates.md
func ArticlePath(rawURL string, format scrapetmpl.OutputFormat) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", scrapetmpl.Errorf(scrapetmpl.EINVALID, "URL has no host: %q", rawURL)
	}

	host := strings.ToLower(u.Hostname())
	ext := Extension(format)
	path := strings.TrimPrefix(u.Path, "/")

	// Root and trailing slash become index files.
	if path == "" || strings.HasSuffix(path, "/") {
		return filepath.Join(host, filepath.FromSlash(path), "index"+ext), nil
	}
	return filepath.Join(host, filepath.FromSlash(path)+ext), nil
}

// Extension returns the file extension for an output format.
func Extension(format scrapetmpl.OutputFormat) string {
	switch format {
	case scrapetmpl.FormatMarkdown, scrapetmpl.FormatCommonmark:
		return ".md"
	case scrapetmpl.FormatPlaintext:
		return ".txt"
	default:
		return ".html"
	}
}

type frontmatter struct {
	Source   string            `yaml:"source"`
	Domain   string            `yaml:"domain"`
	Template string            `yaml:"template,omitempty"`
	Format   string            `yaml:"format"`
	Scraped  string            `yaml:"scraped"`
	Fields   map[string]string `yaml:"fields,omitempty"`
}

// FormatArticle formats an article with YAML frontmatter. Every field but
// BodyField goes into the frontmatter.
func FormatArticle(a *scrapetmpl.Article) (string, error) {
	fm := frontmatter{
		Source:   a.URL,
		Domain:   a.Domain,
		Template: a.TemplateID,
		Format:   string(a.Format),
		Scraped:  a.ScrapedAt.UTC().Format(time.RFC3339),
	}
	for k, v := range a.Fields {
		if k == BodyField {
			continue
		}
		if fm.Fields == nil {
			fm.Fields = make(map[string]string)
		}
		fm.Fields[k] = v
	}

	var b bytes.Buffer
	b.WriteString("---\n")
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(fm); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	b.WriteString("---\n\n")
	if body := a.Fields[BodyField]; body != "" {
		b.WriteString(body)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// Ensure Writer implements scrapetmpl.ArticleWriter at compile time.
var _ scrapetmpl.ArticleWriter = (*Writer)(nil)

// Writer writes articles as files to a directory.
type Writer struct {
	baseDir string
}

// NewWriter creates a new Writer that writes to the given base directory.
func NewWriter(baseDir string) *Writer {
	return &Writer{baseDir: baseDir}
}

// WriteArticle writes an article to disk, replacing any earlier file for
// the same URL and format.
func (w *Writer) WriteArticle(ctx context.Context, a *scrapetmpl.Article) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := a.Validate(); err != nil {
		return err
	}

	relPath, err := ArticlePath(a.URL, a.Format)
	if err != nil {
		return err
	}
	fullPath := filepath.Join(w.baseDir, relPath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}

	content, err := FormatArticle(a)
	if err != nil {
		return err
	}
	return os.WriteFile(fullPath, []byte(content), 0644)
}
