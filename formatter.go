package scrapetmpl

import "strings"

// OutputFormat is the representation scraped values are returned in.
type OutputFormat string

const (
	FormatHTML       OutputFormat = "html"
	FormatPlaintext  OutputFormat = "plaintext"
	FormatMarkdown   OutputFormat = "markdown"
	FormatCommonmark OutputFormat = "commonmark"
)

// ParseOutputFormat returns the format named by s. Empty means FormatHTML.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatHTML, nil
	case FormatHTML, FormatPlaintext, FormatMarkdown, FormatCommonmark:
		return f, nil
	}
	return "", Errorf(EINVALID, "unknown output format %q", s)
}

// Formatter converts a serialized field value to another representation.
type Formatter interface {
	Format(html string) (string, error)
}

// FormatterFunc adapts a function to Formatter.
type FormatterFunc func(html string) (string, error)

// Format calls f(html).
func (f FormatterFunc) Format(html string) (string, error) {
	return f(html)
}

// Formatters maps output formats to their formatter. FormatHTML needs no
// entry; values are passed through unchanged.
type Formatters map[OutputFormat]Formatter

// Apply formats every value. A value whose formatter fails is kept as is.
func (fs Formatters) Apply(format OutputFormat, values map[string]string) (map[string]string, error) {
	if format == FormatHTML || format == "" {
		out := make(map[string]string, len(values))
		for k, v := range values {
			out[k] = v
		}
		return out, nil
	}
	f, ok := fs[format]
	if !ok {
		return nil, Errorf(EINVALID, "output format %q not available", format)
	}
	out := make(map[string]string, len(values))
	for k, v := range values {
		formatted, err := f.Format(v)
		if err != nil {
			out[k] = v
			continue
		}
		out[k] = formatted
	}
	return out, nil
}
