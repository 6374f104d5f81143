// Package score implements the confidence and quality model used to accept,
// rank and improve selector templates. Every function is pure.
package score

import (
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/scrapetmpl"
)

// Thresholds of the scoring model.
const (
	// MinQuality is the average field quality below which a field is
	// flagged for improvement.
	MinQuality = 0.5
	// MinSuccessRate is the fraction of runs with data below which a field
	// is flagged for improvement.
	MinSuccessRate = 0.7
	// RunSuccessThreshold is the fraction of non-blank fields at which a
	// scrape run counts as successful.
	RunSuccessThreshold = 0.5
	// minValueLength is the serialized length a value must exceed to earn
	// the length bonus.
	minValueLength = 10
)

// semanticKeywords earn a selector a single bonus when any of them appears.
var semanticKeywords = []string{"title", "author", "date", "content", "article", "post", "byline"}

// Confidence estimates how reliable a selector is from its structure alone.
// The result is in [0, 1]; unresolved selectors score 0.
func Confidence(selector string) float64 {
	if scrapetmpl.IsUnresolved(selector) {
		return 0
	}

	tenths := 5
	if strings.Contains(selector, ".") {
		tenths += 2
	}
	if strings.Contains(selector, "#") {
		tenths += 3
	}
	lower := strings.ToLower(selector)
	for _, k := range semanticKeywords {
		if strings.Contains(lower, k) {
			tenths++
			break
		}
	}
	if strings.Contains(selector, ",") {
		tenths++
	}
	return fromTenths(tenths)
}

// FieldQuality measures how usable an extracted value is.
func FieldQuality(value string, matched int, valid bool) float64 {
	var tenths int
	if strings.TrimSpace(value) != "" {
		tenths += 4
	}
	if matched > 0 {
		tenths += 3
	}
	if valid {
		tenths += 2
	}
	if utf8.RuneCountInString(value) > minValueLength {
		tenths++
	}
	return fromTenths(tenths)
}

// TemplateConfidence is the mean of per-field selector confidences.
func TemplateConfidence(confidences map[string]float64) float64 {
	if len(confidences) == 0 {
		return 0
	}
	var sum float64
	for _, c := range confidences {
		sum += c
	}
	return sum / float64(len(confidences))
}

// Filled returns the fraction of fields that have a non-blank value.
func Filled(values map[string]string, fields []string) float64 {
	if len(fields) == 0 {
		return 0
	}
	n := 0
	for _, f := range fields {
		if strings.TrimSpace(values[f]) != "" {
			n++
		}
	}
	return float64(n) / float64(len(fields))
}

// RunSuccess reports whether at least half of fields have a non-blank value.
func RunSuccess(values map[string]string, fields []string) bool {
	if len(fields) == 0 {
		return false
	}
	return Filled(values, fields) >= RunSuccessThreshold
}

// SuccessScore is the fraction of schema fields extracted with data.
func SuccessScore(values map[string]string, schema scrapetmpl.Schema) float64 {
	return Filled(values, schema.Names())
}

// UpdateUsage applies one scrape outcome to usage statistics as an exact
// running average.
func UpdateUsage(count int, rate float64, success bool) (int, float64) {
	n := count + 1
	total := rate * float64(count)
	if success {
		total++
	}
	return n, total / float64(n)
}

// fromTenths converts a score kept in integer tenths, so that sums of the
// weights compare exactly against decimal thresholds.
func fromTenths(n int) float64 {
	return clamp(float64(n) / 10)
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
