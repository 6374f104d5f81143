package score

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/scrapetmpl"
)

// Issue and Recommendation are reported for every flagged field.
const (
	Issue          = "Low quality or success rate"
	Recommendation = "Consider updating CSS selector for better reliability"
)

// FieldPerformance describes one field of one test run.
type FieldPerformance struct {
	HasData bool    `json:"has_data"`
	Found   int     `json:"found_elements"`
	Valid   bool    `json:"is_valid"`
	Length  int     `json:"data_length"`
	Quality float64 `json:"quality_score"`
}

// Performance computes per-field performance from an extraction and the
// matching selector checks.
func Performance(res *scrapetmpl.ExtractionResult, checks map[string]scrapetmpl.SelectorCheck) map[string]FieldPerformance {
	out := make(map[string]FieldPerformance, len(res.Fields))
	for _, f := range res.Fields {
		check := checks[f.Name]
		value := ""
		if f.Present {
			value = f.Value
		}
		out[f.Name] = FieldPerformance{
			HasData: strings.TrimSpace(value) != "",
			Found:   check.Found,
			Valid:   check.Valid,
			Length:  utf8.RuneCountInString(value),
			Quality: FieldQuality(value, check.Found, check.Valid),
		}
	}
	return out
}

// Run is one test of a template against one URL. Fields is empty when the
// run failed before extraction.
type Run struct {
	URL     string                      `json:"url"`
	Success bool                        `json:"success"`
	Reason  string                      `json:"reason,omitempty"`
	Fields  map[string]FieldPerformance `json:"selector_performance,omitempty"`
}

// Suggestion flags a field whose selector performs poorly.
type Suggestion struct {
	Field          string  `json:"field"`
	Issue          string  `json:"issue"`
	AvgQuality     float64 `json:"avg_quality"`
	SuccessRate    float64 `json:"success_rate"`
	Recommendation string  `json:"recommendation"`
}

// Overall summarizes a set of test runs.
type Overall struct {
	TotalTests      int     `json:"total_tests"`
	SuccessfulTests int     `json:"successful_tests"`
	AvgFieldQuality float64 `json:"avg_field_quality"`
}

// Improvement is the result of analyzing test runs.
type Improvement struct {
	Suggestions []Suggestion `json:"field_suggestions"`
	Overall     Overall      `json:"overall_performance"`
}

// Fields returns the names of the flagged fields.
func (imp *Improvement) Fields() []string {
	out := make([]string, 0, len(imp.Suggestions))
	for _, s := range imp.Suggestions {
		out = append(out, s.Field)
	}
	return out
}

// Analyze aggregates successful runs per field and flags fields whose
// average quality is below MinQuality or whose fraction of runs with data
// is below MinSuccessRate. Suggestions are ordered by field name.
func Analyze(runs []Run) *Improvement {
	perField := make(map[string][]FieldPerformance)
	imp := &Improvement{Suggestions: []Suggestion{}}
	imp.Overall.TotalTests = len(runs)
	for _, r := range runs {
		if !r.Success {
			continue
		}
		imp.Overall.SuccessfulTests++
		for f, p := range r.Fields {
			perField[f] = append(perField[f], p)
		}
	}

	fields := make([]string, 0, len(perField))
	for f := range perField {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var qualitySum float64
	for _, f := range fields {
		ps := perField[f]
		var q float64
		withData := 0
		for _, p := range ps {
			q += p.Quality
			if p.HasData {
				withData++
			}
		}
		avg := q / float64(len(ps))
		rate := float64(withData) / float64(len(ps))
		qualitySum += avg

		if avg < MinQuality || rate < MinSuccessRate {
			imp.Suggestions = append(imp.Suggestions, Suggestion{
				Field:          f,
				Issue:          Issue,
				AvgQuality:     avg,
				SuccessRate:    rate,
				Recommendation: Recommendation,
			})
		}
	}
	if len(fields) > 0 {
		imp.Overall.AvgFieldQuality = qualitySum / float64(len(fields))
	}
	return imp
}
