package main

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeFields prints a field map in name order, one field per block.
func writeFields(w io.Writer, values map[string]string) {
	names := make([]string, 0, len(values))
	for k := range values {
		names = append(names, k)
	}
	slices.Sort(names)
	for _, n := range names {
		v := strings.TrimSpace(values[n])
		if strings.Contains(v, "\n") {
			fmt.Fprintf(w, "%s:\n%s\n\n", n, indent(v, "  "))
			continue
		}
		fmt.Fprintf(w, "%s: %s\n", n, v)
	}
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

func percent(f float64) string {
	return fmt.Sprintf("%.0f%%", f*100)
}
