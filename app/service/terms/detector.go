// Package terms detects medical terminology in free-form patient messages.
package terms

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Default pattern table. Keys are category names, values are word-boundary
// regexps applied to the lowercased message.
var defaultPatterns = map[string]string{
	"symptom":   `\b(pain|fever|cough|headache|nausea|vomiting|fatigue|dizziness|rash|swelling)\b`,
	"condition": `\b(diabetes|hypertension|asthma|arthritis|infection|inflammation|allergy|migraine)\b`,
	"severity":  `\b(severe|mild|moderate|acute|chronic|emergency|urgent)\b`,
	"duration":  `\b(\d+\s+(?:day|week|month|year)s?|sudden|gradual|persistent|intermittent)\b`,
}

type category struct {
	name    string
	pattern *regexp.Regexp
}

type Detector struct {
	categories []category
}

// NewDetector compiles the given pattern table. An empty table falls back to
// the built-in categories.
func NewDetector(patterns map[string]string) (*Detector, error) {
	if len(patterns) == 0 {
		patterns = defaultPatterns
	}

	names := make([]string, 0, len(patterns))
	for name := range patterns {
		names = append(names, name)
	}
	sort.Strings(names)

	categories := make([]category, 0, len(names))
	for _, name := range names {
		re, err := regexp.Compile(patterns[name])
		if err != nil {
			return nil, fmt.Errorf("failed to compile pattern for category %q: %w", name, err)
		}
		categories = append(categories, category{name: name, pattern: re})
	}

	return &Detector{categories: categories}, nil
}

// Detect scans text against every category and returns a mapping from
// category name to matched terms. Matching is case-insensitive; matches are
// deduplicated keeping the order of first occurrence. Categories without a
// match are omitted from the result entirely.
func (d *Detector) Detect(text string) map[string][]string {
	lowered := strings.ToLower(text)

	result := make(map[string][]string)

	for _, c := range d.categories {
		matches := c.pattern.FindAllString(lowered, -1)
		if len(matches) == 0 {
			continue
		}

		seen := make(map[string]bool, len(matches))
		terms := make([]string, 0, len(matches))
		for _, m := range matches {
			if seen[m] {
				continue
			}
			seen[m] = true
			terms = append(terms, m)
		}

		result[c.name] = terms
	}

	return result
}
