// Package filter compiles listing query parameters into a record predicate.
package filter

import (
	"strings"

	"github.com/kansei-cloud/docket/internal/domain/document"
)

// Filter is a conjunction of per-parameter clauses. The zero value matches
// every record.
type Filter struct {
	clauses []func(document.Document) bool
}

// Compile builds a Filter from listing query parameters. Recognized keys:
// "category"/"topCategory" (exact match on the record's topCategory),
// "categories" (comma-separated list, record matches when its categories
// contain any of the supplied identifiers), "title" (case-sensitive
// substring). Absent or empty parameters contribute no clause.
func Compile(params map[string]string) Filter {
	var f Filter

	category := params["category"]
	if category == "" {
		category = params["topCategory"]
	}
	if category != "" {
		f.clauses = append(f.clauses, topCategoryEquals(category))
	}

	if raw := params["categories"]; raw != "" {
		if wanted := splitCSV(raw); len(wanted) > 0 {
			f.clauses = append(f.clauses, categoriesContainAny(wanted))
		}
	}

	if title := params["title"]; title != "" {
		f.clauses = append(f.clauses, titleContains(title))
	}

	return f
}

// WithStatus returns a copy of f with an additional exact status clause.
func (f Filter) WithStatus(s document.Status) Filter {
	clauses := make([]func(document.Document) bool, len(f.clauses), len(f.clauses)+1)
	copy(clauses, f.clauses)
	clauses = append(clauses, func(d document.Document) bool { return d.Status == s })
	return Filter{clauses: clauses}
}

// Matches evaluates the conjunction against one record.
func (f Filter) Matches(d document.Document) bool {
	for _, clause := range f.clauses {
		if !clause(d) {
			return false
		}
	}
	return true
}

// IsEmpty reports whether the filter is unconstrained.
func (f Filter) IsEmpty() bool { return len(f.clauses) == 0 }

func topCategoryEquals(v string) func(document.Document) bool {
	return func(d document.Document) bool { return d.TopCategory == v }
}

func categoriesContainAny(wanted []string) func(document.Document) bool {
	set := make(map[string]struct{}, len(wanted))
	for _, w := range wanted {
		set[w] = struct{}{}
	}
	return func(d document.Document) bool {
		for _, c := range d.Categories {
			if _, ok := set[c]; ok {
				return true
			}
		}
		return false
	}
}

func titleContains(v string) func(document.Document) bool {
	return func(d document.Document) bool { return strings.Contains(d.Title, v) }
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
