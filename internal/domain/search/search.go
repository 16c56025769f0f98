// Package search defines retrieval hits and their reconciled results.
package search

import (
	"path"
	"strings"
)

// Hit is one ranked chunk returned by the retrieval backend. It exists only
// for the duration of a single search request.
type Hit struct {
	Locator  string
	Text     string
	Score    float64
	Metadata map[string]any
}

// Result is a hit reconciled to catalog record identity.
type Result struct {
	DocumentID string         `json:"documentId"`
	Title      string         `json:"title,omitempty"`
	Content    string         `json:"content"`
	Score      float64        `json:"score"`
	Locator    string         `json:"locator"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// StorageKey derives the object-store key from a hit locator by stripping
// the scheme and bucket prefix: "s3://bucket/documents/x.pdf" yields
// "documents/x.pdf". Locators without a scheme are taken as keys verbatim.
func StorageKey(locator string) string {
	rest, ok := strings.CutPrefix(locator, schemePrefix(locator))
	if !ok || rest == locator {
		return strings.TrimPrefix(locator, "/")
	}
	_, key, found := strings.Cut(rest, "/")
	if !found {
		return ""
	}
	return key
}

// FallbackIdentity derives a best-effort document identity from the
// locator's filename with its extension stripped. Returns "" when the
// locator carries no filename component.
func FallbackIdentity(locator string) string {
	base := path.Base(strings.TrimSuffix(StorageKey(locator), "/"))
	if base == "." || base == "/" || base == "" {
		return ""
	}
	return strings.TrimSuffix(base, path.Ext(base))
}

func schemePrefix(locator string) string {
	i := strings.Index(locator, "://")
	if i < 0 {
		return ""
	}
	return locator[:i+3]
}
