// Package pattern provides the catalog of reusable prompt templates,
// including remote fetching, local caching with a freshness policy, and
// selection of patterns to apply.
package pattern

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Sentinel errors for catalog operations.
var (
	// ErrFetch indicates the remote pattern source is unreachable and no
	// usable cache exists.
	ErrFetch = errors.New("pattern source unreachable")

	// ErrCache indicates the local cache is unreadable or corrupt.
	ErrCache = errors.New("pattern cache unreadable")

	// ErrEmptyCatalog indicates the remote source returned no patterns.
	ErrEmptyCatalog = errors.New("no patterns available")
)

// DefaultTTL is the maximum age at which a cached catalog is served
// without re-fetching.
const DefaultTTL = 24 * time.Hour

// Pattern is a named reusable prompt template.
type Pattern struct {
	Name        string `json:"name" yaml:"name"`
	Prompt      string `json:"prompt" yaml:"prompt"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Catalog is an ordered set of patterns with a fetch timestamp.
// Pattern names are unique within a catalog.
type Catalog struct {
	FetchedAt time.Time `json:"fetched_at"`
	Patterns  []Pattern `json:"patterns"`
}

// Fresh reports whether the catalog is younger than ttl.
func (c *Catalog) Fresh(ttl time.Duration, now time.Time) bool {
	return now.Sub(c.FetchedAt) < ttl
}

// Get returns the pattern with the given name.
func (c *Catalog) Get(name string) (Pattern, bool) {
	for _, p := range c.Patterns {
		if p.Name == name {
			return p, true
		}
	}
	return Pattern{}, false
}

// Names returns the pattern names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.Patterns))
	for i, p := range c.Patterns {
		names[i] = p.Name
	}
	return names
}

// Merge returns a copy of the catalog with the given patterns layered on
// top. A pattern whose name collides with an existing entry replaces it in
// place; new names are appended in their given order.
func (c *Catalog) Merge(local []Pattern) *Catalog {
	merged := &Catalog{
		FetchedAt: c.FetchedAt,
		Patterns:  make([]Pattern, len(c.Patterns)),
	}
	copy(merged.Patterns, c.Patterns)

	for _, p := range local {
		replaced := false
		for i := range merged.Patterns {
			if merged.Patterns[i].Name == p.Name {
				merged.Patterns[i] = p
				replaced = true
				break
			}
		}
		if !replaced {
			merged.Patterns = append(merged.Patterns, p)
		}
	}
	return merged
}

// SelectAll is the sentinel selection that expands to every pattern in
// catalog order.
const SelectAll = "all"

// UnknownPatternError is returned when a requested pattern is absent from
// the catalog. Suggestions holds close matches, if any.
type UnknownPatternError struct {
	Name        string
	Suggestions []string
}

func (e *UnknownPatternError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("unknown pattern %q", e.Name)
	}
	return fmt.Sprintf("unknown pattern %q (did you mean %s?)", e.Name, strings.Join(e.Suggestions, ", "))
}

// Resolve validates the requested pattern names against the catalog and
// expands them to a concrete ordered list. The single element "all"
// expands to every pattern in catalog order; otherwise output order
// matches the requested order. Duplicate requests are collapsed to the
// first occurrence.
func Resolve(requested []string, catalog *Catalog) ([]Pattern, error) {
	if len(requested) == 1 && requested[0] == SelectAll {
		out := make([]Pattern, len(catalog.Patterns))
		copy(out, catalog.Patterns)
		return out, nil
	}

	seen := make(map[string]bool, len(requested))
	out := make([]Pattern, 0, len(requested))
	for _, name := range requested {
		if seen[name] {
			continue
		}
		seen[name] = true

		p, ok := catalog.Get(name)
		if !ok {
			return nil, &UnknownPatternError{
				Name:        name,
				Suggestions: suggest(name, catalog.Names()),
			}
		}
		out = append(out, p)
	}
	return out, nil
}

// suggest returns catalog names that look close to the requested name,
// best matches first.
func suggest(name string, candidates []string) []string {
	type scored struct {
		name string
		dist int
	}

	var matches []scored
	for _, c := range candidates {
		d := editDistance(strings.ToLower(name), strings.ToLower(c))
		// Only offer names within a third of the length as edits.
		if d <= max(len(name), len(c))/3+1 {
			matches = append(matches, scored{c, d})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].dist != matches[j].dist {
			return matches[i].dist < matches[j].dist
		}
		return matches[i].name < matches[j].name
	})

	const maxSuggestions = 3
	out := make([]string, 0, maxSuggestions)
	for _, m := range matches {
		if len(out) == maxSuggestions {
			break
		}
		out = append(out, m.name)
	}
	return out
}

// editDistance computes the Levenshtein distance between two strings.
func editDistance(a, b string) int {
	if a == b {
		return 0
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
