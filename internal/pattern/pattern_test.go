package pattern

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() *Catalog {
	return &Catalog{
		FetchedAt: time.Now(),
		Patterns: []Pattern{
			{Name: "summarize", Prompt: "Summarize the input."},
			{Name: "extract_wisdom", Prompt: "Extract insights."},
			{Name: "analyze_claims", Prompt: "Analyze claims."},
		},
	}
}

func TestCatalog_Fresh(t *testing.T) {
	now := time.Now()

	t.Run("fresh within ttl", func(t *testing.T) {
		c := &Catalog{FetchedAt: now.Add(-1 * time.Hour)}
		assert.True(t, c.Fresh(24*time.Hour, now))
	})

	t.Run("stale past ttl", func(t *testing.T) {
		c := &Catalog{FetchedAt: now.Add(-25 * time.Hour)}
		assert.False(t, c.Fresh(24*time.Hour, now))
	})

	t.Run("stale exactly at ttl", func(t *testing.T) {
		c := &Catalog{FetchedAt: now.Add(-24 * time.Hour)}
		assert.False(t, c.Fresh(24*time.Hour, now))
	})
}

func TestCatalog_Get(t *testing.T) {
	c := testCatalog()

	t.Run("returns pattern by name", func(t *testing.T) {
		p, ok := c.Get("summarize")
		require.True(t, ok)
		assert.Equal(t, "Summarize the input.", p.Prompt)
	})

	t.Run("missing name", func(t *testing.T) {
		_, ok := c.Get("nope")
		assert.False(t, ok)
	})
}

func TestCatalog_Names(t *testing.T) {
	c := testCatalog()

	assert.Equal(t, []string{"summarize", "extract_wisdom", "analyze_claims"}, c.Names())
}

func TestCatalog_Merge(t *testing.T) {
	t.Run("appends new patterns", func(t *testing.T) {
		c := testCatalog()
		merged := c.Merge([]Pattern{{Name: "custom", Prompt: "Custom prompt."}})

		assert.Equal(t, []string{"summarize", "extract_wisdom", "analyze_claims", "custom"}, merged.Names())
	})

	t.Run("replaces colliding names in place", func(t *testing.T) {
		c := testCatalog()
		merged := c.Merge([]Pattern{{Name: "summarize", Prompt: "Local override."}})

		assert.Equal(t, []string{"summarize", "extract_wisdom", "analyze_claims"}, merged.Names())
		p, ok := merged.Get("summarize")
		require.True(t, ok)
		assert.Equal(t, "Local override.", p.Prompt)
	})

	t.Run("does not mutate the receiver", func(t *testing.T) {
		c := testCatalog()
		c.Merge([]Pattern{{Name: "summarize", Prompt: "Local override."}})

		p, ok := c.Get("summarize")
		require.True(t, ok)
		assert.Equal(t, "Summarize the input.", p.Prompt)
	})

	t.Run("empty local is a copy", func(t *testing.T) {
		c := testCatalog()
		merged := c.Merge(nil)

		assert.Equal(t, c.Names(), merged.Names())
		assert.Equal(t, c.FetchedAt, merged.FetchedAt)
	})
}

func TestResolve(t *testing.T) {
	t.Run("all expands in catalog order", func(t *testing.T) {
		got, err := Resolve([]string{SelectAll}, testCatalog())

		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "summarize", got[0].Name)
		assert.Equal(t, "extract_wisdom", got[1].Name)
		assert.Equal(t, "analyze_claims", got[2].Name)
	})

	t.Run("output follows requested order", func(t *testing.T) {
		got, err := Resolve([]string{"analyze_claims", "summarize"}, testCatalog())

		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "analyze_claims", got[0].Name)
		assert.Equal(t, "summarize", got[1].Name)
	})

	t.Run("duplicates collapse to first occurrence", func(t *testing.T) {
		got, err := Resolve([]string{"summarize", "analyze_claims", "summarize"}, testCatalog())

		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "summarize", got[0].Name)
		assert.Equal(t, "analyze_claims", got[1].Name)
	})

	t.Run("unknown pattern fails whole selection", func(t *testing.T) {
		_, err := Resolve([]string{"summarize", "nope"}, testCatalog())

		var unknownErr *UnknownPatternError
		require.ErrorAs(t, err, &unknownErr)
		assert.Equal(t, "nope", unknownErr.Name)
	})

	t.Run("close misspelling gets a suggestion", func(t *testing.T) {
		_, err := Resolve([]string{"sumarize"}, testCatalog())

		var unknownErr *UnknownPatternError
		require.ErrorAs(t, err, &unknownErr)
		assert.Contains(t, unknownErr.Suggestions, "summarize")
		assert.Contains(t, unknownErr.Error(), "did you mean")
	})

	t.Run("empty request resolves to empty list", func(t *testing.T) {
		got, err := Resolve(nil, testCatalog())

		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestEditDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "abc", 0},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"summarize", "sumarize", 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, editDistance(tt.a, tt.b), "editDistance(%q, %q)", tt.a, tt.b)
	}
}
