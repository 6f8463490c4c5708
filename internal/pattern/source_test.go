package pattern_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edu-ap/knowledge-synthesizer/internal/pattern"
)

// fakePatternRepo serves the GitHub contents listing plus raw prompt
// bodies the way the Fabric repository lays them out.
func fakePatternRepo(t *testing.T, prompts map[string]string, extras []map[string]string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/contents/patterns", func(w http.ResponseWriter, r *http.Request) {
		var listing []map[string]string
		for name := range prompts {
			listing = append(listing, map[string]string{"name": name, "type": "dir"})
		}
		listing = append(listing, extras...)
		require.NoError(t, json.NewEncoder(w).Encode(listing))
	})
	mux.HandleFunc("/raw/", func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/raw/"), "/")
		prompt, ok := prompts[parts[0]]
		if !ok || prompt == "" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(prompt))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestSource_Fetch(t *testing.T) {
	ctx := context.Background()

	t.Run("fetches listing and prompt bodies", func(t *testing.T) {
		server := fakePatternRepo(t, map[string]string{
			"summarize": "Summarize the input.",
		}, nil)

		now := time.Now()
		source := pattern.NewSource(pattern.SourceConfig{
			ListingURL: server.URL + "/contents/patterns",
			RawBaseURL: server.URL + "/raw",
			Now:        func() time.Time { return now },
		})

		got, err := source.Fetch(ctx)

		require.NoError(t, err)
		assert.True(t, got.FetchedAt.Equal(now))
		require.Len(t, got.Patterns, 1)
		assert.Equal(t, "summarize", got.Patterns[0].Name)
		assert.Equal(t, "Summarize the input.", got.Patterns[0].Prompt)
	})

	t.Run("non-directory listing entries are ignored", func(t *testing.T) {
		server := fakePatternRepo(t, map[string]string{
			"summarize": "Summarize.",
		}, []map[string]string{
			{"name": "README.md", "type": "file"},
		})

		source := pattern.NewSource(pattern.SourceConfig{
			ListingURL: server.URL + "/contents/patterns",
			RawBaseURL: server.URL + "/raw",
		})

		got, err := source.Fetch(ctx)

		require.NoError(t, err)
		assert.Equal(t, []string{"summarize"}, got.Names())
	})

	t.Run("pattern with missing body is skipped", func(t *testing.T) {
		server := fakePatternRepo(t, map[string]string{
			"summarize": "Summarize.",
			"broken":    "",
		}, nil)

		source := pattern.NewSource(pattern.SourceConfig{
			ListingURL: server.URL + "/contents/patterns",
			RawBaseURL: server.URL + "/raw",
		})

		got, err := source.Fetch(ctx)

		require.NoError(t, err)
		assert.Equal(t, []string{"summarize"}, got.Names())
	})

	t.Run("empty catalog is an error", func(t *testing.T) {
		server := fakePatternRepo(t, map[string]string{}, nil)

		source := pattern.NewSource(pattern.SourceConfig{
			ListingURL: server.URL + "/contents/patterns",
			RawBaseURL: server.URL + "/raw",
		})

		_, err := source.Fetch(ctx)

		assert.ErrorIs(t, err, pattern.ErrEmptyCatalog)
	})

	t.Run("listing failure wraps ErrFetch", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "rate limited", http.StatusForbidden)
		}))
		t.Cleanup(server.Close)

		source := pattern.NewSource(pattern.SourceConfig{
			ListingURL: server.URL + "/contents/patterns",
			RawBaseURL: server.URL + "/raw",
		})

		_, err := source.Fetch(ctx)

		assert.ErrorIs(t, err, pattern.ErrFetch)
	})

	t.Run("unreachable host wraps ErrFetch", func(t *testing.T) {
		source := pattern.NewSource(pattern.SourceConfig{
			ListingURL: "http://127.0.0.1:1/contents/patterns",
			RawBaseURL: "http://127.0.0.1:1/raw",
		})

		_, err := source.Fetch(ctx)

		assert.ErrorIs(t, err, pattern.ErrFetch)
	})
}
