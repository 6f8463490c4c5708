package pattern

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Default endpoints for the Fabric pattern repository.
const (
	DefaultListingURL = "https://api.github.com/repos/danielmiessler/fabric/contents/patterns"
	DefaultRawBaseURL = "https://raw.githubusercontent.com/danielmiessler/fabric/main/patterns"
)

// maxPromptBytes caps how much of a single pattern body is read.
const maxPromptBytes = 1 << 20

// Source fetches the full pattern catalog from a remote source.
//
//go:generate go run github.com/matryer/moq@latest -pkg mocks -out mocks/source.go . Source
type Source interface {
	// Fetch retrieves the catalog. The returned catalog's FetchedAt is
	// set to the fetch time.
	Fetch(ctx context.Context) (*Catalog, error)
}

// SourceConfig configures the GitHub-backed pattern source.
type SourceConfig struct {
	// ListingURL is the directory-listing endpoint (GitHub contents API).
	ListingURL string

	// RawBaseURL is the base URL for raw pattern bodies. The prompt for
	// pattern <name> lives at <RawBaseURL>/<name>/system.md.
	RawBaseURL string

	// HTTPClient is the client used for all requests. Defaults to a
	// client with a 30s timeout.
	HTTPClient *http.Client

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// githubSource fetches patterns from the Fabric repository layout: a
// directory listing plus one system.md per pattern.
type githubSource struct {
	listingURL string
	rawBaseURL string
	client     *http.Client
	now        func() time.Time
}

// NewSource creates a pattern source for the given configuration.
func NewSource(cfg SourceConfig) Source {
	if cfg.ListingURL == "" {
		cfg.ListingURL = DefaultListingURL
	}
	if cfg.RawBaseURL == "" {
		cfg.RawBaseURL = DefaultRawBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &githubSource{
		listingURL: cfg.ListingURL,
		rawBaseURL: strings.TrimSuffix(cfg.RawBaseURL, "/"),
		client:     cfg.HTTPClient,
		now:        cfg.Now,
	}
}

// listingItem is one entry in the GitHub contents API response.
type listingItem struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func (s *githubSource) Fetch(ctx context.Context) (*Catalog, error) {
	names, err := s.listPatterns(ctx)
	if err != nil {
		return nil, err
	}

	catalog := &Catalog{FetchedAt: s.now()}
	for _, name := range names {
		prompt, err := s.fetchPrompt(ctx, name)
		if err != nil {
			// A single missing pattern body does not invalidate the
			// catalog; skip it.
			continue
		}
		catalog.Patterns = append(catalog.Patterns, Pattern{
			Name:   name,
			Prompt: prompt,
		})
	}

	if len(catalog.Patterns) == 0 {
		return nil, fmt.Errorf("%w: source returned no usable patterns", ErrEmptyCatalog)
	}
	return catalog, nil
}

// listPatterns fetches the pattern directory listing.
func (s *githubSource) listPatterns(ctx context.Context) ([]string, error) {
	body, err := s.get(ctx, s.listingURL)
	if err != nil {
		return nil, err
	}

	var items []listingItem
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("%w: decode listing: %v", ErrFetch, err)
	}

	var names []string
	for _, item := range items {
		if item.Type == "dir" {
			names = append(names, item.Name)
		}
	}
	return names, nil
}

// fetchPrompt fetches the prompt body for a single pattern.
func (s *githubSource) fetchPrompt(ctx context.Context, name string) (string, error) {
	body, err := s.get(ctx, s.rawBaseURL+"/"+name+"/system.md")
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// get performs a GET and maps transport failures to ErrFetch.
func (s *githubSource) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: GET %s: status %d", ErrFetch, url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPromptBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrFetch, err)
	}
	return body, nil
}
