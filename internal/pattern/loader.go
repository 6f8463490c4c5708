package pattern

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/edu-ap/knowledge-synthesizer/internal/slogger"
)

// LoaderConfig configures a Loader.
type LoaderConfig struct {
	// TTL is the maximum cache age served without re-fetching.
	// Defaults to DefaultTTL.
	TTL time.Duration

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Loader serves pattern catalogs, preferring a fresh local cache over the
// remote source.
type Loader struct {
	source Source
	cache  CacheStore
	ttl    time.Duration
	now    func() time.Time
}

// NewLoader creates a Loader over the given source and cache store.
func NewLoader(source Source, cache CacheStore, cfg LoaderConfig) *Loader {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Loader{
		source: source,
		cache:  cache,
		ttl:    cfg.TTL,
		now:    cfg.Now,
	}
}

// Get returns the active catalog for this run.
//
// With bypass false, a cached catalog younger than the TTL is returned
// without any network access. Otherwise the remote source is fetched and
// the result persisted as the new cache entry. If the fetch fails but a
// stale cache exists, the stale catalog is returned with a warning logged;
// availability wins over freshness. If the fetch fails and no cache exists,
// the error wraps ErrFetch.
func (l *Loader) Get(ctx context.Context, bypass bool) (*Catalog, error) {
	log := slogger.FromContext(ctx)

	var cached *Catalog
	if !bypass {
		var err error
		cached, err = l.cache.Read(ctx)
		switch {
		case err == nil:
			if cached.Fresh(l.ttl, l.now()) {
				log.Debug("serving fresh pattern cache",
					slog.Time("fetched_at", cached.FetchedAt),
					slog.Int("patterns", len(cached.Patterns)))
				return cached, nil
			}
		case errors.Is(err, ErrNoCacheEntry):
			// Absent cache is not an error; fall through to fetch.
		default:
			// Corrupt cache is recoverable via re-fetch.
			log.Warn("pattern cache unreadable, re-fetching", slog.Any("error", err))
		}
	}

	catalog, fetchErr := l.source.Fetch(ctx)
	if fetchErr != nil {
		if cached != nil {
			log.Warn("pattern fetch failed, using stale cache",
				slog.Time("fetched_at", cached.FetchedAt),
				slog.Any("error", fetchErr))
			return cached, nil
		}
		return nil, fmt.Errorf("load patterns: %w", fetchErr)
	}

	if err := l.cache.Write(ctx, catalog); err != nil {
		// A cache write failure degrades future runs but not this one.
		log.Warn("failed to persist pattern cache", slog.Any("error", err))
	}

	log.Debug("fetched pattern catalog", slog.Int("patterns", len(catalog.Patterns)))
	return catalog, nil
}
