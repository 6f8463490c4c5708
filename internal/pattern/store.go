package pattern

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"
)

const (
	lockTimeout = 5 * time.Second
	fileMode    = 0644
	dirMode     = 0755
)

// ErrNoCacheEntry is returned by CacheStore.Read when no entry exists.
var ErrNoCacheEntry = errors.New("no cached catalog")

// ErrLockTimeout is returned when the cache file lock cannot be acquired.
var ErrLockTimeout = errors.New("failed to acquire cache lock")

// CacheStore persists the most recently fetched catalog.
//
//go:generate go run github.com/matryer/moq@latest -pkg mocks -out mocks/store.go . CacheStore
type CacheStore interface {
	// Read returns the cached catalog.
	// Returns ErrNoCacheEntry if no entry exists.
	Read(ctx context.Context) (*Catalog, error)

	// Write replaces the cache entry. The write is atomic: a concurrent
	// reader never observes a partially written entry.
	Write(ctx context.Context, catalog *Catalog) error

	// Clear removes the cache entry. Clearing a missing entry is not an
	// error.
	Clear(ctx context.Context) error
}

// jsonStore is a JSON-file-backed CacheStore.
type jsonStore struct {
	path string
	mu   sync.RWMutex
}

// NewStore creates a JSON-file-backed cache store at path.
func NewStore(path string) *jsonStore {
	return &jsonStore{path: path}
}

func (s *jsonStore) Read(ctx context.Context) (*Catalog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoCacheEntry
		}
		return nil, fmt.Errorf("%w: %v", ErrCache, err)
	}
	defer s.unlockAndClose(file)

	if err := s.acquireLock(ctx, file, syscall.LOCK_SH); err != nil {
		return nil, err
	}

	var catalog Catalog
	if err := json.NewDecoder(file).Decode(&catalog); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrCache, s.path, err)
	}
	return &catalog, nil
}

func (s *jsonStore) Write(ctx context.Context, catalog *Catalog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	// Write to a temp file, then rename into place so a reader never
	// observes a half-written entry.
	tmp, err := os.CreateTemp(dir, "patterns-*.json.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	defer func() {
		if tmpPath != "" {
			os.Remove(tmpPath)
		}
	}()

	encoder := json.NewEncoder(tmp)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(catalog); err != nil {
		tmp.Close()
		return fmt.Errorf("encode catalog: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Chmod(tmpPath, fileMode); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("rename cache file: %w", err)
	}

	tmpPath = "" // Prevent cleanup
	return nil
}

func (s *jsonStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove cache file: %w", err)
	}
	return nil
}

// acquireLock attempts to acquire a file lock with timeout.
func (s *jsonStore) acquireLock(ctx context.Context, file *os.File, lockType int) error {
	deadline := time.Now().Add(lockTimeout)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := syscall.Flock(int(file.Fd()), lockType|syscall.LOCK_NB)
		if err == nil {
			return nil
		}

		if err != syscall.EWOULDBLOCK {
			return fmt.Errorf("acquire file lock: %w", err)
		}

		if time.Now().After(deadline) {
			return ErrLockTimeout
		}

		time.Sleep(10 * time.Millisecond)
	}
}

// unlockAndClose releases the lock and closes the file.
func (s *jsonStore) unlockAndClose(file *os.File) {
	syscall.Flock(int(file.Fd()), syscall.LOCK_UN)
	file.Close()
}

// memoryStore is an in-memory CacheStore for tests and dry runs.
type memoryStore struct {
	mu      sync.RWMutex
	catalog *Catalog
}

// NewMemoryStore creates a CacheStore that holds the catalog in memory.
func NewMemoryStore() *memoryStore {
	return &memoryStore{}
}

func (s *memoryStore) Read(_ context.Context) (*Catalog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.catalog == nil {
		return nil, ErrNoCacheEntry
	}
	c := *s.catalog
	c.Patterns = append([]Pattern(nil), s.catalog.Patterns...)
	return &c, nil
}

func (s *memoryStore) Write(_ context.Context, catalog *Catalog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *catalog
	c.Patterns = append([]Pattern(nil), catalog.Patterns...)
	s.catalog = &c
	return nil
}

func (s *memoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.catalog = nil
	return nil
}
