// Package content locates the input files for a synthesis run.
package content

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// ErrNotFound is returned when the input path does not exist.
var ErrNotFound = errors.New("path not found")

// DefaultGlob is the file pattern matched when none is given.
const DefaultGlob = "*.md"

// Locate produces the ordered set of input files for path.
//
// A path naming an existing file returns a one-element slice regardless of
// glob. A directory is expanded by matching glob against file base names;
// recursive controls whether subdirectories are descended. The result is
// ordered lexicographically by full path so batch runs are reproducible.
func Locate(path string, recursive bool, glob string) ([]string, error) {
	if glob == "" {
		glob = DefaultGlob
	}
	// Reject a malformed glob up front rather than silently matching
	// nothing file by file.
	if _, err := filepath.Match(glob, ""); err != nil {
		return nil, fmt.Errorf("invalid glob %q: %w", glob, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	if recursive {
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			ok, err := filepath.Match(glob, d.Name())
			if err != nil {
				return err
			}
			if ok {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", path, err)
		}
	} else {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("read dir %s: %w", path, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			ok, err := filepath.Match(glob, entry.Name())
			if err != nil {
				return nil, err
			}
			if ok {
				files = append(files, filepath.Join(path, entry.Name()))
			}
		}
	}

	sort.Strings(files)
	return files, nil
}
