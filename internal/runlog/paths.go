// Package runlog provides per-run log files for synthesis batches.
package runlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// PathManager handles run log path construction and directory management.
type PathManager struct {
	baseDir string
}

// NewPathManager creates a PathManager with the given base directory.
// The base directory is typically ~/.local/share/ksynth/logs.
func NewPathManager(baseDir string) *PathManager {
	return &PathManager{baseDir: baseDir}
}

// BaseDir returns the base log directory.
func (p *PathManager) BaseDir() string {
	return p.baseDir
}

// RunLogPath returns the full path for a run's log file.
// Path format: <baseDir>/<runName>.log
func (p *PathManager) RunLogPath(runName string) string {
	return filepath.Join(p.baseDir, runName+".log")
}

// EnsureRunLog ensures the log directory exists and returns the log file
// path for the run.
func (p *PathManager) EnsureRunLog(runName string) (string, error) {
	if err := os.MkdirAll(p.baseDir, 0o750); err != nil {
		return "", fmt.Errorf("create run log directory: %w", err)
	}
	return p.RunLogPath(runName), nil
}

// Exists checks if a log file exists for the given run.
func (p *PathManager) Exists(runName string) bool {
	_, err := os.Stat(p.RunLogPath(runName))
	return err == nil
}

// ListRuns returns the run names that have log files, most recent first.
func (p *PathManager) ListRuns() ([]string, error) {
	entries, err := os.ReadDir(p.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read run log directory: %w", err)
	}

	type logEntry struct {
		name  string
		mtime int64
	}

	var logs []logEntry
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".log" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		name := entry.Name()
		logs = append(logs, logEntry{
			name:  name[:len(name)-len(".log")],
			mtime: info.ModTime().UnixNano(),
		})
	}

	sort.Slice(logs, func(i, j int) bool { return logs[i].mtime > logs[j].mtime })

	runs := make([]string, len(logs))
	for i, l := range logs {
		runs[i] = l.name
	}
	return runs, nil
}

// Latest returns the most recently written run name, or empty string if
// no logs exist.
func (p *PathManager) Latest() (string, error) {
	runs, err := p.ListRuns()
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", nil
	}
	return runs[0], nil
}
