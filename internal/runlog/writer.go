package runlog

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// TeeWriter writes run output to both a primary writer (typically the
// terminal) and a run log file. It implements io.WriteCloser.
type TeeWriter struct {
	primary io.Writer
	logFile *os.File
	mu      sync.Mutex
}

// NewTeeWriter creates a TeeWriter that writes to both the primary writer
// and the given run log path. The log file is created or truncated.
func NewTeeWriter(primary io.Writer, logPath string) (*TeeWriter, error) {
	//nolint:gosec // G304: logPath comes from PathManager, not arbitrary user input
	logFile, err := os.Create(logPath)
	if err != nil {
		return nil, fmt.Errorf("create run log file: %w", err)
	}

	return &TeeWriter{
		primary: primary,
		logFile: logFile,
	}, nil
}

// Write writes data to the log file and, when present, the primary
// writer. A nil primary writes to the log file only.
func (t *TeeWriter) Write(p []byte) (n int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.logFile != nil {
		if _, err := t.logFile.Write(p); err != nil {
			return 0, fmt.Errorf("write to run log: %w", err)
		}
	}

	if t.primary != nil {
		return t.primary.Write(p)
	}
	return len(p), nil
}

// Close closes the log file. The primary writer is not closed.
func (t *TeeWriter) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.logFile != nil {
		if err := t.logFile.Close(); err != nil {
			return fmt.Errorf("close run log: %w", err)
		}
		t.logFile = nil
	}
	return nil
}

// LogPath returns the path of the log file, or empty if closed.
func (t *TeeWriter) LogPath() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.logFile != nil {
		return t.logFile.Name()
	}
	return ""
}
