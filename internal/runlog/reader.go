package runlog

import (
	"bufio"
	"fmt"
	"os"
)

// DefaultTailLines is the default number of lines read when tailing.
const DefaultTailLines = 100

// Reader reads run log files.
type Reader struct {
	pathMgr *PathManager
}

// NewReader creates a Reader over the given PathManager.
func NewReader(pathMgr *PathManager) *Reader {
	return &Reader{pathMgr: pathMgr}
}

// ReadAll reads the entire log file for a run.
func (r *Reader) ReadAll(runName string) ([]string, error) {
	return readLines(r.pathMgr.RunLogPath(runName), 0)
}

// ReadLastN reads the last n lines of a run's log. If n <= 0,
// DefaultTailLines is used.
func (r *Reader) ReadLastN(runName string, n int) ([]string, error) {
	if n <= 0 {
		n = DefaultTailLines
	}
	return readLines(r.pathMgr.RunLogPath(runName), n)
}

// readLines reads all lines of path, keeping only the last n when n > 0.
func readLines(path string, n int) ([]string, error) {
	//nolint:gosec // G304: path comes from PathManager, not arbitrary user input
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open run log: %w", err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
		if n > 0 && len(lines) > n {
			lines = lines[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read run log: %w", err)
	}
	return lines, nil
}
