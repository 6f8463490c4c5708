package runlog

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRunLog(t *testing.T, p *PathManager, run string, lines int) {
	t.Helper()

	var b strings.Builder
	for i := 1; i <= lines; i++ {
		fmt.Fprintf(&b, "line %d\n", i)
	}
	require.NoError(t, os.WriteFile(p.RunLogPath(run), []byte(b.String()), 0o644))
}

func TestReader_ReadAll(t *testing.T) {
	p := NewPathManager(t.TempDir())
	r := NewReader(p)

	t.Run("reads every line", func(t *testing.T) {
		writeRunLog(t, p, "full", 5)

		lines, err := r.ReadAll("full")

		require.NoError(t, err)
		require.Len(t, lines, 5)
		assert.Equal(t, "line 1", lines[0])
		assert.Equal(t, "line 5", lines[4])
	})

	t.Run("missing run is an error", func(t *testing.T) {
		_, err := r.ReadAll("nope")

		assert.Error(t, err)
	})
}

func TestReader_ReadLastN(t *testing.T) {
	p := NewPathManager(t.TempDir())
	r := NewReader(p)

	t.Run("keeps only the tail", func(t *testing.T) {
		writeRunLog(t, p, "tail", 10)

		lines, err := r.ReadLastN("tail", 3)

		require.NoError(t, err)
		assert.Equal(t, []string{"line 8", "line 9", "line 10"}, lines)
	})

	t.Run("short file returns everything", func(t *testing.T) {
		writeRunLog(t, p, "short", 2)

		lines, err := r.ReadLastN("short", 100)

		require.NoError(t, err)
		assert.Len(t, lines, 2)
	})

	t.Run("non-positive n uses the default", func(t *testing.T) {
		writeRunLog(t, p, "deflt", DefaultTailLines+20)

		lines, err := r.ReadLastN("deflt", 0)

		require.NoError(t, err)
		assert.Len(t, lines, DefaultTailLines)
		assert.Equal(t, "line 21", lines[0])
	})
}
