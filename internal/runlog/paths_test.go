package runlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathManager_RunLogPath(t *testing.T) {
	p := NewPathManager("/var/logs")

	assert.Equal(t, "/var/logs/happy-panda.log", p.RunLogPath("happy-panda"))
	assert.Equal(t, "/var/logs", p.BaseDir())
}

func TestPathManager_EnsureRunLog(t *testing.T) {
	base := filepath.Join(t.TempDir(), "nested", "logs")
	p := NewPathManager(base)

	path, err := p.EnsureRunLog("happy-panda")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "happy-panda.log"), path)

	info, err := os.Stat(base)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestPathManager_Exists(t *testing.T) {
	base := t.TempDir()
	p := NewPathManager(base)

	assert.False(t, p.Exists("happy-panda"))

	require.NoError(t, os.WriteFile(p.RunLogPath("happy-panda"), []byte("log"), 0o644))
	assert.True(t, p.Exists("happy-panda"))
}

func TestPathManager_ListRuns(t *testing.T) {
	t.Run("missing directory lists nothing", func(t *testing.T) {
		p := NewPathManager(filepath.Join(t.TempDir(), "nope"))

		runs, err := p.ListRuns()

		require.NoError(t, err)
		assert.Empty(t, runs)
	})

	t.Run("orders most recent first", func(t *testing.T) {
		base := t.TempDir()
		p := NewPathManager(base)

		older := p.RunLogPath("older")
		newer := p.RunLogPath("newer")
		require.NoError(t, os.WriteFile(older, []byte("a"), 0o644))
		require.NoError(t, os.WriteFile(newer, []byte("b"), 0o644))

		// Make mtimes unambiguous.
		past := time.Now().Add(-time.Hour)
		require.NoError(t, os.Chtimes(older, past, past))

		runs, err := p.ListRuns()

		require.NoError(t, err)
		assert.Equal(t, []string{"newer", "older"}, runs)
	})

	t.Run("ignores non-log entries", func(t *testing.T) {
		base := t.TempDir()
		p := NewPathManager(base)

		require.NoError(t, os.WriteFile(p.RunLogPath("real"), []byte("a"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(base, "notes.txt"), []byte("b"), 0o644))
		require.NoError(t, os.MkdirAll(filepath.Join(base, "subdir.log"), 0o755))

		runs, err := p.ListRuns()

		require.NoError(t, err)
		assert.Equal(t, []string{"real"}, runs)
	})
}

func TestPathManager_Latest(t *testing.T) {
	t.Run("empty directory yields empty name", func(t *testing.T) {
		p := NewPathManager(t.TempDir())

		latest, err := p.Latest()

		require.NoError(t, err)
		assert.Empty(t, latest)
	})

	t.Run("returns the newest run", func(t *testing.T) {
		base := t.TempDir()
		p := NewPathManager(base)

		older := p.RunLogPath("older")
		require.NoError(t, os.WriteFile(older, []byte("a"), 0o644))
		past := time.Now().Add(-time.Hour)
		require.NoError(t, os.Chtimes(older, past, past))
		require.NoError(t, os.WriteFile(p.RunLogPath("newer"), []byte("b"), 0o644))

		latest, err := p.Latest()

		require.NoError(t, err)
		assert.Equal(t, "newer", latest)
	})
}
