package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajesh096/InsightVerify/pkg/logger"
)

func TestWorkspaceInitClearsLeftovers(t *testing.T) {
	root := filepath.Join(t.TempDir(), "workspace")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "stale_run"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "stale_run", "page_1.png"), []byte("x"), 0644))

	ws := NewWorkspace(root, logger.NewTestLogger())
	require.NoError(t, ws.Init())

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunDirSaveAndRelease(t *testing.T) {
	ws := NewWorkspace(t.TempDir(), logger.NewTestLogger())

	run, err := ws.Begin("run-1")
	require.NoError(t, err)

	path, err := run.Save("source.pdf", []byte("%PDF-"))
	require.NoError(t, err)
	assert.FileExists(t, path)

	run.Release()
	assert.NoDirExists(t, run.Dir())

	// Releasing again must be a no-op.
	run.Release()
}

func TestBeginIsolatesRuns(t *testing.T) {
	ws := NewWorkspace(t.TempDir(), logger.NewTestLogger())

	a, err := ws.Begin("run-a")
	require.NoError(t, err)
	b, err := ws.Begin("run-b")
	require.NoError(t, err)

	assert.NotEqual(t, a.Dir(), b.Dir())

	_, err = a.Save("page_1.png", []byte("a"))
	require.NoError(t, err)

	a.Release()
	assert.NoDirExists(t, a.Dir())
	assert.DirExists(t, b.Dir())
	b.Release()
}
