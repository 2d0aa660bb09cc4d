package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jellexet/valuebuf/pkg/editor"
	"github.com/jellexet/valuebuf/pkg/pool"
)

func trackedEditor(t *testing.T) *pool.Counting {
	t.Helper()
	logger = zap.NewNop()
	counting := pool.NewCounting(nil)
	editor.Configure(logger, counting, 0)
	t.Cleanup(func() {
		editor.CloseSession()
		editor.Configure(nil, pool.Default, 0)
	})
	return counting
}

func TestOpenDocumentFailureReleasesStorage(t *testing.T) {
	counting := trackedEditor(t)

	// Reading a directory fails after the session has rented its document
	err := openDocument(0, t.TempDir())
	require.Error(t, err)

	assert.NoError(t, checkLeaks(counting))
	stats := counting.Stats()
	assert.Positive(t, stats.Rents)
	assert.Zero(t, stats.Outstanding)
}

func TestOpenDocument(t *testing.T) {
	counting := trackedEditor(t)

	require.NoError(t, openDocument(0, ""))
	require.NoError(t, openDocument(0, filepath.Join(t.TempDir(), "new.txt")))

	editor.CloseSession()
	assert.NoError(t, checkLeaks(counting))
}

func TestCheckLeaks(t *testing.T) {
	counting := trackedEditor(t)
	assert.NoError(t, checkLeaks(nil))

	r := counting.Rent(8)
	assert.ErrorContains(t, checkLeaks(counting), "1 regions outstanding")

	counting.Return(r)
	assert.NoError(t, checkLeaks(counting))
}
