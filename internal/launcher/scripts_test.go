package launcher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "tenant-reports/pkg/errors"
)

func writeFile(t *testing.T, dir, name string, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), mode))
	return path
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "device-report", 0o755)
	writeFile(t, dir, "license-audit", 0o755)
	writeFile(t, dir, "notes.txt", 0o644)
	self := writeFile(t, dir, "launcher", 0o755)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))

	scripts, err := Discover(dir, self)
	require.NoError(t, err)

	names := make([]string, 0, len(scripts))
	for _, s := range scripts {
		names = append(names, s.Name)
	}
	// Executables only, the launcher itself excluded.
	assert.ElementsMatch(t, []string{"device-report", "license-audit"}, names)
}

func TestDiscoverEmptyDir(t *testing.T) {
	t.Parallel()

	scripts, err := Discover(t.TempDir(), "launcher")
	require.NoError(t, err)
	assert.Empty(t, scripts)
}

func TestFind(t *testing.T) {
	t.Parallel()

	scripts := []Script{{Name: "device-report"}, {Name: "license-audit"}}

	s, err := Find(scripts, "License-Audit")
	require.NoError(t, err)
	assert.Equal(t, "license-audit", s.Name)

	_, err = Find(scripts, "missing")
	assert.ErrorIs(t, err, appErrors.ErrScriptNotFound)
}
