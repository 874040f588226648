package dispatcher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePathJoinsRelativePathsAgainstRoot(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n"), 0o644))

	resolved, err := resolvePath(dir, "main.go")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "main.go"), resolved)
}

func TestResolvePathPassesThroughAbsolutePaths(t *testing.T) {
	dir := t.TempDir()
	abs := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(abs, []byte("package main\n"), 0o644))

	resolved, err := resolvePath("/somewhere/else", abs)
	require.NoError(t, err)
	assert.Equal(t, abs, resolved)
}

func TestLineIndexConversionRoundTrips(t *testing.T) {
	assert.Equal(t, 0, toInternalLine(1))
	assert.Equal(t, 1, toExternalLine(0))
	assert.Equal(t, 41, toInternalLine(42))
	assert.Equal(t, 42, toExternalLine(41))
}
