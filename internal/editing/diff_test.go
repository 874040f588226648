package editing

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferDiffEmptyWhenUnmodified(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "a.go", "package main\n")

	set := NewBufferSet(nil)
	_, err := set.Open(path)
	require.NoError(t, err)

	result, err := set.BufferDiff(path)
	require.NoError(t, err)
	assert.Empty(t, result.Diff)
	assert.Zero(t, result.Additions)
	assert.Zero(t, result.Deletions)
}

func TestBufferDiffReportsAdditionsAndDeletions(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "a.go", "one\ntwo\nthree\n")

	set := NewBufferSet(nil)
	b, err := set.Open(path)
	require.NoError(t, err)
	b.content = "one\nTWO\nthree\nfour\n"

	result, err := set.BufferDiff(path)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Diff)
	assert.Positive(t, result.Additions)
	assert.Positive(t, result.Deletions)
}

func TestBufferDiffReflectsExternalDiskChanges(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "a.go", "one\n")

	set := NewBufferSet(nil)
	_, err := set.Open(path)
	require.NoError(t, err)

	// On-disk content changes out from under the buffer after open; the
	// diff is against current disk content, not the content seen at open.
	require.NoError(t, os.WriteFile(path, []byte("one\ntwo\n"), 0o644))

	result, err := set.BufferDiff(path)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Diff)
}
