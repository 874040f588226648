package editing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyTextEditsPreviewDoesNotMutate(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "greet.go", "func greet() {\n\tname := \"a\"\n}\n")

	set := NewBufferSet(nil)
	_, err := set.Open(path)
	require.NoError(t, err)

	result, err := set.ApplyTextEdits(path, []TextEdit{
		{StartLine: 1, StartChar: 1, EndLine: 1, EndChar: 5, NewText: "newName"},
	}, true, false)
	require.NoError(t, err)
	assert.False(t, result.Applied)
	assert.Contains(t, result.Diff, "newName")

	info, err := set.Info(path)
	require.NoError(t, err)
	assert.False(t, info.IsModified)
}

func TestApplyTextEditsAppliesAcrossMultipleEditsBottomUp(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "vars.go", "a := 1\nb := 2\nc := 3\n")

	set := NewBufferSet(nil)
	_, err := set.Open(path)
	require.NoError(t, err)

	result, err := set.ApplyTextEdits(path, []TextEdit{
		{StartLine: 0, StartChar: 0, EndLine: 0, EndChar: 1, NewText: "x"},
		{StartLine: 2, StartChar: 0, EndLine: 2, EndChar: 1, NewText: "z"},
	}, false, false)
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.True(t, result.HasChanges)

	info, err := set.Info(path)
	require.NoError(t, err)
	assert.True(t, info.IsModified)
}

func TestApplyTextEditsWithSavePersistsToDisk(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "one.go", "value := 1\n")

	set := NewBufferSet(nil)
	_, err := set.Open(path)
	require.NoError(t, err)

	_, err = set.ApplyTextEdits(path, []TextEdit{
		{StartLine: 0, StartChar: 8, EndLine: 0, EndChar: 9, NewText: "42"},
	}, false, true)
	require.NoError(t, err)

	data, err := readFileBytes(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "42")
}

func TestApplyTextEditsRejectsOutOfRangeEdit(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "short.go", "a\n")

	set := NewBufferSet(nil)
	_, err := set.Open(path)
	require.NoError(t, err)

	_, err = set.ApplyTextEdits(path, []TextEdit{
		{StartLine: 5, StartChar: 0, EndLine: 5, EndChar: 1, NewText: "x"},
	}, false, false)
	require.Error(t, err)
}
