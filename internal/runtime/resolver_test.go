package runtime

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/otter-ide/otter/internal/apperror"
	"github.com/otter-ide/otter/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProject(t *testing.T, root string) *types.Project {
	t.Helper()
	return &types.Project{
		Root:   root,
		Config: types.DefaultConfig(),
	}
}

func TestResolveExplicitConfigTakesPrecedence(t *testing.T) {
	dir := t.TempDir()
	fakePython := filepath.Join(dir, "fake-python")
	require.NoError(t, os.WriteFile(fakePython, []byte("#!/bin/sh\necho Python 3.11.0\n"), 0o755))

	project := newTestProject(t, dir)
	project.Config.LSPLanguage["python"] = types.LSPLangConfig{RuntimePath: fakePython}

	r := NewResolver()
	resolved, err := r.Resolve(context.Background(), "python", project)
	require.NoError(t, err)
	assert.Equal(t, SourceExplicitConfig, resolved.Source)
	assert.Equal(t, fakePython, resolved.Path)
}

func TestResolveVenvAutoDetect(t *testing.T) {
	dir := t.TempDir()
	venvBin := filepath.Join(dir, ".venv", "bin")
	require.NoError(t, os.MkdirAll(venvBin, 0o755))
	pythonPath := filepath.Join(venvBin, "python3")
	require.NoError(t, os.WriteFile(pythonPath, []byte("#!/bin/sh\n"), 0o755))

	project := newTestProject(t, dir)

	r := NewResolver()
	resolved, err := r.Resolve(context.Background(), "python", project)
	require.NoError(t, err)
	assert.Equal(t, "auto_detect_venv", resolved.Source)
	assert.Equal(t, pythonPath, resolved.Path)
}

func TestResolveMemoizesPerLanguageAndProject(t *testing.T) {
	dir := t.TempDir()
	venvBin := filepath.Join(dir, ".venv", "bin")
	require.NoError(t, os.MkdirAll(venvBin, 0o755))
	pythonPath := filepath.Join(venvBin, "python3")
	require.NoError(t, os.WriteFile(pythonPath, []byte("#!/bin/sh\n"), 0o755))

	project := newTestProject(t, dir)
	r := NewResolver()

	first, err := r.Resolve(context.Background(), "python", project)
	require.NoError(t, err)

	// Remove the venv after the first resolution; a memoized resolver must
	// still return the cached result rather than re-running detection.
	require.NoError(t, os.RemoveAll(filepath.Join(dir, ".venv")))

	second, err := r.Resolve(context.Background(), "python", project)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestResolveUnknownLanguageFails(t *testing.T) {
	dir := t.TempDir()
	project := newTestProject(t, dir)

	r := NewResolver()
	_, err := r.Resolve(context.Background(), "cobol", project)
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindRuntimeNotResolved))
}

func TestResolveFailsWithInstallSuggestionWhenNothingFound(t *testing.T) {
	dir := t.TempDir()
	project := newTestProject(t, dir)
	project.Config.LSP.Languages = []string{"rust"}

	r := NewResolver()
	// rust has no venv-style auto-detect and almost certainly no
	// rust-toolchain.toml or rustc on a minimal CI PATH in this sandbox;
	// if the environment happens to have rustc installed this still
	// exercises the explicit-config/auto-detect misses without asserting
	// a specific outcome on the PATH step.
	_, err := r.Resolve(context.Background(), "rust", project)
	if err != nil {
		appErr, ok := apperror.As(err)
		require.True(t, ok)
		assert.Equal(t, apperror.KindRuntimeNotResolved, appErr.Kind)
		assert.NotEmpty(t, appErr.Suggestions)
	}
}

func TestInvalidateForcesReResolution(t *testing.T) {
	dir := t.TempDir()
	venvBin := filepath.Join(dir, ".venv", "bin")
	require.NoError(t, os.MkdirAll(venvBin, 0o755))
	pythonPath := filepath.Join(venvBin, "python3")
	require.NoError(t, os.WriteFile(pythonPath, []byte("#!/bin/sh\n"), 0o755))

	project := newTestProject(t, dir)
	r := NewResolver()

	_, err := r.Resolve(context.Background(), "python", project)
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(filepath.Join(dir, ".venv")))
	r.Invalidate("python", project)

	_, err = r.Resolve(context.Background(), "python", project)
	assert.Error(t, err)
}

func TestSpecAndBootstrapLookup(t *testing.T) {
	r := NewResolver()

	spec, ok := r.Spec("go")
	require.True(t, ok)
	assert.Equal(t, "go", spec.ExecutableName)

	boot, ok := r.Bootstrap("go")
	require.True(t, ok)
	assert.Contains(t, boot.InstallCmd, "golang.org/x/tools/gopls@latest")

	_, ok = r.Spec("cobol")
	assert.False(t, ok)
}
