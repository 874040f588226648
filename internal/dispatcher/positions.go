package dispatcher

import (
	"path/filepath"

	"github.com/otter-ide/otter/internal/project"
)

// resolvePath joins a possibly workspace-relative raw path against root and
// canonicalizes it, so every path that crosses the dispatcher boundary is
// absolute and symlink-resolved exactly once (spec §6 path convention).
func resolvePath(root, raw string) (string, error) {
	path := raw
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	return project.Canonicalize(path)
}

// toInternalLine converts the external 1-indexed line convention to LSP's
// 0-indexed convention.
func toInternalLine(line int) int {
	return line - 1
}

// toExternalLine converts LSP's 0-indexed line back to the external
// 1-indexed convention.
func toExternalLine(line int) int {
	return line + 1
}
