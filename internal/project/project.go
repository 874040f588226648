// Package project resolves a project's canonical root directory and builds
// its Project entity by merging .otter.toml over the language defaults.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/otter-ide/otter/internal/config"
	"github.com/otter-ide/otter/pkg/types"
)

// Canonicalize resolves path to an absolute, symlink-free form, so that two
// different spellings of the same directory (e.g. /var vs /private/var on
// macOS) always compare equal. Every path Otter accepts or returns passes
// through this function exactly once at the boundary where it enters or
// leaves broker-owned state.
func Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving absolute path for %s: %w", path, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("resolving symlinks for %s: %w", abs, err)
	}
	return resolved, nil
}

// Load builds a Project for directory: canonicalizes the root, loads
// .otter.toml (or defaults), and derives the enabled language set.
func Load(directory string) (*types.Project, error) {
	root, err := Canonicalize(directory)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, fmt.Errorf("loading configuration for %s: %w", root, err)
	}

	return &types.Project{
		Root:      root,
		Config:    cfg,
		Languages: enabledLanguages(cfg),
	}, nil
}

// enabledLanguages derives the final language set: cfg.LSP.Languages as the
// explicit allow-list when non-empty, otherwise every language with a
// [lsp.<language>] subsection, minus cfg.LSP.DisabledLanguages either way.
func enabledLanguages(cfg *types.Config) []string {
	disabled := make(map[string]bool, len(cfg.LSP.DisabledLanguages))
	for _, lang := range cfg.LSP.DisabledLanguages {
		disabled[lang] = true
	}

	var candidates []string
	if len(cfg.LSP.Languages) > 0 {
		candidates = cfg.LSP.Languages
	} else {
		for lang := range cfg.LSPLanguage {
			candidates = append(candidates, lang)
		}
		sort.Strings(candidates)
	}

	languages := make([]string, 0, len(candidates))
	for _, lang := range candidates {
		if !disabled[lang] {
			languages = append(languages, lang)
		}
	}
	return languages
}

// Entry describes one file or directory in a project structure listing.
type Entry struct {
	Path     string
	IsDir    bool
	Children []Entry
}

// Structure walks root and returns its directory tree, skipping directories
// whose names match skipDirPatterns (VCS metadata, dependency trees, build
// output, caches), for the get_project_structure tool. Other dotfiles and
// dot-directories are listed.
func Structure(root string) (Entry, error) {
	return walk(root, root)
}

// skipDirPatterns lists the directory-name glob patterns Structure never
// descends into: VCS metadata, dependency/vendor trees, build output, and
// per-language caches, across every language the runtime resolver knows.
var skipDirPatterns = []string{
	".git", ".otter", "node_modules", "vendor", "__pycache__",
	".venv", "venv", "env", "dist", "build", "target",
	"*.egg-info", ".next", ".cache", ".pytest_cache", ".mypy_cache",
}

func shouldSkipDir(name string) bool {
	for _, pattern := range skipDirPatterns {
		if matched, err := doublestar.Match(pattern, name); err == nil && matched {
			return true
		}
	}
	return false
}

func walk(root, path string) (Entry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Entry{}, err
	}

	entry := Entry{Path: path, IsDir: info.IsDir()}
	if !info.IsDir() {
		return entry, nil
	}

	dirEntries, err := os.ReadDir(path)
	if err != nil {
		return Entry{}, err
	}

	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() && shouldSkipDir(name) {
			continue
		}
		child, err := walk(root, filepath.Join(path, name))
		if err != nil {
			continue
		}
		entry.Children = append(entry.Children, child)
	}
	return entry, nil
}
