// Package config loads and merges `.otter.toml` project configuration.
//
// # Configuration Loading
//
// Load reads `<project>/.otter.toml`, if present, and merges it onto
// types.DefaultConfig(). There is no global config file and no environment
// variable overrides for tool/language behavior — per-project configuration
// is the sole on-disk input (spec §6: "Persisted state: None" beyond the
// user's own .otter.toml).
//
// # Schema
//
// Recognized top-level sections are [lsp], [lsp.<language>], [dap],
// [dap.<language>], [performance], and [plugins.treesitter]. Per-language
// subsections are not part of the Config struct's static TOML tags because
// their table name (the language) is dynamic; they are decoded by walking
// the raw parsed document and are exposed as cfg.LSPLanguage and
// cfg.DAPLanguage maps keyed by language name.
//
// # Template variables
//
// Path-like values (any key ending in "_path") are expanded with
// ExpandTemplate: ${PROJECT_ROOT} becomes the absolute project root, and
// ${VENV} becomes the first of .venv, venv, env found under the project
// root, or the empty string if none exist.
//
// # Paths
//
// GetPaths returns the XDG-style directories Otter uses to cache
// bootstrap-downloaded language servers and debug adapters. These are the
// only directories Otter writes to outside of the project tree itself.
package config
