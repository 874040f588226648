// Package editorhost owns the LSP client attached to a project, the
// runtime config file written before it, and a bridge mutex (Host.Call)
// that runs the functions passed to it one at a time. There is no vendored
// headless editor binary in this module's dependency pack, so language
// server processes are spawned directly by the lsp.Client the host
// constructs, rather than through an external editor over a socket.
package editorhost

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/otter-ide/otter/pkg/types"
)

// RuntimeConfig is the plain textual data written to
// <project>/.otter/runtime.json by Host.Start, before the LSP client that
// spawns language servers is constructed. No process in this module reads
// the file back: language servers are started with their built-in
// commands and receive none of these settings from it.
type RuntimeConfig struct {
	EnabledLanguages map[string]bool             `json:"enabled_languages"`
	LSP              map[string]LSPServerConfig  `json:"lsp"`
	DAP              map[string]DAPAdapterConfig `json:"dap"`
	TestMode         bool                        `json:"test_mode"`
}

// LSPServerConfig is one language's server entry in the runtime config.
type LSPServerConfig struct {
	Server          string         `json:"server"`
	InterpreterPath string         `json:"interpreter_path"`
	Settings        map[string]any `json:"settings,omitempty"`
}

// DAPAdapterConfig is one language's adapter entry in the runtime config.
type DAPAdapterConfig struct {
	Adapter         string            `json:"adapter"`
	InterpreterPath string            `json:"interpreter_path"`
	Env             map[string]string `json:"env,omitempty"`
}

// RuntimeConfigPath returns the path the runtime config is written to and
// read from for a given project root.
func RuntimeConfigPath(projectRoot string) string {
	return filepath.Join(projectRoot, ".otter", "runtime.json")
}

// writeRuntimeConfig writes cfg to <project>/.otter/runtime.json,
// creating the .otter directory if needed. Called strictly before any
// child process spawn.
func writeRuntimeConfig(project *types.Project, cfg RuntimeConfig) (string, error) {
	dir := filepath.Join(project.Root, ".otter")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", err
	}

	path := RuntimeConfigPath(project.Root)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
