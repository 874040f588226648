package dap

// DefaultAdapters returns the built-in debug adapter launch commands, the
// same shape internal/lsp's builtInServers table uses for language
// servers: one entry per language, overridable per-project via
// .otter.toml's [dap.<language>] adapter field.
func DefaultAdapters() map[string]AdapterSpec {
	return map[string]AdapterSpec{
		"python": {
			Command:      []string{"python3", "-m", "debugpy.adapter"},
			Prerequisite: "debugpy",
			AdapterID:    "debugpy",
		},
		"go": {
			Command:      []string{"dlv", "dap"},
			Prerequisite: "dlv",
			AdapterID:    "delve",
		},
	}
}
