// Package types holds the wire-level data shapes shared between Otter's
// internal packages and the tool dispatcher: configuration, diagnostics,
// symbols, and debug session records.
package types

// Config is the parsed form of a project's .otter.toml file. Every field is
// optional; zero values mean "use the built-in default" unless stated
// otherwise.
type Config struct {
	LSP         LSPConfig                `toml:"lsp"`
	DAP         DAPConfig                `toml:"dap"`
	Performance PerformanceConfig        `toml:"performance"`
	Plugins     PluginsConfig            `toml:"plugins"`
	LSPLanguage map[string]LSPLangConfig `toml:"-"`
	DAPLanguage map[string]DAPLangConfig `toml:"-"`
}

// LSPConfig is the [lsp] section.
type LSPConfig struct {
	Enabled           bool     `toml:"enabled"`
	AutoDetect        bool     `toml:"auto_detect"`
	DisabledLanguages []string `toml:"disabled_languages"`
	Languages         []string `toml:"languages"`
	LazyLoad          bool     `toml:"lazy_load"`
	AutoInstall       bool     `toml:"auto_install"`
}

// LSPLangConfig is one [lsp.<language>] section.
type LSPLangConfig struct {
	Enabled     bool           `toml:"enabled"`
	Server      string         `toml:"server"`
	RuntimePath string         `toml:"-"` // the "<runtime>_path" key, see config.go
	Settings    map[string]any `toml:"settings"`
}

// DAPConfig is the [dap] section.
type DAPConfig struct {
	Enabled     bool `toml:"enabled"`
	AutoInstall bool `toml:"auto_install"`
}

// DAPLangConfig is one [dap.<language>] section.
type DAPLangConfig struct {
	Enabled        bool              `toml:"enabled"`
	Adapter        string            `toml:"adapter"`
	RuntimePath    string            `toml:"-"`
	Configurations []map[string]any  `toml:"configurations"`
	Env            map[string]string `toml:"env"`
}

// PerformanceConfig is the [performance] section.
type PerformanceConfig struct {
	MaxLSPClients        int `toml:"max_lsp_clients"`
	MaxDAPSessions       int `toml:"max_dap_sessions"`
	FileChangeDebounceMS int `toml:"file_change_debounce_ms"`
}

// PluginsConfig is the [plugins] section, currently only treesitter.
type PluginsConfig struct {
	Treesitter TreesitterConfig `toml:"treesitter"`
}

// TreesitterConfig is the [plugins.treesitter] section.
type TreesitterConfig struct {
	EnsureInstalled []string `toml:"ensure_installed"`
	AutoInstall     bool     `toml:"auto_install"`
}

// DefaultConfig returns the built-in defaults applied when no .otter.toml is
// present, or when a key is left unset.
func DefaultConfig() *Config {
	return &Config{
		LSP: LSPConfig{
			Enabled:     true,
			AutoDetect:  true,
			LazyLoad:    true,
			AutoInstall: false,
		},
		DAP: DAPConfig{
			Enabled:     true,
			AutoInstall: false,
		},
		Performance: PerformanceConfig{
			MaxLSPClients:        8,
			MaxDAPSessions:       4,
			FileChangeDebounceMS: 300,
		},
		Plugins: PluginsConfig{
			Treesitter: TreesitterConfig{
				AutoInstall: false,
			},
		},
		LSPLanguage: make(map[string]LSPLangConfig),
		DAPLanguage: make(map[string]DAPLangConfig),
	}
}
