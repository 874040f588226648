package types

// Project is the root entity of a broker invocation: one absolute,
// symlink-resolved root directory, one Configuration, and the set of
// languages enabled for it. Created at process start, destroyed at process
// exit; Otter persists nothing about a Project between invocations.
type Project struct {
	// Root is the canonical (absolute, symlink-resolved) project directory.
	Root string
	// Config is the merged .otter.toml configuration for Root.
	Config *Config
	// Languages lists the languages enabled for this project, derived from
	// Config.LSP.Languages/DisabledLanguages and auto-detection.
	Languages []string
}
