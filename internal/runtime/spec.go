// Package runtime resolves the interpreter/toolchain path for a language in
// a project: explicit config, then auto-detection rules in declared order,
// then a PATH search, then a typed failure naming the install command.
// Resolution is data-driven against the table in this file, never
// code-driven per-language branching.
package runtime

// RuleType discriminates the auto-detect strategies a LanguageSpec can list.
type RuleType string

const (
	// RuleVenv checks whether a directory pattern under the project root
	// exists and contains the language's executable.
	RuleVenv RuleType = "venv"
	// RuleVersionManager reads a version file (e.g. .nvmrc) and substitutes
	// it into a path template.
	RuleVersionManager RuleType = "version_manager"
	// RuleToolchainFile reads a channel/version from a TOML or plain file
	// and builds an invocation template (e.g. "rustup run <channel> ...").
	RuleToolchainFile RuleType = "toolchain_file"
	// RuleVersionFile reads a file and extracts a version hint via regex;
	// it never yields an executable path by itself.
	RuleVersionFile RuleType = "version_file"
)

// AutoDetectRule is one entry in a LanguageSpec's ordered detection list.
type AutoDetectRule struct {
	Type RuleType

	// RuleVenv: each pattern is tried, relative to the project root; the
	// first directory that exists wins.
	VenvPatterns      []string
	ExecutablePath    string // relative path inside the venv dir, e.g. "bin/python3"
	ExecutablePathWin string // same, for a Windows-style layout

	// RuleVersionManager: VersionFile (e.g. ".nvmrc") is read, its trimmed
	// contents substituted into PathTemplate's "{version}" placeholder.
	VersionFile  string
	PathTemplate string

	// RuleToolchainFile: ToolchainFile (e.g. "rust-toolchain.toml") is
	// parsed for a channel, substituted into InvocationTemplate's
	// "{channel}" placeholder.
	ToolchainFile      string
	InvocationTemplate string

	// RuleVersionFile: VersionFileName (e.g. "go.mod") is scanned with
	// VersionRegex; the first capture group is the version hint.
	VersionFileName string
	VersionRegex    string
}

// VersionCheck describes how to ask a resolved executable its own version.
type VersionCheck struct {
	Args       []string
	ParseRegex string
}

// LanguageSpec is one row of the resolver's declarative table.
type LanguageSpec struct {
	DisplayName    string
	ExecutableName string
	ConfigKey      string   // the .otter.toml key holding an explicit path, e.g. "python_path"
	Extensions     []string // file extensions (with leading dot) routed to this language
	AutoDetect     []AutoDetectRule
	SystemCommands []string
	VersionCheck   VersionCheck
}

// BootstrapSpec is the parallel install table used by LSP/DAP bootstrap.
type BootstrapSpec struct {
	CheckCmd      []string
	InstallCmd    []string
	Prerequisites []string
}

// builtInLanguages is the data-driven resolution table. Every language
// awareness the resolver has lives here, in LSP's own kind enums, or in the
// dependency-extraction query strings in internal/dependency — never as regex
// parsing scattered through the resolver itself.
func builtInLanguages() map[string]LanguageSpec {
	return map[string]LanguageSpec{
		"python": {
			DisplayName:    "Python",
			ExecutableName: "python3",
			ConfigKey:      "python_path",
			Extensions:     []string{".py"},
			AutoDetect: []AutoDetectRule{
				{
					Type:              RuleVenv,
					VenvPatterns:      []string{".venv", "venv", "env"},
					ExecutablePath:    "bin/python3",
					ExecutablePathWin: "Scripts/python.exe",
				},
			},
			SystemCommands: []string{"python3", "python"},
			VersionCheck:   VersionCheck{Args: []string{"--version"}, ParseRegex: `Python (\d+\.\d+\.\d+)`},
		},
		"go": {
			DisplayName:    "Go",
			ExecutableName: "go",
			ConfigKey:      "go_path",
			Extensions:     []string{".go"},
			AutoDetect: []AutoDetectRule{
				{
					Type:            RuleVersionFile,
					VersionFileName: "go.mod",
					VersionRegex:    `^go (\d+\.\d+(\.\d+)?)`,
				},
			},
			SystemCommands: []string{"go"},
			VersionCheck:   VersionCheck{Args: []string{"version"}, ParseRegex: `go(\d+\.\d+(\.\d+)?)`},
		},
		"node": {
			DisplayName:    "Node.js",
			ExecutableName: "node",
			ConfigKey:      "node_path",
			Extensions:     []string{".js", ".jsx", ".mjs", ".cjs"},
			AutoDetect: []AutoDetectRule{
				{
					Type:         RuleVersionManager,
					VersionFile:  ".nvmrc",
					PathTemplate: "${HOME}/.nvm/versions/node/v{version}/bin/node",
				},
			},
			SystemCommands: []string{"node"},
			VersionCheck:   VersionCheck{Args: []string{"--version"}, ParseRegex: `v(\d+\.\d+\.\d+)`},
		},
		"typescript": {
			DisplayName:    "Node.js (TypeScript)",
			ExecutableName: "node",
			ConfigKey:      "typescript_path",
			Extensions:     []string{".ts", ".tsx"},
			AutoDetect: []AutoDetectRule{
				{
					Type:         RuleVersionManager,
					VersionFile:  ".nvmrc",
					PathTemplate: "${HOME}/.nvm/versions/node/v{version}/bin/node",
				},
			},
			SystemCommands: []string{"node"},
			VersionCheck:   VersionCheck{Args: []string{"--version"}, ParseRegex: `v(\d+\.\d+\.\d+)`},
		},
		"rust": {
			DisplayName:    "Rust",
			ExecutableName: "rustc",
			ConfigKey:      "rust_path",
			Extensions:     []string{".rs"},
			AutoDetect: []AutoDetectRule{
				{
					Type:               RuleToolchainFile,
					ToolchainFile:      "rust-toolchain.toml",
					InvocationTemplate: "rustup run {channel} rustc",
				},
			},
			SystemCommands: []string{"rustc"},
			VersionCheck:   VersionCheck{Args: []string{"--version"}, ParseRegex: `rustc (\d+\.\d+\.\d+)`},
		},
	}
}

// builtInBootstrap is the parallel language -> {check, install, prereqs}
// table used before an LSP server or DAP adapter's first use.
func builtInBootstrap() map[string]BootstrapSpec {
	return map[string]BootstrapSpec{
		"python": {
			CheckCmd:      []string{"pyright-langserver", "--version"},
			InstallCmd:    []string{"pip", "install", "pyright", "debugpy"},
			Prerequisites: []string{"pip"},
		},
		"go": {
			CheckCmd:      []string{"gopls", "version"},
			InstallCmd:    []string{"go", "install", "golang.org/x/tools/gopls@latest"},
			Prerequisites: []string{"go"},
		},
		"node": {
			CheckCmd:      []string{"typescript-language-server", "--version"},
			InstallCmd:    []string{"npm", "install", "-g", "typescript-language-server", "typescript"},
			Prerequisites: []string{"npm"},
		},
		"typescript": {
			CheckCmd:      []string{"typescript-language-server", "--version"},
			InstallCmd:    []string{"npm", "install", "-g", "typescript-language-server", "typescript"},
			Prerequisites: []string{"npm"},
		},
		"rust": {
			CheckCmd:      []string{"rust-analyzer", "--version"},
			InstallCmd:    []string{"rustup", "component", "add", "rust-analyzer"},
			Prerequisites: []string{"rustup"},
		},
	}
}
