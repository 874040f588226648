package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/otter-ide/otter/pkg/types"
)

func TestLoadNoFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	want := types.DefaultConfig()
	if cfg.Performance.MaxLSPClients != want.Performance.MaxLSPClients {
		t.Errorf("expected default MaxLSPClients %d, got %d", want.Performance.MaxLSPClients, cfg.Performance.MaxLSPClients)
	}
	if !cfg.LSP.Enabled {
		t.Error("expected LSP.Enabled to default true")
	}
}

func TestLoadEmptyDirectoryReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected non-nil config")
	}
}

func TestLoadParsesLSPSection(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[lsp]
enabled = true
auto_detect = true
disabled_languages = ["ruby"]
languages = ["python", "go"]
lazy_load = false
auto_install = true
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if !cfg.LSP.Enabled {
		t.Error("expected lsp.enabled true")
	}
	if cfg.LSP.LazyLoad {
		t.Error("expected lsp.lazy_load false")
	}
	if len(cfg.LSP.DisabledLanguages) != 1 || cfg.LSP.DisabledLanguages[0] != "ruby" {
		t.Errorf("unexpected disabled_languages: %v", cfg.LSP.DisabledLanguages)
	}
	if len(cfg.LSP.Languages) != 2 {
		t.Errorf("expected 2 languages, got %v", cfg.LSP.Languages)
	}
}

func TestLoadParsesPerLanguageLSPSubsection(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[lsp.python]
enabled = true
server = "pyright"
interpreter_path = "${PROJECT_ROOT}/.venv/bin/python"

[lsp.python.settings]
pythonPath = "/usr/bin/python3"
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	lang, ok := cfg.LSPLanguage["python"]
	if !ok {
		t.Fatal("expected lsp.python subsection to be present")
	}
	if lang.Server != "pyright" {
		t.Errorf("expected server pyright, got %s", lang.Server)
	}
	wantPath := filepath.Join(dir, ".venv", "bin", "python")
	if lang.RuntimePath != wantPath {
		t.Errorf("expected expanded runtime path %s, got %s", wantPath, lang.RuntimePath)
	}
	if lang.Settings["pythonPath"] != "/usr/bin/python3" {
		t.Errorf("unexpected settings: %v", lang.Settings)
	}
}

func TestLoadParsesDAPSection(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[dap]
enabled = true
auto_install = false

[dap.go]
enabled = true
adapter = "delve"

[dap.go.env]
GOFLAGS = "-mod=mod"
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if !cfg.DAP.Enabled {
		t.Error("expected dap.enabled true")
	}
	lang, ok := cfg.DAPLanguage["go"]
	if !ok {
		t.Fatal("expected dap.go subsection to be present")
	}
	if lang.Adapter != "delve" {
		t.Errorf("expected adapter delve, got %s", lang.Adapter)
	}
	if lang.Env["GOFLAGS"] != "-mod=mod" {
		t.Errorf("unexpected env: %v", lang.Env)
	}
}

func TestLoadParsesPerformanceSection(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[performance]
max_lsp_clients = 16
max_dap_sessions = 2
file_change_debounce_ms = 500
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Performance.MaxLSPClients != 16 {
		t.Errorf("expected max_lsp_clients 16, got %d", cfg.Performance.MaxLSPClients)
	}
	if cfg.Performance.MaxDAPSessions != 2 {
		t.Errorf("expected max_dap_sessions 2, got %d", cfg.Performance.MaxDAPSessions)
	}
	if cfg.Performance.FileChangeDebounceMS != 500 {
		t.Errorf("expected file_change_debounce_ms 500, got %d", cfg.Performance.FileChangeDebounceMS)
	}
}

func TestLoadParsesTreesitterPlugin(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[plugins.treesitter]
ensure_installed = ["python", "go", "rust"]
auto_install = true
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if !cfg.Plugins.Treesitter.AutoInstall {
		t.Error("expected treesitter auto_install true")
	}
	if len(cfg.Plugins.Treesitter.EnsureInstalled) != 3 {
		t.Errorf("expected 3 ensure_installed entries, got %v", cfg.Plugins.Treesitter.EnsureInstalled)
	}
}

func TestExpandTemplateProjectRoot(t *testing.T) {
	got := ExpandTemplate("${PROJECT_ROOT}/bin/tool", "/repo")
	want := "/repo/bin/tool"
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestExpandTemplateVenvFound(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".venv", "bin"), 0o755); err != nil {
		t.Fatal(err)
	}

	got := ExpandTemplate("${VENV}/bin/python", dir)
	want := filepath.Join(dir, ".venv") + "/bin/python"
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestExpandTemplateVenvNotFound(t *testing.T) {
	dir := t.TempDir()
	got := ExpandTemplate("${VENV}/bin/python", dir)
	want := "/bin/python"
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestSaveAndReloadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := types.DefaultConfig()
	cfg.Performance.MaxLSPClients = 12

	path := ProjectConfigPath(dir)
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read saved file: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty saved config")
	}

	reloaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if reloaded.Performance.MaxLSPClients != 12 {
		t.Errorf("expected reloaded max_lsp_clients 12, got %d", reloaded.Performance.MaxLSPClients)
	}
}

func TestGetPathsUsesXDGEnv(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
	t.Setenv("XDG_STATE_HOME", "/tmp/xdg-state")

	paths := GetPaths()
	if paths.Data != "/tmp/xdg-data/otter" {
		t.Errorf("unexpected Data path: %s", paths.Data)
	}
	if paths.Cache != "/tmp/xdg-cache/otter" {
		t.Errorf("unexpected Cache path: %s", paths.Cache)
	}
	if paths.State != "/tmp/xdg-state/otter" {
		t.Errorf("unexpected State path: %s", paths.State)
	}
}

func TestEnsurePathsCreatesDirectories(t *testing.T) {
	base := t.TempDir()
	paths := &Paths{
		Data:  filepath.Join(base, "data"),
		Cache: filepath.Join(base, "cache"),
		State: filepath.Join(base, "state"),
	}

	if err := paths.EnsurePaths(); err != nil {
		t.Fatalf("EnsurePaths returned error: %v", err)
	}

	for _, dir := range []string{paths.Data, paths.Cache, paths.State} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("expected directory %s to exist", dir)
		}
	}
}

func TestAdapterCachePath(t *testing.T) {
	paths := &Paths{Data: "/tmp/otter-data"}
	want := "/tmp/otter-data/adapters"
	if got := paths.AdapterCachePath(); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestProjectConfigPath(t *testing.T) {
	got := ProjectConfigPath("/repo")
	want := "/repo/.otter.toml"
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	path := ProjectConfigPath(dir)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
}
