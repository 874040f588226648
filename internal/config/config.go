package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/otter-ide/otter/pkg/types"
)

// knownLSPKeys are the [lsp] keys that are not per-language subsections.
var knownLSPKeys = map[string]bool{
	"enabled": true, "auto_detect": true, "disabled_languages": true,
	"languages": true, "lazy_load": true, "auto_install": true,
}

// knownDAPKeys are the [dap] keys that are not per-language subsections.
var knownDAPKeys = map[string]bool{
	"enabled": true, "auto_install": true,
}

// Load reads and merges .otter.toml for the project rooted at directory,
// falling back to types.DefaultConfig for anything unset. directory may be
// empty, in which case only the built-in defaults are returned.
func Load(directory string) (*types.Config, error) {
	cfg := types.DefaultConfig()
	if directory == "" {
		return cfg, nil
	}

	path := ProjectConfigPath(directory)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := mergeTOML(cfg, data, directory); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// mergeTOML decodes raw TOML bytes into cfg, expanding ${PROJECT_ROOT} and
// ${VENV} template variables in path-like values along the way.
func mergeTOML(cfg *types.Config, data []byte, projectRoot string) error {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return err
	}

	if lspRaw, ok := raw["lsp"].(map[string]any); ok {
		if err := decodeKnown(lspRaw, knownLSPKeys, &cfg.LSP); err != nil {
			return err
		}
		for lang, v := range lspRaw {
			if knownLSPKeys[lang] {
				continue
			}
			sub, ok := v.(map[string]any)
			if !ok {
				continue
			}
			cfg.LSPLanguage[lang] = decodeLSPLang(sub, projectRoot)
		}
	}

	if dapRaw, ok := raw["dap"].(map[string]any); ok {
		if err := decodeKnown(dapRaw, knownDAPKeys, &cfg.DAP); err != nil {
			return err
		}
		for lang, v := range dapRaw {
			if knownDAPKeys[lang] {
				continue
			}
			sub, ok := v.(map[string]any)
			if !ok {
				continue
			}
			cfg.DAPLanguage[lang] = decodeDAPLang(sub, projectRoot)
		}
	}

	if perfRaw, ok := raw["performance"].(map[string]any); ok {
		applyPerformance(&cfg.Performance, perfRaw)
	}

	if pluginsRaw, ok := raw["plugins"].(map[string]any); ok {
		if tsRaw, ok := pluginsRaw["treesitter"].(map[string]any); ok {
			applyTreesitter(&cfg.Plugins.Treesitter, tsRaw)
		}
	}

	return nil
}

// decodeKnown re-marshals the known-key subset of m back to TOML and decodes
// it onto out, so scalar/slice fields round-trip through go-toml/v2's own
// struct tag handling instead of hand-written type switches.
func decodeKnown(m map[string]any, known map[string]bool, out any) error {
	filtered := make(map[string]any, len(known))
	for k := range known {
		if v, ok := m[k]; ok {
			filtered[k] = v
		}
	}
	b, err := toml.Marshal(filtered)
	if err != nil {
		return err
	}
	return toml.Unmarshal(b, out)
}

func decodeLSPLang(m map[string]any, projectRoot string) types.LSPLangConfig {
	var lang types.LSPLangConfig
	if enabled, ok := m["enabled"].(bool); ok {
		lang.Enabled = enabled
	}
	if server, ok := m["server"].(string); ok {
		lang.Server = server
	}
	for k, v := range m {
		if strings.HasSuffix(k, "_path") {
			if s, ok := v.(string); ok {
				lang.RuntimePath = ExpandTemplate(s, projectRoot)
			}
		}
	}
	if settings, ok := m["settings"].(map[string]any); ok {
		lang.Settings = settings
	}
	return lang
}

func decodeDAPLang(m map[string]any, projectRoot string) types.DAPLangConfig {
	var lang types.DAPLangConfig
	if enabled, ok := m["enabled"].(bool); ok {
		lang.Enabled = enabled
	}
	if adapter, ok := m["adapter"].(string); ok {
		lang.Adapter = adapter
	}
	for k, v := range m {
		if strings.HasSuffix(k, "_path") {
			if s, ok := v.(string); ok {
				lang.RuntimePath = ExpandTemplate(s, projectRoot)
			}
		}
	}
	if configs, ok := m["configurations"].([]any); ok {
		for _, c := range configs {
			if cm, ok := c.(map[string]any); ok {
				lang.Configurations = append(lang.Configurations, cm)
			}
		}
	}
	if env, ok := m["env"].(map[string]any); ok {
		lang.Env = make(map[string]string, len(env))
		for k, v := range env {
			if s, ok := v.(string); ok {
				lang.Env[k] = s
			}
		}
	}
	return lang
}

func applyPerformance(p *types.PerformanceConfig, m map[string]any) {
	if v, ok := toInt(m["max_lsp_clients"]); ok {
		p.MaxLSPClients = v
	}
	if v, ok := toInt(m["max_dap_sessions"]); ok {
		p.MaxDAPSessions = v
	}
	if v, ok := toInt(m["file_change_debounce_ms"]); ok {
		p.FileChangeDebounceMS = v
	}
}

func applyTreesitter(t *types.TreesitterConfig, m map[string]any) {
	if v, ok := m["auto_install"].(bool); ok {
		t.AutoInstall = v
	}
	if v, ok := m["ensure_installed"].([]any); ok {
		t.EnsureInstalled = nil
		for _, item := range v {
			if s, ok := item.(string); ok {
				t.EnsureInstalled = append(t.EnsureInstalled, s)
			}
		}
	}
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int64:
		return int(n), true
	case int:
		return n, true
	}
	return 0, false
}

// ExpandTemplate expands ${PROJECT_ROOT} and ${VENV} in a path-like config
// value. ${VENV} expands to the first matching venv directory found in
// projectRoot; if none is found it expands to an empty string.
func ExpandTemplate(s, projectRoot string) string {
	s = strings.ReplaceAll(s, "${PROJECT_ROOT}", projectRoot)
	if strings.Contains(s, "${VENV}") {
		s = strings.ReplaceAll(s, "${VENV}", firstVenvDir(projectRoot))
	}
	return s
}

// venvCandidates are directory names checked, in order, when resolving
// ${VENV}.
var venvCandidates = []string{".venv", "venv", "env"}

func firstVenvDir(projectRoot string) string {
	for _, name := range venvCandidates {
		candidate := filepath.Join(projectRoot, name)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
	}
	return ""
}

// Save writes cfg to path as TOML, creating parent directories as needed.
// Per-language subsections (cfg.LSPLanguage, cfg.DAPLanguage) are folded
// back into the [lsp.<language>] / [dap.<language>] tables so a load-then-
// save round-trip preserves every recognized key. A "<runtime>_path" value is
// written back under the key "runtime_path", already template-expanded.
func Save(cfg *types.Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := marshalTOML(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func marshalTOML(cfg *types.Config) ([]byte, error) {
	doc := map[string]any{
		"lsp":         structToMap(cfg.LSP),
		"dap":         structToMap(cfg.DAP),
		"performance": structToMap(cfg.Performance),
		"plugins": map[string]any{
			"treesitter": structToMap(cfg.Plugins.Treesitter),
		},
	}

	lsp := doc["lsp"].(map[string]any)
	for lang, v := range cfg.LSPLanguage {
		entry := map[string]any{
			"enabled":  v.Enabled,
			"server":   v.Server,
			"settings": v.Settings,
		}
		if v.RuntimePath != "" {
			entry["runtime_path"] = v.RuntimePath
		}
		lsp[lang] = entry
	}

	dap := doc["dap"].(map[string]any)
	for lang, v := range cfg.DAPLanguage {
		entry := map[string]any{
			"enabled":        v.Enabled,
			"adapter":        v.Adapter,
			"configurations": v.Configurations,
			"env":            v.Env,
		}
		if v.RuntimePath != "" {
			entry["runtime_path"] = v.RuntimePath
		}
		dap[lang] = entry
	}

	return toml.Marshal(doc)
}

// structToMap round-trips v through TOML marshal/unmarshal to get a plain
// map representation usable as a nested table value.
func structToMap(v any) map[string]any {
	b, err := toml.Marshal(v)
	if err != nil {
		return map[string]any{}
	}
	var m map[string]any
	if err := toml.Unmarshal(b, &m); err != nil {
		return map[string]any{}
	}
	return m
}
