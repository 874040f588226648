package runtime

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"sync"

	"github.com/otter-ide/otter/internal/apperror"
	"github.com/otter-ide/otter/internal/config"
	"github.com/otter-ide/otter/pkg/types"
)

// Source names where a resolution came from, mirroring the
// (language, path, source, version) triple the broker exposes.
const (
	SourceExplicitConfig = "explicit_config"
	SourceSystem         = "system"
)

// Resolved is one (language, path, source, version) resolution result.
type Resolved struct {
	Language string
	Path     string
	Source   string
	Version  string
}

// Resolver resolves language runtimes for projects, memoizing per
// (language, project root) so repeated LSP/DAP attachments for the same
// project never re-run detection.
type Resolver struct {
	specs     map[string]LanguageSpec
	bootstrap map[string]BootstrapSpec
	cache     sync.Map // key: language+"\x00"+projectRoot -> *Resolved
}

// NewResolver constructs a resolver over the built-in declarative table.
func NewResolver() *Resolver {
	return &Resolver{
		specs:     builtInLanguages(),
		bootstrap: builtInBootstrap(),
	}
}

// Spec returns the declarative spec for a language, if known.
func (r *Resolver) Spec(language string) (LanguageSpec, bool) {
	s, ok := r.specs[language]
	return s, ok
}

// Bootstrap returns the install table entry for a language, if known.
func (r *Resolver) Bootstrap(language string) (BootstrapSpec, bool) {
	b, ok := r.bootstrap[language]
	return b, ok
}

// LanguageForExtension maps a file extension (with leading dot, any case)
// to the language key that owns it, per the declarative table. Returns ""
// for an extension no spec claims, so LSP/DAP callers fall back to their
// own "no configured language" handling instead of guessing.
func (r *Resolver) LanguageForExtension(ext string) string {
	ext = strings.ToLower(ext)
	for language, spec := range r.specs {
		for _, e := range spec.Extensions {
			if e == ext {
				return language
			}
		}
	}
	return ""
}

// Resolve implements the four-step precedence: explicit config, then each
// auto-detect rule in order, then PATH search, then a typed failure.
func (r *Resolver) Resolve(ctx context.Context, language string, project *types.Project) (*Resolved, error) {
	key := language + "\x00" + project.Root
	if cached, ok := r.cache.Load(key); ok {
		return cached.(*Resolved), nil
	}

	spec, ok := r.specs[language]
	if !ok {
		return nil, apperror.RuntimeNotResolved(language, project.Root,
			fmt.Sprintf("no runtime spec registered for %q; supported languages: python, go, node, typescript, rust", language))
	}

	resolved, err := r.resolveUncached(ctx, language, spec, project)
	if err != nil {
		return nil, err
	}

	r.cache.Store(key, resolved)
	return resolved, nil
}

// Invalidate drops any memoized resolution for (language, project), forcing
// the next Resolve to re-run detection.
func (r *Resolver) Invalidate(language string, project *types.Project) {
	r.cache.Delete(language + "\x00" + project.Root)
}

func (r *Resolver) resolveUncached(ctx context.Context, language string, spec LanguageSpec, project *types.Project) (*Resolved, error) {
	// 1. Explicit config value, template-expanded.
	if lang, ok := project.Config.LSPLanguage[language]; ok && lang.RuntimePath != "" {
		expanded := config.ExpandTemplate(lang.RuntimePath, project.Root)
		if path, err := lookPathOrAbs(expanded); err == nil {
			return &Resolved{Language: spec.ExecutableName, Path: path, Source: SourceExplicitConfig, Version: r.probeVersion(ctx, spec, path)}, nil
		}
	}

	// 2. Auto-detect rules in declared order; first hit wins.
	for _, rule := range spec.AutoDetect {
		path, ok := r.applyRule(rule, project.Root)
		if ok {
			source := fmt.Sprintf("auto_detect_%s", rule.Type)
			return &Resolved{Language: spec.ExecutableName, Path: path, Source: source, Version: r.probeVersion(ctx, spec, path)}, nil
		}
	}

	// 3. First executable found on PATH.
	for _, name := range spec.SystemCommands {
		if path, err := exec.LookPath(name); err == nil {
			return &Resolved{Language: spec.ExecutableName, Path: path, Source: SourceSystem, Version: r.probeVersion(ctx, spec, path)}, nil
		}
	}

	// 4. Failure, naming the language and the install command.
	return nil, apperror.RuntimeNotResolved(spec.DisplayName, project.Root,
		fmt.Sprintf("install %s (tried: %s) and ensure it is on PATH, or set %s in .otter.toml",
			spec.DisplayName, strings.Join(spec.SystemCommands, ", "), spec.ConfigKey))
}

// applyRule evaluates a single auto-detect rule against projectRoot.
func (r *Resolver) applyRule(rule AutoDetectRule, projectRoot string) (string, bool) {
	switch rule.Type {
	case RuleVenv:
		execRel := rule.ExecutablePath
		if runtime.GOOS == "windows" && rule.ExecutablePathWin != "" {
			execRel = rule.ExecutablePathWin
		}
		for _, pattern := range rule.VenvPatterns {
			dir := filepath.Join(projectRoot, pattern)
			info, err := os.Stat(dir)
			if err != nil || !info.IsDir() {
				continue
			}
			candidate := filepath.Join(dir, execRel)
			if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
				return candidate, true
			}
		}
		return "", false

	case RuleVersionManager:
		data, err := os.ReadFile(filepath.Join(projectRoot, rule.VersionFile))
		if err != nil {
			return "", false
		}
		version := strings.TrimSpace(string(data))
		version = strings.TrimPrefix(version, "v")
		path := strings.ReplaceAll(rule.PathTemplate, "{version}", version)
		path = os.ExpandEnv(path)
		if st, err := os.Stat(path); err == nil && !st.IsDir() {
			return path, true
		}
		return "", false

	case RuleToolchainFile:
		data, err := os.ReadFile(filepath.Join(projectRoot, rule.ToolchainFile))
		if err != nil {
			return "", false
		}
		channel := parseToolchainChannel(string(data))
		if channel == "" {
			return "", false
		}
		invocation := strings.ReplaceAll(rule.InvocationTemplate, "{channel}", channel)
		parts := strings.Fields(invocation)
		if len(parts) == 0 {
			return "", false
		}
		if _, err := exec.LookPath(parts[0]); err != nil {
			return "", false
		}
		return invocation, true

	case RuleVersionFile:
		data, err := os.ReadFile(filepath.Join(projectRoot, rule.VersionFileName))
		if err != nil {
			return "", false
		}
		re, err := regexp.Compile(rule.VersionRegex)
		if err != nil {
			return "", false
		}
		m := re.FindStringSubmatch(string(data))
		if m == nil {
			return "", false
		}
		// version_file rules yield a hint, not a path; fall through to
		// PATH search by reporting no hit here.
		return "", false

	default:
		return "", false
	}
}

func parseToolchainChannel(contents string) string {
	re := regexp.MustCompile(`channel\s*=\s*"([^"]+)"`)
	m := re.FindStringSubmatch(contents)
	if m == nil {
		return ""
	}
	return m[1]
}

func (r *Resolver) probeVersion(ctx context.Context, spec LanguageSpec, path string) string {
	if len(spec.VersionCheck.Args) == 0 {
		return ""
	}
	parts := strings.Fields(path)
	name := path
	var args []string
	if len(parts) > 1 {
		name = parts[0]
		args = append(parts[1:], spec.VersionCheck.Args...)
	} else {
		args = spec.VersionCheck.Args
	}

	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return ""
	}
	if spec.VersionCheck.ParseRegex == "" {
		return strings.TrimSpace(string(out))
	}
	re, err := regexp.Compile(spec.VersionCheck.ParseRegex)
	if err != nil {
		return ""
	}
	m := re.FindStringSubmatch(string(out))
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

func lookPathOrAbs(path string) (string, error) {
	if filepath.IsAbs(path) {
		if _, err := os.Stat(path); err != nil {
			return "", err
		}
		return path, nil
	}
	return exec.LookPath(path)
}
