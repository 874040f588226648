package editorhost

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/otter-ide/otter/internal/apperror"
	"github.com/otter-ide/otter/internal/lsp"
	"github.com/otter-ide/otter/internal/runtime"
	"github.com/otter-ide/otter/pkg/types"
)

// Host owns the LSP client for one project and the runtime config file
// written before it. Its bridge mutex runs the functions passed to Call one
// at a time; the LSP client's own requests do not go through Call, and debug
// adapter processes are spawned by internal/dap, not by Host.
type Host struct {
	bridge sync.Mutex

	project  *types.Project
	resolver *runtime.Resolver

	mu         sync.RWMutex
	lspClient  *lsp.Client
	configPath string
	started    bool
}

// NewHost constructs a host for project, bound to resolver for language
// runtime lookups.
func NewHost(project *types.Project, resolver *runtime.Resolver) *Host {
	return &Host{project: project, resolver: resolver}
}

// Start runs the fixed startup sequence: enumerate enabled languages,
// bootstrap-install missing LSP servers when auto-install is on, write the
// runtime config file, then construct the (lazily spawning) LSP client.
// The config file is written before the LSP client is constructed; no
// process in this module reads it back.
func (h *Host) Start(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.started {
		return nil
	}

	cfg := RuntimeConfig{
		EnabledLanguages: make(map[string]bool),
		LSP:              make(map[string]LSPServerConfig),
		DAP:              make(map[string]DAPAdapterConfig),
		TestMode:         os.Getenv("OTTER_TEST_MODE") == "1",
	}

	for _, language := range h.project.Languages {
		cfg.EnabledLanguages[language] = true

		if h.project.Config.LSP.AutoInstall {
			if err := h.ensureInstalled(ctx, language); err != nil {
				return err
			}
		}

		langCfg := h.project.Config.LSPLanguage[language]
		resolved, err := h.resolver.Resolve(ctx, language, h.project)
		interpreterPath := ""
		if err == nil {
			interpreterPath = resolved.Path
		}
		cfg.LSP[language] = LSPServerConfig{
			Server:          langCfg.Server,
			InterpreterPath: interpreterPath,
			Settings:        langCfg.Settings,
		}

		if dapCfg, ok := h.project.Config.DAPLanguage[language]; ok {
			cfg.DAP[language] = DAPAdapterConfig{
				Adapter:         dapCfg.Adapter,
				InterpreterPath: interpreterPath,
				Env:             dapCfg.Env,
			}
		}
	}

	path, err := writeRuntimeConfig(h.project, cfg)
	if err != nil {
		return fmt.Errorf("writing runtime config: %w", err)
	}
	h.configPath = path

	h.lspClient = lsp.NewClient(h.project.Root, !h.project.Config.LSP.Enabled, h.resolver)
	h.started = true
	return nil
}

// ensureInstalled runs the bootstrap install command for language if its
// check command fails, surfacing a typed error naming the missing
// prerequisite rather than a generic failure.
func (h *Host) ensureInstalled(ctx context.Context, language string) error {
	boot, ok := h.resolver.Bootstrap(language)
	if !ok || len(boot.CheckCmd) == 0 {
		return nil
	}

	if _, err := exec.LookPath(boot.CheckCmd[0]); err == nil {
		return nil
	}

	for _, prereq := range boot.Prerequisites {
		if _, err := exec.LookPath(prereq); err != nil {
			return apperror.DependencyMissing(
				fmt.Sprintf("%s (required to install the %s server/adapter)", prereq, language),
				fmt.Sprintf("install %s first, then retry", prereq),
			)
		}
	}

	if len(boot.InstallCmd) == 0 {
		return apperror.DependencyMissing(fmt.Sprintf("%s language server/adapter", language))
	}

	cmd := exec.CommandContext(ctx, boot.InstallCmd[0], boot.InstallCmd[1:]...)
	cmd.Dir = h.project.Root
	out, err := cmd.CombinedOutput()
	if err != nil {
		return apperror.Wrap(apperror.KindDependencyMissing, err,
			fmt.Sprintf("installing %s server/adapter failed: %s", language, string(out))).
			WithSuggestions(fmt.Sprintf("run manually: %s", strings.Join(boot.InstallCmd, " ")))
	}
	return nil
}

// LSP returns the LSP client for this project, constructed during Start.
func (h *Host) LSP() *lsp.Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lspClient
}

// ConfigPath returns the path the runtime config was written to.
func (h *Host) ConfigPath() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.configPath
}

// Call runs fn behind the host's bridge mutex, so functions passed to Call
// run one at a time. Only work routed through Call is serialized.
func (h *Host) Call(fn func() (any, error)) (any, error) {
	h.bridge.Lock()
	defer h.bridge.Unlock()
	return fn()
}

// Shutdown terminates every owned child process. Safe to call multiple
// times and from a signal handler; idempotent once children are gone.
func (h *Host) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.lspClient != nil {
		_ = h.lspClient.Close()
	}

	if h.configPath != "" {
		_ = os.Remove(h.configPath)
	}

	h.started = false
	return nil
}
