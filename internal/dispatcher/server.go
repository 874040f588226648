// Package dispatcher wires Otter's service layer (editor host, LSP, DAP,
// editing, project, scheduler) onto an MCP tool table. Handlers are thin:
// argument coercion, path resolution, delegation to a service, typed result
// or typed error assembly — no service logic lives here, generalizing the
// teacher's pkg/mcpserver/calculator.NewServer single-tool wiring to the
// full tool surface, and its internal/server route-table idiom to an MCP
// tool table.
package dispatcher

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/otter-ide/otter/internal/apperror"
	"github.com/otter-ide/otter/internal/dap"
	"github.com/otter-ide/otter/internal/editing"
	"github.com/otter-ide/otter/internal/editorhost"
	"github.com/otter-ide/otter/internal/project"
	"github.com/otter-ide/otter/internal/scheduler"
)

// Dependencies is every service the dispatcher's handlers delegate to.
type Dependencies struct {
	Host      *editorhost.Host
	Debug     *dap.Service
	Buffers   *editing.BufferSet
	Project   *project.Service
	Scheduler *scheduler.Scheduler
}

// NewServer builds the MCP server and registers every tool named in the
// spec's external interface (§6): the editing surface, the LSP surface,
// project/dependency tools, and the debug control quintet.
func NewServer(deps *Dependencies) *server.MCPServer {
	s := server.NewMCPServer(
		"otter",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	registerEditingTools(s, deps)
	registerLSPTools(s, deps)
	registerProjectTools(s, deps)
	registerDebugTools(s, deps)

	return s
}

// root is a convenience accessor for the current project's canonical root,
// used by every handler that resolves a caller-supplied path.
func (d *Dependencies) root() string {
	return d.Project.Current().Root
}

// withScheduler runs fn as one scheduled task (spec §5: every tool call is
// a task suspending at RPC/subprocess/poll boundaries) and adapts its
// result into an MCP tool result.
func withScheduler(ctx context.Context, deps *Dependencies, fn func(context.Context) (*mcp.CallToolResult, error)) (*mcp.CallToolResult, error) {
	var result *mcp.CallToolResult
	var handlerErr error
	err := deps.Scheduler.Run(ctx, func(ctx context.Context) error {
		result, handlerErr = fn(ctx)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scheduling tool call: %w", err)
	}
	return result, handlerErr
}

// ensureReady opens file as a buffer in the child editor if not already
// open, then polls LSP readiness with a real request — never a fixed sleep
// — before any semantic query proceeds (spec §4.4).
func ensureReady(ctx context.Context, deps *Dependencies, file string) error {
	lspClient := deps.Host.LSP()
	if err := lspClient.TouchFile(ctx, file); err != nil {
		return apperror.LSPFailed(err, "textDocument/didOpen")
	}
	if err := lspClient.WaitReady(ctx, file); err != nil {
		return apperror.LSPFailed(err, "readiness probe")
	}
	return nil
}
