package dispatcher

import (
	"context"
	"math"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/otter-ide/otter/internal/editing"
	"github.com/otter-ide/otter/pkg/types"
)

func registerEditingTools(s *server.MCPServer, deps *Dependencies) {
	s.AddTool(mcp.NewTool("read_file",
		mcp.WithDescription("Reads a file from disk (not buffer state) with LINE|CONTENT formatting, 1-indexed inclusive line range"),
		mcp.WithString("path", mcp.Required(), mcp.Description("absolute or workspace-relative path")),
		mcp.WithNumber("line_start", mcp.Description("1-indexed, inclusive; defaults to 1")),
		mcp.WithNumber("line_end", mcp.Description("1-indexed, inclusive; defaults to end of file")),
		mcp.WithBoolean("include_diagnostics", mcp.Description("attach currently known LSP diagnostics for this file")),
	), handleReadFile(deps))

	s.AddTool(mcp.NewTool("buffer_info",
		mcp.WithDescription("Reports whether a buffer is open, modified, its line count, and detected language"),
		mcp.WithString("file", mcp.Required()),
	), handleBufferInfo(deps))

	s.AddTool(mcp.NewTool("edit_buffer",
		mcp.WithDescription("Replaces inclusive line ranges in an open buffer; preview returns a diff without mutating"),
		mcp.WithString("file", mcp.Required()),
		mcp.WithArray("edits", mcp.Required(), mcp.Description("[{line_start, line_end, new_text}]"), mcp.Items(map[string]any{"type": "object"})),
		mcp.WithBoolean("preview", mcp.Description("default true")),
		mcp.WithBoolean("save", mcp.Description("default false; persist to disk after applying")),
	), handleEditBuffer(deps))

	s.AddTool(mcp.NewTool("find_and_replace",
		mcp.WithDescription("Text-level substitution on an open buffer's content, with a fuzzy fallback when the exact text is not found"),
		mcp.WithString("file", mcp.Required()),
		mcp.WithString("old", mcp.Required()),
		mcp.WithString("new", mcp.Required()),
		mcp.WithString("scope", mcp.Description("all|first|<nth>, default all")),
		mcp.WithBoolean("preview", mcp.Description("default true")),
	), handleFindAndReplace(deps))

	s.AddTool(mcp.NewTool("save_buffer",
		mcp.WithDescription("Persists an open buffer's in-memory content to disk"),
		mcp.WithString("file", mcp.Required()),
	), handleSaveBuffer(deps))

	s.AddTool(mcp.NewTool("discard_buffer",
		mcp.WithDescription("Reloads an open buffer from disk, discarding in-memory edits. Cannot be undone"),
		mcp.WithString("file", mcp.Required()),
	), handleDiscardBuffer(deps))

	s.AddTool(mcp.NewTool("buffer_diff",
		mcp.WithDescription("Unified diff of an open buffer's in-memory content versus disk; has_changes=false means clean"),
		mcp.WithString("file", mcp.Required()),
	), handleBufferDiff(deps))
}

func handleReadFile(deps *Dependencies) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return withScheduler(ctx, deps, func(ctx context.Context) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			rawPath, err := argString(args, "path")
			if err != nil {
				return errorResult(apperrorInvalidArg(err)), nil
			}
			path, err := resolvePath(deps.root(), rawPath)
			if err != nil {
				return errorResult(apperrorInvalidArg(err)), nil
			}

			start := argIntDefault(args, "line_start", 1)
			end := argIntDefault(args, "line_end", math.MaxInt)

			var diagnostics []types.Diagnostic
			if argBoolDefault(args, "include_diagnostics", false) {
				diagnostics = externalDiagnostics(path, deps.Host.LSP().Diagnostics("file://"+path))
			}

			result, err := deps.Buffers.ReadFile(path, start, end, diagnostics)
			if err != nil {
				return errorResult(err), nil
			}
			return jsonResult(result)
		})
	}
}

func handleBufferInfo(deps *Dependencies) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return withScheduler(ctx, deps, func(ctx context.Context) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			rawFile, err := argString(args, "file")
			if err != nil {
				return errorResult(apperrorInvalidArg(err)), nil
			}
			path, err := resolvePath(deps.root(), rawFile)
			if err != nil {
				return errorResult(apperrorInvalidArg(err)), nil
			}

			info, err := deps.Buffers.Info(path)
			if err != nil {
				return errorResult(err), nil
			}
			return jsonResult(info)
		})
	}
}

func handleEditBuffer(deps *Dependencies) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return withScheduler(ctx, deps, func(ctx context.Context) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			rawFile, err := argString(args, "file")
			if err != nil {
				return errorResult(apperrorInvalidArg(err)), nil
			}
			path, err := resolvePath(deps.root(), rawFile)
			if err != nil {
				return errorResult(apperrorInvalidArg(err)), nil
			}

			rawEdits := argObjectSlice(args, "edits")
			edits := make([]editing.LineEdit, 0, len(rawEdits))
			for _, e := range rawEdits {
				lineStart, _ := argInt(e, "line_start")
				lineEnd, _ := argInt(e, "line_end")
				newText := argStringDefault(e, "new_text", "")
				edits = append(edits, editing.LineEdit{LineStart: lineStart, LineEnd: lineEnd, NewText: newText})
			}

			preview := argBoolDefault(args, "preview", true)
			save := argBoolDefault(args, "save", false)

			result, err := deps.Buffers.EditBuffer(path, edits, preview, save)
			if err != nil {
				return errorResult(err), nil
			}

			if !preview {
				notifyLSPChange(ctx, deps, path)
			}

			return jsonResult(result)
		})
	}
}

func handleFindAndReplace(deps *Dependencies) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return withScheduler(ctx, deps, func(ctx context.Context) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			rawFile, err := argString(args, "file")
			if err != nil {
				return errorResult(apperrorInvalidArg(err)), nil
			}
			path, err := resolvePath(deps.root(), rawFile)
			if err != nil {
				return errorResult(apperrorInvalidArg(err)), nil
			}

			old, err := argString(args, "old")
			if err != nil {
				return errorResult(apperrorInvalidArg(err)), nil
			}
			newText, err := argString(args, "new")
			if err != nil {
				return errorResult(apperrorInvalidArg(err)), nil
			}
			scope := argStringDefault(args, "scope", "all")
			preview := argBoolDefault(args, "preview", true)

			result, err := deps.Buffers.FindAndReplace(path, old, newText, scope, preview)
			if err != nil {
				return errorResult(err), nil
			}

			if !preview {
				notifyLSPChange(ctx, deps, path)
			}

			return jsonResult(result)
		})
	}
}

func handleSaveBuffer(deps *Dependencies) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return withScheduler(ctx, deps, func(ctx context.Context) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			rawFile, err := argString(args, "file")
			if err != nil {
				return errorResult(apperrorInvalidArg(err)), nil
			}
			path, err := resolvePath(deps.root(), rawFile)
			if err != nil {
				return errorResult(apperrorInvalidArg(err)), nil
			}

			if err := deps.Buffers.SaveBuffer(path); err != nil {
				return errorResult(err), nil
			}
			return jsonResult(map[string]bool{"saved": true})
		})
	}
}

func handleDiscardBuffer(deps *Dependencies) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return withScheduler(ctx, deps, func(ctx context.Context) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			rawFile, err := argString(args, "file")
			if err != nil {
				return errorResult(apperrorInvalidArg(err)), nil
			}
			path, err := resolvePath(deps.root(), rawFile)
			if err != nil {
				return errorResult(apperrorInvalidArg(err)), nil
			}

			if err := deps.Buffers.DiscardBuffer(path); err != nil {
				return errorResult(err), nil
			}
			return jsonResult(map[string]bool{"discarded": true})
		})
	}
}

func handleBufferDiff(deps *Dependencies) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return withScheduler(ctx, deps, func(ctx context.Context) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			rawFile, err := argString(args, "file")
			if err != nil {
				return errorResult(apperrorInvalidArg(err)), nil
			}
			path, err := resolvePath(deps.root(), rawFile)
			if err != nil {
				return errorResult(apperrorInvalidArg(err)), nil
			}

			result, err := deps.Buffers.BufferDiff(path)
			if err != nil {
				return errorResult(err), nil
			}
			return jsonResult(struct {
				Diff       string `json:"diff"`
				Additions  int    `json:"additions"`
				Deletions  int    `json:"deletions"`
				HasChanges bool   `json:"has_changes"`
			}{result.Diff, result.Additions, result.Deletions, result.Diff != ""})
		})
	}
}

// notifyLSPChange calls TouchFile after a buffer mutation. The first call
// for a file opens it in its language server with the on-disk content; for
// a file already open nothing is sent, so the server does not see the
// in-memory edit. Errors are ignored.
func notifyLSPChange(ctx context.Context, deps *Dependencies, path string) {
	_ = deps.Host.LSP().TouchFile(ctx, path)
}
