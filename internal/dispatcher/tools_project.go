package dispatcher

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/otter-ide/otter/internal/dependency"
	"github.com/otter-ide/otter/internal/project"
)

func registerProjectTools(s *server.MCPServer, deps *Dependencies) {
	s.AddTool(mcp.NewTool("get_project_structure",
		mcp.WithDescription("Walks the project tree, skipping vendor/build directories, returning a nested file/directory listing"),
		mcp.WithString("path", mcp.Description("subdirectory to root the walk at; defaults to the project root")),
	), handleGetProjectStructure(deps))

	s.AddTool(mcp.NewTool("analyze_dependencies",
		mcp.WithDescription("Extracts a file's imports and/or the files that import it, via structural query plus a full-text search for the reverse direction"),
		mcp.WithString("file", mcp.Required()),
		mcp.WithString("direction", mcp.Description("imports|imported_by|both, default both")),
	), handleAnalyzeDependencies(deps))
}

func handleGetProjectStructure(deps *Dependencies) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return withScheduler(ctx, deps, func(ctx context.Context) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			root := deps.root()
			if rawPath := argStringDefault(args, "path", ""); rawPath != "" {
				resolved, err := resolvePath(root, rawPath)
				if err != nil {
					return errorResult(apperrorInvalidArg(err)), nil
				}
				root = resolved
			}

			entry, err := project.Structure(root)
			if err != nil {
				return errorResult(apperrorInternal(err, "walking project structure")), nil
			}
			return jsonResult(entry)
		})
	}
}

func handleAnalyzeDependencies(deps *Dependencies) server.ToolHandlerFunc {
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

			direction := dependency.Direction(argStringDefault(args, "direction", string(dependency.DirectionBoth)))

			result, err := dependency.Analyze(ctx, deps.root(), path, direction)
			if err != nil {
				return errorResult(err), nil
			}
			return jsonResult(result)
		})
	}
}
