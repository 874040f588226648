package dispatcher

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/otter-ide/otter/internal/apperror"
	"github.com/otter-ide/otter/pkg/types"
)

func registerDebugTools(s *server.MCPServer, deps *Dependencies) {
	s.AddTool(mcp.NewTool("start_debug_session",
		mcp.WithDescription("Launches a debug adapter session for a file or module; returns the broker-assigned session ID"),
		mcp.WithString("file", mcp.Description("mutually exclusive with module")),
		mcp.WithString("module", mcp.Description("mutually exclusive with file")),
		mcp.WithArray("args", mcp.Items(map[string]any{"type": "string"})),
		mcp.WithObject("env", mcp.Description("environment variables to add to the debuggee")),
		mcp.WithString("cwd"),
		mcp.WithBoolean("stop_on_entry"),
		mcp.WithBoolean("just_my_code"),
		mcp.WithArray("breakpoints", mcp.Description("1-indexed lines"), mcp.Items(map[string]any{"type": "number"})),
		mcp.WithString("language", mcp.Description("overrides extension-based language detection")),
	), handleStartDebugSession(deps))

	s.AddTool(mcp.NewTool("control_execution",
		mcp.WithDescription("Issues a step/continue/pause/stop command to an active debug session"),
		mcp.WithString("session_id", mcp.Required()),
		mcp.WithString("command", mcp.Required(), mcp.Description("step_over|step_into|step_out|continue|pause|stop")),
	), handleControlExecution(deps))

	s.AddTool(mcp.NewTool("inspect_state",
		mcp.WithDescription("Reads stack frames and variables from a paused session, optionally evaluating an expression"),
		mcp.WithString("session_id", mcp.Required()),
		mcp.WithNumber("frame_id", mcp.Description("default 0, the top frame")),
		mcp.WithString("expression", mcp.Description("evaluated in the given frame's scope if provided")),
	), handleInspectState(deps))

	s.AddTool(mcp.NewTool("set_breakpoints",
		mcp.WithDescription("Replaces the breakpoint set for a file in an active session"),
		mcp.WithString("session_id", mcp.Required()),
		mcp.WithString("file", mcp.Required()),
		mcp.WithArray("lines", mcp.Required(), mcp.Description("1-indexed lines"), mcp.Items(map[string]any{"type": "number"})),
	), handleSetBreakpoints(deps))

	s.AddTool(mcp.NewTool("get_debug_session_info",
		mcp.WithDescription("Returns the retained snapshot for a session, live or terminated"),
		mcp.WithString("session_id", mcp.Required()),
	), handleGetDebugSessionInfo(deps))
}

func handleStartDebugSession(deps *Dependencies) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return withScheduler(ctx, deps, func(ctx context.Context) (*mcp.CallToolResult, error) {
			args := req.GetArguments()

			spec := types.LaunchSpec{
				File:        argStringDefault(args, "file", ""),
				Module:      argStringDefault(args, "module", ""),
				Args:        argStringSlice(args, "args"),
				Env:         argStringMap(args, "env"),
				Cwd:         argStringDefault(args, "cwd", ""),
				StopOnEntry: argBoolDefault(args, "stop_on_entry", false),
				JustMyCode:  argBoolDefault(args, "just_my_code", false),
				Breakpoints: argIntSlice(args, "breakpoints"),
				Language:    argStringDefault(args, "language", ""),
			}

			id, err := deps.Debug.Start(ctx, deps.Project.Current(), spec)
			if err != nil {
				return errorResult(err), nil
			}
			return jsonResult(struct {
				SessionID string `json:"session_id"`
			}{SessionID: id})
		})
	}
}

func handleControlExecution(deps *Dependencies) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return withScheduler(ctx, deps, func(ctx context.Context) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			sessionID, err := argString(args, "session_id")
			if err != nil {
				return errorResult(apperrorInvalidArg(err)), nil
			}
			command, err := argString(args, "command")
			if err != nil {
				return errorResult(apperrorInvalidArg(err)), nil
			}

			var controlErr error
			switch command {
			case "step_over":
				controlErr = deps.Debug.StepOver(ctx, sessionID)
			case "step_into":
				controlErr = deps.Debug.StepInto(ctx, sessionID)
			case "step_out":
				controlErr = deps.Debug.StepOut(ctx, sessionID)
			case "continue":
				controlErr = deps.Debug.Continue(ctx, sessionID)
			case "pause":
				controlErr = deps.Debug.Pause(ctx, sessionID)
			case "stop":
				controlErr = deps.Debug.Stop(ctx, sessionID)
			default:
				controlErr = apperror.Newf(apperror.KindInvalidRange, "unrecognized control command %q", command)
			}
			if controlErr != nil {
				return errorResult(controlErr), nil
			}

			return jsonResult(deps.Debug.Snapshot(sessionID))
		})
	}
}

func handleInspectState(deps *Dependencies) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return withScheduler(ctx, deps, func(ctx context.Context) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			sessionID, err := argString(args, "session_id")
			if err != nil {
				return errorResult(apperrorInvalidArg(err)), nil
			}
			frameID := argIntDefault(args, "frame_id", 0)

			result, err := deps.Debug.Inspect(ctx, sessionID, frameID)
			if err != nil {
				return errorResult(err), nil
			}

			if expression := argStringDefault(args, "expression", ""); expression != "" {
				evaluation, err := deps.Debug.Evaluate(ctx, sessionID, expression, frameID)
				if err != nil {
					return errorResult(err), nil
				}
				result.Evaluation = evaluation
			}

			return jsonResult(result)
		})
	}
}

func handleSetBreakpoints(deps *Dependencies) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return withScheduler(ctx, deps, func(ctx context.Context) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			sessionID, err := argString(args, "session_id")
			if err != nil {
				return errorResult(apperrorInvalidArg(err)), nil
			}
			rawFile, err := argString(args, "file")
			if err != nil {
				return errorResult(apperrorInvalidArg(err)), nil
			}
			path, err := resolvePath(deps.root(), rawFile)
			if err != nil {
				return errorResult(apperrorInvalidArg(err)), nil
			}
			lines := argIntSlice(args, "lines")

			if err := deps.Debug.SetBreakpoints(ctx, sessionID, path, lines); err != nil {
				return errorResult(err), nil
			}
			return jsonResult(map[string]bool{"applied": true})
		})
	}
}

func handleGetDebugSessionInfo(deps *Dependencies) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return withScheduler(ctx, deps, func(ctx context.Context) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			sessionID, err := argString(args, "session_id")
			if err != nil {
				return errorResult(apperrorInvalidArg(err)), nil
			}
			return jsonResult(deps.Debug.Snapshot(sessionID))
		})
	}
}
