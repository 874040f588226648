package dispatcher

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/otter-ide/otter/internal/apperror"
	"github.com/otter-ide/otter/internal/editing"
	"github.com/otter-ide/otter/internal/lsp"
	"github.com/otter-ide/otter/pkg/types"
)

func registerLSPTools(s *server.MCPServer, deps *Dependencies) {
	s.AddTool(mcp.NewTool("find_definition",
		mcp.WithDescription("Locates the definition of the symbol at a position, or by name with an optional positional hint"),
		mcp.WithString("file", mcp.Required()),
		mcp.WithNumber("line", mcp.Description("1-indexed")),
		mcp.WithNumber("column", mcp.Description("0-indexed")),
		mcp.WithString("symbol", mcp.Description("symbol name, used instead of a precise position")),
	), handleFindDefinition(deps))

	s.AddTool(mcp.NewTool("find_references",
		mcp.WithDescription("Finds references to the symbol at a position, grouped by file"),
		mcp.WithString("file", mcp.Required()),
		mcp.WithNumber("line", mcp.Required(), mcp.Description("1-indexed")),
		mcp.WithNumber("column", mcp.Required(), mcp.Description("0-indexed")),
		mcp.WithBoolean("exclude_definition", mcp.Description("default false")),
	), handleFindReferences(deps))

	s.AddTool(mcp.NewTool("hover",
		mcp.WithDescription("Returns type/documentation info for the symbol at a position, or looked up by name"),
		mcp.WithString("file", mcp.Required()),
		mcp.WithNumber("line", mcp.Description("1-indexed; omit when using symbol")),
		mcp.WithNumber("column", mcp.Description("0-indexed")),
		mcp.WithString("symbol", mcp.Description("symbol name, used instead of a precise position")),
		mcp.WithNumber("line_hint", mcp.Description("1-indexed; disambiguates multiple matches for symbol")),
	), handleHover(deps))

	s.AddTool(mcp.NewTool("completions",
		mcp.WithDescription("Ranked completion candidates at a position"),
		mcp.WithString("file", mcp.Required()),
		mcp.WithNumber("line", mcp.Required(), mcp.Description("1-indexed")),
		mcp.WithNumber("column", mcp.Required(), mcp.Description("0-indexed")),
		mcp.WithNumber("max_results", mcp.Description("default 50; 0 means unlimited")),
	), handleCompletions(deps))

	s.AddTool(mcp.NewTool("document_symbols",
		mcp.WithDescription("Lists symbols declared in a file, optionally filtered by kind"),
		mcp.WithString("file", mcp.Required()),
		mcp.WithString("kind_filter", mcp.Description("restrict to one symbol kind")),
	), handleDocumentSymbols(deps))

	s.AddTool(mcp.NewTool("diagnostics",
		mcp.WithDescription("Currently known diagnostics for a file, or across every open buffer if file is omitted"),
		mcp.WithString("file", mcp.Description("omit to aggregate across all open buffers")),
		mcp.WithString("severity_filter", mcp.Description("error|warning|info|hint")),
	), handleDiagnostics(deps))

	s.AddTool(mcp.NewTool("rename_symbol",
		mcp.WithDescription("Computes (preview=true) or applies (preview=false) a workspace-wide rename of the symbol at a position"),
		mcp.WithString("file", mcp.Required()),
		mcp.WithNumber("line", mcp.Required(), mcp.Description("1-indexed")),
		mcp.WithNumber("column", mcp.Required(), mcp.Description("0-indexed")),
		mcp.WithString("new_name", mcp.Required()),
		mcp.WithBoolean("preview", mcp.Description("default true")),
	), handleRenameSymbol(deps))

	s.AddTool(mcp.NewTool("apply_code_action",
		mcp.WithDescription("Lists available code actions at a range, or applies the one selected (auto-applies when kind_filter matches exactly one)"),
		mcp.WithString("file", mcp.Required()),
		mcp.WithNumber("line", mcp.Required(), mcp.Description("1-indexed")),
		mcp.WithNumber("column", mcp.Required(), mcp.Description("0-indexed")),
		mcp.WithString("kind_filter", mcp.Description("restrict to actions of this kind; auto-applies if exactly one matches")),
		mcp.WithNumber("action_index", mcp.Description("apply the action at this index instead of relying on kind_filter")),
	), handleApplyCodeAction(deps))
}

func handleFindDefinition(deps *Dependencies) server.ToolHandlerFunc {
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
			if err := ensureReady(ctx, deps, path); err != nil {
				return errorResult(err), nil
			}

			line, column, err := resolvePosition(ctx, deps, path, args)
			if err != nil {
				return errorResult(err), nil
			}

			locations, err := deps.Host.LSP().Definition(ctx, path, line, column)
			if err != nil {
				return errorResult(apperror.LSPFailed(err, "textDocument/definition")), nil
			}
			if len(locations) == 0 {
				return errorResult(apperror.New(apperror.KindNotOpenOrNotAttached, "no definition found at this position")), nil
			}

			loc := locations[0]
			file, extLine, extColumn := externalLocation(loc)

			def := types.Definition{File: file, Line: extLine, Column: extColumn}
			if symbols, err := deps.Host.LSP().DocumentSymbol(ctx, file); err == nil {
				if sym := findSymbolAt(symbols, loc.Range.Start.Line, loc.Range.Start.Character); sym != nil {
					def.SymbolKind = externalSymbolKind(sym.Kind)
					def.Signature = sym.Detail
				}
			}
			if def.SymbolKind == "" {
				def.SymbolKind = types.SymbolKindVariable
			}
			if hover, err := deps.Host.LSP().Hover(ctx, file, loc.Range.Start.Line, loc.Range.Start.Character); err == nil && hover != nil {
				def.Docstring = hover.Contents
			}
			if file != path {
				def.SourceFile = path
			}

			return jsonResult(def)
		})
	}
}

func handleFindReferences(deps *Dependencies) server.ToolHandlerFunc {
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
			line, err := argInt(args, "line")
			if err != nil {
				return errorResult(apperrorInvalidArg(err)), nil
			}
			column, err := argInt(args, "column")
			if err != nil {
				return errorResult(apperrorInvalidArg(err)), nil
			}
			excludeDefinition := argBoolDefault(args, "exclude_definition", false)

			if err := ensureReady(ctx, deps, path); err != nil {
				return errorResult(err), nil
			}

			refs, err := deps.Host.LSP().References(ctx, path, toInternalLine(line), column, !excludeDefinition)
			if err != nil {
				return errorResult(apperror.LSPFailed(err, "textDocument/references")), nil
			}

			var defFile string
			var defLine, defColumn int
			if defs, err := deps.Host.LSP().Definition(ctx, path, toInternalLine(line), column); err == nil && len(defs) > 0 {
				defFile, defLine, defColumn = externalLocation(defs[0])
			}

			sourceCache := make(map[string][]string)
			byFile := make(map[string][]referenceRecord)
			order := make([]string, 0)
			flat := make([]referenceRecord, 0, len(refs))
			for _, loc := range refs {
				file, extLine, extColumn := externalLocation(loc)
				if _, ok := byFile[file]; !ok {
					order = append(order, file)
				}
				contextLine := sourceLineText(sourceCache, file, extLine)
				rec := referenceRecord{
					File:          file,
					Line:          extLine,
					Column:        extColumn,
					Context:       fmt.Sprintf("Line %d: %s", extLine, contextLine),
					IsDefinition:  file == defFile && extLine == defLine && extColumn == defColumn,
					ReferenceType: classifyReferenceType(contextLine),
				}
				byFile[file] = append(byFile[file], rec)
				flat = append(flat, rec)
			}

			grouped := make([]referenceGroup, 0, len(order))
			for _, file := range order {
				grouped = append(grouped, referenceGroup{File: file, Count: len(byFile[file]), References: byFile[file]})
			}

			return jsonResult(struct {
				References []referenceRecord `json:"references"`
				TotalCount int               `json:"total_count"`
				GroupedBy  []referenceGroup  `json:"grouped_by_file"`
			}{
				References: flat,
				TotalCount: len(refs),
				GroupedBy:  grouped,
			})
		})
	}
}

type referenceRecord struct {
	File          string `json:"file"`
	Line          int    `json:"line"`
	Column        int    `json:"column"`
	Context       string `json:"context"`
	IsDefinition  bool   `json:"is_definition"`
	ReferenceType string `json:"reference_type"`
}

// sourceLineText returns the 1-indexed line of file's on-disk content,
// reading and caching the whole file on first access per file so a
// reference list over many hits in one file only pays the read once.
func sourceLineText(cache map[string][]string, file string, line int) string {
	lines, ok := cache[file]
	if !ok {
		data, err := os.ReadFile(file)
		if err == nil {
			lines = strings.Split(string(data), "\n")
		}
		cache[file] = lines
	}
	if line < 1 || line > len(lines) {
		return ""
	}
	return strings.TrimRight(lines[line-1], "\r")
}

// classifyReferenceType gives a best-effort reference_type from the
// textual context around a reference, since LSP exposes no kind for
// references the way it does for symbols. import/use/require statements
// are recognized by their leading keyword; a line containing a type
// annotation alongside a parameter or return arrow is classified as a
// type hint; everything else is an ordinary usage.
func classifyReferenceType(contextLine string) string {
	trimmed := strings.TrimSpace(contextLine)
	switch {
	case strings.HasPrefix(trimmed, "import "), strings.HasPrefix(trimmed, "from "),
		strings.HasPrefix(trimmed, "use "), strings.Contains(trimmed, "require("):
		return "import"
	case strings.Contains(trimmed, ":") && (strings.Contains(trimmed, "(") || strings.Contains(trimmed, "->")):
		return "type_hint"
	default:
		return "usage"
	}
}

type referenceGroup struct {
	File       string            `json:"file"`
	Count      int               `json:"count"`
	References []referenceRecord `json:"references"`
}

func handleHover(deps *Dependencies) server.ToolHandlerFunc {
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

			if err := ensureReady(ctx, deps, path); err != nil {
				return errorResult(err), nil
			}

			symbolName := argStringDefault(args, "symbol", "")
			var internalLine, column int
			var nearbyColumnScan bool
			if symbolName != "" {
				internalLine, column, err = resolveHoverBySymbol(ctx, deps, path, symbolName, args)
				if err != nil {
					return errorResult(err), nil
				}
				nearbyColumnScan = true
			} else {
				line, err := argInt(args, "line")
				if err != nil {
					return errorResult(apperrorInvalidArg(err)), nil
				}
				internalLine = toInternalLine(line)
				column = argIntDefault(args, "column", 0)
			}

			result, column, err := hoverNearby(ctx, deps, path, internalLine, column, nearbyColumnScan)
			if err != nil {
				return errorResult(apperror.LSPFailed(err, "textDocument/hover")), nil
			}
			if result == nil {
				return errorResult(apperror.New(apperror.KindNotOpenOrNotAttached, "no hover information at this position")), nil
			}

			if symbolName == "" {
				if symbols, err := deps.Host.LSP().DocumentSymbol(ctx, path); err == nil {
					if sym := findSymbolAt(symbols, internalLine, column); sym != nil {
						symbolName = sym.Name
					}
				}
			}

			typeText, docstring := splitHoverContents(result.Contents)
			return jsonResult(struct {
				Symbol     string `json:"symbol"`
				Type       string `json:"type"`
				Docstring  string `json:"docstring"`
				SourceFile string `json:"source_file"`
				Line       int    `json:"line"`
				Column     int    `json:"column"`
			}{
				Symbol:     symbolName,
				Type:       typeText,
				Docstring:  docstring,
				SourceFile: path,
				Line:       toExternalLine(internalLine),
				Column:     column,
			})
		})
	}
}

// resolveHoverBySymbol locates symbolName among path's document symbols,
// picking the match closest to line_hint (1-indexed) when more than one
// symbol shares the name, or the first occurrence when no hint is given.
func resolveHoverBySymbol(ctx context.Context, deps *Dependencies, path, symbolName string, args map[string]any) (int, int, error) {
	symbols, err := deps.Host.LSP().DocumentSymbol(ctx, path)
	if err != nil {
		return 0, 0, apperror.LSPFailed(err, "textDocument/documentSymbol")
	}

	var candidates []lsp.Symbol
	flattenSymbols(symbols, &candidates)

	var matches []lsp.Symbol
	for _, s := range candidates {
		if s.Name == symbolName {
			matches = append(matches, s)
		}
	}
	if len(matches) == 0 {
		return 0, 0, apperror.New(apperror.KindNotOpenOrNotAttached, fmt.Sprintf("no symbol named %q found in %s", symbolName, path))
	}

	best := matches[0]
	if _, ok := args["line_hint"]; ok {
		hintLine := toInternalLine(argIntDefault(args, "line_hint", 0))
		bestDistance := abs(best.Location.Range.Start.Line - hintLine)
		for _, m := range matches[1:] {
			if d := abs(m.Location.Range.Start.Line - hintLine); d < bestDistance {
				best, bestDistance = m, d
			}
		}
	}

	return best.Location.Range.Start.Line, best.Location.Range.Start.Character, nil
}

func flattenSymbols(symbols []lsp.Symbol, out *[]lsp.Symbol) {
	for _, s := range symbols {
		*out = append(*out, s)
		flattenSymbols(s.Children, out)
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// hoverNearby issues textDocument/hover at (line, column), and when scan is
// true (a by-symbol-name lookup) retries at columns up to 3 either side
// before giving up, since a symbol's selection-range column doesn't always
// land where a given server expects the cursor for hover.
func hoverNearby(ctx context.Context, deps *Dependencies, path string, line, column int, scan bool) (*lsp.HoverResult, int, error) {
	result, err := deps.Host.LSP().Hover(ctx, path, line, column)
	if err != nil {
		return nil, column, err
	}
	if result != nil || !scan {
		return result, column, nil
	}
	for _, offset := range []int{-1, 1, -2, 2, -3, 3} {
		c := column + offset
		if c < 0 {
			continue
		}
		result, err := deps.Host.LSP().Hover(ctx, path, line, c)
		if err != nil {
			continue
		}
		if result != nil {
			return result, c, nil
		}
	}
	return nil, column, nil
}

// splitHoverContents separates a hover blob into a leading type/signature
// line (the contents of any fenced code block, or the first line when
// there is none) and the documentation prose that follows it.
func splitHoverContents(raw string) (string, string) {
	cleaned := stripCodeFences(raw)
	parts := strings.SplitN(strings.TrimSpace(cleaned), "\n\n", 2)
	typeText := strings.TrimSpace(parts[0])
	docstring := ""
	if len(parts) > 1 {
		docstring = strings.TrimSpace(parts[1])
	}
	return typeText, docstring
}

func stripCodeFences(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), "```") {
			continue
		}
		out = append(out, l)
	}
	return strings.Join(out, "\n")
}

func handleCompletions(deps *Dependencies) server.ToolHandlerFunc {
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
			line, err := argInt(args, "line")
			if err != nil {
				return errorResult(apperrorInvalidArg(err)), nil
			}
			column, err := argInt(args, "column")
			if err != nil {
				return errorResult(apperrorInvalidArg(err)), nil
			}
			limit := argIntDefault(args, "max_results", 50)

			if err := ensureReady(ctx, deps, path); err != nil {
				return errorResult(err), nil
			}

			items, err := deps.Host.LSP().Completions(ctx, path, toInternalLine(line), column)
			if err != nil {
				return errorResult(apperror.LSPFailed(err, "textDocument/completion")), nil
			}

			type completion struct {
				Text          string `json:"text"`
				Kind          int    `json:"kind"`
				Detail        string `json:"detail,omitempty"`
				Documentation string `json:"documentation,omitempty"`
				SortText      string `json:"sort_text,omitempty"`
			}

			total := len(items)
			page := items
			truncated := false
			if limit > 0 && len(page) > limit {
				page = page[:limit]
				truncated = true
			}

			out := make([]completion, 0, len(page))
			for _, it := range page {
				out = append(out, completion{Text: it.Label, Kind: it.Kind, Detail: it.Detail, SortText: it.SortText})
			}

			return jsonResult(struct {
				Completions   []completion `json:"completions"`
				TotalCount    int          `json:"total_count"`
				ReturnedCount int          `json:"returned_count"`
				Truncated     bool         `json:"truncated"`
			}{
				Completions:   out,
				TotalCount:    total,
				ReturnedCount: len(out),
				Truncated:     truncated,
			})
		})
	}
}

func handleDocumentSymbols(deps *Dependencies) server.ToolHandlerFunc {
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
			kindFilter := argStringDefault(args, "kind_filter", "")

			if err := ensureReady(ctx, deps, path); err != nil {
				return errorResult(err), nil
			}

			symbols, err := deps.Host.LSP().DocumentSymbol(ctx, path)
			if err != nil {
				return errorResult(apperror.LSPFailed(err, "textDocument/documentSymbol")), nil
			}

			out := make([]types.Symbol, 0, len(symbols))
			for _, sym := range symbols {
				if kindFilter != "" && string(externalSymbolKind(sym.Kind)) != kindFilter {
					continue
				}
				out = append(out, externalSymbol(sym))
			}

			language := editing.LanguageFor(path)
			return jsonResult(struct {
				Symbols    []types.Symbol `json:"symbols"`
				File       string         `json:"file"`
				TotalCount int            `json:"total_count"`
				Language   string         `json:"language"`
			}{Symbols: out, File: path, TotalCount: len(out), Language: language})
		})
	}
}

func handleDiagnostics(deps *Dependencies) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return withScheduler(ctx, deps, func(ctx context.Context) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			rawFile := argStringDefault(args, "file", "")
			severityFilter := argStringDefault(args, "severity_filter", "")

			var diagnostics []types.Diagnostic
			var targetFile string
			if rawFile != "" {
				path, err := resolvePath(deps.root(), rawFile)
				if err != nil {
					return errorResult(apperrorInvalidArg(err)), nil
				}
				targetFile = path
				diagnostics = externalDiagnostics(path, deps.Host.LSP().Diagnostics("file://"+path))
			} else {
				for uri, diags := range deps.Host.LSP().AllDiagnostics() {
					file := strings.TrimPrefix(uri, "file://")
					diagnostics = append(diagnostics, externalDiagnostics(file, diags)...)
				}
			}

			if severityFilter != "" {
				filtered := make([]types.Diagnostic, 0, len(diagnostics))
				for _, d := range diagnostics {
					if string(d.Severity) == severityFilter {
						filtered = append(filtered, d)
					}
				}
				diagnostics = filtered
			}

			return jsonResult(struct {
				Diagnostics []types.Diagnostic `json:"diagnostics"`
				TotalCount  int                `json:"total_count"`
				File        string             `json:"file,omitempty"`
			}{Diagnostics: diagnostics, TotalCount: len(diagnostics), File: targetFile})
		})
	}
}

func handleRenameSymbol(deps *Dependencies) server.ToolHandlerFunc {
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
			line, err := argInt(args, "line")
			if err != nil {
				return errorResult(apperrorInvalidArg(err)), nil
			}
			column, err := argInt(args, "column")
			if err != nil {
				return errorResult(apperrorInvalidArg(err)), nil
			}
			newName, err := argString(args, "new_name")
			if err != nil {
				return errorResult(apperrorInvalidArg(err)), nil
			}
			preview := argBoolDefault(args, "preview", true)

			if err := ensureReady(ctx, deps, path); err != nil {
				return errorResult(err), nil
			}

			changes, err := deps.Host.LSP().Rename(ctx, path, toInternalLine(line), column, newName)
			if err != nil {
				return errorResult(apperror.LSPFailed(err, "textDocument/rename")), nil
			}

			diffs, err := applyWorkspaceEdit(deps, changes, preview)
			if err != nil {
				return errorResult(err), nil
			}

			return jsonResult(struct {
				Diffs   map[string]string `json:"diffs"`
				Applied bool              `json:"applied"`
			}{Diffs: diffs, Applied: !preview})
		})
	}
}

func handleApplyCodeAction(deps *Dependencies) server.ToolHandlerFunc {
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
			line, err := argInt(args, "line")
			if err != nil {
				return errorResult(apperrorInvalidArg(err)), nil
			}
			column, err := argInt(args, "column")
			if err != nil {
				return errorResult(apperrorInvalidArg(err)), nil
			}
			kindFilter := argStringDefault(args, "kind_filter", "")
			actionIndex := argIntDefault(args, "action_index", -1)

			if err := ensureReady(ctx, deps, path); err != nil {
				return errorResult(err), nil
			}

			internalLine := toInternalLine(line)
			rng := lsp.Range{
				Start: lsp.Position{Line: internalLine, Character: column},
				End:   lsp.Position{Line: internalLine, Character: column},
			}
			diagnostics := deps.Host.LSP().Diagnostics("file://" + path)

			actions, err := deps.Host.LSP().CodeActions(ctx, path, rng, diagnostics)
			if err != nil {
				return errorResult(apperror.LSPFailed(err, "textDocument/codeAction")), nil
			}

			matching := actions
			if kindFilter != "" {
				matching = make([]lsp.CodeAction, 0, len(actions))
				for _, a := range actions {
					if a.Kind == kindFilter {
						matching = append(matching, a)
					}
				}
			}

			if actionIndex < 0 && len(matching) != 1 {
				return jsonResult(struct {
					Actions []lsp.CodeAction `json:"actions"`
				}{Actions: matching})
			}

			idx := actionIndex
			if idx < 0 {
				idx = 0
			}
			if idx >= len(matching) {
				return errorResult(apperror.InvalidRange(fmt.Sprintf("action_index %d out of range (%d candidates)", idx, len(matching)))), nil
			}

			action := matching[idx]
			if action.Edit == nil {
				return errorResult(apperror.NotImplemented("code actions resolved only via a follow-up command, not a direct edit")), nil
			}

			diffs, err := applyWorkspaceEdit(deps, action.Edit.Changes, false)
			if err != nil {
				return errorResult(err), nil
			}

			return jsonResult(struct {
				Title   string            `json:"title"`
				Diffs   map[string]string `json:"diffs"`
				Applied bool              `json:"applied"`
			}{Title: action.Title, Diffs: diffs, Applied: true})
		})
	}
}

// applyWorkspaceEdit opens every affected file as a buffer and applies its
// text edits, returning a per-file diff. preview=true leaves buffers
// unmutated (rename_symbol's preview contract); apply always persists to
// disk, since a workspace edit that is only half-applied in memory across
// several buffers is not a state worth leaving around.
func applyWorkspaceEdit(deps *Dependencies, changes map[string][]lsp.TextEdit, preview bool) (map[string]string, error) {
	diffs := make(map[string]string, len(changes))
	for uri, edits := range changes {
		file := strings.TrimPrefix(uri, "file://")
		if _, err := deps.Buffers.Open(file); err != nil {
			return nil, apperror.Wrap(apperror.KindInternal, err, "opening buffer for workspace edit")
		}

		internalEdits := make([]editing.TextEdit, 0, len(edits))
		for _, e := range edits {
			internalEdits = append(internalEdits, editing.TextEdit{
				StartLine: e.Range.Start.Line,
				StartChar: e.Range.Start.Character,
				EndLine:   e.Range.End.Line,
				EndChar:   e.Range.End.Character,
				NewText:   e.NewText,
			})
		}

		result, err := deps.Buffers.ApplyTextEdits(file, internalEdits, preview, !preview)
		if err != nil {
			return nil, err
		}
		diffs[file] = result.Diff
	}
	return diffs, nil
}

// resolvePosition resolves a tool call's effective (internal-line, column)
// position, supporting both a direct position and a symbol-name lookup via
// document symbols when only a name is given (spec §4.4 find definition).
func resolvePosition(ctx context.Context, deps *Dependencies, path string, args map[string]any) (int, int, error) {
	if symbol := argStringDefault(args, "symbol", ""); symbol != "" {
		if _, hasLine := args["line"]; !hasLine {
			symbols, err := deps.Host.LSP().DocumentSymbol(ctx, path)
			if err != nil {
				return 0, 0, apperror.LSPFailed(err, "textDocument/documentSymbol")
			}
			for _, s := range symbols {
				if s.Name == symbol {
					return s.Location.Range.Start.Line, s.Location.Range.Start.Character, nil
				}
			}
			return 0, 0, apperror.New(apperror.KindNotOpenOrNotAttached, fmt.Sprintf("no symbol named %q found in %s", symbol, path))
		}
	}

	line, err := argInt(args, "line")
	if err != nil {
		return 0, 0, apperrorInvalidArg(err)
	}
	column := argIntDefault(args, "column", 0)
	return toInternalLine(line), column, nil
}
