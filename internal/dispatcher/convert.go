package dispatcher

import (
	"strings"

	"github.com/otter-ide/otter/internal/apperror"
	"github.com/otter-ide/otter/internal/lsp"
	"github.com/otter-ide/otter/pkg/types"
)

// apperrorInvalidArg adapts a plain argument-coercion error (missing key,
// wrong type) into the typed error shape that crosses the tool boundary.
func apperrorInvalidArg(err error) *apperror.Error {
	return apperror.Wrap(apperror.KindInvalidRange, err, err.Error())
}

// apperrorInternal adapts a plain lower-layer error (filesystem walk,
// encoding) that carries no more specific Kind into the dispatcher's
// last-resort wrapper.
func apperrorInternal(err error, message string) *apperror.Error {
	return apperror.Wrap(apperror.KindInternal, err, message)
}

// externalDiagnostics translates a language server's 0-indexed diagnostics
// into Otter's 1-indexed-line external convention.
func externalDiagnostics(file string, diags []lsp.Diagnostic) []types.Diagnostic {
	out := make([]types.Diagnostic, 0, len(diags))
	for _, d := range diags {
		out = append(out, types.Diagnostic{
			Severity: externalSeverity(d.Severity),
			Message:  d.Message,
			File:     file,
			Line:     toExternalLine(d.Range.Start.Line),
			Column:   d.Range.Start.Character,
			Source:   d.Source,
		})
	}
	return out
}

func externalSeverity(s int) types.Severity {
	switch s {
	case lsp.DiagnosticSeverityError:
		return types.SeverityError
	case lsp.DiagnosticSeverityWarning:
		return types.SeverityWarning
	case lsp.DiagnosticSeverityInformation:
		return types.SeverityInfo
	case lsp.DiagnosticSeverityHint:
		return types.SeverityHint
	default:
		return types.SeverityInfo
	}
}

// externalSymbolKind translates LSP's numeric symbol kind to Otter's closed
// string set, falling back to "variable" for kinds outside the mapped range
// rather than surfacing the raw LSP number at the external boundary.
func externalSymbolKind(k lsp.SymbolKind) types.SymbolKind {
	switch k {
	case lsp.SymbolKindFile:
		return types.SymbolKindFile
	case lsp.SymbolKindModule:
		return types.SymbolKindModule
	case lsp.SymbolKindNamespace:
		return types.SymbolKindNamespace
	case lsp.SymbolKindPackage:
		return types.SymbolKindPackage
	case lsp.SymbolKindClass:
		return types.SymbolKindClass
	case lsp.SymbolKindMethod:
		return types.SymbolKindMethod
	case lsp.SymbolKindProperty:
		return types.SymbolKindProperty
	case lsp.SymbolKindField:
		return types.SymbolKindField
	case lsp.SymbolKindConstructor:
		return types.SymbolKindConstructor
	case lsp.SymbolKindEnum:
		return types.SymbolKindEnum
	case lsp.SymbolKindInterface:
		return types.SymbolKindInterface
	case lsp.SymbolKindFunction:
		return types.SymbolKindFunction
	case lsp.SymbolKindVariable:
		return types.SymbolKindVariable
	case lsp.SymbolKindConstant:
		return types.SymbolKindConstant
	case lsp.SymbolKindString:
		return types.SymbolKindString
	case lsp.SymbolKindNumber:
		return types.SymbolKindNumber
	case lsp.SymbolKindBoolean:
		return types.SymbolKindBoolean
	case lsp.SymbolKindArray:
		return types.SymbolKindArray
	case lsp.SymbolKindStruct:
		return types.SymbolKindStruct
	case lsp.SymbolKindEnumMember:
		return types.SymbolKindEnumMember
	case lsp.SymbolKindTypeParam:
		return types.SymbolKindTypeParameter
	default:
		return types.SymbolKindVariable
	}
}

// externalLocation translates an LSP symbol location to the external
// {file, line, column} shape, stripping the file:// scheme every server
// response carries so downstream string comparisons (e.g. "is this the
// file I asked about") work against a plain path.
func externalLocation(loc lsp.SymbolLocation) (string, int, int) {
	return strings.TrimPrefix(loc.URI, "file://"), toExternalLine(loc.Range.Start.Line), loc.Range.Start.Character
}

// findSymbolAt returns the innermost document symbol whose range contains
// the internal (0-indexed line, 0-indexed character) position, searching
// nested children first so a method's range wins over its enclosing type.
func findSymbolAt(symbols []lsp.Symbol, line, character int) *lsp.Symbol {
	for _, sym := range symbols {
		if !rangeContains(sym.Location.Range, line, character) {
			continue
		}
		if found := findSymbolAt(sym.Children, line, character); found != nil {
			return found
		}
		s := sym
		return &s
	}
	return nil
}

func rangeContains(r lsp.Range, line, character int) bool {
	if line < r.Start.Line || line > r.End.Line {
		return false
	}
	if line == r.Start.Line && character < r.Start.Character {
		return false
	}
	if line == r.End.Line && character > r.End.Character {
		return false
	}
	return true
}

// externalSymbol converts one document symbol, recursing into children so
// a hierarchical server response keeps its nesting across the tool
// boundary instead of being flattened.
func externalSymbol(sym lsp.Symbol) types.Symbol {
	_, line, column := externalLocation(sym.Location)
	out := types.Symbol{
		Name:      sym.Name,
		Kind:      externalSymbolKind(sym.Kind),
		Line:      line,
		Column:    column,
		Signature: sym.Detail,
		Detail:    sym.Detail,
	}
	if len(sym.Children) > 0 {
		out.Children = make([]types.Symbol, len(sym.Children))
		for i, c := range sym.Children {
			out.Children[i] = externalSymbol(c)
		}
	}
	return out
}
