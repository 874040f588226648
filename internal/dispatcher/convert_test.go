package dispatcher

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/otter-ide/otter/internal/lsp"
	"github.com/otter-ide/otter/pkg/types"
)

func TestExternalDiagnosticsConvertsLineAndSeverity(t *testing.T) {
	diags := []lsp.Diagnostic{
		{
			Range:    lsp.Range{Start: lsp.Position{Line: 4, Character: 2}, End: lsp.Position{Line: 4, Character: 10}},
			Severity: lsp.DiagnosticSeverityWarning,
			Message:  "unused variable",
			Source:   "gopls",
		},
	}

	out := externalDiagnostics("/repo/main.go", diags)
	assert.Len(t, out, 1)
	assert.Equal(t, 5, out[0].Line) // 0-indexed 4 -> external 5
	assert.Equal(t, 2, out[0].Column)
	assert.Equal(t, types.SeverityWarning, out[0].Severity)
	assert.Equal(t, "/repo/main.go", out[0].File)
}

func TestExternalSymbolKindMapsKnownKinds(t *testing.T) {
	assert.Equal(t, types.SymbolKindFunction, externalSymbolKind(lsp.SymbolKindFunction))
	assert.Equal(t, types.SymbolKindStruct, externalSymbolKind(lsp.SymbolKindStruct))
}

func TestExternalSymbolKindFallsBackToVariableForUnmappedKinds(t *testing.T) {
	assert.Equal(t, types.SymbolKindVariable, externalSymbolKind(lsp.SymbolKindOperator))
}

func TestExternalLocationConvertsLine(t *testing.T) {
	loc := lsp.SymbolLocation{URI: "file:///repo/main.go", Range: lsp.Range{Start: lsp.Position{Line: 9, Character: 3}}}
	file, line, column := externalLocation(loc)
	assert.Equal(t, "/repo/main.go", file)
	assert.Equal(t, 10, line)
	assert.Equal(t, 3, column)
}
