package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientDiagnosticsRoundTrip(t *testing.T) {
	client := NewClient("/tmp", false, nil)

	var gotURI string
	var gotDiags []Diagnostic
	client.OnDiagnostics(func(uri string, diags []Diagnostic) {
		gotURI = uri
		gotDiags = diags
	})

	diags := []Diagnostic{{Message: "unused variable", Severity: DiagnosticSeverityWarning}}
	client.handleDiagnostics("file:///repo/main.go", diags)

	assert.Equal(t, "file:///repo/main.go", gotURI)
	assert.Equal(t, diags, gotDiags)
	assert.Equal(t, diags, client.Diagnostics("file:///repo/main.go"))
	assert.Contains(t, client.AllDiagnostics(), "file:///repo/main.go")
}

func TestClientDiagnosticsEmptyWhenUnset(t *testing.T) {
	client := NewClient("/tmp", false, nil)
	assert.Nil(t, client.Diagnostics("file:///repo/missing.go"))
}

func TestCompletionsSortOrdering(t *testing.T) {
	items := []CompletionItem{
		{Label: "zebra", SortText: "2"},
		{Label: "apple", SortText: "1"},
		{Label: "banana", SortText: "1"},
	}

	sorted := sortCompletions(items)

	assert.Equal(t, "apple", sorted[0].Label)
	assert.Equal(t, "banana", sorted[1].Label)
	assert.Equal(t, "zebra", sorted[2].Label)
}
