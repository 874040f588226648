package lsp

import (
	"context"
	"sort"
)

// CompletionItem is one bounded, rank-ordered completion candidate.
type CompletionItem struct {
	Label      string `json:"label"`
	Kind       int    `json:"kind,omitempty"`
	Detail     string `json:"detail,omitempty"`
	InsertText string `json:"insertText,omitempty"`
	SortText   string `json:"sortText,omitempty"`
}

// completionParams mirrors textDocument/completion.
type completionParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Position     Position               `json:"position"`
}

type completionList struct {
	IsIncomplete bool             `json:"isIncomplete"`
	Items        []CompletionItem `json:"items"`
}

// Completions returns the full, rank-ordered set of completion candidates
// at the given position. It never truncates: callers needing a bounded
// page (e.g. the MCP tool surface) truncate the returned slice themselves
// so they can still report the true candidate count alongside the page
// they return.
func (c *Client) Completions(ctx context.Context, file string, line, character int) ([]CompletionItem, error) {
	client, err := c.GetClient(ctx, file)
	if err != nil {
		return nil, err
	}
	return client.completions(ctx, file, line, character)
}

func (lc *languageClient) completions(ctx context.Context, file string, line, character int) ([]CompletionItem, error) {
	params := completionParams{
		TextDocument: TextDocumentIdentifier{URI: "file://" + file},
		Position:     Position{Line: line, Character: character},
	}

	var list completionList
	if err := lc.conn.call(ctx, "textDocument/completion", params, &list); err != nil {
		// Some servers return a bare array instead of a CompletionList.
		var items []CompletionItem
		if err2 := lc.conn.call(ctx, "textDocument/completion", params, &items); err2 != nil {
			return nil, err
		}
		list.Items = items
	}

	return sortCompletions(list.Items), nil
}

// sortCompletions ranks completion items by server-provided sortText,
// falling back to label order when sortText is absent or tied.
func sortCompletions(items []CompletionItem) []CompletionItem {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].SortText != items[j].SortText {
			return items[i].SortText < items[j].SortText
		}
		return items[i].Label < items[j].Label
	})
	return items
}

// renameParams mirrors textDocument/rename.
type renameParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Position     Position               `json:"position"`
	NewName      string                 `json:"newName"`
}

// TextEdit is one replacement within a file.
type TextEdit struct {
	Range   Range  `json:"range"`
	NewText string `json:"newText"`
}

type workspaceEdit struct {
	Changes map[string][]TextEdit `json:"changes"`
}

// Rename computes the workspace edit for renaming the symbol at a position,
// without applying it. Callers (internal/editing) turn the returned edits
// into a preview or apply them atomically.
func (c *Client) Rename(ctx context.Context, file string, line, character int, newName string) (map[string][]TextEdit, error) {
	client, err := c.GetClient(ctx, file)
	if err != nil {
		return nil, err
	}
	return client.rename(ctx, file, line, character, newName)
}

func (lc *languageClient) rename(ctx context.Context, file string, line, character int, newName string) (map[string][]TextEdit, error) {
	params := renameParams{
		TextDocument: TextDocumentIdentifier{URI: "file://" + file},
		Position:     Position{Line: line, Character: character},
		NewName:      newName,
	}

	var edit workspaceEdit
	if err := lc.conn.call(ctx, "textDocument/rename", params, &edit); err != nil {
		return nil, err
	}
	return edit.Changes, nil
}

// codeActionParams mirrors textDocument/codeAction.
type codeActionParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Range        Range                  `json:"range"`
	Context      codeActionContext      `json:"context"`
}

type codeActionContext struct {
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// CodeAction is one quick-fix or refactor offered at a range.
type CodeAction struct {
	Title   string             `json:"title"`
	Kind    string             `json:"kind,omitempty"`
	Edit    *workspaceEditOut  `json:"edit,omitempty"`
	Command *CodeActionCommand `json:"command,omitempty"`
}

type workspaceEditOut struct {
	Changes map[string][]TextEdit `json:"changes"`
}

// CodeActionCommand is a server-defined follow-up command attached to a
// code action that has no direct edit (e.g. "organize imports").
type CodeActionCommand struct {
	Title     string `json:"title"`
	Command   string `json:"command"`
	Arguments []any  `json:"arguments,omitempty"`
}

// CodeActions returns the quick-fixes/refactors available at a range.
func (c *Client) CodeActions(ctx context.Context, file string, rng Range, diagnostics []Diagnostic) ([]CodeAction, error) {
	client, err := c.GetClient(ctx, file)
	if err != nil {
		return nil, err
	}
	return client.codeActions(ctx, file, rng, diagnostics)
}

func (lc *languageClient) codeActions(ctx context.Context, file string, rng Range, diagnostics []Diagnostic) ([]CodeAction, error) {
	params := codeActionParams{
		TextDocument: TextDocumentIdentifier{URI: "file://" + file},
		Range:        rng,
		Context:      codeActionContext{Diagnostics: diagnostics},
	}

	var actions []CodeAction
	if err := lc.conn.call(ctx, "textDocument/codeAction", params, &actions); err != nil {
		return nil, err
	}
	return actions, nil
}
