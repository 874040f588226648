package event

import "github.com/otter-ide/otter/pkg/types"

// BufferChangedData is the data for buffer.changed events, published
// whenever an editing-surface operation modifies a buffer's in-memory
// content (edit_buffer, find_and_replace) or its disk-synced state
// (save_buffer, discard_buffer).
type BufferChangedData struct {
	Path     string `json:"path"`
	Modified bool   `json:"modified"`
}

// DiagnosticsPublishedData is the data for diagnostics.published events,
// one per diagnostics set a language server pushes for a file
// (textDocument/publishDiagnostics). No component in this module publishes
// these events: lsp.Client.OnDiagnostics is the hook for it, and nothing
// registers a callback there.
type DiagnosticsPublishedData struct {
	File        string             `json:"file"`
	Language    string             `json:"language"`
	Diagnostics []types.Diagnostic `json:"diagnostics"`
}

// LSPClientReadyData is the data for lsp_client.ready and lsp_client.failed
// events. No component in this module publishes them; lsp.Client.WaitReady,
// the readiness probe (a workspace/symbol request, never a time-based
// sleep), reports its outcome only through its return value.
type LSPClientReadyData struct {
	Language string `json:"language"`
	Ready    bool   `json:"ready"`
	Error    string `json:"error,omitempty"`
}

// DebugSessionStateChangedData is the data for
// debug_session.state_changed events, published on every Debug Session
// status transition (running/paused/terminated/exited).
type DebugSessionStateChangedData struct {
	SessionID string `json:"sessionID"`
	Status    string `json:"status"`
	Reason    string `json:"reason,omitempty"`
}

// DebugSessionEvictedData is the data for debug_session.evicted events,
// published when the retention sweeper drops a terminated session past its
// TTL.
type DebugSessionEvictedData struct {
	SessionID string `json:"sessionID"`
}
