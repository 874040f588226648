// Package editing implements the editing surface: operations on open
// buffers rather than directly on disk, except read_file which is
// explicitly disk-backed. Buffer state lives in a BufferSet (one entry per
// open absolute path) instead of being read fresh off disk on every call.
package editing

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/otter-ide/otter/internal/event"
)

// Buffer is one open file's in-memory state: its current content
// (possibly containing unsaved edits), whether it differs from disk, and
// its detected language.
type Buffer struct {
	mu       sync.RWMutex
	path     string
	content  string
	modified bool
	language string
}

// BufferInfo is the external, read-only view of a Buffer.
type BufferInfo struct {
	IsOpen     bool   `json:"is_open"`
	IsModified bool   `json:"is_modified"`
	LineCount  int    `json:"line_count"`
	Language   string `json:"language"`
}

// BufferSet owns every open buffer for a project. Created lazily on first
// open; a buffer is never auto-closed.
type BufferSet struct {
	mu      sync.RWMutex
	buffers map[string]*Buffer
	bus     *event.Bus
}

// NewBufferSet constructs an empty buffer set publishing change events to
// bus (may be nil in tests that don't care about notifications).
func NewBufferSet(bus *event.Bus) *BufferSet {
	return &BufferSet{
		buffers: make(map[string]*Buffer),
		bus:     bus,
	}
}

// Open reads path from disk into a new buffer if it is not already open;
// returns the existing buffer otherwise. This is the lazy-creation point
// every editing and LSP-adjacent operation funnels through.
func (s *BufferSet) Open(path string) (*Buffer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b, ok := s.buffers[path]; ok {
		return b, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening buffer %s: %w", path, err)
	}

	b := &Buffer{
		path:     path,
		content:  string(data),
		language: detectLanguage(path),
	}
	s.buffers[path] = b
	return b, nil
}

// lookup returns an already-open buffer, or a not-open error. All editing
// operations except read_file reject files that are not open.
func (s *BufferSet) lookup(path string) (*Buffer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.buffers[path]
	if !ok {
		return nil, errNotOpen(path)
	}
	return b, nil
}

// Info returns the external, read-only snapshot of an open buffer.
func (s *BufferSet) Info(path string) (BufferInfo, error) {
	b, err := s.lookup(path)
	if err != nil {
		return BufferInfo{}, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	return BufferInfo{
		IsOpen:     true,
		IsModified: b.modified,
		LineCount:  strings.Count(b.content, "\n") + 1,
		Language:   b.language,
	}, nil
}

func (s *BufferSet) publish(path string, modified bool) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(event.Event{
		Type: event.BufferChanged,
		Data: event.BufferChangedData{Path: path, Modified: modified},
	})
}

// LanguageFor reports the language detected for path by extension, without
// requiring the file to be open as a buffer. document_symbols reports a
// file's language even when the caller never opened it directly.
func LanguageFor(path string) string {
	return detectLanguage(path)
}

func detectLanguage(path string) string {
	switch filepath.Ext(path) {
	case ".go":
		return "go"
	case ".py":
		return "python"
	case ".ts", ".tsx":
		return "typescript"
	case ".js", ".jsx":
		return "javascript"
	case ".rs":
		return "rust"
	default:
		return ""
	}
}
