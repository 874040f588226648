package editing

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/otter-ide/otter/internal/apperror"
	"github.com/otter-ide/otter/pkg/types"
)

// ReadResult is the response to read_file. It always reads disk content,
// never buffer state — callers wanting buffer content use buffer_info plus
// edit/diff operations instead.
type ReadResult struct {
	Content     string             `json:"content"`
	TotalLines  int                `json:"total_lines"`
	Language    string             `json:"language"`
	Diagnostics []types.Diagnostic `json:"diagnostics,omitempty"`
}

// ReadFile reads path from disk, formatting each selected line as
// "LINE|CONTENT". start/end are 1-indexed and inclusive on both ends.
// start<1, start>end, and start>total_lines are errors; end>total_lines
// silently caps to the last line. diagnostics, when non-nil, is attached
// verbatim to the result (the dispatcher supplies it from the LSP layer;
// this package has no LSP dependency of its own).
func (s *BufferSet) ReadFile(path string, start, end int, diagnostics []types.Diagnostic) (ReadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ReadResult{}, fmt.Errorf("reading %s: %w", path, err)
	}

	lines := splitLines(string(data))
	total := len(lines)

	if start == 0 && end == 0 {
		start, end = 1, total
	}

	if start < 1 {
		return ReadResult{}, apperror.InvalidRange(fmt.Sprintf("line_start %d must be >= 1", start))
	}
	if start > end {
		return ReadResult{}, apperror.InvalidRange(fmt.Sprintf("line_start %d is greater than line_end %d", start, end))
	}
	if start > total {
		return ReadResult{}, apperror.InvalidRange(fmt.Sprintf("line_start %d exceeds file length %d", start, total))
	}
	if end > total {
		end = total
	}

	var b strings.Builder
	for i := start; i <= end; i++ {
		b.WriteString(fmt.Sprintf("%d|%s\n", i, lines[i-1]))
	}

	return ReadResult{
		Content:     b.String(),
		TotalLines:  total,
		Language:    detectLanguage(path),
		Diagnostics: diagnostics,
	}, nil
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(s))
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines
}
