package editing

import (
	"fmt"
	"os"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffResult is the response to buffer_diff: the unsaved delta between a
// buffer's in-memory content and what is currently on disk.
type DiffResult struct {
	Diff      string `json:"diff"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
}

// BufferDiff compares an open buffer's in-memory content against the file
// currently on disk and returns a unified diff plus added/deleted line
// counts. An unmodified buffer yields an empty diff.
func (s *BufferSet) BufferDiff(path string) (DiffResult, error) {
	b, err := s.lookup(path)
	if err != nil {
		return DiffResult{}, err
	}

	b.mu.RLock()
	current := b.content
	b.mu.RUnlock()

	onDisk, err := readFileBytes(path)
	if err != nil {
		return DiffResult{}, err
	}

	diff, additions, deletions := buildUnifiedDiff(path, string(onDisk), current)
	return DiffResult{Diff: diff, Additions: additions, Deletions: deletions}, nil
}

// unifiedDiff is the shared line-level diff used by edit_buffer and
// find_and_replace to preview a change before it is applied.
func unifiedDiff(path, before, after string) (string, int, int) {
	return buildUnifiedDiff(path, before, after)
}

func buildUnifiedDiff(path, before, after string) (string, int, int) {
	if before == after {
		return "", 0, 0
	}

	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	additions, deletions := 0, 0
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			additions += countDiffLines(d.Text)
		case diffmatchpatch.DiffDelete:
			deletions += countDiffLines(d.Text)
		}
	}

	patches := dmp.PatchMake(before, diffs)
	diffText := dmp.PatchToText(patches)
	if diffText == "" {
		return "", additions, deletions
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("--- %s\n", path))
	builder.WriteString(fmt.Sprintf("+++ %s\n", path))
	builder.WriteString(diffText)

	return builder.String(), additions, deletions
}

func countDiffLines(text string) int {
	if text == "" {
		return 0
	}
	lines := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		lines++
	}
	return lines
}

func readFileBytes(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

func writeBufferLocked(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
