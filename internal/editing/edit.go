package editing

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/otter-ide/otter/internal/apperror"
)

// LineEdit replaces the inclusive line range [LineStart, LineEnd] with
// NewText in a single buffer mutation.
type LineEdit struct {
	LineStart int    `json:"line_start"`
	LineEnd   int    `json:"line_end"`
	NewText   string `json:"new_text"`
}

// EditResult is the response to edit_buffer and find_and_replace: a
// preview carries a unified diff without mutating anything; an apply
// reports what changed.
type EditResult struct {
	Diff       string `json:"diff,omitempty"`
	Applied    bool   `json:"applied"`
	Replaced   int    `json:"replaced,omitempty"`
	HasChanges bool   `json:"has_changes"`
}

// EditBuffer applies a set of line-range replacements to an open buffer in
// one mutation. preview=true returns the unified diff without mutating;
// save=true additionally persists to disk after applying.
func (s *BufferSet) EditBuffer(path string, edits []LineEdit, preview bool, save bool) (EditResult, error) {
	b, err := s.lookup(path)
	if err != nil {
		return EditResult{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	lines := splitLines(b.content)
	newLines := make([]string, len(lines))
	copy(newLines, lines)

	for _, e := range edits {
		if e.LineStart < 1 || e.LineStart > e.LineEnd || e.LineEnd > len(lines) {
			return EditResult{}, apperror.InvalidRange(
				fmt.Sprintf("edit range [%d,%d] invalid for a %d-line buffer", e.LineStart, e.LineEnd, len(lines)))
		}
	}

	// Apply from the bottom up so earlier edits' line numbers stay valid
	// even when a replacement changes the line count.
	sorted := append([]LineEdit(nil), edits...)
	sortEditsDescending(sorted)

	for _, e := range sorted {
		replacement := splitLines(e.NewText)
		newLines = append(newLines[:e.LineStart-1], append(replacement, newLines[e.LineEnd:]...)...)
	}

	newContent := strings.Join(newLines, "\n")
	if len(lines) > 0 {
		newContent += "\n"
	}

	diff, _, _ := unifiedDiff(path, b.content, newContent)

	if preview {
		return EditResult{Diff: diff, Applied: false, HasChanges: diff != ""}, nil
	}

	b.content = newContent
	b.modified = true
	s.publish(path, true)

	if save {
		if err := writeBufferLocked(path, b.content); err != nil {
			return EditResult{}, err
		}
		b.modified = false
		s.publish(path, false)
	}

	return EditResult{Diff: diff, Applied: true, HasChanges: diff != ""}, nil
}

func sortEditsDescending(edits []LineEdit) {
	for i := 1; i < len(edits); i++ {
		for j := i; j > 0 && edits[j].LineStart > edits[j-1].LineStart; j-- {
			edits[j], edits[j-1] = edits[j-1], edits[j]
		}
	}
}

// FindAndReplace does a text-level substitution on buffer content. scope
// selects all occurrences, only the first, or the nth (1-indexed).
// Falls back to a normalized-line-ending match, then a fuzzy best-match
// scored by Levenshtein similarity, exactly as the exact-match editing
// path does, before giving up.
func (s *BufferSet) FindAndReplace(path, oldText, newText, scope string, preview bool) (EditResult, error) {
	b, err := s.lookup(path)
	if err != nil {
		return EditResult{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	newContent, replaced, err := applyFindReplace(b.content, oldText, newText, scope)
	if err != nil {
		return EditResult{}, err
	}

	diff, _, _ := unifiedDiff(path, b.content, newContent)

	if preview {
		return EditResult{Diff: diff, Applied: false, Replaced: replaced, HasChanges: diff != ""}, nil
	}

	b.content = newContent
	b.modified = true
	s.publish(path, true)

	return EditResult{Diff: diff, Applied: true, Replaced: replaced, HasChanges: diff != ""}, nil
}

func applyFindReplace(text, oldText, newText, scope string) (string, int, error) {
	count := strings.Count(text, oldText)
	if count == 0 {
		return fuzzyFindReplace(text, oldText, newText)
	}

	switch scope {
	case "", "all":
		return strings.ReplaceAll(text, oldText, newText), count, nil
	case "first":
		return strings.Replace(text, oldText, newText, 1), 1, nil
	default:
		n, err := parseNth(scope)
		if err != nil {
			return "", 0, err
		}
		if n < 1 || n > count {
			return "", 0, apperror.InvalidRange(fmt.Sprintf("nth=%d out of range (found %d occurrences)", n, count))
		}
		return replaceNth(text, oldText, newText, n), 1, nil
	}
}

func parseNth(scope string) (int, error) {
	var n int
	if _, err := fmt.Sscanf(scope, "%d", &n); err != nil {
		return 0, apperror.InvalidRange(fmt.Sprintf("unrecognized scope %q", scope))
	}
	return n, nil
}

func replaceNth(text, oldText, newText string, n int) string {
	idx := -1
	start := 0
	for i := 0; i < n; i++ {
		pos := strings.Index(text[start:], oldText)
		if pos < 0 {
			return text
		}
		idx = start + pos
		start = idx + len(oldText)
	}
	return text[:idx] + newText + text[idx+len(oldText):]
}

// fuzzyFindReplace is the forgiving fallback used when an exact match
// fails: normalized line endings first, then the closest line or line
// block by Levenshtein similarity.
func fuzzyFindReplace(text, oldText, newText string) (string, int, error) {
	normalizedOld := strings.ReplaceAll(oldText, "\r\n", "\n")
	normalizedText := strings.ReplaceAll(text, "\r\n", "\n")
	if strings.Contains(normalizedText, normalizedOld) {
		return strings.Replace(normalizedText, normalizedOld, newText, 1), 1, nil
	}

	match, sim := findBestMatch(text, oldText)
	if match != "" && sim >= 0.7 {
		return strings.Replace(text, match, newText, 1), 1, nil
	}

	return "", 0, apperror.New(apperror.KindInvalidRange, "old text not found in buffer (exact, normalized, and fuzzy matches all failed)")
}

func findBestMatch(text, target string) (string, float64) {
	lines := strings.Split(text, "\n")
	targetLines := strings.Split(target, "\n")

	bestMatch, bestSim := "", 0.0
	if len(targetLines) == 1 {
		for _, line := range lines {
			if sim := similarity(line, target); sim > bestSim {
				bestSim, bestMatch = sim, line
			}
		}
		return bestMatch, bestSim
	}

	targetLen := len(targetLines)
	for i := 0; i <= len(lines)-targetLen; i++ {
		block := strings.Join(lines[i:i+targetLen], "\n")
		if sim := similarity(block, target); sim > bestSim {
			bestSim, bestMatch = sim, block
		}
	}
	return bestMatch, bestSim
}

func similarity(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	dist := levenshtein.ComputeDistance(a, b)
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	return 1.0 - float64(dist)/float64(maxLen)
}

// SaveBuffer persists the buffer's in-memory content to disk.
func (s *BufferSet) SaveBuffer(path string) error {
	b, err := s.lookup(path)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := writeBufferLocked(path, b.content); err != nil {
		return err
	}
	b.modified = false
	s.publish(path, false)
	return nil
}

// DiscardBuffer reloads the buffer from disk, discarding any in-memory
// edits. This cannot be undone.
func (s *BufferSet) DiscardBuffer(path string) error {
	b, err := s.lookup(path)
	if err != nil {
		return err
	}

	data, err := readFileBytes(path)
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.content = string(data)
	b.modified = false
	b.mu.Unlock()

	s.publish(path, false)
	return nil
}
