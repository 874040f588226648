package editing

import (
	"fmt"
	"strings"

	"github.com/otter-ide/otter/internal/apperror"
)

// TextEdit is a character-range replacement expressed in the same
// 0-indexed-line/0-indexed-character convention LSP uses internally,
// distinct from LineEdit's external 1-indexed line-range replacement.
// rename_symbol and apply_code_action both resolve to workspace edits in
// this shape.
type TextEdit struct {
	StartLine int
	StartChar int
	EndLine   int
	EndChar   int
	NewText   string
}

// ApplyTextEdits applies a set of character-range edits to an open buffer,
// as produced by a language server's rename or code action response.
// Edits are applied bottom-up (reverse line/character order) so that
// earlier edits in the list never invalidate the positions of later ones,
// mirroring EditBuffer's descending-application strategy. preview=true
// computes the resulting diff without mutating the buffer, matching
// EditBuffer and FindAndReplace's preview contract.
func (s *BufferSet) ApplyTextEdits(path string, edits []TextEdit, preview bool, save bool) (EditResult, error) {
	b, err := s.lookup(path)
	if err != nil {
		return EditResult{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	before := b.content
	lines := strings.Split(before, "\n")

	ordered := append([]TextEdit(nil), edits...)
	sortTextEditsDescending(ordered)

	for _, e := range ordered {
		if e.StartLine < 0 || e.EndLine >= len(lines) || e.StartLine > e.EndLine {
			return EditResult{}, apperror.InvalidRange(fmt.Sprintf(
				"text edit lines [%d,%d] out of bounds for %d-line buffer", e.StartLine, e.EndLine, len(lines)))
		}
		prefix := safeSlice(lines[e.StartLine], e.StartChar)
		suffix := safeSliceFrom(lines[e.EndLine], e.EndChar)
		replacement := strings.Split(prefix+e.NewText+suffix, "\n")

		rest := append([]string(nil), lines[e.EndLine+1:]...)
		lines = append(lines[:e.StartLine], append(replacement, rest...)...)
	}

	after := strings.Join(lines, "\n")
	diff, _, _ := unifiedDiff(path, before, after)

	result := EditResult{
		Diff:       diff,
		Applied:    !preview,
		Replaced:   len(edits),
		HasChanges: before != after,
	}

	if preview {
		return result, nil
	}

	b.content = after
	b.modified = b.modified || before != after
	s.publish(path, b.modified)

	if save {
		if err := writeBufferLocked(path, after); err != nil {
			return result, err
		}
	}

	return result, nil
}

func sortTextEditsDescending(edits []TextEdit) {
	for i := 1; i < len(edits); i++ {
		for j := i; j > 0; j-- {
			a, bb := edits[j-1], edits[j]
			if a.StartLine < bb.StartLine || (a.StartLine == bb.StartLine && a.StartChar < bb.StartChar) {
				edits[j-1], edits[j] = edits[j], edits[j-1]
				continue
			}
			break
		}
	}
}

func safeSlice(s string, upTo int) string {
	if upTo < 0 {
		upTo = 0
	}
	if upTo > len(s) {
		upTo = len(s)
	}
	return s[:upTo]
}

func safeSliceFrom(s string, from int) string {
	if from < 0 {
		from = 0
	}
	if from > len(s) {
		from = len(s)
	}
	return s[from:]
}
