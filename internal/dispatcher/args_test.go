package dispatcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgStringRequiresPresence(t *testing.T) {
	_, err := argString(map[string]any{}, "file")
	require.Error(t, err)
}

func TestArgStringRejectsWrongType(t *testing.T) {
	_, err := argString(map[string]any{"file": 5.0}, "file")
	require.Error(t, err)
}

func TestArgStringDefaultFallsBackOnMissingOrEmpty(t *testing.T) {
	assert.Equal(t, "all", argStringDefault(map[string]any{}, "scope", "all"))
	assert.Equal(t, "all", argStringDefault(map[string]any{"scope": ""}, "scope", "all"))
	assert.Equal(t, "first", argStringDefault(map[string]any{"scope": "first"}, "scope", "all"))
}

func TestArgIntCoercesJSONNumberTypes(t *testing.T) {
	n, err := argInt(map[string]any{"line": 3.0}, "line")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestArgIntDefaultFallsBackOnWrongType(t *testing.T) {
	assert.Equal(t, 50, argIntDefault(map[string]any{"max_results": "fifty"}, "max_results", 50))
}

func TestArgBoolDefaultFallsBackOnMissing(t *testing.T) {
	assert.True(t, argBoolDefault(map[string]any{}, "preview", true))
	assert.False(t, argBoolDefault(map[string]any{"preview": false}, "preview", true))
}

func TestArgStringSliceFiltersNonStringElements(t *testing.T) {
	out := argStringSlice(map[string]any{"args": []any{"a", 1.0, "b"}}, "args")
	assert.Equal(t, []string{"a", "b"}, out)
}

func TestArgIntSliceCoercesFloat64Elements(t *testing.T) {
	out := argIntSlice(map[string]any{"lines": []any{1.0, 2.0, 3.0}}, "lines")
	assert.Equal(t, []int{1, 2, 3}, out)
}

func TestArgObjectSliceExtractsStructuredEntries(t *testing.T) {
	raw := []any{
		map[string]any{"line_start": 1.0, "line_end": 2.0, "new_text": "x"},
	}
	out := argObjectSlice(map[string]any{"edits": raw}, "edits")
	require.Len(t, out, 1)
	assert.Equal(t, "x", out[0]["new_text"])
}

func TestArgStringMapExtractsStringValues(t *testing.T) {
	raw := map[string]any{"PATH": "/usr/bin", "COUNT": 1.0}
	out := argStringMap(map[string]any{"env": raw}, "env")
	assert.Equal(t, "/usr/bin", out["PATH"])
	_, hasCount := out["COUNT"]
	assert.False(t, hasCount)
}
