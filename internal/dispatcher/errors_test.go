package dispatcher

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otter-ide/otter/internal/apperror"
)

func textOf(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected a text content block")
	return text.Text
}

func TestErrorResultSerializesTypedError(t *testing.T) {
	result := errorResult(apperror.InvalidRange("line_start must be >= 1").WithSuggestions("use a positive line number"))
	require.NotNil(t, result)
	assert.True(t, result.IsError)

	var payload errorPayload
	require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &payload))
	assert.Equal(t, string(apperror.KindInvalidRange), payload.Kind)
	assert.Contains(t, payload.Suggestions, "use a positive line number")
}

func TestErrorResultWrapsUntypedErrorAsInternal(t *testing.T) {
	result := errorResult(errors.New("boom"))
	var payload errorPayload
	require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &payload))
	assert.Equal(t, string(apperror.KindInternal), payload.Kind)
}

func TestJSONResultMarshalsValue(t *testing.T) {
	result, err := jsonResult(map[string]int{"total_count": 3})
	require.NoError(t, err)
	assert.JSONEq(t, `{"total_count":3}`, textOf(t, result))
}
