package dispatcher

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/otter-ide/otter/internal/apperror"
)

// errorPayload is the wire shape every typed error takes at the dispatcher
// boundary: {kind, message, suggestions[]}, mirroring the teacher's
// internal/server ErrorResponse{Error: ErrorDetail{Code, Message, Details}}
// shape one level flatter, since apperror.Error carries no separate
// "details" map.
type errorPayload struct {
	Kind        string   `json:"kind"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// errorResult converts any error into an MCP tool error result. *apperror.Error
// values serialize their Kind and Suggestions; any other error is wrapped as
// an internal error with no suggestions, since it never should have crossed
// this boundary unwrapped (every service-layer function is expected to
// return *apperror.Error).
func errorResult(err error) *mcp.CallToolResult {
	ae, ok := apperror.As(err)
	if !ok {
		ae = apperror.Wrap(apperror.KindInternal, err, "unexpected internal error")
	}

	payload := errorPayload{
		Kind:        string(ae.Kind),
		Message:     ae.Message,
		Suggestions: ae.Suggestions,
	}
	data, _ := json.Marshal(payload)
	return mcp.NewToolResultError(string(data))
}

// jsonResult marshals v as the tool's successful JSON result text.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return errorResult(apperror.Wrap(apperror.KindInternal, err, "failed to encode result")), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
