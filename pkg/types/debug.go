package types

// DebugSessionStatus is the derived status of a Debug Session, computed
// fresh on every query from (a) whether an adapter session with this ID is
// still active, (b) the retained termination flag, and (c) the retained
// exit code.
type DebugSessionStatus string

const (
	DebugStatusRunning    DebugSessionStatus = "running"
	DebugStatusPaused     DebugSessionStatus = "paused"
	DebugStatusTerminated DebugSessionStatus = "terminated"
	DebugStatusExited     DebugSessionStatus = "exited"
	DebugStatusNoSession  DebugSessionStatus = "no_session"
)

// LaunchSpec is the caller-supplied launch configuration for a Debug
// Session. File and Module are mutually exclusive; exactly one is set.
type LaunchSpec struct {
	File        string            `json:"file,omitempty"`
	Module      string            `json:"module,omitempty"`
	Args        []string          `json:"args,omitempty"`
	Env         map[string]string `json:"env,omitempty"`
	Cwd         string            `json:"cwd,omitempty"`
	StopOnEntry bool              `json:"stop_on_entry"`
	JustMyCode  bool              `json:"just_my_code"`
	Breakpoints []int             `json:"breakpoints,omitempty"`
	Language    string            `json:"language,omitempty"`
}

// StackFrame is one frame returned by a paused session's stackTrace query.
type StackFrame struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// Variable is one name/value/type entry from a paused session's scope.
type Variable struct {
	Name               string `json:"name"`
	Value              string `json:"value"`
	Type               string `json:"type,omitempty"`
	VariablesReference int    `json:"variables_reference,omitempty"`
}

// InspectResult is the response to inspect_state while paused.
type InspectResult struct {
	StackFrames []StackFrame `json:"stack_frames"`
	Variables   []Variable   `json:"variables"`
	Evaluation  string       `json:"evaluation,omitempty"`
}

// DebugSessionSnapshot is the queryable, retained view of a Debug Session:
// the same shape whether the session is live or only a retained record of
// a terminated one.
type DebugSessionSnapshot struct {
	SessionID    string             `json:"session_id"`
	Status       DebugSessionStatus `json:"status"`
	Launch       LaunchSpec         `json:"launch"`
	PID          int                `json:"pid,omitempty"`
	AdapterID    string             `json:"adapter_session_id,omitempty"`
	StartTime    int64              `json:"start_time"`
	Stdout       string             `json:"stdout"`
	Stderr       string             `json:"stderr"`
	ExitCode     *int               `json:"exit_code,omitempty"`
	Terminated   bool               `json:"terminated"`
	UptimeMillis int64              `json:"uptime_millis"`
	CrashReason  string             `json:"crash_reason,omitempty"`
	Message      string             `json:"message,omitempty"`
}
