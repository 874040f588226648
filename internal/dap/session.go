package dap

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/otter-ide/otter/pkg/types"
)

// session is the broker's in-memory record for one Debug Session. The
// broker generates SessionID locally and owns it; the adapter connection
// owns the data appended under that ID (process spawned, output,
// exited/terminated events) — the identity/data ownership inversion that
// lets a query answer from a retained snapshot after the target process
// and even the adapter connection are gone.
type session struct {
	mu sync.Mutex

	id     string
	launch types.LaunchSpec

	conn *adapterConn

	pid          int
	adapterID    string
	startTime    time.Time
	terminatedAt time.Time

	stopped bool // paused, vs running
	stdout  bytes.Buffer
	stderr  bytes.Buffer

	terminated  bool
	exitCode    *int
	crashReason string

	lastFrames []types.StackFrame
}

// snapshot renders the current derived state as the queryable record.
// status is computed fresh every call, never cached, per the state-machine
// invariant that it reflects (a) adapter liveness, (b) the retained
// terminated flag, and (c) the retained exit code.
func (s *session) snapshot() types.DebugSessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := s.statusLocked()
	uptime := s.uptimeLocked()

	return types.DebugSessionSnapshot{
		SessionID:    s.id,
		Status:       status,
		Launch:       s.launch,
		PID:          s.pid,
		AdapterID:    s.adapterID,
		StartTime:    s.startTime.UnixMilli(),
		Stdout:       s.stdout.String(),
		Stderr:       s.stderr.String(),
		ExitCode:     s.exitCode,
		Terminated:   s.terminated,
		UptimeMillis: uptime.Milliseconds(),
		CrashReason:  s.crashReason,
	}
}

func (s *session) statusLocked() types.DebugSessionStatus {
	if s.terminated {
		if s.exitCode != nil && *s.exitCode == 0 {
			return types.DebugStatusExited
		}
		return types.DebugStatusTerminated
	}
	if s.stopped {
		return types.DebugStatusPaused
	}
	return types.DebugStatusRunning
}

func (s *session) uptimeLocked() time.Duration {
	if s.terminated {
		return s.terminatedAt.Sub(s.startTime)
	}
	return time.Since(s.startTime)
}

// markStopped records a "stopped" event (breakpoint hit, step finished, or
// stopOnEntry).
func (s *session) markStopped() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
}

// markRunning records a "continued"-equivalent transition back to running.
func (s *session) markRunning() {
	s.mu.Lock()
	s.stopped = false
	s.mu.Unlock()
}

// appendOutput appends to the stdout or stderr byte sequence, keyed by
// category at capture time — never merged, never reconstructed after the
// fact.
func (s *session) appendOutput(category, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch category {
	case "stderr":
		s.stderr.WriteString(text)
	default:
		s.stdout.WriteString(text)
	}
}

// markExited records the exit code from the DAP "exited" event.
func (s *session) markExited(exitCode int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ec := exitCode
	s.exitCode = &ec
}

// markTerminated records the DAP "terminated" event and derives
// crash_reason from the exit code and uptime, per the termination table:
// clean exit, known non-zero exit, early-startup termination with no known
// exit code, or an unexplained termination.
func (s *session) markTerminated() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.terminated = true
	s.terminatedAt = time.Now()
	uptime := s.terminatedAt.Sub(s.startTime)

	switch {
	case s.exitCode != nil && *s.exitCode == 0:
		s.crashReason = "Process exited cleanly (code 0)"
	case s.exitCode != nil:
		s.crashReason = fmtExitCode(*s.exitCode)
	case uptime < 2*time.Second:
		s.crashReason = "Process terminated during startup"
	default:
		s.crashReason = "Process terminated unexpectedly"
	}
}

func fmtExitCode(code int) string {
	return fmt.Sprintf("Process exited with code %d", code)
}

// isCrash reports whether this terminated session counts as a crash for
// retention purposes (non-zero or unknown exit code, or an abnormal
// termination without a matching exited event).
func (s *session) isCrash() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.terminated {
		return false
	}
	return s.exitCode == nil || *s.exitCode != 0
}

func (s *session) isTerminated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.terminated
}

func (s *session) terminatedAtTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.terminatedAt
}
