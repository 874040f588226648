package dap

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/otter-ide/otter/internal/apperror"
	"github.com/otter-ide/otter/internal/event"
	"github.com/otter-ide/otter/internal/runtime"
	"github.com/otter-ide/otter/pkg/types"
)

// stopSettleWindow is the brief pause between setting breakpoints on a
// just-launched, stopped-at-entry session and resuming it, giving the
// adapter time to acknowledge the breakpoints before continue races ahead
// of them.
const stopSettleWindow = 150 * time.Millisecond

// Service is the broker's exclusive owner of every Debug Session for a
// project: one active-session map (mirroring the teacher's
// ActiveSession/abort-channel pattern, generalized from LLM conversation
// sessions to debug sessions), one event bus it publishes state
// transitions onto, and one retention sweeper.
type Service struct {
	projectRoot string
	resolver    *runtime.Resolver
	bus         *event.Bus
	adapters    map[string]AdapterSpec

	mu       sync.RWMutex
	sessions map[string]*session

	stopSweeper chan struct{}
}

// AdapterSpec is one language's debug adapter launch command, analogous to
// internal/lsp's builtInServers table but for DAP adapters.
type AdapterSpec struct {
	Command      []string
	Prerequisite string // e.g. "debugpy" importable by the resolved interpreter
	AdapterID    string
}

// NewService constructs a Debug Session broker for one project.
func NewService(projectRoot string, resolver *runtime.Resolver, bus *event.Bus, adapters map[string]AdapterSpec) *Service {
	s := &Service{
		projectRoot: projectRoot,
		resolver:    resolver,
		bus:         bus,
		adapters:    adapters,
		sessions:    make(map[string]*session),
	}
	s.startSweeper()
	return s
}

// Start launches a new Debug Session per spec.LaunchSpec and returns its
// broker-generated ID once the adapter has answered the launch request
// (and, when breakpoints are given, once they are set and the session has
// been resumed); the caller observes later state via Snapshot polling or
// the debug_session.state_changed event.
func (s *Service) Start(ctx context.Context, project *types.Project, spec types.LaunchSpec) (string, error) {
	if (spec.File == "") == (spec.Module == "") {
		return "", apperror.New(apperror.KindInvalidRange, "launch spec must set exactly one of file or module")
	}

	language := spec.Language
	if language == "" && spec.File != "" {
		language = s.resolver.LanguageForExtension(filepath.Ext(spec.File))
	}
	if language == "" {
		return "", apperror.NotImplemented("module-only launch with no configured default language; pass an explicit language")
	}

	adapterSpec, ok := s.adapters[language]
	if !ok {
		return "", apperror.AdapterUnavailable(language, "no debug adapter configured for this language")
	}

	// Same runtime LSP uses for this language, per the "LSP/DAP
	// unification" invariant: a debug session never resolves a different
	// interpreter than semantic queries already use.
	resolved, err := s.resolver.Resolve(ctx, language, project)
	if err != nil {
		return "", err
	}

	id := ulid.Make().String()
	cwd := spec.Cwd
	if cwd == "" {
		cwd = project.Root
	}

	// Naive "start with breakpoints" is unreliable across adapters: force
	// stop-on-entry whenever breakpoints are requested, set them once the
	// session is actually stopped, then resume.
	effectiveStopOnEntry := spec.StopOnEntry || len(spec.Breakpoints) > 0

	sess := &session{
		id:        id,
		launch:    spec,
		startTime: time.Now(),
	}

	onEvent := func(name string, body json.RawMessage) {
		s.handleAdapterEvent(sess, name, body)
	}

	conn, err := spawnAdapter(ctx, adapterSpec.Command, cwd, mergeEnv(spec.Env, resolved.Path), onEvent)
	if err != nil {
		return "", apperror.Wrap(apperror.KindDAPFailed, err, fmt.Sprintf("spawning debug adapter for %s", language))
	}
	sess.conn = conn

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	if err := conn.request(ctx, "initialize", initializeArgs{
		ClientID:        "otter",
		AdapterID:       adapterSpec.AdapterID,
		LinesStartAt1:   true,
		ColumnsStartAt1: false,
	}, nil); err != nil {
		return id, apperror.Wrap(apperror.KindDAPFailed, err, "initialize")
	}

	launchArgs := launchArgs{
		Program:     spec.File,
		Module:      spec.Module,
		Args:        spec.Args,
		Env:         spec.Env,
		Cwd:         cwd,
		StopOnEntry: effectiveStopOnEntry,
		JustMyCode:  spec.JustMyCode,
	}
	if err := conn.request(ctx, "launch", launchArgs, nil); err != nil {
		return id, apperror.Wrap(apperror.KindDAPFailed, err, "launch")
	}

	if len(spec.Breakpoints) > 0 {
		if err := s.waitStopped(ctx, sess); err != nil {
			return id, err
		}
		if err := s.applyBreakpoints(ctx, sess, spec.File, spec.Breakpoints); err != nil {
			return id, err
		}
		time.Sleep(stopSettleWindow)
		if !spec.StopOnEntry {
			if err := s.Continue(ctx, id); err != nil {
				return id, err
			}
		}
	}

	return id, nil
}

func mergeEnv(env map[string]string, interpreterPath string) map[string]string {
	out := make(map[string]string, len(env)+1)
	for k, v := range env {
		out[k] = v
	}
	if interpreterPath != "" {
		out["OTTER_RESOLVED_INTERPRETER"] = interpreterPath
	}
	return out
}

// waitStopped blocks until the session's adapter reports a "stopped"
// event, with a bounded wait rather than a fixed sleep.
func (s *Service) waitStopped(ctx context.Context, sess *session) error {
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		sess.mu.Lock()
		stopped := sess.stopped
		sess.mu.Unlock()
		if stopped {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(20 * time.Millisecond):
		}
	}
	return apperror.TimeoutErr("waiting for debug session to reach its initial stopped state")
}

func (s *Service) applyBreakpoints(ctx context.Context, sess *session, file string, lines []int) error {
	bps := make([]breakpoint, len(lines))
	for i, l := range lines {
		bps[i] = breakpoint{Line: l}
	}
	return sess.conn.request(ctx, "setBreakpoints", setBreakpointsArgs{
		Source:      source{Path: file},
		Breakpoints: bps,
	}, nil)
}

// SetBreakpoints replaces the breakpoint set for file in an active session,
// for the set_breakpoints tool — the same wire call applyBreakpoints issues
// during Start, exposed for mid-session adjustment.
func (s *Service) SetBreakpoints(ctx context.Context, id, file string, lines []int) error {
	sess, err := s.getActive(id)
	if err != nil {
		return err
	}
	if err := s.applyBreakpoints(ctx, sess, file, lines); err != nil {
		return apperror.DAPFailed(err, "setBreakpoints")
	}
	return nil
}

// handleAdapterEvent is the adapter's event callback: it appends to the
// session's retained record under the broker-assigned ID, regardless of
// whether anything is actively waiting on that ID — the
// broker-owns-identity/child-owns-data inversion that lets queries survive
// the target process's death.
func (s *Service) handleAdapterEvent(sess *session, name string, body json.RawMessage) {
	switch name {
	case "stopped":
		sess.markStopped()
		s.publish(sess, "paused", "")
	case "continued":
		sess.markRunning()
		s.publish(sess, "running", "")
	case "output":
		var b outputEventBody
		if json.Unmarshal(body, &b) == nil {
			sess.appendOutput(b.Category, b.Output)
		}
	case "process":
		var b processEventBody
		if json.Unmarshal(body, &b) == nil {
			sess.mu.Lock()
			sess.pid = b.SystemProcessID
			sess.mu.Unlock()
		}
	case "exited":
		var b exitedEventBody
		if json.Unmarshal(body, &b) == nil {
			sess.markExited(b.ExitCode)
		}
	case "terminated":
		sess.markTerminated()
		s.publish(sess, string(sess.snapshot().Status), sess.snapshot().CrashReason)
	}
}

func (s *Service) publish(sess *session, status, reason string) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(event.Event{
		Type: event.DebugSessionStateChanged,
		Data: event.DebugSessionStateChangedData{
			SessionID: sess.id,
			Status:    status,
			Reason:    reason,
		},
	})
}

// Snapshot returns the queryable record for id, or a no_session status if
// it is unknown or was evicted by the retention sweeper.
func (s *Service) Snapshot(id string) types.DebugSessionSnapshot {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return types.DebugSessionSnapshot{
			SessionID: id,
			Status:    types.DebugStatusNoSession,
			Message:   fmt.Sprintf("no debug session %s (unknown or evicted)", id),
		}
	}
	return sess.snapshot()
}

func (s *Service) getActive(id string) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, apperror.SessionNotFound(id)
	}
	if sess.isTerminated() {
		return nil, apperror.New(apperror.KindSessionNotFound, fmt.Sprintf("debug session %s is terminated", id)).
			WithSuggestions("query its retained snapshot instead of issuing further control actions")
	}
	return sess, nil
}

// control issues one of step_over/step_into/step_out/continue/pause and
// returns once the adapter's response to that request arrives. It does not
// wait for the session to be paused again or terminated; the resulting
// "stopped"/"terminated" event is recorded by handleAdapterEvent whenever it
// arrives.
func (s *Service) control(ctx context.Context, id, command string, args any) error {
	sess, err := s.getActive(id)
	if err != nil {
		return err
	}
	if err := sess.conn.request(ctx, command, args, nil); err != nil {
		return apperror.DAPFailed(err, command)
	}
	return nil
}

func (s *Service) StepOver(ctx context.Context, id string) error {
	return s.control(ctx, id, "next", threadArgs{ThreadID: 1})
}

func (s *Service) StepInto(ctx context.Context, id string) error {
	return s.control(ctx, id, "stepIn", threadArgs{ThreadID: 1})
}

func (s *Service) StepOut(ctx context.Context, id string) error {
	return s.control(ctx, id, "stepOut", threadArgs{ThreadID: 1})
}

func (s *Service) Continue(ctx context.Context, id string) error {
	return s.control(ctx, id, "continue", threadArgs{ThreadID: 1})
}

func (s *Service) Pause(ctx context.Context, id string) error {
	return s.control(ctx, id, "pause", threadArgs{ThreadID: 1})
}

// Stop terminates the session's target process via the adapter's
// "disconnect" request.
func (s *Service) Stop(ctx context.Context, id string) error {
	sess, err := s.getActive(id)
	if err != nil {
		return err
	}
	if err := sess.conn.request(ctx, "disconnect", nil, nil); err != nil {
		return apperror.DAPFailed(err, "disconnect")
	}
	return nil
}

// Inspect returns the paused session's stack frames and variables. An
// empty frame list while status is paused is treated as a hard error, not
// a silently empty result — the historical regression this guards
// against.
func (s *Service) Inspect(ctx context.Context, id string, frameID int) (types.InspectResult, error) {
	sess, err := s.getActive(id)
	if err != nil {
		return types.InspectResult{}, err
	}

	var trace stackTraceBody
	if err := sess.conn.request(ctx, "stackTrace", stackTraceArgs{ThreadID: 1}, &trace); err != nil {
		return types.InspectResult{}, apperror.DAPFailed(err, "stackTrace")
	}

	if sess.snapshot().Status == types.DebugStatusPaused && len(trace.StackFrames) == 0 {
		return types.InspectResult{}, apperror.New(apperror.KindDAPFailed,
			"adapter reported paused status but returned zero stack frames")
	}

	frames := make([]types.StackFrame, len(trace.StackFrames))
	for i, f := range trace.StackFrames {
		frames[i] = types.StackFrame{ID: f.ID, Name: f.Name, File: f.Source.Path, Line: f.Line, Column: f.Column}
	}

	effectiveFrame := frameID
	if effectiveFrame == 0 && len(frames) > 0 {
		effectiveFrame = frames[0].ID
	}

	var scopes scopesBody
	var variables []types.Variable
	if effectiveFrame != 0 {
		if err := sess.conn.request(ctx, "scopes", scopesArgs{FrameID: effectiveFrame}, &scopes); err == nil {
			for _, scope := range scopes.Scopes {
				var vb variablesBody
				if sess.conn.request(ctx, "variables", variablesArgs{VariablesReference: scope.VariablesReference}, &vb) == nil {
					for _, v := range vb.Variables {
						variables = append(variables, types.Variable{
							Name: v.Name, Value: v.Value, Type: v.Type, VariablesReference: v.VariablesReference,
						})
					}
				}
			}
		}
	}

	sess.mu.Lock()
	sess.lastFrames = frames
	sess.mu.Unlock()

	return types.InspectResult{StackFrames: frames, Variables: variables}, nil
}

// Evaluate runs an expression in the context of a paused frame.
func (s *Service) Evaluate(ctx context.Context, id string, expression string, frameID int) (string, error) {
	sess, err := s.getActive(id)
	if err != nil {
		return "", err
	}
	var body evaluateBody
	if err := sess.conn.request(ctx, "evaluate", evaluateArgs{Expression: expression, FrameID: frameID, Context: "repl"}, &body); err != nil {
		return "", apperror.DAPFailed(err, "evaluate")
	}
	return body.Result, nil
}
