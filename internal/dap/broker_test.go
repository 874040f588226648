package dap

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/otter-ide/otter/internal/event"
	"github.com/otter-ide/otter/internal/runtime"
	"github.com/otter-ide/otter/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	bus := event.NewBus()
	s := NewService(t.TempDir(), runtime.NewResolver(), bus, map[string]AdapterSpec{})
	t.Cleanup(s.Close)
	return s
}

func TestSnapshotUnknownSessionReturnsNoSession(t *testing.T) {
	s := newTestService(t)
	snap := s.Snapshot("does-not-exist")
	assert.Equal(t, types.DebugStatusNoSession, snap.Status)
	assert.NotEmpty(t, snap.Message)
}

func TestSweepEvictsExpiredCrashAfterRetentionWindow(t *testing.T) {
	s := newTestService(t)

	sess := &session{id: "crash-1", startTime: time.Now().Add(-10 * time.Minute)}
	sess.markExited(1)
	sess.markTerminated()
	// Back-date termination past the crash retention window.
	sess.terminatedAt = time.Now().Add(-crashRetention - time.Second)

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	s.sweep()

	snap := s.Snapshot("crash-1")
	assert.Equal(t, types.DebugStatusNoSession, snap.Status)
}

func TestSweepRetainsFreshCrashWithinWindow(t *testing.T) {
	s := newTestService(t)

	sess := &session{id: "crash-2", startTime: time.Now().Add(-time.Minute)}
	sess.markExited(1)
	sess.markTerminated()

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	s.sweep()

	snap := s.Snapshot("crash-2")
	assert.Equal(t, types.DebugStatusTerminated, snap.Status)
}

func TestSweepNeverEvictsStillRunningSessions(t *testing.T) {
	s := newTestService(t)

	sess := &session{id: "running-1", startTime: time.Now().Add(-24 * time.Hour)}
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	s.sweep()

	snap := s.Snapshot("running-1")
	assert.Equal(t, types.DebugStatusRunning, snap.Status)
}

func TestStartRejectsBothFileAndModule(t *testing.T) {
	s := newTestService(t)
	project := &types.Project{Root: t.TempDir(), Config: types.DefaultConfig()}

	_, err := s.Start(context.Background(), project, types.LaunchSpec{File: "main.py", Module: "pkg"})
	require.Error(t, err)
}

func TestStartRejectsNeitherFileNorModule(t *testing.T) {
	s := newTestService(t)
	project := &types.Project{Root: t.TempDir(), Config: types.DefaultConfig()}

	_, err := s.Start(context.Background(), project, types.LaunchSpec{})
	require.Error(t, err)
}

func TestControlOnUnknownSessionFails(t *testing.T) {
	s := newTestService(t)
	err := s.Continue(context.Background(), "does-not-exist")
	require.Error(t, err)
}

func TestLanguageFromExtension(t *testing.T) {
	r := runtime.NewResolver()
	assert.Equal(t, "python", r.LanguageForExtension(filepath.Ext("main.py")))
	assert.Equal(t, "go", r.LanguageForExtension(filepath.Ext("main.go")))
	assert.Equal(t, "", r.LanguageForExtension(filepath.Ext("README")))
}
