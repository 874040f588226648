// Package scheduler runs MCP tool calls as cooperative tasks over a bounded
// worker pool and enforces the configured resource caps on concurrently
// attached LSP clients and active debug sessions.
//
// The event bus's `go sub(event)` fan-out in internal/event is unbounded by
// design (every subscriber must see every event). Tool calls are different:
// the broker promises bounded parallelism, not fire-and-forget fan-out, so
// here the same "one goroutine per unit of work" shape is wrapped in a
// semaphore instead of being left to run free.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/otter-ide/otter/internal/apperror"
)

// Scheduler bounds how many tool-call tasks run at once and separately caps
// how many LSP clients and debug sessions may be attached/active
// concurrently. Exceeding a resource cap fails immediately with a typed
// error; the broker never queues indefinitely (spec §5 "Resource caps").
type Scheduler struct {
	tasks *semaphore.Weighted

	mu         sync.Mutex
	lspLimit   int64
	lspInUse   int64
	debugLimit int64
	debugInUse int64
}

// Config sets the three independent caps. A zero value means unlimited for
// that dimension.
type Config struct {
	MaxParallelTasks       int64
	MaxAttachedLSP         int64
	MaxActiveDebugSessions int64
}

// New constructs a Scheduler from cfg. Zero caps are normalized to a very
// large weight so semaphore.Acquire never blocks on them.
func New(cfg Config) *Scheduler {
	return &Scheduler{
		tasks:      semaphore.NewWeighted(normalize(cfg.MaxParallelTasks)),
		lspLimit:   normalize(cfg.MaxAttachedLSP),
		debugLimit: normalize(cfg.MaxActiveDebugSessions),
	}
}

func normalize(n int64) int64 {
	if n <= 0 {
		return 1 << 30
	}
	return n
}

// Run executes task as one scheduled unit of work, blocking until a worker
// slot is free or ctx is done. This is the suspension point for (a) RPC
// calls to the child, (b) subprocess spawns, (c) LSP/DAP polling waits —
// every tool call funnels through here so that different tool calls
// proceed concurrently only up to the configured parallelism.
func (s *Scheduler) Run(ctx context.Context, task func(context.Context) error) error {
	if err := s.tasks.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquiring scheduler slot: %w", err)
	}
	defer s.tasks.Release(1)
	return task(ctx)
}

// RunAll runs every task concurrently, bounded by the same parallelism cap
// as Run, and returns the first error encountered (if any), cancelling the
// remaining tasks' context per errgroup semantics.
func (s *Scheduler) RunAll(ctx context.Context, tasks ...func(context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, task := range tasks {
		task := task
		g.Go(func() error {
			return s.Run(gctx, task)
		})
	}
	return g.Wait()
}

// AcquireLSPClient reserves one slot against the attached-LSP-client cap.
// Call the returned release func when the client detaches.
func (s *Scheduler) AcquireLSPClient() (release func(), err error) {
	return s.acquireCap(&s.lspInUse, s.lspLimit, "attached LSP clients")
}

// AcquireDebugSession reserves one slot against the active-debug-session
// cap. Call the returned release func when the session terminates.
func (s *Scheduler) AcquireDebugSession() (release func(), err error) {
	return s.acquireCap(&s.debugInUse, s.debugLimit, "active debug sessions")
}

func (s *Scheduler) acquireCap(inUse *int64, limit int64, resource string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if *inUse >= limit {
		return nil, apperror.ResourceExhausted(resource, limit)
	}
	*inUse++

	released := false
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if released {
			return
		}
		released = true
		*inUse--
	}, nil
}

// InUse reports current LSP-client and debug-session occupancy, for
// status/diagnostic tools.
func (s *Scheduler) InUse() (lsp, debug int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lspInUse, s.debugInUse
}
