package dap

import (
	"time"

	"github.com/otter-ide/otter/internal/event"
)

// Retention durations from the termination table: crashes outlive clean
// exits because agents query asynchronously and need crash info to
// survive well past the target process's death; still-running sessions
// are never evicted.
const (
	crashRetention = 5 * time.Minute
	cleanRetention = 30 * time.Second
	sweepInterval  = 5 * time.Second
)

// startSweeper launches the retention eviction loop. No pack library in
// this module's dependency set offers scheduled TTL eviction for
// in-memory maps (watermill's gochannel is a pub/sub transport, not a
// timer), so this uses a plain time.Ticker — the standard, idiomatic
// choice for a fixed-interval background sweep.
func (s *Service) startSweeper() {
	s.stopSweeper = make(chan struct{})
	ticker := time.NewTicker(sweepInterval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.stopSweeper:
				return
			}
		}
	}()
}

// Close stops the retention sweeper and terminates every still-running
// session's adapter connection. It does not erase retained snapshots, and
// since no sweep runs after Close, callers querying by ID keep getting
// them.
func (s *Service) Close() {
	close(s.stopSweeper)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		if !sess.isTerminated() && sess.conn != nil {
			_ = sess.conn.close()
		}
	}
}

func (s *Service) sweep() {
	now := time.Now()

	s.mu.Lock()
	var evicted []string
	for id, sess := range s.sessions {
		if !sess.isTerminated() {
			continue
		}
		age := now.Sub(sess.terminatedAtTime())
		retention := cleanRetention
		if sess.isCrash() {
			retention = crashRetention
		}
		if age > retention {
			delete(s.sessions, id)
			evicted = append(evicted, id)
		}
	}
	s.mu.Unlock()

	for _, id := range evicted {
		if s.bus != nil {
			s.bus.Publish(event.Event{
				Type: event.DebugSessionEvicted,
				Data: event.DebugSessionEvictedData{SessionID: id},
			})
		}
	}
}
