// internal/adapters/queue/state.go
package queue

import (
	"context"
	"sync"
	"time"
)

// Readiness reports whether the message queue connection can take publishes.
type Readiness interface {
	IsReady() bool
	AwaitReady(ctx context.Context, timeout time.Duration) bool
}

// ConnectionState tracks the broker connection. It starts down and is driven
// by the connection's lifecycle callbacks.
type ConnectionState struct {
	mu      sync.Mutex
	ready   bool
	readyCh chan struct{}
}

var _ Readiness = (*ConnectionState)(nil)

func NewConnectionState() *ConnectionState {
	return &ConnectionState{readyCh: make(chan struct{})}
}

// MarkReady flags the connection usable and wakes every waiter.
func (s *ConnectionState) MarkReady() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		s.ready = true
		close(s.readyCh)
	}
}

// MarkDown flags the connection unusable until the next MarkReady.
func (s *ConnectionState) MarkDown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready {
		s.ready = false
		s.readyCh = make(chan struct{})
	}
}

func (s *ConnectionState) IsReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// AwaitReady blocks until the connection is ready, the timeout passes or ctx
// is done. It reports whether the connection became ready.
func (s *ConnectionState) AwaitReady(ctx context.Context, timeout time.Duration) bool {
	s.mu.Lock()
	if s.ready {
		s.mu.Unlock()
		return true
	}
	ch := s.readyCh
	s.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ch:
		return true
	case <-timer.C:
		return false
	case <-ctx.Done():
		return false
	}
}
