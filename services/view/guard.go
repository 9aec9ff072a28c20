package view

import (
	"context"
	"sync"
)

// Guard serializes the results of calls competing for one view slot.
// Beginning a call cancels the previous in-flight one, and only the latest
// call may commit its result, so a slow stale response never overwrites a
// newer one.
type Guard struct {
	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

// Ticket identifies one call started through Begin.
type Ticket struct {
	gen    uint64
	cancel context.CancelFunc
}

func NewGuard() *Guard {
	return &Guard{}
}

// Begin starts a new call for the slot and returns its context.
func (s *Guard) Begin(parent context.Context) (context.Context, *Ticket) {
	ctx, cancel := context.WithCancel(parent)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	s.cancel = cancel
	return ctx, &Ticket{gen: s.gen, cancel: cancel}
}

// Commit runs apply only when t is still the latest call and reports
// whether it did. The ticket's context is released either way.
func (s *Guard) Commit(t *Ticket, apply func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer t.cancel()
	if t.gen != s.gen {
		return false
	}
	s.cancel = nil
	if apply != nil {
		apply()
	}
	return true
}

// idle reports whether no call of the slot is waiting to commit.
func (s *Guard) idle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel == nil
}
