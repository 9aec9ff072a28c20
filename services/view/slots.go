package view

import (
	"sync"
	"time"
)

// Slots hands out one Guard per session id. A slot is dropped only after it
// has not been used for ttl and no call of it is waiting to commit, so all
// calls of a live session share the same Guard.
type Slots struct {
	mu    sync.Mutex
	ttl   time.Duration
	slots map[string]*slot
	swept time.Time
	now   func() time.Time
}

type slot struct {
	g    *Guard
	used time.Time
}

func NewSlots(ttl time.Duration) *Slots {
	return &Slots{
		ttl:   ttl,
		slots: make(map[string]*slot),
		now:   time.Now,
	}
}

// Get returns the Guard of sid and marks the slot as used.
func (s *Slots) Get(sid string) *Guard {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sweep(now)
	sl, ok := s.slots[sid]
	if !ok {
		sl = &slot{g: NewGuard()}
		s.slots[sid] = sl
	}
	sl.used = now
	return sl.g
}

// Len returns the number of live slots.
func (s *Slots) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots)
}

func (s *Slots) sweep(now time.Time) {
	if now.Sub(s.swept) < s.ttl {
		return
	}
	s.swept = now
	for sid, sl := range s.slots {
		if now.Sub(sl.used) >= s.ttl && sl.g.idle() {
			delete(s.slots, sid)
		}
	}
}
