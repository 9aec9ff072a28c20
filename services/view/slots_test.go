package view

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	t time.Time
}

func (c *clock) now() time.Time { return c.t }

func newTestSlots(ttl time.Duration) (*Slots, *clock) {
	c := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := NewSlots(ttl)
	s.now = c.now
	return s, c
}

func TestSlots_SameSessionSharesGuard(t *testing.T) {
	s, _ := newTestSlots(time.Minute)
	assert.Same(t, s.Get("a"), s.Get("a"))
	assert.NotSame(t, s.Get("a"), s.Get("b"))
	assert.Equal(t, 2, s.Len())
}

func TestSlots_UseKeepsSlotAlive(t *testing.T) {
	s, c := newTestSlots(time.Minute)
	g := s.Get("a")
	for i := 0; i < 5; i++ {
		c.t = c.t.Add(40 * time.Second)
		s.Get("other")
		require.Same(t, g, s.Get("a"))
	}
}

func TestSlots_IdleSlotIsDropped(t *testing.T) {
	s, c := newTestSlots(time.Minute)
	g := s.Get("a")
	_, tk := g.Begin(context.Background())
	require.True(t, g.Commit(tk, nil))

	c.t = c.t.Add(2 * time.Minute)
	s.Get("b")
	assert.Equal(t, 1, s.Len())
	assert.NotSame(t, g, s.Get("a"))
}

func TestSlots_SlotWithCallInFlightSurvivesTTL(t *testing.T) {
	s, c := newTestSlots(time.Minute)
	g := s.Get("a")
	_, stale := g.Begin(context.Background())

	c.t = c.t.Add(10 * time.Minute)
	s.Get("b")
	g2 := s.Get("a")
	require.Same(t, g, g2, "slot with a pending call must not be replaced")

	_, fresh := g2.Begin(context.Background())
	assert.False(t, g.Commit(stale, nil), "old call is superseded by the new one")
	assert.True(t, g2.Commit(fresh, nil))
}
