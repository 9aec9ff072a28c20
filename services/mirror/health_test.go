package mirror

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryHealthStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewMemoryHealthStore()
	s.now = func() time.Time { return now }

	require.NoError(t, s.MarkFailed(ctx, "a", time.Minute))
	cooling, err := s.Cooling(ctx, []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"a": true}, cooling)

	now = now.Add(2 * time.Minute)
	cooling, err = s.Cooling(ctx, []string{"a", "b"})
	require.NoError(t, err)
	assert.Empty(t, cooling)

	require.NoError(t, s.MarkFailed(ctx, "b", time.Minute))
	require.NoError(t, s.Recover(ctx, "b"))
	cooling, err = s.Cooling(ctx, []string{"b"})
	require.NoError(t, err)
	assert.Empty(t, cooling)
}

func TestHealthArrange(t *testing.T) {
	ctx := context.Background()

	t.Run("nil health keeps order", func(t *testing.T) {
		var h *Health
		in := []string{"a", "b", "c"}
		assert.Equal(t, in, h.Arrange(ctx, in))
		h.Fail(ctx, "a")
		h.Succeed(ctx, "a")
	})

	t.Run("cooling mirrors move to the end", func(t *testing.T) {
		h := NewHealth(NewMemoryHealthStore(), time.Minute)
		h.Fail(ctx, "a")
		h.Fail(ctx, "c")
		assert.Equal(t, []string{"b", "d", "a", "c"}, h.Arrange(ctx, []string{"a", "b", "c", "d"}))

		h.Succeed(ctx, "a")
		assert.Equal(t, []string{"a", "b", "d", "c"}, h.Arrange(ctx, []string{"a", "b", "c", "d"}))
	})
}
