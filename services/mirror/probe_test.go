package mirror

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProber_Check(t *testing.T) {
	ok := newTestMirror(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/stats", r.URL.Path)
		_, _ = w.Write([]byte(`{"software":{"name":"invidious","version":"2.2024"}}`))
	})
	broken := newTestMirror(t, failing(http.StatusBadGateway))
	garbage := newTestMirror(t, answering(`<html>`))
	dead := newDeadMirror(t)

	r, err := NewRegistry([]string{ok.url, broken.url, garbage.url, dead.url})
	require.NoError(t, err)
	h := NewHealth(NewMemoryHealthStore(), time.Minute)
	p := NewProber(http.DefaultClient, r, Config{AttemptTimeout: time.Second}, h)

	res := p.Check(context.Background())
	require.Len(t, res, 4)

	assert.True(t, res[0].OK)
	assert.Equal(t, "2.2024", res[0].Version)
	assert.Equal(t, http.StatusOK, res[0].Status)

	assert.False(t, res[1].OK)
	assert.Equal(t, http.StatusBadGateway, res[1].Status)
	assert.NotEmpty(t, res[1].Error)

	assert.False(t, res[2].OK)
	assert.False(t, res[3].OK)
	for _, pr := range res {
		assert.Greater(t, pr.Latency, time.Duration(0))
	}

	assert.Equal(t, r.List()[0], h.Arrange(context.Background(), r.List())[0])

	fastest := Fastest(res)
	require.Len(t, fastest, 1)
	assert.Equal(t, res[0].Mirror, fastest[0].Mirror)
}

func TestProber_ReportIsCached(t *testing.T) {
	m := newTestMirror(t, answering(`{"software":{"version":"1"}}`))
	r, err := NewRegistry([]string{m.url})
	require.NoError(t, err)
	p := NewProber(http.DefaultClient, r, Config{AttemptTimeout: time.Second}, nil)

	_, err = p.Report(context.Background())
	require.NoError(t, err)
	res, err := p.Report(context.Background())
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.True(t, res[0].OK)
	assert.EqualValues(t, 1, m.hits.Load())
}

func TestProber_ReportOutlivesCallerContext(t *testing.T) {
	m := newTestMirror(t, answering(`{"software":{"version":"1"}}`))
	r, err := NewRegistry([]string{m.url})
	require.NoError(t, err)
	store := NewMemoryHealthStore()
	h := NewHealth(store, time.Minute)
	p := NewProber(http.DefaultClient, r, Config{AttemptTimeout: time.Second}, h)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := p.Report(ctx)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.True(t, res[0].OK, "report is not built on the caller's context")

	res, err = p.Report(context.Background())
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.True(t, res[0].OK)

	cooling, err := store.Cooling(context.Background(), r.List())
	require.NoError(t, err)
	assert.Empty(t, cooling)
}

func TestProber_CheckCancelledKeepsHealth(t *testing.T) {
	m := newTestMirror(t, answering(`{"software":{"version":"1"}}`))
	r, err := NewRegistry([]string{m.url})
	require.NoError(t, err)
	store := NewMemoryHealthStore()
	p := NewProber(http.DefaultClient, r, Config{AttemptTimeout: time.Second}, NewHealth(store, time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := p.Check(ctx)
	require.Len(t, res, 1)
	assert.False(t, res[0].OK)

	cooling, err := store.Cooling(context.Background(), r.List())
	require.NoError(t, err)
	assert.Empty(t, cooling, "a mirror is not demoted because the caller gave up")
}
