package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistogram_Summary(t *testing.T) {
	h := NewHistogram(10)
	for i := 1; i <= 5; i++ {
		h.Record(time.Duration(i) * time.Millisecond)
	}

	s := h.Summary()
	assert.Equal(t, 5, s.Count)
	assert.InDelta(t, 3.0, s.Mean, 0.001)
	assert.InDelta(t, 3.0, s.P50, 0.001)
	assert.InDelta(t, 1.0, s.Min, 0.001)
	assert.InDelta(t, 5.0, s.Max, 0.001)
	assert.InDelta(t, 4.8, s.P95, 0.001)
}

func TestHistogram_Empty(t *testing.T) {
	assert.Equal(t, LatencyStats{}, NewHistogram(0).Summary())
}

func TestHistogram_RingOverwritesOldest(t *testing.T) {
	h := NewHistogram(3)
	for _, ms := range []int{100, 1, 2, 3} {
		h.Record(time.Duration(ms) * time.Millisecond)
	}

	s := h.Summary()
	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, 3.0, s.Max, 0.001, "oldest sample should be gone")

	h.Reset()
	assert.Equal(t, 0, h.Count())
}

func TestAPIMetrics_Observe(t *testing.T) {
	m := NewAPIMetrics(100)
	m.Observe("/api/v1/decks/", 200, 2*time.Millisecond)
	m.Observe("/api/v1/decks/", 404, 4*time.Millisecond)
	m.Observe("/api/v1/games/", 500, time.Millisecond)
	m.Observe("", 404, time.Millisecond)

	stats := m.Stats()
	assert.Equal(t, uint64(4), stats.Requests)
	assert.Equal(t, uint64(2), stats.ClientErrors)
	assert.Equal(t, uint64(1), stats.ServerErrors)
	assert.InDelta(t, 75.0, stats.SuccessRate, 0.001)

	require.Contains(t, stats.Routes, "/api/v1/decks/")
	assert.Equal(t, 2, stats.Routes["/api/v1/decks/"].Count)
	assert.Contains(t, stats.Routes, "unmatched")

	m.Reset()
	stats = m.Stats()
	assert.Zero(t, stats.Requests)
	assert.Empty(t, stats.Routes)
}

func TestAPIMetrics_Concurrent(t *testing.T) {
	m := NewAPIMetrics(50)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.Observe("/health", 200, time.Millisecond)
			}
		}()
	}
	wg.Wait()

	stats := m.Stats()
	assert.Equal(t, uint64(800), stats.Requests)
	assert.Equal(t, 50, stats.Routes["/health"].Count)
}
