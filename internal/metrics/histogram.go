// Package metrics records request latencies and counters for the API server.
package metrics

import (
	"math"
	"sort"
	"sync"
	"time"
)

const defaultHistogramSize = 2048

// Histogram keeps the most recent duration samples in a ring buffer.
type Histogram struct {
	mu      sync.Mutex
	samples []float64 // milliseconds
	next    int
	full    bool
}

// NewHistogram creates a histogram holding up to size samples.
func NewHistogram(size int) *Histogram {
	if size <= 0 {
		size = defaultHistogramSize
	}
	return &Histogram{samples: make([]float64, size)}
}

// Record adds a sample, overwriting the oldest one when full.
func (h *Histogram) Record(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.samples[h.next] = float64(d.Microseconds()) / 1000.0
	h.next++
	if h.next == len(h.samples) {
		h.next = 0
		h.full = true
	}
}

// Count returns the number of retained samples.
func (h *Histogram) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count()
}

func (h *Histogram) count() int {
	if h.full {
		return len(h.samples)
	}
	return h.next
}

// Summary computes latency statistics over the retained samples.
func (h *Histogram) Summary() LatencyStats {
	h.mu.Lock()
	sorted := make([]float64, h.count())
	copy(sorted, h.samples[:len(sorted)])
	h.mu.Unlock()

	if len(sorted) == 0 {
		return LatencyStats{}
	}
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}

	return LatencyStats{
		Mean:  sum / float64(len(sorted)),
		P50:   percentile(sorted, 50),
		P95:   percentile(sorted, 95),
		P99:   percentile(sorted, 99),
		Min:   sorted[0],
		Max:   sorted[len(sorted)-1],
		Count: len(sorted),
	}
}

// Reset clears all samples.
func (h *Histogram) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next = 0
	h.full = false
}

// percentile interpolates the p-th percentile (0-100) of sorted values.
func percentile(sorted []float64, p float64) float64 {
	index := (p / 100.0) * float64(len(sorted)-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if lower == upper {
		return sorted[lower]
	}
	fraction := index - float64(lower)
	return sorted[lower]*(1-fraction) + sorted[upper]*fraction
}

// LatencyStats summarises a histogram in milliseconds.
type LatencyStats struct {
	Mean  float64 `json:"mean"`
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
	P99   float64 `json:"p99"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}
