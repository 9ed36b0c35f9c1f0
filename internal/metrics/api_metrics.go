package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// APIMetrics tracks request counts and per-route latency.
type APIMetrics struct {
	requests     atomic.Uint64
	clientErrors atomic.Uint64
	serverErrors atomic.Uint64

	mu         sync.RWMutex
	routes     map[string]*Histogram
	sampleSize int
	startTime  time.Time
}

// NewAPIMetrics creates a collector keeping sampleSize latencies per route.
func NewAPIMetrics(sampleSize int) *APIMetrics {
	return &APIMetrics{
		routes:     make(map[string]*Histogram),
		sampleSize: sampleSize,
		startTime:  time.Now(),
	}
}

// Observe records one finished request.
func (m *APIMetrics) Observe(route string, status int, d time.Duration) {
	m.requests.Add(1)
	switch {
	case status >= 500:
		m.serverErrors.Add(1)
	case status >= 400:
		m.clientErrors.Add(1)
	}

	if route == "" {
		route = "unmatched"
	}
	m.histogram(route).Record(d)
}

func (m *APIMetrics) histogram(route string) *Histogram {
	m.mu.RLock()
	h, ok := m.routes[route]
	m.mu.RUnlock()
	if ok {
		return h
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if h, ok = m.routes[route]; !ok {
		h = NewHistogram(m.sampleSize)
		m.routes[route] = h
	}
	return h
}

// APIStats is a point-in-time view of the API metrics.
type APIStats struct {
	Requests     uint64                  `json:"requests"`
	ClientErrors uint64                  `json:"clientErrors"`
	ServerErrors uint64                  `json:"serverErrors"`
	SuccessRate  float64                 `json:"successRate"` // percentage of non-5xx responses
	Routes       map[string]LatencyStats `json:"routes"`
	Uptime       string                  `json:"uptime"`
}

// Stats returns the current statistics.
func (m *APIMetrics) Stats() *APIStats {
	requests := m.requests.Load()
	serverErrors := m.serverErrors.Load()

	successRate := 0.0
	if requests > 0 {
		successRate = float64(requests-serverErrors) / float64(requests) * 100
	}

	m.mu.RLock()
	routes := make(map[string]LatencyStats, len(m.routes))
	for route, h := range m.routes {
		routes[route] = h.Summary()
	}
	uptime := time.Since(m.startTime).Round(time.Second).String()
	m.mu.RUnlock()

	return &APIStats{
		Requests:     requests,
		ClientErrors: m.clientErrors.Load(),
		ServerErrors: serverErrors,
		SuccessRate:  successRate,
		Routes:       routes,
		Uptime:       uptime,
	}
}

// Reset clears all counters and samples.
func (m *APIMetrics) Reset() {
	m.requests.Store(0)
	m.clientErrors.Store(0)
	m.serverErrors.Store(0)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes = make(map[string]*Histogram)
	m.startTime = time.Now()
}
