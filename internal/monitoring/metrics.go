package monitoring

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics holds pipeline and API counters exposed on /metrics.
type Metrics struct {
	RequestCount  int64
	ErrorCount    int64
	CacheHits     int64
	CacheMisses   int64
	ReviewsRun    int64
	SignalsRun    int64
	SignalsFailed int64
	StartTime     time.Time

	signalDurations map[string]time.Duration
	signalCounts    map[string]int64
	signalMutex     sync.RWMutex
}

// NewMetrics creates a new metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{
		StartTime:       time.Now(),
		signalDurations: make(map[string]time.Duration),
		signalCounts:    make(map[string]int64),
	}
}

func (m *Metrics) IncrementRequest() {
	atomic.AddInt64(&m.RequestCount, 1)
}

func (m *Metrics) IncrementError() {
	atomic.AddInt64(&m.ErrorCount, 1)
}

func (m *Metrics) IncrementCacheHit() {
	atomic.AddInt64(&m.CacheHits, 1)
}

func (m *Metrics) IncrementCacheMiss() {
	atomic.AddInt64(&m.CacheMisses, 1)
}

func (m *Metrics) IncrementReviewsRun() {
	atomic.AddInt64(&m.ReviewsRun, 1)
}

// RecordSignal records one signal adapter run and its wall-clock cost.
func (m *Metrics) RecordSignal(signal string, duration time.Duration, errored bool) {
	atomic.AddInt64(&m.SignalsRun, 1)
	if errored {
		atomic.AddInt64(&m.SignalsFailed, 1)
	}
	m.signalMutex.Lock()
	m.signalDurations[signal] += duration
	m.signalCounts[signal]++
	m.signalMutex.Unlock()
}

// GetStats returns a snapshot of all counters.
func (m *Metrics) GetStats() map[string]any {
	m.signalMutex.RLock()
	perSignal := make(map[string]any, len(m.signalCounts))
	for name, count := range m.signalCounts {
		avg := time.Duration(0)
		if count > 0 {
			avg = m.signalDurations[name] / time.Duration(count)
		}
		perSignal[name] = map[string]any{
			"runs":        count,
			"avg_time_ms": avg.Milliseconds(),
		}
	}
	m.signalMutex.RUnlock()

	return map[string]any{
		"request_count":  atomic.LoadInt64(&m.RequestCount),
		"error_count":    atomic.LoadInt64(&m.ErrorCount),
		"cache_hits":     atomic.LoadInt64(&m.CacheHits),
		"cache_misses":   atomic.LoadInt64(&m.CacheMisses),
		"reviews_run":    atomic.LoadInt64(&m.ReviewsRun),
		"signals_run":    atomic.LoadInt64(&m.SignalsRun),
		"signals_failed": atomic.LoadInt64(&m.SignalsFailed),
		"signals":        perSignal,
		"uptime_seconds": time.Since(m.StartTime).Seconds(),
	}
}
