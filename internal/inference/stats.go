package inference

import (
	"slices"
	"sync"
	"time"
)

type observation struct {
	at time.Time
	ms int64
}

// StatsSnapshot aggregates the latencies observed within the window.
type StatsSnapshot struct {
	Count int     `json:"count"`
	MinMs int64   `json:"min_ms"`
	MaxMs int64   `json:"max_ms"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
	P99Ms float64 `json:"p99_ms"`
}

// LatencyStats keeps prediction latencies for a rolling window.
type LatencyStats struct {
	mu     sync.Mutex
	obs    []observation
	window time.Duration
	now    func() time.Time
}

func NewLatencyStats(window time.Duration) *LatencyStats {
	if window <= 0 {
		window = time.Hour
	}
	return &LatencyStats{
		obs:    make([]observation, 0, 256),
		window: window,
		now:    time.Now,
	}
}

// Record adds one latency; negative durations count as zero.
func (s *LatencyStats) Record(d time.Duration) {
	ms := max(d.Milliseconds(), 0)

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.expireLocked(now)
	s.obs = append(s.obs, observation{at: now, ms: ms})
}

func (s *LatencyStats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(s.now())
	if len(s.obs) == 0 {
		return StatsSnapshot{}
	}

	sorted := make([]int64, len(s.obs))
	var total int64
	for i, o := range s.obs {
		sorted[i] = o.ms
		total += o.ms
	}
	slices.Sort(sorted)

	return StatsSnapshot{
		Count: len(sorted),
		MinMs: sorted[0],
		MaxMs: sorted[len(sorted)-1],
		AvgMs: float64(total) / float64(len(sorted)),
		P50Ms: quantile(sorted, 0.50),
		P95Ms: quantile(sorted, 0.95),
		P99Ms: quantile(sorted, 0.99),
	}
}

func (s *LatencyStats) expireLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	s.obs = slices.DeleteFunc(s.obs, func(o observation) bool {
		return o.at.Before(cutoff)
	})
}

// quantile interpolates linearly between the closest ranks of sorted.
func quantile(sorted []int64, q float64) float64 {
	n := len(sorted)
	switch {
	case n == 0:
		return 0
	case q <= 0:
		return float64(sorted[0])
	case q >= 1:
		return float64(sorted[n-1])
	}
	rank := float64(n-1) * q
	lo := int(rank)
	if lo+1 >= n {
		return float64(sorted[lo])
	}
	frac := rank - float64(lo)
	return float64(sorted[lo]) + frac*float64(sorted[lo+1]-sorted[lo])
}
