// Package stats keeps a rolling window of analysis run outcomes.
package stats

import (
	"slices"
	"sync"
	"time"
)

// Run is the outcome of one analysis run.
type Run struct {
	Duration  time.Duration
	Documents int
	Sections  int
	Failed    bool
}

type entry struct {
	at  time.Time
	run Run
}

// Snapshot aggregates the runs currently in the window. Latency figures cover
// successful runs only.
type Snapshot struct {
	Runs        int     `json:"runs"`
	Failed      int     `json:"failed"`
	MinMs       int64   `json:"min_ms"`
	MaxMs       int64   `json:"max_ms"`
	AvgMs       float64 `json:"avg_ms"`
	P50Ms       float64 `json:"p50_ms"`
	P95Ms       float64 `json:"p95_ms"`
	P99Ms       float64 `json:"p99_ms"`
	AvgSections float64 `json:"avg_sections"`
	Window      string  `json:"window"`
}

// RunStats records runs and forgets them after the window elapses.
type RunStats struct {
	mu      sync.Mutex
	entries []entry
	window  time.Duration
	now     func() time.Time
}

func NewRunStats(window time.Duration) *RunStats {
	if window <= 0 {
		window = time.Hour
	}
	return &RunStats{
		entries: make([]entry, 0, 256),
		window:  window,
		now:     time.Now,
	}
}

func (s *RunStats) Record(r Run) {
	if r.Duration < 0 {
		r.Duration = 0
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	s.entries = append(s.entries, entry{at: now, run: r})
}

func (s *RunStats) Snapshot() Snapshot {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	snap := Snapshot{Runs: len(s.entries), Window: s.window.String()}

	var latencies []int64
	var totalMs, totalSections int64
	for _, e := range s.entries {
		if e.run.Failed {
			snap.Failed++
			continue
		}
		ms := e.run.Duration.Milliseconds()
		latencies = append(latencies, ms)
		totalMs += ms
		totalSections += int64(e.run.Sections)
	}
	if len(latencies) == 0 {
		return snap
	}
	slices.Sort(latencies)

	n := float64(len(latencies))
	snap.MinMs = latencies[0]
	snap.MaxMs = latencies[len(latencies)-1]
	snap.AvgMs = float64(totalMs) / n
	snap.P50Ms = percentile(latencies, 50)
	snap.P95Ms = percentile(latencies, 95)
	snap.P99Ms = percentile(latencies, 99)
	snap.AvgSections = float64(totalSections) / n
	return snap
}

func (s *RunStats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	keep := s.entries[:0]
	for _, e := range s.entries {
		if !e.at.Before(cutoff) {
			keep = append(keep, e)
		}
	}
	s.entries = keep
}

// percentile interpolates linearly between the two nearest ranks.
func percentile(sorted []int64, pct float64) float64 {
	switch {
	case len(sorted) == 0:
		return 0
	case pct <= 0:
		return float64(sorted[0])
	case pct >= 100:
		return float64(sorted[len(sorted)-1])
	}
	pos := float64(len(sorted)-1) * pct / 100
	lower := int(pos)
	if lower+1 >= len(sorted) {
		return float64(sorted[lower])
	}
	lo, hi := float64(sorted[lower]), float64(sorted[lower+1])
	return lo + (hi-lo)*(pos-float64(lower))
}
