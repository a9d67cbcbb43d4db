package stats

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestStats(window time.Duration) (*RunStats, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := NewRunStats(window)
	s.now = clock.now
	return s, clock
}

func TestRunStats_SnapshotPercentiles(t *testing.T) {
	s, _ := newTestStats(time.Hour)
	for _, ms := range []int{100, 200, 300, 400, 500} {
		s.Record(Run{Duration: time.Duration(ms) * time.Millisecond, Sections: 10})
	}

	snap := s.Snapshot()
	if snap.Runs != 5 {
		t.Fatalf("expected 5 runs, got %d", snap.Runs)
	}
	if snap.MinMs != 100 || snap.MaxMs != 500 {
		t.Fatalf("expected min=100 max=500, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
	if snap.AvgMs != 300 {
		t.Fatalf("expected avg=300, got %f", snap.AvgMs)
	}
	if snap.P50Ms != 300 {
		t.Fatalf("expected p50=300, got %f", snap.P50Ms)
	}
	if snap.P95Ms != 480 {
		t.Fatalf("expected p95=480, got %f", snap.P95Ms)
	}
	if snap.P99Ms != 496 {
		t.Fatalf("expected p99=496, got %f", snap.P99Ms)
	}
	if snap.AvgSections != 10 {
		t.Fatalf("expected avg sections=10, got %f", snap.AvgSections)
	}
}

func TestRunStats_FailedRunsExcludedFromLatency(t *testing.T) {
	s, _ := newTestStats(time.Hour)
	s.Record(Run{Duration: 50 * time.Millisecond})
	s.Record(Run{Duration: 9 * time.Second, Failed: true})

	snap := s.Snapshot()
	if snap.Runs != 2 || snap.Failed != 1 {
		t.Fatalf("expected 2 runs with 1 failed, got %d and %d", snap.Runs, snap.Failed)
	}
	if snap.MaxMs != 50 {
		t.Fatalf("expected max=50, got %d", snap.MaxMs)
	}
}

func TestRunStats_PrunesExpiredRuns(t *testing.T) {
	s, clock := newTestStats(10 * time.Minute)
	s.Record(Run{Duration: 100 * time.Millisecond})
	clock.t = clock.t.Add(11 * time.Minute)

	if snap := s.Snapshot(); snap.Runs != 0 {
		t.Fatalf("expected 0 runs after prune, got %d", snap.Runs)
	}

	s.Record(Run{Duration: 200 * time.Millisecond})
	snap := s.Snapshot()
	if snap.Runs != 1 || snap.MinMs != 200 || snap.MaxMs != 200 {
		t.Fatalf("expected a single fresh run of 200ms, got %+v", snap)
	}
}

func TestRunStats_ClampsNegativeDuration(t *testing.T) {
	s, _ := newTestStats(time.Hour)
	s.Record(Run{Duration: -time.Second})
	snap := s.Snapshot()
	if snap.Runs != 1 || snap.MinMs != 0 || snap.MaxMs != 0 {
		t.Fatalf("expected one clamped run, got %+v", snap)
	}
}
