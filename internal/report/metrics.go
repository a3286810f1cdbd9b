package report

import (
	"sort"
	"sync"
	"time"
)

const (
	StatusRunning = "running"
	StatusPassed  = "passed"
	StatusFailed  = "failed"
)

type Run struct {
	mutex     sync.RWMutex
	tests     map[string]*testRecord
	startTime time.Time
}

type testRecord struct {
	status   string
	started  time.Time
	finished time.Time
	steps    int
	retries  int
	failure  string
}

type Snapshot struct {
	StartedAt   time.Time              `json:"started_at"`
	Uptime      time.Duration          `json:"uptime"`
	Total       int                    `json:"total"`
	Passed      int                    `json:"passed"`
	Failed      int                    `json:"failed"`
	Running     int                    `json:"running"`
	Retries     int                    `json:"retries"`
	AvgDuration time.Duration          `json:"avg_duration"`
	P50Duration time.Duration          `json:"p50_duration"`
	P95Duration time.Duration          `json:"p95_duration"`
	Tests       map[string]TestMetrics `json:"tests"`
}

type TestMetrics struct {
	Status   string        `json:"status"`
	Steps    int           `json:"steps"`
	Retries  int           `json:"retries"`
	Duration time.Duration `json:"duration"`
	Failure  string        `json:"failure,omitempty"`
}

func NewRun() *Run {
	return &Run{
		tests:     make(map[string]*testRecord),
		startTime: time.Now(),
	}
}

// record returns the entry for name, creating a running one for events that
// arrive without a start.
func (r *Run) record(name string) *testRecord {
	rec, ok := r.tests[name]
	if !ok {
		rec = &testRecord{status: StatusRunning}
		r.tests[name] = rec
	}
	return rec
}

// StartTest resets name, so a repeated test reports its latest run.
func (r *Run) StartTest(name string, at time.Time) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.tests[name] = &testRecord{status: StatusRunning, started: at}
}

func (r *Run) RecordStep(name string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.record(name).steps++
}

func (r *Run) RecordRetry(name string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.record(name).retries++
}

func (r *Run) FinishTest(name string, at time.Time, passed bool, failure string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	rec := r.record(name)
	rec.finished = at
	rec.failure = failure
	if passed {
		rec.status = StatusPassed
	} else {
		rec.status = StatusFailed
	}
}

func (r *Run) Snapshot() Snapshot {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	snap := Snapshot{
		StartedAt: r.startTime,
		Uptime:    time.Since(r.startTime),
		Total:     len(r.tests),
		Tests:     make(map[string]TestMetrics, len(r.tests)),
	}

	var durations []time.Duration
	for name, rec := range r.tests {
		tm := TestMetrics{
			Status:  rec.status,
			Steps:   rec.steps,
			Retries: rec.retries,
			Failure: rec.failure,
		}

		switch rec.status {
		case StatusPassed:
			snap.Passed++
		case StatusFailed:
			snap.Failed++
		default:
			snap.Running++
		}
		snap.Retries += rec.retries

		if rec.status != StatusRunning && !rec.started.IsZero() && !rec.finished.IsZero() {
			tm.Duration = rec.finished.Sub(rec.started)
			durations = append(durations, tm.Duration)
		}

		snap.Tests[name] = tm
	}

	if len(durations) > 0 {
		sort.Slice(durations, func(i, j int) bool {
			return durations[i] < durations[j]
		})

		snap.AvgDuration = average(durations)
		snap.P50Duration = percentile(durations, 0.50)
		snap.P95Duration = percentile(durations, 0.95)
	}

	return snap
}

func average(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}

	var sum time.Duration
	for _, d := range durations {
		sum += d
	}

	return sum / time.Duration(len(durations))
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}

	index := int(float64(len(sorted)) * p)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}

	return sorted[index]
}
