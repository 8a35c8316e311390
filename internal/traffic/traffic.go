// Package traffic keeps sliding windows of request outcomes for health reporting.
package traffic

import (
	"sync"
	"time"
)

// Tracker maintains sliding windows of outcome timestamps. Outcomes older than the
// retention are pruned on every write.
type Tracker struct {
	mu           sync.Mutex
	retention    time.Duration
	now          func() time.Time
	successTimes []time.Time
	errorTimes   []time.Time
	deniedTimes  []time.Time
}

// NewTracker returns a Tracker keeping outcomes for retention (5 minutes when zero).
func NewTracker(retention time.Duration) *Tracker {
	if retention <= 0 {
		retention = 5 * time.Minute
	}
	return &Tracker{retention: retention, now: time.Now}
}

// RecordSuccess records a request that produced data.
func (t *Tracker) RecordSuccess() {
	t.record(&t.successTimes)
}

// RecordError records a request that failed upstream (no data and no stale copy).
func (t *Tracker) RecordError() {
	t.record(&t.errorTimes)
}

// RecordDenied records a rate-limit denial (429).
func (t *Tracker) RecordDenied() {
	t.record(&t.deniedTimes)
}

func (t *Tracker) record(slice *[]time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	*slice = append(*slice, now)
	t.pruneLocked(now)
}

// Counts is a snapshot of outcomes within a window.
type Counts struct {
	Successes int `json:"successes"`
	Errors    int `json:"errors"`
	Denied    int `json:"denied"`
}

// Snapshot returns outcome counts within window.
func (t *Tracker) Snapshot(window time.Duration) Counts {
	t.mu.Lock()
	defer t.mu.Unlock()
	cutoff := t.now().Add(-window)
	return Counts{
		Successes: countSince(t.successTimes, cutoff),
		Errors:    countSince(t.errorTimes, cutoff),
		Denied:    countSince(t.deniedTimes, cutoff),
	}
}

// ErrorRate returns (errorCount, totalCount) within the window. Denials are excluded
// from the total.
func (t *Tracker) ErrorRate(window time.Duration) (errors, total int) {
	c := t.Snapshot(window)
	return c.Errors, c.Errors + c.Successes
}

// Degraded reports whether at least minRequests outcomes were seen in window and the
// error share reached pct percent.
func (t *Tracker) Degraded(window time.Duration, pct, minRequests int) bool {
	errs, total := t.ErrorRate(window)
	if total == 0 || total < minRequests {
		return false
	}
	return errs*100 >= pct*total
}

// Reset clears all recorded outcomes.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.successTimes = nil
	t.errorTimes = nil
	t.deniedTimes = nil
}

func countSince(times []time.Time, cutoff time.Time) int {
	n := 0
	for _, ts := range times {
		if !ts.Before(cutoff) {
			n++
		}
	}
	return n
}

// pruneLocked drops timestamps older than the retention. Must be called with mu held.
func (t *Tracker) pruneLocked(now time.Time) {
	cutoff := now.Add(-t.retention)
	prune := func(slice *[]time.Time) {
		times := *slice
		i := 0
		for i < len(times) && times[i].Before(cutoff) {
			i++
		}
		if i > 0 {
			*slice = append(times[:0], times[i:]...)
		}
	}
	prune(&t.successTimes)
	prune(&t.errorTimes)
	prune(&t.deniedTimes)
}
