package auth

import (
	"sync"
	"time"
)

// Defaults for the burst detector
const (
	DefaultAlertThreshold = 3
	DefaultAlertWindow    = 60 * time.Second
)

// BruteForceAlert is raised when one login key crosses the failure threshold
// inside the window
type BruteForceAlert struct {
	Identity   string
	OccurredAt time.Time
	Attempts   int
	Window     time.Duration
}

type attemptRecord struct {
	mu          sync.Mutex
	count       int
	windowStart time.Time
	removed     bool
}

// AttemptTracker is an in-memory, fixed-window burst detector for failed logins.
//
// The first failure for a key opens a window. Reaching the threshold while the
// window is still open raises one alert and resets the count to zero; the window
// start is NOT moved. Once the window has elapsed the record is left as is, so a
// slow drip of failures never alerts. A success removes the record.
//
// Records live for the life of the process; there is no eviction.
type AttemptTracker struct {
	mu        sync.Mutex
	records   map[string]*attemptRecord
	threshold int
	window    time.Duration
	now       func() time.Time
}

// NewAttemptTracker creates a tracker; non-positive arguments fall back to defaults
func NewAttemptTracker(threshold int, window time.Duration) *AttemptTracker {
	if threshold < 1 {
		threshold = DefaultAlertThreshold
	}
	if window <= 0 {
		window = DefaultAlertWindow
	}
	return &AttemptTracker{
		records:   make(map[string]*attemptRecord),
		threshold: threshold,
		window:    window,
		now:       time.Now,
	}
}

// WithClock replaces the time source, used by tests
func (t *AttemptTracker) WithClock(now func() time.Time) *AttemptTracker {
	t.now = now
	return t
}

// RecordFailure counts a failed login for key and returns an alert when the
// burst threshold is reached, nil otherwise
func (t *AttemptTracker) RecordFailure(key string) *BruteForceAlert {
	for {
		rec, created := t.getOrCreate(key)
		if created {
			return nil
		}

		rec.mu.Lock()
		if rec.removed {
			// a concurrent success dropped this record; start over on a fresh one
			rec.mu.Unlock()
			continue
		}

		now := t.now()
		rec.count++

		var alert *BruteForceAlert
		if rec.count >= t.threshold && now.Sub(rec.windowStart) < t.window {
			alert = &BruteForceAlert{
				Identity:   key,
				OccurredAt: now,
				Attempts:   rec.count,
				Window:     t.window,
			}
			rec.count = 0
		}
		rec.mu.Unlock()

		return alert
	}
}

// RecordSuccess forgets any failures recorded for key
func (t *AttemptTracker) RecordSuccess(key string) {
	t.mu.Lock()
	rec, ok := t.records[key]
	if ok {
		delete(t.records, key)
	}
	t.mu.Unlock()

	if ok {
		rec.mu.Lock()
		rec.removed = true
		rec.mu.Unlock()
	}
}

// Attempts returns the current failure count for key and whether a record exists
func (t *AttemptTracker) Attempts(key string) (int, bool) {
	t.mu.Lock()
	rec, ok := t.records[key]
	t.mu.Unlock()
	if !ok {
		return 0, false
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.count, true
}

// Len returns the number of keys currently tracked
func (t *AttemptTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.records)
}

// getOrCreate returns the record for key. A newly created record already holds
// the first failure.
func (t *AttemptTracker) getOrCreate(key string) (*attemptRecord, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if rec, ok := t.records[key]; ok {
		return rec, false
	}

	rec := &attemptRecord{count: 1, windowStart: t.now()}
	t.records[key] = rec
	return rec, true
}
