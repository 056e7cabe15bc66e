// Package abuse tracks failed signature verifications per client so bursts
// of bad credentials surface in the logs. It never influences authorization:
// a flagged client is still just Anonymous to the engine.
package abuse

import (
	"sync"
	"time"
)

// FlagAuthFailureBurst marks a client that crossed the failure threshold
// inside the sliding window.
const FlagAuthFailureBurst = "auth_failure_burst"

// Signals is the assessment for one client key.
type Signals struct {
	Score int      `json:"score"`
	Flags []string `json:"flags"`
}

type window struct {
	mu  sync.Mutex
	buf []time.Time
}

// Tracker keeps a sliding window of failure timestamps per client key
// (typically the remote IP).
type Tracker struct {
	mu        sync.Mutex
	byKey     map[string]*window
	winDur    time.Duration
	threshold int
}

// NewTracker returns a tracker that scores 100 when a client accumulates
// threshold failures within win.
func NewTracker(win time.Duration, threshold int) *Tracker {
	if threshold <= 0 {
		threshold = 20
	}
	if win <= 0 {
		win = time.Minute
	}
	return &Tracker{byKey: make(map[string]*window), winDur: win, threshold: threshold}
}

// RecordFailure notes one failed verification for key at now.
func (t *Tracker) RecordFailure(key string, now time.Time) {
	w := t.getWindow(key)
	w.mu.Lock()
	w.buf = append(w.buf, now)
	w.mu.Unlock()
}

// Assess prunes the window and returns the current signals for key.
func (t *Tracker) Assess(key string, now time.Time) Signals {
	w := t.getWindow(key)
	cut := now.Add(-t.winDur)
	w.mu.Lock()
	buf := w.buf
	i := 0
	for _, ts := range buf {
		if ts.After(cut) {
			buf[i] = ts
			i++
		}
	}
	w.buf = buf[:i]
	count := i
	w.mu.Unlock()

	score := count * 100 / t.threshold
	if score > 100 {
		score = 100
	}
	var flags []string
	if count >= t.threshold {
		flags = append(flags, FlagAuthFailureBurst)
	}
	return Signals{Score: score, Flags: flags}
}

// Flagged reports whether key is currently over the failure threshold.
func (t *Tracker) Flagged(key string, now time.Time) bool {
	return len(t.Assess(key, now).Flags) > 0
}

func (t *Tracker) getWindow(k string) *window {
	t.mu.Lock()
	defer t.mu.Unlock()
	w := t.byKey[k]
	if w == nil {
		w = &window{}
		t.byKey[k] = w
	}
	return w
}
