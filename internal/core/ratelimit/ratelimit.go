// Package ratelimit tracks replies per author inside a fixed window
// crossing the threshold is a one-way trip: the caller suspends the author
package ratelimit

import (
	"sync"
	"time"

	"meitanbot/internal/core/event"
)

// Defaults used when Options leave fields zero
const (
	DefaultThreshold = 3
	DefaultWindow    = 60 * time.Second
)

type entry struct {
	resetAt time.Time
	count   int
}

// Verdict is the outcome of one Hit
type Verdict struct {
	Count int
	// Suspend is true exactly once, on the hit that first exceeds the threshold
	Suspend bool
}

// Options tune a Limiter
type Options struct {
	Threshold int
	Window    time.Duration
	Now       func() time.Time
}

// Limiter is safe for concurrent use by all reply workers
type Limiter struct {
	mu        sync.Mutex
	threshold int
	window    time.Duration
	now       func() time.Time
	state     map[event.UserID]*entry
}

// New builds a Limiter
func New(o Options) *Limiter {
	if o.Threshold <= 0 {
		o.Threshold = DefaultThreshold
	}
	if o.Window <= 0 {
		o.Window = DefaultWindow
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return &Limiter{threshold: o.Threshold, window: o.Window, now: o.Now, state: map[event.UserID]*entry{}}
}

// Hit counts one reply attempt to id
// the window starts lazily and resets once now passes resetAt
func (l *Limiter) Hit(id event.UserID) Verdict {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.state[id]
	if !ok || now.After(e.resetAt) {
		e = &entry{resetAt: now.Add(l.window)}
		l.state[id] = e
	}
	e.count++
	return Verdict{Count: e.count, Suspend: e.count == l.threshold+1}
}

// Prune drops expired windows and returns how many were removed
func (l *Limiter) Prune() int {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for id, e := range l.state {
		if now.After(e.resetAt) {
			delete(l.state, id)
			n++
		}
	}
	return n
}

// Len is the number of tracked authors
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.state)
}
