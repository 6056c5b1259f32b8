// Package domain holds the hourly time signal rules
package domain

import "time"

// Signal shifts the server hour into the announced zone
type Signal struct {
	Offset int
	Label  string
}

// DefaultSignal announces in the bot's fictional zone, seven hours ahead of UTC
func DefaultSignal() Signal { return Signal{Offset: 7, Label: "TST"} }

// Hour is the announced hour for now, in 0..23
func (s Signal) Hour(now time.Time) int {
	return ((now.UTC().Hour()+s.Offset)%24 + 24) % 24
}

// HourGuard lets the signal fire once per wall clock hour however often it is polled
type HourGuard struct {
	last time.Time
}

// Due reports whether now is inside minute zero of an hour that has not fired yet
// a poll that misses minute zero skips that hour
func (g *HourGuard) Due(now time.Time) bool {
	now = now.UTC()
	if now.Minute() != 0 {
		return false
	}
	h := now.Truncate(time.Hour)
	if h.Equal(g.last) {
		return false
	}
	g.last = h
	return true
}
