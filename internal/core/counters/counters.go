// Package counters keeps the bot's monotonically increasing statistics
// every field is an atomic so workers increment without locking
package counters

import (
	"sync/atomic"
	"time"

	"meitanbot/internal/core/intent"
)

// Counters are shared by every service for the life of the process
type Counters struct {
	started time.Time

	PostsReceived    atomic.Int64
	EventsReceived   atomic.Int64
	MessagesReceived atomic.Int64
	RecordsDropped   atomic.Int64

	RepliesSent    atomic.Int64
	RepliesSkipped atomic.Int64
	RepliesFailed  atomic.Int64
	Forbidden      atomic.Int64
	Suspended      atomic.Int64
	Retweets       atomic.Int64

	Reconnects atomic.Int64
	Follows    atomic.Int64
	Unfollows  atomic.Int64
	Commands   atomic.Int64

	latencyNanos atomic.Int64
	latencyCount atomic.Int64

	intents [intent.Retweet + 1]atomic.Int64
}

// New starts the uptime clock
func New() *Counters { return &Counters{started: time.Now()} }

// Intent counts one classified intent of kind k
func (c *Counters) Intent(k intent.Kind) {
	if int(k) < len(c.intents) {
		c.intents[k].Add(1)
	}
}

// ObserveLatency records one outbound reply round trip
func (c *Counters) ObserveLatency(d time.Duration) {
	c.latencyNanos.Add(int64(d))
	c.latencyCount.Add(1)
}

// Snapshot is a point in time copy suitable for logging and persistence
type Snapshot struct {
	TakenAt          time.Time        `json:"taken_at"`
	Uptime           time.Duration    `json:"uptime_ns"`
	PostsReceived    int64            `json:"posts_received"`
	EventsReceived   int64            `json:"events_received"`
	MessagesReceived int64            `json:"messages_received"`
	RecordsDropped   int64            `json:"records_dropped"`
	RepliesSent      int64            `json:"replies_sent"`
	RepliesSkipped   int64            `json:"replies_skipped"`
	RepliesFailed    int64            `json:"replies_failed"`
	Forbidden        int64            `json:"forbidden"`
	Suspended        int64            `json:"suspended"`
	Retweets         int64            `json:"retweets"`
	Reconnects       int64            `json:"reconnects"`
	Follows          int64            `json:"follows"`
	Unfollows        int64            `json:"unfollows"`
	Commands         int64            `json:"commands"`
	AvgLatency       time.Duration    `json:"avg_latency_ns"`
	Intents          map[string]int64 `json:"intents"`
}

// Snapshot reads every counter; fields are read one by one so totals may straddle a concurrent update
func (c *Counters) Snapshot() Snapshot {
	now := time.Now()
	s := Snapshot{
		TakenAt:          now,
		Uptime:           now.Sub(c.started),
		PostsReceived:    c.PostsReceived.Load(),
		EventsReceived:   c.EventsReceived.Load(),
		MessagesReceived: c.MessagesReceived.Load(),
		RecordsDropped:   c.RecordsDropped.Load(),
		RepliesSent:      c.RepliesSent.Load(),
		RepliesSkipped:   c.RepliesSkipped.Load(),
		RepliesFailed:    c.RepliesFailed.Load(),
		Forbidden:        c.Forbidden.Load(),
		Suspended:        c.Suspended.Load(),
		Retweets:         c.Retweets.Load(),
		Reconnects:       c.Reconnects.Load(),
		Follows:          c.Follows.Load(),
		Unfollows:        c.Unfollows.Load(),
		Commands:         c.Commands.Load(),
		Intents:          make(map[string]int64, len(c.intents)),
	}
	if n := c.latencyCount.Load(); n > 0 {
		s.AvgLatency = time.Duration(c.latencyNanos.Load() / n)
	}
	for i := range c.intents {
		if v := c.intents[i].Load(); v > 0 {
			s.Intents[intent.Kind(i).String()] = v
		}
	}
	return s
}
