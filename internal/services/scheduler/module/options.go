package module

import (
	"time"

	"meitanbot/internal/platform/config"
	"meitanbot/internal/services/scheduler/domain"
)

// Options controls the scheduler
type Options struct {
	Tick            time.Duration
	TimeSignal      bool
	SignalOffset    int
	SignalLabel     string
	FlushEvery      time.Duration
	FriendshipEvery time.Duration
	PruneEvery      time.Duration
}

// FromConfig reads options using the SCHEDULE_ prefix; the flush interval is owned by STATS_
func FromConfig(cfg config.Conf) Options {
	s := cfg.Prefix("SCHEDULE_")
	def := domain.DefaultSignal()
	return Options{
		Tick:            s.MayDuration("TICK", time.Second),
		TimeSignal:      s.MayBool("TIME_SIGNAL", true),
		SignalOffset:    s.MayInt("SIGNAL_OFFSET", def.Offset),
		SignalLabel:     s.MayString("SIGNAL_LABEL", def.Label),
		FlushEvery:      cfg.Prefix("STATS_").MayDuration("FLUSH_EVERY", 5*time.Minute),
		FriendshipEvery: s.MayDuration("FRIENDSHIP_EVERY", time.Hour),
		PruneEvery:      s.MayDuration("PRUNE_EVERY", 10*time.Minute),
	}
}
