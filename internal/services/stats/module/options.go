package module

import (
	"time"

	"meitanbot/internal/platform/config"
)

// Options controls stats behavior
type Options struct {
	FlushEvery time.Duration
	EventBatch int
}

// FromConfig reads options using the STATS_ prefix
func FromConfig(cfg config.Conf) Options {
	s := cfg.Prefix("STATS_")
	return Options{
		FlushEvery: s.MayDuration("FLUSH_EVERY", 5*time.Minute),
		EventBatch: s.MayInt("EVENT_BATCH", 64),
	}
}
