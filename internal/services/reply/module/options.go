package module

import (
	"time"

	"meitanbot/internal/platform/config"
)

// Options controls reply behavior
type Options struct {
	WorkersPerKind     int
	ForbiddenBackoff   time.Duration
	RateThreshold      int
	RateWindow         time.Duration
	MentionCorpusRatio float64
}

// FromConfig reads options using the REPLY_ prefix
func FromConfig(cfg config.Conf) Options {
	r := cfg.Prefix("REPLY_")
	return Options{
		WorkersPerKind:     r.MayInt("WORKERS_PER_KIND", 1),
		ForbiddenBackoff:   r.MayDuration("FORBIDDEN_BACKOFF", 5*time.Minute),
		RateThreshold:      r.MayInt("RATE_THRESHOLD", 3),
		RateWindow:         r.MayDuration("RATE_WINDOW", 60*time.Second),
		MentionCorpusRatio: cfg.Prefix("CORPUS_").MayFloat64("MENTION_RATIO", 0),
	}
}
