package module

import (
	"time"

	"meitanbot/internal/platform/config"
)

// Options controls the friendship service
type Options struct {
	Remove           bool
	FollowBack       bool
	ForbiddenBackoff time.Duration
}

// FromConfig reads options using the FRIENDSHIP_ prefix
func FromConfig(cfg config.Conf) Options {
	f := cfg.Prefix("FRIENDSHIP_")
	return Options{
		Remove:           f.MayBool("REMOVE", false),
		FollowBack:       f.MayBool("FOLLOW_BACK", true),
		ForbiddenBackoff: f.MayDuration("FORBIDDEN_BACKOFF", 5*time.Minute),
	}
}
