package module

import (
	"time"

	"meitanbot/internal/adapters/stream"
	"meitanbot/internal/platform/config"
)

// Options controls the stream connection and its retry policy
type Options struct {
	URL             string
	Track           string
	CAFile          string
	VerifyDepth     int
	MaxFrame        int
	IdleTimeout     time.Duration
	RetryShort      time.Duration
	RetryLong       time.Duration
	MaxContinuative int
	HardCeiling     int
}

// FromConfig reads options using the STREAM_ prefix
// the stream is tracked on the bot's own handle unless STREAM_TRACK says otherwise
func FromConfig(cfg config.Conf) Options {
	s := cfg.Prefix("STREAM_")
	return Options{
		URL:             s.MayString("URL", stream.DefaultURL),
		Track:           s.MayString("TRACK", cfg.Prefix("BOT_").MayString("SCREEN_NAME", "meitanbot")),
		CAFile:          s.MayString("CA_FILE", ""),
		VerifyDepth:     s.MayInt("VERIFY_DEPTH", stream.DefaultVerifyDepth),
		MaxFrame:        s.MayInt("MAX_FRAME", stream.DefaultMaxFrame),
		IdleTimeout:     s.MayDuration("IDLE_TIMEOUT", stream.DefaultIdleTimeout),
		RetryShort:      s.MayDuration("RETRY_SHORT", 10*time.Second),
		RetryLong:       s.MayDuration("RETRY_LONG", 15*time.Minute),
		MaxContinuative: s.MayInt("MAX_CONTINUATIVE", 5),
		HardCeiling:     s.MayInt("HARD_CEILING", 0),
	}
}
