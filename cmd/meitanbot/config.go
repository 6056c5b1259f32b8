package main

import (
	"flag"
	"os"

	"meitanbot/internal/adapters/twitter"
	"meitanbot/internal/adapters/weather"
	"meitanbot/internal/core/event"
	"meitanbot/internal/platform/config"
)

// botConfig is the BOT_ view: identity, files and startup toggles
type botConfig struct {
	ScreenName     string
	SelfID         event.UserID
	OwnerID        event.UserID
	CredentialFile string
	PhraseDir      string
	RulesFile      string
	IgnoreFile     string
	PostingEnabled bool
	IgnoreOwner    bool
	Announce       bool
}

func loadBotConfig(root config.Conf) botConfig {
	b := root.Prefix("BOT_")
	return botConfig{
		ScreenName:     b.MayString("SCREEN_NAME", "meitanbot"),
		SelfID:         event.UserID(b.MayInt64("SELF_ID", 0)),
		OwnerID:        event.UserID(b.MustInt64("OWNER_ID")),
		CredentialFile: b.MayString("CREDENTIAL_FILE", "credential.yaml"),
		PhraseDir:      b.MayString("PHRASE_DIR", "phrases"),
		RulesFile:      b.MayString("RULES_FILE", ""),
		IgnoreFile:     b.MayString("IGNORE_FILE", "ignore.txt"),
		PostingEnabled: b.MayBool("POSTING_ENABLED", true),
		IgnoreOwner:    b.MayBool("IGNORE_OWNER", false),
		Announce:       b.MayBool("ANNOUNCE", true),
	}
}

func twitterOptions(root config.Conf, screenName string) twitter.Options {
	t := root.Prefix("TWITTER_")
	return twitter.Options{
		BaseURL:       t.MayString("BASE_URL", ""),
		ScreenName:    screenName,
		MaxRetries:    t.MayInt("MAX_RETRIES", 3),
		RetryBase:     t.MayDuration("RETRY_BASE", 0),
		RatePerSecond: t.MayFloat64("RATE_PER_SECOND", 0),
		Burst:         t.MayInt("BURST", 0),
	}
}

func weatherOptions(root config.Conf) weather.Options {
	w := root.Prefix("WEATHER_")
	return weather.Options{
		BaseURL:   w.MayString("BASE_URL", ""),
		Place:     w.MayString("PLACE", ""),
		Latitude:  w.MayFloat64("LATITUDE", 0),
		Longitude: w.MayFloat64("LONGITUDE", 0),
		Timezone:  w.MayString("TIMEZONE", ""),
		Timeout:   w.MayDuration("TIMEOUT", 0),
	}
}

// flags holds the command line; explicitly set flags are exported over the env
type flags struct {
	console     bool
	echoDM      bool
	admin       string
	posting     bool
	ignoreOwner bool
}

var envForFlag = map[string]string{
	"admin":        "ADMIN_ADDR",
	"posting":      "BOT_POSTING_ENABLED",
	"ignore-owner": "BOT_IGNORE_OWNER",
}

func parseFlags(fs *flag.FlagSet, args []string) (flags, error) {
	var f flags
	fs.BoolVar(&f.console, "console", false, "read owner commands from stdin")
	fs.BoolVar(&f.echoDM, "echo-dm", false, "also send console command results to the owner")
	fs.StringVar(&f.admin, "admin", "", "admin HTTP listen address, e.g. 127.0.0.1:4300")
	fs.BoolVar(&f.posting, "posting", true, "start with posting enabled")
	fs.BoolVar(&f.ignoreOwner, "ignore-owner", false, "start ignoring the owner's chatter")
	if err := fs.Parse(args); err != nil {
		return f, err
	}
	fs.Visit(func(fl *flag.Flag) {
		key, ok := envForFlag[fl.Name]
		if !ok {
			return
		}
		_ = os.Setenv(key, fl.Value.String())
	})
	return f, nil
}
