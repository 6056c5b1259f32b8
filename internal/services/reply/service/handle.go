package service

import (
	"context"
	"strconv"
	"time"

	"meitanbot/internal/adapters/twitter"
	"meitanbot/internal/core/intent"
	perr "meitanbot/internal/platform/errors"
	"meitanbot/internal/platform/logger"
	statsdomain "meitanbot/internal/services/stats/domain"

	"github.com/rs/zerolog"
)

const outcomeForbidden = statsdomain.OutcomeForbidden

func logIntent(e *zerolog.Event, in intent.Intent) *zerolog.Event {
	return e.Str("kind", in.Kind.String()).
		Int64("post_id", in.PostID).
		Str("author_id", in.AuthorID.String()).
		Str("screen_name", in.ScreenName).
		Str("text", in.Text)
}

// Handle performs one intent and reports its outcome
func (s *Svc) Handle(ctx context.Context, in intent.Intent) statsdomain.Outcome {
	log := logger.C(ctx)
	if in.Kind == intent.Retweet {
		return s.retweet(ctx, in)
	}

	// every reply attempt counts, even one whose text cannot be built;
	// suspension affects later posts only
	if v := s.limiter.Hit(in.AuthorID); v.Suspend {
		if s.rt.Ignore(in.AuthorID) {
			s.counters.Suspended.Add(1)
			log.Warn().Str("author_id", in.AuthorID.String()).Str("screen_name", in.ScreenName).
				Int("count", v.Count).Msg("author exceeded reply rate; suspended")
		}
	}

	text, err := s.resolve(ctx, in)
	if err != nil {
		s.counters.RepliesFailed.Add(1)
		logIntent(log.Error().Err(err), in).Msg("reply text unavailable")
		return s.record(ctx, in, statsdomain.OutcomeFailed, 0)
	}

	if !s.rt.Snapshot().PostingEnabled {
		s.counters.RepliesSkipped.Add(1)
		logIntent(log.Info(), in).Str("reply", text).Msg("posting disabled; reply skipped")
		return s.record(ctx, in, statsdomain.OutcomeSkipped, 0)
	}

	body := "@" + in.ScreenName + " " + text
	start := s.now()
	_, err = s.out.Poster.Reply(ctx, body, in.PostID)
	lat := s.now().Sub(start)
	s.counters.ObserveLatency(lat)

	switch {
	case err == nil:
		s.counters.RepliesSent.Add(1)
		logIntent(log.Info(), in).Str("reply", body).Dur("latency", lat).Msg("replied")
		return s.record(ctx, in, statsdomain.OutcomeSent, lat)
	case twitter.IsForbidden(err):
		s.counters.Forbidden.Add(1)
		logIntent(log.Warn().Err(err), in).Msg("reply forbidden")
		return s.record(ctx, in, statsdomain.OutcomeForbidden, lat)
	default:
		s.counters.RepliesFailed.Add(1)
		logIntent(log.Error().Err(err), in).Msg("reply failed")
		return s.record(ctx, in, statsdomain.OutcomeFailed, lat)
	}
}

func (s *Svc) retweet(ctx context.Context, in intent.Intent) statsdomain.Outcome {
	log := logger.C(ctx)
	if !s.rt.Snapshot().PostingEnabled {
		s.counters.RepliesSkipped.Add(1)
		logIntent(log.Info(), in).Msg("posting disabled; retweet skipped")
		return s.record(ctx, in, statsdomain.OutcomeSkipped, 0)
	}
	start := s.now()
	_, err := s.out.Poster.Retweet(ctx, in.PostID)
	lat := s.now().Sub(start)
	switch {
	case err == nil:
		s.counters.Retweets.Add(1)
		logIntent(log.Info(), in).Msg("retweeted")
		return s.record(ctx, in, statsdomain.OutcomeSent, lat)
	case twitter.IsForbidden(err):
		s.counters.Forbidden.Add(1)
		logIntent(log.Warn().Err(err), in).Msg("retweet forbidden")
		return s.record(ctx, in, statsdomain.OutcomeForbidden, lat)
	default:
		s.counters.RepliesFailed.Add(1)
		logIntent(log.Error().Err(err), in).Msg("retweet failed")
		return s.record(ctx, in, statsdomain.OutcomeFailed, lat)
	}
}

func (s *Svc) record(ctx context.Context, in intent.Intent, o statsdomain.Outcome, lat time.Duration) statsdomain.Outcome {
	if s.out.Recorder != nil {
		s.out.Recorder.RecordReply(ctx, statsdomain.ReplyEvent{
			At:       s.now(),
			Kind:     in.Kind.String(),
			PostID:   in.PostID,
			AuthorID: int64(in.AuthorID),
			Outcome:  o,
			Latency:  lat,
		})
	}
	return o
}

// resolve builds the reply body without the leading @handle
func (s *Svc) resolve(ctx context.Context, in intent.Intent) (string, error) {
	p := s.cls.Pack()
	switch in.Kind {
	case intent.ReplyMetaphor:
		return p.Render("metaphor", map[string]string{"word": in.Word})
	case intent.ReplyWeather:
		day := p.Day(in.AheadDays)
		if s.out.Weather == nil {
			return p.Render("weather_unavailable", map[string]string{"day": day})
		}
		f, err := s.out.Weather.Forecast(ctx, in.AheadDays)
		if err != nil {
			logger.C(ctx).Warn().Err(err).Int("ahead", in.AheadDays).Msg("forecast failed")
			return p.Render("weather_unavailable", map[string]string{"day": day})
		}
		vars := f.Vars()
		vars["day"] = day
		return p.Render("weather", vars)
	case intent.ReplyTimetable:
		slot, ok := p.Timetable[in.Period]
		if !ok {
			return "", perr.NotFoundf("no timetable entry for period %d", in.Period)
		}
		return p.Render("timetable", map[string]string{"period": strconv.Itoa(in.Period), "time": slot})
	case intent.ReplyMention:
		if s.out.Corpus != nil && s.cfg.MentionCorpusRatio > 0 && s.coin() < s.cfg.MentionCorpusRatio {
			text, err := s.out.Corpus.SampleTemplateText(ctx, in.AuthorID)
			if err == nil && text != "" {
				return text, nil
			}
			logger.C(ctx).Debug().Err(err).Msg("corpus sample unavailable; using phrases")
		}
	}
	if !in.Kind.Canned() {
		return "", perr.InvalidArgf("no reply text for kind %s", in.Kind)
	}
	text, ok := s.book.Pick(in.Kind.String())
	if !ok {
		return "", perr.NotFoundf("no phrases for %s", in.Kind)
	}
	return text, nil
}
