package service

import (
	"context"
	"errors"
	"time"

	"meitanbot/internal/adapters/stream"
	"meitanbot/internal/core/event"
	perr "meitanbot/internal/platform/errors"
	"meitanbot/internal/platform/logger"
	"meitanbot/internal/services/stream/domain"

	"github.com/google/uuid"
)

const announceTimeout = 15 * time.Second

func newConnID() string { return uuid.NewString() }

// Run connects, reads and reconnects until ctx ends
// on a clean stop it posts the farewell and saves the ignore list; with a hard
// ceiling configured it gives up and returns an Unavailable error
func (s *Svc) Run(ctx context.Context) error {
	defer s.setState(domain.Disconnected)
	for {
		err := s.connectOnce(ctx)
		if ctx.Err() != nil {
			s.shutdown(ctx)
			return nil
		}

		s.setState(domain.Backoff)
		s.counters.Reconnects.Add(1)
		d := s.retry.Fail()
		s.shorts.Store(int32(d.ShortCount))
		if d.GiveUp {
			s.deps.Log.Error().Err(err).Int("failures", d.Failures).Msg("stream retry ceiling reached")
			s.shutdown(ctx)
			return perr.Wrapf(err, perr.ErrorCodeUnavailable, "stream: gave up after %d failures", d.Failures)
		}
		s.deps.Log.Warn().Err(err).
			Str("tier", string(d.Tier)).
			Dur("wait", d.Wait).
			Int("short_count", d.ShortCount).
			Int("failures", d.Failures).
			Msg("stream disconnected; retrying")
		if err := s.sleep(ctx, d.Wait); err != nil {
			s.shutdown(ctx)
			return nil
		}
	}
}

// connectOnce runs one connection to completion and returns why it ended
func (s *Svc) connectOnce(ctx context.Context) error {
	s.setState(domain.Connecting)
	id := s.newID()
	cctx, cancel := context.WithCancel(logger.WithConn(ctx, id))
	defer cancel()
	log := logger.C(cctx)

	body, err := s.opener.Open(cctx)
	if err != nil {
		return err
	}
	defer func() { _ = body.Close() }()

	s.mu.Lock()
	s.connID, s.since = id, s.now()
	first := !s.greeted
	s.greeted = true
	s.mu.Unlock()
	s.setState(domain.Streaming)
	log.Info().Msg("stream connected")

	if first {
		s.greet(cctx)
	}

	s.decoder.Reset()
	before := s.decoder.Dropped()
	gotData := false
	err = stream.Pump(cctx, body, s.decoder, s.cfg.IdleTimeout, func(rec event.Record) {
		if !gotData {
			gotData = true
			s.retry.Reset()
			s.shorts.Store(0)
		}
		s.decoded.Add(1)
		s.route(cctx, rec.Route())
	})
	s.counters.RecordsDropped.Add(int64(s.decoder.Dropped() - before))
	if errors.Is(err, context.Canceled) && ctx.Err() == nil {
		err = perr.Unavailablef("stream: connection cancelled")
	}
	return err
}

// route hands one record to its queue by kind
func (s *Svc) route(ctx context.Context, ev event.Event) {
	log := logger.C(ctx)
	snap := s.rt.Snapshot()
	switch ev.Kind {
	case event.KindPost:
		s.counters.PostsReceived.Add(1)
		_ = s.queues.Posts.Push(ev.Post)
	case event.KindFollow, event.KindUnfollow:
		s.counters.EventsReceived.Add(1)
		if ev.Follow.Source.ID == snap.SelfID {
			return
		}
		_ = s.queues.Events.Push(ev.Follow)
	case event.KindDirectMessage:
		s.counters.MessagesReceived.Add(1)
		m := ev.Message
		if !snap.IsOwner(m.Sender.ID) || !isCommand(m.Text) {
			log.Debug().Str("sender_id", m.Sender.ID.String()).Msg("direct message dropped")
			return
		}
		_ = s.queues.Messages.Push(m)
	default:
		log.Trace().Msg("record without a route")
	}
}

func (s *Svc) greet(ctx context.Context) {
	s.announce(ctx, "greeting")
	if s.recon == nil {
		return
	}
	go func() {
		followed, removed, err := s.recon.Reconcile(context.WithoutCancel(ctx))
		if err != nil {
			logger.C(ctx).Warn().Err(err).Msg("startup reconcile failed")
			return
		}
		logger.C(ctx).Info().Int("followed", followed).Int("removed", removed).Msg("startup reconcile done")
	}()
}

func (s *Svc) announce(ctx context.Context, template string) {
	if !s.cfg.Announce || s.poster == nil || s.pack == nil {
		return
	}
	text, err := s.pack.Render(template, map[string]string{"time": s.now().Format(time.TimeOnly)})
	if err != nil {
		s.deps.Log.Error().Err(err).Str("template", template).Msg("announce render failed")
		return
	}
	if !s.rt.Snapshot().PostingEnabled {
		s.deps.Log.Info().Str("text", text).Msg("posting disabled; announcement skipped")
		return
	}
	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), announceTimeout)
	defer cancel()
	if _, err := s.poster.Post(actx, text); err != nil {
		s.deps.Log.Warn().Err(err).Str("text", text).Msg("announcement failed")
		return
	}
	s.deps.Log.Info().Str("text", text).Msg("announced")
}

// shutdown runs once per Run exit: farewell if we ever greeted, then persist the ignore list
func (s *Svc) shutdown(ctx context.Context) {
	s.setState(domain.Disconnected)
	s.mu.Lock()
	greeted := s.greeted
	s.mu.Unlock()
	if greeted {
		s.announce(ctx, "farewell")
	}
	if s.cfg.IgnoreFile == "" {
		return
	}
	if err := s.rt.Save(s.cfg.IgnoreFile); err != nil {
		s.deps.Log.Error().Err(err).Str("path", s.cfg.IgnoreFile).Msg("ignore list save failed")
		return
	}
	s.deps.Log.Info().Str("path", s.cfg.IgnoreFile).Int("ids", len(s.rt.Snapshot().IgnoredIDs())).
		Msg("ignore list saved")
}
