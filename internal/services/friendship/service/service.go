// Package service reconciles the follower and following sets and follows back on events
package service

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"meitanbot/internal/adapters/twitter"
	"meitanbot/internal/core/counters"
	"meitanbot/internal/core/event"
	"meitanbot/internal/core/queue"
	"meitanbot/internal/core/runtimecfg"
	"meitanbot/internal/modkit"
	perr "meitanbot/internal/platform/errors"
	"meitanbot/internal/platform/logger"
	"meitanbot/internal/services/friendship/domain"
)

// maxPages bounds one cursor walk in case the platform never returns the end cursor
const maxPages = 1000

// Config controls reconciliation
type Config struct {
	// Remove enables unfollowing ids that no longer follow back
	Remove           bool
	FollowBack       bool
	ForbiddenBackoff time.Duration
}

// Svc is the friendship service
type Svc struct {
	deps     modkit.Deps
	cfg      Config
	graph    domain.Graph
	rt       *runtimecfg.Config
	counters *counters.Counters
	running  atomic.Bool
	sleep    func(ctx context.Context, d time.Duration) error
}

// New builds the service
func New(deps modkit.Deps, cfg Config, g domain.Graph, rt *runtimecfg.Config, c *counters.Counters) *Svc {
	if cfg.ForbiddenBackoff <= 0 {
		cfg.ForbiddenBackoff = 5 * time.Minute
	}
	return &Svc{deps: deps, cfg: cfg, graph: g, rt: rt, counters: c, sleep: sleepCtx}
}

// Reconcile follows every follower we do not follow and, when enabled, drops the rest
// a pagination failure aborts the pass; calls already issued stand
func (s *Svc) Reconcile(ctx context.Context) (followed, removed int, err error) {
	if !s.running.CompareAndSwap(false, true) {
		return 0, 0, perr.Conflictf("friendship: reconcile already running")
	}
	defer s.running.Store(false)

	start := time.Now()
	followers, err := collect(ctx, s.graph.FollowerIDs)
	if err != nil {
		s.deps.Log.Error().Err(err).Msg("follower ids failed")
		return 0, 0, err
	}
	following, err := collect(ctx, s.graph.FollowingIDs)
	if err != nil {
		s.deps.Log.Error().Err(err).Msg("following ids failed")
		return 0, 0, err
	}

	plan := domain.Diff(followers, following, s.rt.Snapshot().SelfID)
	for _, id := range plan.Follow {
		if s.apply(ctx, "follow", id, s.graph.Follow) {
			followed++
			s.counters.Follows.Add(1)
		}
	}
	if s.cfg.Remove {
		for _, id := range plan.Remove {
			if s.apply(ctx, "unfollow", id, s.graph.Unfollow) {
				removed++
				s.counters.Unfollows.Add(1)
			}
		}
	}

	s.deps.Log.Info().
		Int("followers", len(followers)).
		Int("following", len(following)).
		Int("followed", followed).
		Int("removed", removed).
		Int("pending_remove", len(plan.Remove)-removed).
		Dur("elapsed", time.Since(start)).
		Msg("friendship reconciled")
	return followed, removed, ctx.Err()
}

// apply runs one graph call; a 403 sleeps the forbidden backoff and moves on
// cancellation stops the loop between calls but never aborts a call in flight
func (s *Svc) apply(ctx context.Context, op string, id event.UserID, fn func(context.Context, event.UserID) error) bool {
	if ctx.Err() != nil {
		return false
	}
	err := fn(context.WithoutCancel(ctx), id)
	if err == nil {
		s.deps.Log.Info().Str("op", op).Str("user_id", id.String()).Msg("friendship changed")
		return true
	}
	s.deps.Log.Warn().Err(err).Str("op", op).Str("user_id", id.String()).Msg("friendship call failed")
	if twitter.IsForbidden(err) {
		_ = s.sleep(ctx, s.cfg.ForbiddenBackoff)
	}
	return false
}

// Counts walks both id lists
func (s *Svc) Counts(ctx context.Context) (followers, following int, err error) {
	fs, err := collect(ctx, s.graph.FollowerIDs)
	if err != nil {
		return 0, 0, err
	}
	gs, err := collect(ctx, s.graph.FollowingIDs)
	if err != nil {
		return 0, 0, err
	}
	return len(fs), len(gs), nil
}

// Run follows back on follow events until ctx ends or the queue closes
func (s *Svc) Run(ctx context.Context, events *queue.Queue[event.Follow]) error {
	ctx = logger.WithWorker(ctx, "friendship/events")
	for {
		ev, err := events.Pop(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, queue.ErrClosed) {
				return nil
			}
			return err
		}
		s.handle(context.WithoutCancel(ctx), ev)
	}
}

func (s *Svc) handle(ctx context.Context, ev event.Follow) {
	snap := s.rt.Snapshot()
	if ev.Source.ID == snap.SelfID {
		return
	}
	log := logger.C(ctx)
	switch ev.Kind {
	case event.KindFollow:
		if !s.cfg.FollowBack {
			log.Debug().Str("user_id", ev.Source.ID.String()).Msg("follow back disabled")
			return
		}
		if s.apply(ctx, "follow", ev.Source.ID, s.graph.Follow) {
			s.counters.Follows.Add(1)
		}
	case event.KindUnfollow:
		if !s.cfg.Remove {
			return
		}
		if s.apply(ctx, "unfollow", ev.Source.ID, s.graph.Unfollow) {
			s.counters.Unfollows.Add(1)
		}
	}
}

type pageFn func(ctx context.Context, cursor int64) ([]event.UserID, int64, error)

// collect walks a cursor until the end marker and unions every page
func collect(ctx context.Context, page pageFn) (domain.Set, error) {
	out := domain.Set{}
	cursor := twitter.FirstCursor
	for i := 0; i < maxPages; i++ {
		ids, next, err := page(ctx, cursor)
		if err != nil {
			return nil, err
		}
		out.Add(ids...)
		if next == twitter.EndCursor {
			return out, nil
		}
		cursor = next
	}
	return nil, perr.Unavailablef("friendship: cursor did not end after %d pages", maxPages)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
