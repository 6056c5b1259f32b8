// Package service runs the clock driven jobs: time signal, stats flush, friendship check and rate pruning
package service

import (
	"context"
	"strconv"
	"time"

	"meitanbot/internal/adapters/twitter"
	"meitanbot/internal/core/rulepack"
	"meitanbot/internal/core/runtimecfg"
	"meitanbot/internal/modkit"
	frienddomain "meitanbot/internal/services/friendship/domain"
	replydomain "meitanbot/internal/services/reply/domain"
	"meitanbot/internal/services/scheduler/domain"
	statsdomain "meitanbot/internal/services/stats/domain"
)

const postTimeout = 15 * time.Second

// Announcer posts a standalone status
type Announcer interface {
	Post(ctx context.Context, text string) (twitter.Status, error)
}

// Jobs are the collaborators; a nil entry disables its job
type Jobs struct {
	Announcer  Announcer
	Flusher    statsdomain.FlusherPort
	Reconciler frienddomain.ReconcilerPort
	Pruner     replydomain.PrunerPort
}

// Config sets the polling tick and the job intervals; a zero interval disables that job
type Config struct {
	Tick            time.Duration
	TimeSignal      bool
	Signal          domain.Signal
	FlushEvery      time.Duration
	FriendshipEvery time.Duration
	PruneEvery      time.Duration
}

type periodic struct {
	name  string
	every time.Duration
	next  time.Time
	run   func(ctx context.Context)
}

// Svc is the scheduler
type Svc struct {
	deps     modkit.Deps
	cfg      Config
	jobs     Jobs
	rt       *runtimecfg.Config
	pack     *rulepack.Pack
	guard    domain.HourGuard
	periodic []*periodic
	now      func() time.Time
}

// New builds the scheduler
func New(deps modkit.Deps, cfg Config, jobs Jobs, rt *runtimecfg.Config, pack *rulepack.Pack) *Svc {
	if cfg.Tick <= 0 {
		cfg.Tick = time.Second
	}
	s := &Svc{deps: deps, cfg: cfg, jobs: jobs, rt: rt, pack: pack, now: time.Now}
	if jobs.Flusher != nil {
		s.add("stats_flush", cfg.FlushEvery, s.flush)
	}
	if jobs.Reconciler != nil {
		s.add("friendship", cfg.FriendshipEvery, s.reconcile)
	}
	if jobs.Pruner != nil {
		s.add("rate_prune", cfg.PruneEvery, s.prune)
	}
	return s
}

func (s *Svc) add(name string, every time.Duration, run func(context.Context)) {
	if every <= 0 {
		s.deps.Log.Info().Str("job", name).Msg("job disabled")
		return
	}
	s.periodic = append(s.periodic, &periodic{name: name, every: every, run: run})
}

// Run polls until ctx ends, then flushes stats one last time
func (s *Svc) Run(ctx context.Context) error {
	start := s.now()
	for _, p := range s.periodic {
		p.next = start.Add(p.every)
	}
	t := time.NewTicker(s.cfg.Tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			if s.jobs.Flusher != nil {
				s.flush(context.WithoutCancel(ctx))
			}
			return nil
		case <-t.C:
			s.tick(ctx, s.now())
		}
	}
}

// tick runs whatever is due at now
func (s *Svc) tick(ctx context.Context, now time.Time) {
	if s.cfg.TimeSignal && s.guard.Due(now) {
		s.timeSignal(ctx, now)
	}
	for _, p := range s.periodic {
		if now.Before(p.next) {
			continue
		}
		p.next = now.Add(p.every)
		p.run(ctx)
	}
}

func (s *Svc) timeSignal(ctx context.Context, now time.Time) {
	text, err := s.pack.Render("time_signal", map[string]string{
		"hour":  strconv.Itoa(s.cfg.Signal.Hour(now)),
		"label": s.cfg.Signal.Label,
	})
	if err != nil {
		s.deps.Log.Error().Err(err).Msg("time signal render failed")
		return
	}
	if !s.rt.Snapshot().PostingEnabled || s.jobs.Announcer == nil {
		s.deps.Log.Info().Str("text", text).Msg("time signal skipped; posting disabled")
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), postTimeout)
	defer cancel()
	if _, err := s.jobs.Announcer.Post(pctx, text); err != nil {
		s.deps.Log.Warn().Err(err).Str("text", text).Msg("time signal failed")
		return
	}
	s.deps.Log.Info().Str("text", text).Msg("time signal posted")
}

func (s *Svc) flush(ctx context.Context) {
	if _, err := s.jobs.Flusher.Flush(ctx); err != nil {
		s.deps.Log.Warn().Err(err).Msg("stats flush failed")
	}
}

// reconcile runs in the background; an overlapping pass is refused by the reconciler
func (s *Svc) reconcile(ctx context.Context) {
	go func() {
		if _, _, err := s.jobs.Reconciler.Reconcile(ctx); err != nil {
			s.deps.Log.Warn().Err(err).Msg("friendship check failed")
		}
	}()
}

func (s *Svc) prune(context.Context) {
	if n := s.jobs.Pruner.PruneRates(); n > 0 {
		s.deps.Log.Debug().Int("pruned", n).Msg("rate windows pruned")
	}
}
