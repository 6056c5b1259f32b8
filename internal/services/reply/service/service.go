// Package service runs the classification stage and the per kind reply workers
package service

import (
	"context"
	"math/rand/v2"
	"time"

	"meitanbot/internal/core/classify"
	"meitanbot/internal/core/counters"
	"meitanbot/internal/core/event"
	"meitanbot/internal/core/intent"
	"meitanbot/internal/core/phrases"
	"meitanbot/internal/core/queue"
	"meitanbot/internal/core/ratelimit"
	"meitanbot/internal/core/runtimecfg"
	"meitanbot/internal/modkit"
	"meitanbot/internal/services/reply/domain"
	statsdomain "meitanbot/internal/services/stats/domain"
)

// Config carries the reply knobs
type Config struct {
	// WorkersPerKind is the number of goroutines draining each reply queue
	WorkersPerKind int
	// ForbiddenBackoff is how long a worker pauses after a 403
	ForbiddenBackoff time.Duration
	RateThreshold    int
	RateWindow       time.Duration
	// MentionCorpusRatio is the share of mention replies generated from the corpus
	MentionCorpusRatio float64
}

// Collaborators are the outbound dependencies; Weather, Corpus and Recorder may be nil
type Collaborators struct {
	Poster   domain.Poster
	Weather  domain.Forecaster
	Corpus   domain.Corpus
	Recorder statsdomain.RecorderPort
}

// Svc implements the reply pipeline
type Svc struct {
	deps     modkit.Deps
	cfg      Config
	rt       *runtimecfg.Config
	cls      *classify.Classifier
	book     *phrases.Book
	queues   *queue.Set
	counters *counters.Counters
	limiter  *ratelimit.Limiter
	out      Collaborators

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
	coin  func() float64
}

// New builds the pipeline
func New(deps modkit.Deps, cfg Config, rt *runtimecfg.Config, cls *classify.Classifier, book *phrases.Book,
	qs *queue.Set, c *counters.Counters, out Collaborators) *Svc {
	if out.Poster == nil {
		panic("reply.Service requires a Poster")
	}
	if cfg.WorkersPerKind <= 0 {
		cfg.WorkersPerKind = 1
	}
	if cfg.ForbiddenBackoff <= 0 {
		cfg.ForbiddenBackoff = 5 * time.Minute
	}
	return &Svc{
		deps:     deps,
		cfg:      cfg,
		rt:       rt,
		cls:      cls,
		book:     book,
		queues:   qs,
		counters: c,
		limiter:  ratelimit.New(ratelimit.Options{Threshold: cfg.RateThreshold, Window: cfg.RateWindow}),
		out:      out,
		now:      time.Now,
		sleep:    sleepCtx,
		coin:     rand.Float64,
	}
}

// PruneRates drops expired rate windows
func (s *Svc) PruneRates() int { return s.limiter.Prune() }

// Route classifies p, learns it when the author is not ignored, and queues every actionable intent
// it returns the number of intents queued
func (s *Svc) Route(ctx context.Context, p event.Post) int {
	intents := s.cls.Classify(p, s.rt.Snapshot())
	queued := 0
	for _, in := range intents {
		s.counters.Intent(in.Kind)
		if in.Kind == intent.Ignore {
			s.deps.Log.Debug().Int64("post_id", in.PostID).Str("author_id", in.AuthorID.String()).
				Str("reason", in.Reason).Msg("post ignored")
			continue
		}
		logIntent(s.deps.Log.Info(), in).Msg("intent")
		if s.queues.Dispatch(in) {
			queued++
		}
	}
	if s.out.Corpus != nil && !s.rt.Snapshot().Ignored(p.Author.ID) && !p.Retweet {
		if err := s.out.Corpus.Learn(ctx, p); err != nil {
			s.deps.Log.Warn().Err(err).Int64("post_id", p.ID).Msg("corpus learn failed")
		}
	}
	return queued
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
