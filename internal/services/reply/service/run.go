package service

import (
	"context"
	"errors"
	"strconv"

	"meitanbot/internal/core/intent"
	"meitanbot/internal/core/queue"
	"meitanbot/internal/platform/logger"

	"golang.org/x/sync/errgroup"
)

// Run drains the post queue through Route and starts the reply workers
// it returns when ctx ends or the queues are closed
func (s *Svc) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.classifyLoop(ctx) })
	for _, k := range intent.Actionable() {
		q := s.queues.Reply(k)
		for i := range s.cfg.WorkersPerKind {
			name := "reply/" + k.String()
			if s.cfg.WorkersPerKind > 1 {
				name += "/" + strconv.Itoa(i)
			}
			g.Go(func() error { return s.worker(logger.WithWorker(ctx, name), q) })
		}
	}
	s.deps.Log.Info().Int("kinds", len(intent.Actionable())).Int("workers_per_kind", s.cfg.WorkersPerKind).
		Msg("reply workers started")
	return quiet(g.Wait())
}

func (s *Svc) classifyLoop(ctx context.Context) error {
	for {
		p, err := s.queues.Posts.Pop(ctx)
		if err != nil {
			return quiet(err)
		}
		s.Route(ctx, p)
	}
}

func (s *Svc) worker(ctx context.Context, q *queue.Queue[intent.Intent]) error {
	for {
		in, err := q.Pop(ctx)
		if err != nil {
			return quiet(err)
		}
		// a dequeued reply runs to completion even when shutdown starts
		if s.Handle(context.WithoutCancel(ctx), in) == outcomeForbidden {
			s.deps.Log.Warn().Dur("backoff", s.cfg.ForbiddenBackoff).Str("kind", in.Kind.String()).
				Msg("forbidden; worker backing off")
			if err := s.sleep(ctx, s.cfg.ForbiddenBackoff); err != nil {
				return quiet(err)
			}
		}
	}
}

// quiet maps normal shutdown to nil
func quiet(err error) error {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, queue.ErrClosed) {
		return nil
	}
	return err
}
