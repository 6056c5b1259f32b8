package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"meitanbot/internal/core/queue"
	"meitanbot/internal/platform/logger"
	"meitanbot/internal/services/command/domain"
)

// Run consumes owner direct messages; every result is sent back to the owner
func (s *Svc) Run(ctx context.Context) error {
	ctx = logger.WithWorker(ctx, "command/dm")
	for {
		m, err := s.queues.Messages.Pop(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, queue.ErrClosed) {
				return nil
			}
			return err
		}
		cmd, ok := domain.Parse(m.Text)
		if !ok {
			s.deps.Log.Debug().Str("text", m.Text).Msg("empty command")
			continue
		}
		s.Execute(ctx, cmd.Name, cmd.Args, true)
	}
}

// Console reads one command per line from r and writes each result to w
// echoDM additionally sends results to the owner; EOF ends the console
func (s *Svc) Console(ctx context.Context, r io.Reader, w io.Writer, echoDM bool) error {
	ctx = logger.WithWorker(ctx, "command/console")
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		cmd, ok := domain.Parse(sc.Text())
		if !ok {
			continue
		}
		res := s.Execute(ctx, cmd.Name, cmd.Args, echoDM)
		mark := "ok"
		if !res.OK {
			mark = "error"
		}
		if _, err := fmt.Fprintf(w, "[%s] %s\n", mark, res.Message); err != nil {
			return err
		}
		if res.Terminate {
			return nil
		}
	}
	return sc.Err()
}
