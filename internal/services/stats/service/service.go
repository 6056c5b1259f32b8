// Package service flushes counters to the log and the optional stores
package service

import (
	"context"
	"errors"
	"sync"

	"meitanbot/internal/core/counters"
	"meitanbot/internal/modkit"
	"meitanbot/internal/modkit/repokit"
	perr "meitanbot/internal/platform/errors"
	"meitanbot/internal/services/stats/domain"
	"meitanbot/internal/services/stats/repo"

	"github.com/google/uuid"
)

// Config carries the stats knobs
type Config struct {
	// EventBatch is how many reply events are buffered before a clickhouse insert
	EventBatch int
}

// Svc implements the stats ports
type Svc struct {
	deps     modkit.Deps
	counters *counters.Counters
	runID    uuid.UUID
	cfg      Config

	snaps  repo.Snapshots
	events repo.Events

	mu      sync.Mutex
	pending []domain.ReplyEvent
}

// New builds the service; postgres and clickhouse sinks are used only when deps carry them
func New(deps modkit.Deps, c *counters.Counters, cfg Config) *Svc {
	if cfg.EventBatch <= 0 {
		cfg.EventBatch = 64
	}
	s := &Svc{deps: deps, counters: c, runID: uuid.New(), cfg: cfg}
	if deps.PG != nil {
		s.snaps = repokit.MustBind(repo.NewPG(), deps.PG)
	}
	if deps.CH != nil {
		s.events = repo.NewCH(deps.CH)
	}
	return s
}

// RunID identifies this process in persisted snapshots
func (s *Svc) RunID() uuid.UUID { return s.runID }

// EnsureSchema creates the tables in every configured store
func (s *Svc) EnsureSchema(ctx context.Context) error {
	var errs []error
	if s.snaps != nil {
		errs = append(errs, s.snaps.EnsureSchema(ctx))
	}
	if s.events != nil {
		errs = append(errs, s.events.EnsureSchema(ctx))
	}
	return errors.Join(errs...)
}

// Current returns live counters
func (s *Svc) Current() counters.Snapshot { return s.counters.Snapshot() }

// Latest returns the newest persisted snapshot
func (s *Svc) Latest(ctx context.Context) (domain.SnapshotRecord, error) {
	if s.snaps == nil {
		return domain.SnapshotRecord{}, perr.Unavailablef("stats: postgres not configured")
	}
	return s.snaps.Latest(ctx)
}

// RecordReply buffers ev for clickhouse; a full buffer is written immediately
func (s *Svc) RecordReply(ctx context.Context, ev domain.ReplyEvent) {
	if s.events == nil {
		return
	}
	s.mu.Lock()
	s.pending = append(s.pending, ev)
	full := len(s.pending) >= s.cfg.EventBatch
	s.mu.Unlock()
	if full {
		if err := s.flushEvents(ctx); err != nil {
			s.deps.Log.Warn().Err(err).Msg("reply event insert failed")
		}
	}
}

// Pending is the number of buffered reply events
func (s *Svc) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *Svc) flushEvents(ctx context.Context) error {
	s.mu.Lock()
	batch := s.pending
	s.pending = nil
	s.mu.Unlock()
	if len(batch) == 0 {
		return nil
	}
	if err := s.events.Insert(ctx, batch); err != nil {
		// keep the rows for the next flush, newer rows after older ones
		s.mu.Lock()
		s.pending = append(batch, s.pending...)
		if over := len(s.pending) - 16*s.cfg.EventBatch; over > 0 {
			s.pending = s.pending[over:]
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

// saveSnapshot writes rec, recreating a dropped table or retrying a transient failure once
func (s *Svc) saveSnapshot(ctx context.Context, rec domain.SnapshotRecord) error {
	err := s.snaps.Save(ctx, rec)
	switch {
	case err == nil:
		return nil
	case perr.IsUndefinedTable(err):
		s.deps.Log.Warn().Err(err).Msg("snapshot table missing; recreating")
		if err := s.snaps.EnsureSchema(ctx); err != nil {
			return err
		}
	case perr.Retryable(err):
		s.deps.Log.Debug().Err(err).Msg("snapshot save failed; retrying once")
	default:
		return err
	}
	return s.snaps.Save(ctx, rec)
}

// Flush logs the counters and writes them to the configured stores
func (s *Svc) Flush(ctx context.Context) (counters.Snapshot, error) {
	snap := s.counters.Snapshot()
	s.deps.Log.Info().
		Str("run_id", s.runID.String()).
		Dur("uptime", snap.Uptime).
		Int64("posts", snap.PostsReceived).
		Int64("replies_sent", snap.RepliesSent).
		Int64("replies_skipped", snap.RepliesSkipped).
		Int64("replies_failed", snap.RepliesFailed).
		Int64("forbidden", snap.Forbidden).
		Int64("retweets", snap.Retweets).
		Int64("reconnects", snap.Reconnects).
		Int64("follows", snap.Follows).
		Dur("avg_latency", snap.AvgLatency).
		Interface("intents", snap.Intents).
		Msg("stats")

	var errs []error
	if s.snaps != nil {
		rec := domain.SnapshotRecord{RunID: s.runID, TakenAt: snap.TakenAt, Counters: snap}
		errs = append(errs, s.saveSnapshot(ctx, rec))
	}
	if s.events != nil {
		errs = append(errs, s.flushEvents(ctx))
	}
	return snap, errors.Join(errs...)
}
