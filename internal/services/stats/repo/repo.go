// Package repo persists statistics: snapshots in postgres, reply events in clickhouse
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"meitanbot/internal/modkit/repokit"
	perr "meitanbot/internal/platform/errors"
	"meitanbot/internal/platform/store"
	"meitanbot/internal/services/stats/domain"

	"github.com/google/uuid"
)

// Snapshots is the postgres surface
type Snapshots interface {
	EnsureSchema(ctx context.Context) error
	Save(ctx context.Context, rec domain.SnapshotRecord) error
	Latest(ctx context.Context) (domain.SnapshotRecord, error)
}

type (
	// PG is a Postgres implementation of Snapshots
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder for the Postgres implementation
func NewPG() repokit.Binder[Snapshots] { return PG{} }

// Bind binds a Queryer
func (PG) Bind(q repokit.Queryer) Snapshots { return &queries{q: q} }

const schemaSQL = `
CREATE TABLE IF NOT EXISTS bot_stats_snapshots (
	run_id          uuid        NOT NULL,
	taken_at        timestamptz NOT NULL,
	uptime_s        bigint      NOT NULL,
	posts_received  bigint      NOT NULL,
	replies_sent    bigint      NOT NULL,
	replies_failed  bigint      NOT NULL,
	forbidden       bigint      NOT NULL,
	payload         jsonb       NOT NULL,
	PRIMARY KEY (run_id, taken_at)
)`

func (r *queries) EnsureSchema(ctx context.Context) error {
	_, err := r.q.Exec(ctx, schemaSQL)
	return perr.FromPostgres(err, "stats: ensure schema")
}

func (r *queries) Save(ctx context.Context, rec domain.SnapshotRecord) error {
	payload, err := json.Marshal(rec.Counters)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeJSON, "stats: encode snapshot")
	}
	c := rec.Counters
	_, err = r.q.Exec(ctx, `
		INSERT INTO bot_stats_snapshots
			(run_id, taken_at, uptime_s, posts_received, replies_sent, replies_failed, forbidden, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb)
		ON CONFLICT (run_id, taken_at) DO NOTHING`,
		rec.RunID.String(), rec.TakenAt.UTC(), int64(c.Uptime/time.Second),
		c.PostsReceived, c.RepliesSent, c.RepliesFailed, c.Forbidden, string(payload))
	return perr.FromPostgres(err, "stats: save snapshot")
}

// Latest returns the newest snapshot; an empty or missing table is NotFound
func (r *queries) Latest(ctx context.Context) (domain.SnapshotRecord, error) {
	rec, err := store.One(ctx, r.q, scanSnapshot, `
		SELECT run_id::text, taken_at, payload::text
		FROM bot_stats_snapshots
		ORDER BY taken_at DESC
		LIMIT 1`)
	switch {
	case errors.Is(err, perr.ErrNotFound), perr.IsUndefinedTable(err):
		return domain.SnapshotRecord{}, perr.NotFoundf("stats: no snapshot stored")
	case err != nil:
		return domain.SnapshotRecord{}, perr.FromPostgres(err, "stats: latest snapshot")
	}
	return rec, nil
}

func scanSnapshot(row store.Row) (domain.SnapshotRecord, error) {
	var (
		runID   string
		rec     domain.SnapshotRecord
		payload string
	)
	if err := row.Scan(&runID, &rec.TakenAt, &payload); err != nil {
		return rec, err
	}
	id, err := uuid.Parse(runID)
	if err != nil {
		return rec, perr.Wrap(err, perr.ErrorCodeDB, "stats: bad run id")
	}
	rec.RunID = id
	if err := json.Unmarshal([]byte(payload), &rec.Counters); err != nil {
		return rec, perr.Wrap(err, perr.ErrorCodeJSON, "stats: decode snapshot")
	}
	return rec, nil
}
