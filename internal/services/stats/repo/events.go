package repo

import (
	"context"

	"meitanbot/internal/modkit/repokit"
	perr "meitanbot/internal/platform/errors"
	"meitanbot/internal/services/stats/domain"
)

// Events is the clickhouse reply event sink
type Events interface {
	EnsureSchema(ctx context.Context) error
	Insert(ctx context.Context, evs []domain.ReplyEvent) error
}

// EventsTable is the clickhouse table name
const EventsTable = "reply_events"

var eventCols = []string{"at", "kind", "post_id", "author_id", "outcome", "latency_ms"}

type chEvents struct{ ch repokit.Clickhouse }

// NewCH binds the sink to a clickhouse seam
func NewCH(ch repokit.Clickhouse) Events { return chEvents{ch: ch} }

func (e chEvents) EnsureSchema(ctx context.Context) error {
	err := e.ch.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS reply_events (
			at         DateTime64(3, 'UTC'),
			kind       LowCardinality(String),
			post_id    Int64,
			author_id  Int64,
			outcome    LowCardinality(String),
			latency_ms UInt32
		) ENGINE = MergeTree
		ORDER BY (at, kind)`)
	return perr.WrapIf(err, perr.ErrorCodeDB, "stats: ensure clickhouse schema")
}

func (e chEvents) Insert(ctx context.Context, evs []domain.ReplyEvent) error {
	if len(evs) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(evs))
	for _, ev := range evs {
		ms := ev.Latency.Milliseconds()
		if ms < 0 {
			ms = 0
		}
		rows = append(rows, []any{ev.At.UTC(), ev.Kind, ev.PostID, ev.AuthorID, string(ev.Outcome), uint32(ms)})
	}
	return perr.WrapIf(e.ch.Insert(ctx, EventsTable, eventCols, rows), perr.ErrorCodeDB, "stats: insert reply events")
}
