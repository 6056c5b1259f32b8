package domain

import (
	"context"

	"meitanbot/internal/core/counters"
)

// RecorderPort takes per reply analytics
type RecorderPort interface {
	RecordReply(ctx context.Context, ev ReplyEvent)
}

// FlusherPort writes the current counters to every configured sink
type FlusherPort interface {
	Flush(ctx context.Context) (counters.Snapshot, error)
}

// ReaderPort serves counters to the admin surfaces
type ReaderPort interface {
	Current() counters.Snapshot
	Latest(ctx context.Context) (SnapshotRecord, error)
}
