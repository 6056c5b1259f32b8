// Package domain holds the statistics types shared by the stats service and its callers
package domain

import (
	"time"

	"meitanbot/internal/core/counters"

	"github.com/google/uuid"
)

// Outcome is what happened to one reply attempt
type Outcome string

// Reply outcomes
const (
	OutcomeSent      Outcome = "sent"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
	OutcomeForbidden Outcome = "forbidden"
)

// ReplyEvent is one row of the reply analytics stream
type ReplyEvent struct {
	At       time.Time
	Kind     string
	PostID   int64
	AuthorID int64
	Outcome  Outcome
	Latency  time.Duration
}

// SnapshotRecord is a persisted counters snapshot; RunID changes every process start
type SnapshotRecord struct {
	RunID    uuid.UUID         `json:"run_id"`
	TakenAt  time.Time         `json:"taken_at"`
	Counters counters.Snapshot `json:"counters"`
}
