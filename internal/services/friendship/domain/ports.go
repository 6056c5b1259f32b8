// Package domain holds the friendship graph seams and the set diff
package domain

import (
	"context"

	"meitanbot/internal/core/event"
)

// Graph is the slice of the platform client the reconciler needs
type Graph interface {
	FollowerIDs(ctx context.Context, cursor int64) ([]event.UserID, int64, error)
	FollowingIDs(ctx context.Context, cursor int64) ([]event.UserID, int64, error)
	Follow(ctx context.Context, id event.UserID) error
	Unfollow(ctx context.Context, id event.UserID) error
}

// ReconcilerPort runs one reconciliation pass
type ReconcilerPort interface {
	Reconcile(ctx context.Context) (followed, removed int, err error)
}

// CounterPort reports the size of both sides of the graph
type CounterPort interface {
	Counts(ctx context.Context) (followers, following int, err error)
}
