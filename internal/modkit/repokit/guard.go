package repokit

import (
	"context"
	"errors"
	"time"

	perr "meitanbot/internal/platform/errors"
	"meitanbot/internal/platform/store"
)

// Pinger is satisfied by the pg and ch adapters
type Pinger = store.Pinger

// DefaultPingTimeout bounds a ping when ctx has no deadline
const DefaultPingTimeout = 2 * time.Second

// ErrNotConfigured is returned for a nil dependency; storage is optional so callers treat it as skipped
var ErrNotConfigured = errors.New("repokit: not configured")

// Ping checks one dependency and reports a failure as Unavailable
func Ping(ctx context.Context, name string, p Pinger) error {
	if p == nil {
		return ErrNotConfigured
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultPingTimeout)
		defer cancel()
	}
	if err := p.Ping(ctx); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "%s: ping failed", name)
	}
	return nil
}
