// Package service supervises the inbound stream connection
package service

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"meitanbot/internal/adapters/stream"
	"meitanbot/internal/adapters/twitter"
	"meitanbot/internal/core/counters"
	"meitanbot/internal/core/queue"
	"meitanbot/internal/core/rulepack"
	"meitanbot/internal/core/runtimecfg"
	"meitanbot/internal/modkit"
	"meitanbot/internal/services/stream/domain"
)

// Opener starts one streaming response
type Opener interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Announcer posts the greeting and farewell
type Announcer interface {
	Post(ctx context.Context, text string) (twitter.Status, error)
}

// Reconciler runs one friendship pass after the first connection
type Reconciler interface {
	Reconcile(ctx context.Context) (followed, removed int, err error)
}

// Config carries the supervisor knobs
type Config struct {
	Policy     domain.Policy
	IgnoreFile string
	MaxFrame   int

	// IdleTimeout ends a connection that delivers nothing, not even keep-alives, for this long; zero disables it
	IdleTimeout time.Duration
	// Announce enables the greeting and farewell posts
	Announce bool
}

// Svc is the stream supervisor
type Svc struct {
	deps     modkit.Deps
	cfg      Config
	opener   Opener
	poster   Announcer
	recon    Reconciler
	rt       *runtimecfg.Config
	pack     *rulepack.Pack
	queues   *queue.Set
	counters *counters.Counters
	retry    *domain.Retry
	decoder  *stream.Decoder

	state   atomic.Int32
	decoded atomic.Int64
	shorts  atomic.Int32
	mu      sync.Mutex
	connID  string
	since   time.Time
	greeted bool

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
	newID func() string
}

// Shared is the process state the supervisor feeds
type Shared struct {
	Runtime  *runtimecfg.Config
	Pack     *rulepack.Pack
	Queues   *queue.Set
	Counters *counters.Counters
}

// New builds a supervisor; recon may be nil
func New(deps modkit.Deps, cfg Config, opener Opener, poster Announcer, recon Reconciler, sh Shared) *Svc {
	s := &Svc{
		deps:     deps,
		cfg:      cfg,
		opener:   opener,
		poster:   poster,
		recon:    recon,
		rt:       sh.Runtime,
		pack:     sh.Pack,
		queues:   sh.Queues,
		counters: sh.Counters,
		retry:    domain.NewRetry(cfg.Policy),
		decoder:  stream.NewDecoder(cfg.MaxFrame),
		now:      time.Now,
		sleep:    sleepCtx,
		newID:    newConnID,
	}
	s.state.Store(int32(domain.Disconnected))
	return s
}

// State is the current connection state
func (s *Svc) State() domain.State { return domain.State(s.state.Load()) }

func (s *Svc) setState(st domain.State) {
	if prev := domain.State(s.state.Swap(int32(st))); prev != st {
		s.deps.Log.Debug().Str("from", prev.String()).Str("to", st.String()).Msg("stream state")
	}
}

// Status reports the supervisor state for the admin surfaces
func (s *Svc) Status() domain.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := domain.Status{
		State:        s.State().String(),
		ShortRetries: int(s.shorts.Load()),
		Decoded:      s.decoded.Load(),
		Dropped:      s.counters.RecordsDropped.Load(),
	}
	if s.State() == domain.Streaming {
		st.ConnID = s.connID
		st.ConnectedSince = s.since
	}
	return st
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
