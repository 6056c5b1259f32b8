package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"meitanbot/internal/platform/store/ch"
	"meitanbot/internal/platform/store/pg"
	"meitanbot/internal/platform/testkit"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

func TestOpen_NoBackends(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, err := Open(ctx, Config{}, WithLogger(zerolog.Nop()))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if s.PG != nil || s.CH != nil {
		t.Fatalf("expected no backends, got PG=%T CH=%T", s.PG, s.CH)
	}
	if err := s.Guard(ctx); err != nil {
		t.Fatalf("Guard on empty store: %v", err)
	}
	if err := s.Close(ctx); err != nil {
		t.Fatalf("Close on empty store: %v", err)
	}
}

func TestOpen_PGBadURL(t *testing.T) {
	t.Parallel()

	s, err := Open(context.Background(), Config{PG: PGConfig{Enabled: true, URL: "://bad"}})
	if err == nil || s != nil {
		t.Fatalf("expected error and nil store, got %v %#v", err, s)
	}
}

func TestOpen_PGPingExhaustsRetries(t *testing.T) {
	testkit.Serial(t)

	var sleeps int
	testkit.Swap(t, &sleep, func(time.Duration) { sleeps++ })
	testkit.Swap(t, &openPool, func(context.Context, pg.Config, pg.QueryTracer, func(*pgxpool.Config)) (*pg.PG, error) {
		return &pg.PG{}, nil // nil pool: every ping fails
	})

	_, err := Open(context.Background(), Config{PG: PGConfig{Enabled: true, URL: "postgres://x", ConnectRetries: 3}})
	if err == nil {
		t.Fatalf("expected ping failure")
	}
	if sleeps != 3 {
		t.Fatalf("expected 3 backoff sleeps, got %d", sleeps)
	}
}

func TestOpen_CHErrorBubbles(t *testing.T) {
	testkit.Serial(t)

	testkit.Swap(t, &openClick, func(context.Context, ch.Config) (*ch.CH, error) {
		return nil, errors.New("refused")
	})
	if _, err := Open(context.Background(), Config{CH: CHConfig{Enabled: true, URL: "clickhouse://x"}}); err == nil {
		t.Fatalf("expected clickhouse error")
	}
}

type fakePinger struct {
	TxRunner
	err    error
	closed bool
}

func (f *fakePinger) Ping(context.Context) error { return f.err }
func (f *fakePinger) Close() error               { f.closed = true; return nil }

type fakeCH struct {
	Clickhouse
	err    error
	closed bool
}

func (f *fakeCH) Ping(context.Context) error { return f.err }
func (f *fakeCH) Close() error               { f.closed = true; return nil }

func TestGuard_JoinsBackendErrors(t *testing.T) {
	t.Parallel()

	p := &fakePinger{err: errors.New("pg down")}
	c := &fakeCH{err: errors.New("ch down")}
	s := &Store{PG: p, CH: c}

	err := s.Guard(context.Background())
	if err == nil {
		t.Fatalf("expected joined error")
	}
	testkit.MustContain(t, err.Error(), "pg: pg down")
	testkit.MustContain(t, err.Error(), "ch: ch down")

	if err := s.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !p.closed || !c.closed {
		t.Fatalf("expected both backends closed")
	}

	var nilStore *Store
	if nilStore.Guard(context.Background()) == nil {
		t.Fatalf("Guard on nil store should fail")
	}
}
