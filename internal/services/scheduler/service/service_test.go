package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"meitanbot/internal/adapters/twitter"
	"meitanbot/internal/core/counters"
	"meitanbot/internal/core/rulepack"
	"meitanbot/internal/core/runtimecfg"
	"meitanbot/internal/modkit"
	"meitanbot/internal/platform/logger"
	kit "meitanbot/internal/platform/testkit"
	"meitanbot/internal/services/scheduler/domain"
)

type fakeAnnouncer struct {
	mu    sync.Mutex
	posts []string
}

func (a *fakeAnnouncer) Post(_ context.Context, text string) (twitter.Status, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.posts = append(a.posts, text)
	return twitter.Status{ID: 1}, nil
}

type fakeFlusher struct{ n atomic.Int32 }

func (f *fakeFlusher) Flush(context.Context) (counters.Snapshot, error) {
	f.n.Add(1)
	return counters.Snapshot{}, nil
}

type fakeRecon struct{ n atomic.Int32 }

func (r *fakeRecon) Reconcile(context.Context) (int, int, error) {
	r.n.Add(1)
	return 0, 0, nil
}

type fakePruner struct{ n atomic.Int32 }

func (p *fakePruner) PruneRates() int {
	p.n.Add(1)
	return 0
}

type fixture struct {
	svc   *Svc
	ann   *fakeAnnouncer
	flush *fakeFlusher
	recon *fakeRecon
	prune *fakePruner
}

func newFixture(t *testing.T, posting bool, cfg Config) fixture {
	t.Helper()
	pack, err := rulepack.Load(map[string]string{"SCREEN_NAME": "meitanbot"})
	if err != nil {
		t.Fatalf("rulepack: %v", err)
	}
	f := fixture{ann: &fakeAnnouncer{}, flush: &fakeFlusher{}, recon: &fakeRecon{}, prune: &fakePruner{}}
	rt := runtimecfg.New(runtimecfg.Options{SelfID: 1, PostingEnabled: posting})
	f.svc = New(modkit.Deps{Log: *logger.Get()}, cfg,
		Jobs{Announcer: f.ann, Flusher: f.flush, Reconciler: f.recon, Pruner: f.prune}, rt, pack)
	return f
}

func TestTick_TimeSignalOncePerHour(t *testing.T) {
	f := newFixture(t, true, Config{TimeSignal: true, Signal: domain.DefaultSignal()})
	ctx := context.Background()
	base := time.Date(2012, 1, 2, 20, 0, 0, 0, time.UTC)

	for s := 0; s < 120; s++ {
		f.svc.tick(ctx, base.Add(time.Duration(s)*time.Second))
	}
	f.svc.tick(ctx, base.Add(time.Hour))

	want := []string{"3時(TST)をお知らせします。", "4時(TST)をお知らせします。"}
	if len(f.ann.posts) != len(want) {
		t.Fatalf("posts = %q", f.ann.posts)
	}
	for i := range want {
		if f.ann.posts[i] != want[i] {
			t.Fatalf("posts = %q, want %q", f.ann.posts, want)
		}
	}
}

func TestTick_TimeSignalPostingDisabled(t *testing.T) {
	f := newFixture(t, false, Config{TimeSignal: true, Signal: domain.DefaultSignal()})
	f.svc.tick(context.Background(), time.Date(2012, 1, 2, 20, 0, 0, 0, time.UTC))
	if len(f.ann.posts) != 0 {
		t.Fatalf("posted with posting disabled: %q", f.ann.posts)
	}
}

func TestTick_PeriodicJobs(t *testing.T) {
	f := newFixture(t, true, Config{FlushEvery: 5 * time.Minute, FriendshipEvery: time.Hour, PruneEvery: 10 * time.Minute})
	ctx := context.Background()
	start := time.Date(2012, 1, 2, 20, 30, 0, 0, time.UTC)
	for _, p := range f.svc.periodic {
		p.next = start.Add(p.every)
	}

	for m := 0; m <= 60; m++ {
		f.svc.tick(ctx, start.Add(time.Duration(m)*time.Minute))
	}

	if got := f.flush.n.Load(); got != 12 {
		t.Fatalf("flushes = %d, want 12", got)
	}
	if got := f.prune.n.Load(); got != 6 {
		t.Fatalf("prunes = %d, want 6", got)
	}
	kit.Eventually(t, time.Second, func() bool { return f.recon.n.Load() == 1 }, "one friendship check")
}

func TestNew_ZeroIntervalDisables(t *testing.T) {
	f := newFixture(t, true, Config{FlushEvery: time.Minute})
	if len(f.svc.periodic) != 1 || f.svc.periodic[0].name != "stats_flush" {
		t.Fatalf("periodic = %+v", f.svc.periodic)
	}
}

func TestRun_FlushesOnShutdown(t *testing.T) {
	f := newFixture(t, true, Config{Tick: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := f.svc.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if f.flush.n.Load() != 1 {
		t.Fatalf("flushes = %d, want final flush", f.flush.n.Load())
	}
}
