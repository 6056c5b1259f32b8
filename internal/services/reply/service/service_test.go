package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"meitanbot/internal/adapters/twitter"
	"meitanbot/internal/adapters/weather"
	"meitanbot/internal/core/classify"
	"meitanbot/internal/core/counters"
	"meitanbot/internal/core/event"
	"meitanbot/internal/core/intent"
	"meitanbot/internal/core/phrases"
	"meitanbot/internal/core/queue"
	"meitanbot/internal/core/rulepack"
	"meitanbot/internal/core/runtimecfg"
	"meitanbot/internal/modkit"
	perr "meitanbot/internal/platform/errors"
	"meitanbot/internal/platform/logger"
	kit "meitanbot/internal/platform/testkit"
	statsdomain "meitanbot/internal/services/stats/domain"
)

const (
	self  event.UserID = 323080975
	owner event.UserID = 246793872
	alice event.UserID = 42
)

type sent struct {
	text      string
	inReplyTo int64
	retweet   bool
}

type fakePoster struct {
	mu    sync.Mutex
	calls []sent
	err   error
}

func (f *fakePoster) Reply(_ context.Context, text string, inReplyTo int64) (twitter.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, sent{text: text, inReplyTo: inReplyTo})
	return twitter.Status{ID: 1}, f.err
}

func (f *fakePoster) Retweet(_ context.Context, id int64) (twitter.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, sent{inReplyTo: id, retweet: true})
	return twitter.Status{ID: 2}, f.err
}

func (f *fakePoster) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeWeather struct {
	f   weather.Forecast
	err error
}

func (w fakeWeather) Forecast(context.Context, int) (weather.Forecast, error) { return w.f, w.err }

type recorder struct {
	mu  sync.Mutex
	evs []statsdomain.ReplyEvent
}

func (r *recorder) RecordReply(_ context.Context, ev statsdomain.ReplyEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evs = append(r.evs, ev)
}

type fixture struct {
	svc    *Svc
	rt     *runtimecfg.Config
	qs     *queue.Set
	c      *counters.Counters
	poster *fakePoster
	rec    *recorder
}

func newFixture(t *testing.T, posting bool, out Collaborators) fixture {
	t.Helper()
	pack, err := rulepack.Load(map[string]string{"SCREEN_NAME": "meitanbot"})
	if err != nil {
		t.Fatalf("rulepack: %v", err)
	}
	book := phrases.FromLists(map[string][]string{
		"meitan":    {"めいたんじゃないです"},
		"mention":   {"なんですか"},
		"csharp":    {"C#かわいいよC#"},
		"morning":   {"おはようございます"},
		"sleeping":  {"おやすみなさい"},
		"departure": {"いってらっしゃい"},
		"returning": {"おかえりなさい"},
		"nullpo":    {"ｶﾞｯ"},
	})
	rt := runtimecfg.New(runtimecfg.Options{SelfID: self, OwnerID: owner, PostingEnabled: posting})
	qs := queue.NewSet()
	c := counters.New()
	p := &fakePoster{}
	rec := &recorder{}
	if out.Poster == nil {
		out.Poster = p
	}
	out.Recorder = rec
	svc := New(modkit.Deps{Log: *logger.Get()}, Config{RateThreshold: 3, RateWindow: time.Minute},
		rt, classify.New(pack), book, qs, c, out)
	svc.sleep = func(context.Context, time.Duration) error { return nil }
	return fixture{svc: svc, rt: rt, qs: qs, c: c, poster: p, rec: rec}
}

func post(id int64, author event.UserID, text string) event.Post {
	return event.Post{ID: id, Author: event.User{ID: author, ScreenName: "alice"}, Text: text}
}

func TestRoute_MentionPreemptsMorning(t *testing.T) {
	f := newFixture(t, true, Collaborators{})
	if n := f.svc.Route(context.Background(), post(100, alice, "@meitanbot おはよう")); n != 1 {
		t.Fatalf("queued = %d, want 1", n)
	}
	if f.qs.Reply(intent.ReplyMention).Len() != 1 || f.qs.Reply(intent.ReplyMorning).Len() != 0 {
		t.Fatalf("depths = %v", f.qs.Depths())
	}
}

func TestRoute_IgnoredQueuesNothing(t *testing.T) {
	f := newFixture(t, true, Collaborators{})
	if n := f.svc.Route(context.Background(), post(1, self, "めいたん")); n != 0 {
		t.Fatalf("self post queued %d", n)
	}
	if f.c.Snapshot().Intents["ignore"] != 1 {
		t.Fatalf("ignore not counted")
	}
}

func TestHandle_CannedReply(t *testing.T) {
	f := newFixture(t, true, Collaborators{})
	in := intent.New(post(101, alice, "めーいたん"), intent.ReplyMeitan)
	if got := f.svc.Handle(context.Background(), in); got != statsdomain.OutcomeSent {
		t.Fatalf("outcome = %s", got)
	}
	if len(f.poster.calls) != 1 {
		t.Fatalf("calls = %d", len(f.poster.calls))
	}
	c := f.poster.calls[0]
	if c.text != "@alice めいたんじゃないです" || c.inReplyTo != 101 {
		t.Fatalf("call = %+v", c)
	}
	if f.c.RepliesSent.Load() != 1 || len(f.rec.evs) != 1 || f.rec.evs[0].Kind != "meitan" {
		t.Fatalf("stats not recorded")
	}
}

func TestHandle_PostingDisabledSkips(t *testing.T) {
	f := newFixture(t, false, Collaborators{})
	in := intent.New(post(5, alice, "C#"), intent.ReplyCSharp)
	if got := f.svc.Handle(context.Background(), in); got != statsdomain.OutcomeSkipped {
		t.Fatalf("outcome = %s", got)
	}
	if f.poster.count() != 0 || f.c.RepliesSent.Load() != 0 || f.c.RepliesSkipped.Load() != 1 {
		t.Fatalf("skipped reply reached the poster or counted as sent")
	}
}

func TestHandle_RateLimitSuspendsAfterThreshold(t *testing.T) {
	f := newFixture(t, true, Collaborators{})
	ctx := context.Background()
	for i := range 4 {
		in := intent.New(post(int64(200+i), alice, "C#"), intent.ReplyCSharp)
		if got := f.svc.Handle(ctx, in); got != statsdomain.OutcomeSent {
			t.Fatalf("reply %d outcome = %s", i+1, got)
		}
	}
	// the fourth reply is still sent; the author is ignored from now on
	if f.poster.count() != 4 {
		t.Fatalf("calls = %d, want 4", f.poster.count())
	}
	if !f.rt.Snapshot().Ignored(alice) || f.c.Suspended.Load() != 1 {
		t.Fatalf("author not suspended")
	}
	if n := f.svc.Route(ctx, post(205, alice, "C#")); n != 0 {
		t.Fatalf("fifth post queued %d intents", n)
	}
}

func TestHandle_UnresolvableRepliesStillCountTowardRate(t *testing.T) {
	f := newFixture(t, true, Collaborators{})
	f.svc.book = phrases.FromLists(map[string][]string{})
	ctx := context.Background()
	for i := range 4 {
		in := intent.New(post(int64(300+i), alice, "C#"), intent.ReplyCSharp)
		if got := f.svc.Handle(ctx, in); got != statsdomain.OutcomeFailed {
			t.Fatalf("reply %d outcome = %s", i+1, got)
		}
	}
	if f.poster.count() != 0 || f.c.RepliesFailed.Load() != 4 {
		t.Fatalf("calls = %d, failed = %d", f.poster.count(), f.c.RepliesFailed.Load())
	}
	if !f.rt.Snapshot().Ignored(alice) || f.c.Suspended.Load() != 1 {
		t.Fatalf("author not suspended after failed replies")
	}
}

func TestHandle_Forbidden(t *testing.T) {
	p := &fakePoster{err: &twitter.StatusError{Status: 403, Err: perr.Forbiddenf("dup")}}
	f := newFixture(t, true, Collaborators{Poster: p})
	in := intent.New(post(7, alice, "ぬるぽ"), intent.ReplyNullpo)
	if got := f.svc.Handle(context.Background(), in); got != statsdomain.OutcomeForbidden {
		t.Fatalf("outcome = %s", got)
	}
	if f.c.Forbidden.Load() != 1 || f.c.RepliesSent.Load() != 0 {
		t.Fatalf("forbidden not counted")
	}
}

func TestHandle_OtherFailure(t *testing.T) {
	p := &fakePoster{err: errors.New("boom")}
	f := newFixture(t, true, Collaborators{Poster: p})
	in := intent.New(post(8, alice, "ただいま"), intent.ReplyReturning)
	if got := f.svc.Handle(context.Background(), in); got != statsdomain.OutcomeFailed {
		t.Fatalf("outcome = %s", got)
	}
}

func TestResolve_Payloads(t *testing.T) {
	fc := weather.Forecast{Place: "東京", Summary: "晴れ", MaxC: 21, MinC: 12, PoP: 10}
	f := newFixture(t, true, Collaborators{Weather: fakeWeather{f: fc}})
	ctx := context.Background()

	w, _ := intent.Weather(post(1, alice, ""), 1)
	got, err := f.svc.resolve(ctx, w)
	if err != nil || got != "明日の東京の天気は晴れ、最高21℃/最低12℃、降水確率10%です。" {
		t.Fatalf("weather = %q, %v", got, err)
	}

	tt, _ := intent.Timetable(post(1, alice, ""), 3)
	if got, _ := f.svc.resolve(ctx, tt); got != "3限は13:00-14:30です。" {
		t.Fatalf("timetable = %q", got)
	}

	m := intent.Metaphor(post(1, alice, ""), "猫")
	if got, _ := f.svc.resolve(ctx, m); got != "猫というのは比喩ですよね?" {
		t.Fatalf("metaphor = %q", got)
	}
}

func TestResolve_WeatherUnavailable(t *testing.T) {
	f := newFixture(t, true, Collaborators{Weather: fakeWeather{err: perr.Unavailablef("down")}})
	w, _ := intent.Weather(post(1, alice, ""), 0)
	got, err := f.svc.resolve(context.Background(), w)
	if err != nil || got != "今日の天気はわかりませんでした。" {
		t.Fatalf("unavailable = %q, %v", got, err)
	}
}

type fakeCorpus struct{ learned []int64 }

func (c *fakeCorpus) Learn(_ context.Context, p event.Post) error {
	c.learned = append(c.learned, p.ID)
	return nil
}

func (c *fakeCorpus) SampleTemplateText(context.Context, event.UserID) (string, error) {
	return "今日はラーメン", nil
}

func TestCorpus_LearnAndMention(t *testing.T) {
	corp := &fakeCorpus{}
	f := newFixture(t, true, Collaborators{Corpus: corp})
	f.svc.cfg.MentionCorpusRatio = 0.5
	f.svc.coin = func() float64 { return 0.1 }
	ctx := context.Background()

	f.svc.Route(ctx, post(11, alice, "@meitanbot やあ"))
	f.svc.Route(ctx, post(12, self, "@meitanbot やあ"))
	if len(corp.learned) != 1 || corp.learned[0] != 11 {
		t.Fatalf("learned = %v", corp.learned)
	}

	got, err := f.svc.resolve(ctx, intent.New(post(11, alice, ""), intent.ReplyMention))
	if err != nil || got != "今日はラーメン" {
		t.Fatalf("mention = %q, %v", got, err)
	}
}

func TestRetweet_OwnerHashtag(t *testing.T) {
	f := newFixture(t, true, Collaborators{})
	ctx := context.Background()
	f.svc.Route(ctx, post(300, owner, "新しい記事 #meitanbot"))
	in, ok := f.qs.Reply(intent.Retweet).TryPop()
	if !ok {
		t.Fatalf("no retweet queued: %v", f.qs.Depths())
	}
	if got := f.svc.Handle(ctx, in); got != statsdomain.OutcomeSent {
		t.Fatalf("outcome = %s", got)
	}
	if c := f.poster.calls[0]; !c.retweet || c.inReplyTo != 300 || f.c.Retweets.Load() != 1 {
		t.Fatalf("retweet call = %+v", c)
	}
}

func TestRun_EndToEndAndForbiddenBackoff(t *testing.T) {
	p := &fakePoster{err: &twitter.StatusError{Status: 403, Err: perr.Forbiddenf("dup")}}
	f := newFixture(t, true, Collaborators{Poster: p})
	var mu sync.Mutex
	var slept []time.Duration
	f.svc.sleep = func(_ context.Context, d time.Duration) error {
		mu.Lock()
		defer mu.Unlock()
		slept = append(slept, d)
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.svc.Run(ctx) }()

	if err := f.qs.Posts.Push(post(400, alice, "C#")); err != nil {
		t.Fatal(err)
	}
	kit.Eventually(t, 2*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(slept) == 1
	}, "forbidden backoff")
	if slept[0] != 5*time.Minute {
		t.Fatalf("backoff = %v", slept[0])
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not stop")
	}
}
