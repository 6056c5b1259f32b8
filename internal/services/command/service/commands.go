package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"meitanbot/internal/core/event"
	"meitanbot/internal/services/command/domain"
)

func ok(format string, a ...any) domain.Result {
	return domain.Result{OK: true, Message: fmt.Sprintf(format, a...)}
}

func fail(format string, a ...any) domain.Result {
	return domain.Result{Message: fmt.Sprintf(format, a...)}
}

func (s *Svc) dispatch(ctx context.Context, name string, args []string) domain.Result {
	switch name {
	case domain.IsIgnoreOwner:
		v, err := boolArg(args, s.rt.Snapshot().IgnoreOwner)
		if err != nil {
			return fail("%s: %v", name, err)
		}
		return ok("ignore owner: %t", s.rt.SetIgnoreOwner(v))
	case domain.IsEnablePost:
		v, err := boolArg(args, s.rt.Snapshot().PostingEnabled)
		if err != nil {
			return fail("%s: %v", name, err)
		}
		return ok("posting enabled: %t", s.rt.SetPostingEnabled(v))
	case domain.Reload:
		return s.reload()
	case domain.Ignore, domain.Unignore:
		return s.ignore(ctx, name, args)
	case domain.Ignored:
		ids := s.rt.Snapshot().IgnoredIDs()
		parts := make([]string, len(ids))
		for i, id := range ids {
			parts[i] = id.String()
		}
		return ok("ignored (%d): %s", len(ids), strings.Join(parts, ", "))
	case domain.Save:
		if s.cfg.IgnoreFile == "" {
			return fail("save: no ignore file configured")
		}
		if err := s.rt.Save(s.cfg.IgnoreFile); err != nil {
			return fail("save: %v", err)
		}
		return ok("saved ignore list to %s", s.cfg.IgnoreFile)
	case domain.Friends:
		if s.out.Friends == nil {
			return fail("friends: unavailable")
		}
		fs, gs, err := s.out.Friends.Counts(ctx)
		if err != nil {
			return fail("friends: %v", err)
		}
		return ok("followers: %d, following: %d", fs, gs)
	case domain.Ping:
		return ok("pong")
	case domain.Alive:
		return ok("alive, up %s", s.counters.Snapshot().Uptime.Round(time.Second))
	case domain.Host:
		h, err := s.hostname()
		if err != nil {
			return fail("host: %v", err)
		}
		return ok("host: %s", h)
	case domain.Status:
		return ok("%s", s.status())
	case domain.Kill, domain.Terminate:
		r := ok("terminating")
		r.Terminate = true
		return r
	}
	return fail("unknown command: %q (known: %s)", name, strings.Join(domain.Names, ", "))
}

// boolArg reads true or false; no argument toggles cur
func boolArg(args []string, cur bool) (bool, error) {
	if len(args) == 0 {
		return !cur, nil
	}
	switch strings.ToLower(args[0]) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return cur, fmt.Errorf("want true or false, got %q", args[0])
}

func (s *Svc) reload() domain.Result {
	if s.book == nil {
		return fail("reload: no phrase book")
	}
	if err := s.book.Reload(); err != nil {
		return fail("reload: %v", err)
	}
	counts := s.book.Counts()
	parts := make([]string, 0, len(counts))
	for _, cat := range s.book.Categories() {
		parts = append(parts, fmt.Sprintf("%s=%d", cat, counts[cat]))
	}
	return ok("reloaded phrases: %s", strings.Join(parts, " "))
}

func (s *Svc) ignore(ctx context.Context, name string, args []string) domain.Result {
	if len(args) != 1 {
		return fail("%s: want one id or @handle", name)
	}
	id, err := s.resolve(ctx, args[0])
	if err != nil {
		return fail("%s: %v", name, err)
	}
	if name == domain.Ignore {
		if s.rt.Ignore(id) {
			return ok("ignored %s", id)
		}
		return fail("ignore: %s is the owner or already ignored", id)
	}
	if s.rt.Unignore(id) {
		return ok("unignored %s", id)
	}
	return fail("unignore: %s is self or not ignored", id)
}

// resolve accepts a numeric id or a handle with or without @
func (s *Svc) resolve(ctx context.Context, arg string) (event.UserID, error) {
	if id, err := event.ParseUserID(arg); err == nil {
		return id, nil
	}
	if s.out.Resolver == nil {
		return 0, fmt.Errorf("cannot resolve %q without a platform client", arg)
	}
	return s.out.Resolver.LookupUserID(ctx, arg)
}

func (s *Svc) status() string {
	snap := s.rt.Snapshot()
	c := s.counters.Snapshot()
	var b strings.Builder
	if s.out.Stream != nil {
		st := s.out.Stream.Status()
		fmt.Fprintf(&b, "stream: %s, ", st.State)
	}
	fmt.Fprintf(&b, "posting: %t, ignore owner: %t, ignored: %d, ",
		snap.PostingEnabled, snap.IgnoreOwner, len(snap.IgnoredIDs()))
	fmt.Fprintf(&b, "posts: %d, replies: %d sent/%d failed, reconnects: %d",
		c.PostsReceived, c.RepliesSent, c.RepliesFailed, c.Reconnects)
	if s.queues != nil {
		waiting := 0
		for _, n := range s.queues.Depths() {
			waiting += n
		}
		fmt.Fprintf(&b, ", queued: %d", waiting)
	}
	return b.String()
}
