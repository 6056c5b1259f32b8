// Package service executes owner commands from direct messages, the console and the admin API
package service

import (
	"context"
	"os"
	"strings"
	"sync"
	"time"

	"meitanbot/internal/core/counters"
	"meitanbot/internal/core/event"
	"meitanbot/internal/core/phrases"
	"meitanbot/internal/core/queue"
	"meitanbot/internal/core/runtimecfg"
	"meitanbot/internal/modkit"
	"meitanbot/internal/services/command/domain"
	frienddomain "meitanbot/internal/services/friendship/domain"
	streamdomain "meitanbot/internal/services/stream/domain"
)

const dmTimeout = 15 * time.Second

// Messenger delivers a direct message
type Messenger interface {
	SendDirectMessage(ctx context.Context, text string, to event.UserID) error
}

// Resolver maps a handle to an id
type Resolver interface {
	LookupUserID(ctx context.Context, screenName string) (event.UserID, error)
}

// Collaborators are optional seams; a nil one makes its commands report unavailable
type Collaborators struct {
	Messenger Messenger
	Resolver  Resolver
	Friends   frienddomain.CounterPort
	Stream    streamdomain.StatusPort
	// Terminate stops the process; it runs after the confirmation is delivered
	Terminate func()
}

// Config holds paths the commands touch
type Config struct {
	IgnoreFile string
}

// Svc is the command dispatcher
type Svc struct {
	deps     modkit.Deps
	cfg      Config
	rt       *runtimecfg.Config
	book     *phrases.Book
	queues   *queue.Set
	counters *counters.Counters
	out      Collaborators

	// mu serializes commands so read-modify-write toggles never interleave
	mu       sync.Mutex
	hostname func() (string, error)
}

// New builds the dispatcher
func New(deps modkit.Deps, cfg Config, rt *runtimecfg.Config, book *phrases.Book, qs *queue.Set, c *counters.Counters, out Collaborators) *Svc {
	return &Svc{
		deps:     deps,
		cfg:      cfg,
		rt:       rt,
		book:     book,
		queues:   qs,
		counters: c,
		out:      out,
		hostname: os.Hostname,
	}
}

// Execute runs one command; unknown names and bad arguments come back as a failed Result
// the confirmation is always logged and, when replyToOwner is set, sent to the owner
func (s *Svc) Execute(ctx context.Context, name string, args []string, replyToOwner bool) domain.Result {
	s.counters.Commands.Add(1)
	name = strings.ToLower(strings.TrimSpace(name))

	s.mu.Lock()
	res := s.dispatch(ctx, name, args)
	s.mu.Unlock()
	res.Command = name

	ev := s.deps.Log.Info()
	if !res.OK {
		ev = s.deps.Log.Warn()
	}
	ev.Str("command", name).Strs("args", args).Bool("ok", res.OK).Str("message", res.Message).Msg("command executed")

	if replyToOwner {
		s.notifyOwner(ctx, res.Message)
	}
	if res.Terminate && s.out.Terminate != nil {
		s.out.Terminate()
	}
	return res
}

func (s *Svc) notifyOwner(ctx context.Context, text string) {
	if s.out.Messenger == nil || text == "" {
		return
	}
	owner := s.rt.Snapshot().OwnerID
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), dmTimeout)
	defer cancel()
	if err := s.out.Messenger.SendDirectMessage(dctx, text, owner); err != nil {
		s.deps.Log.Warn().Err(err).Str("to", owner.String()).Msg("command reply failed")
	}
}
