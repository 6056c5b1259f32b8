// Command meitanbot runs the bot: stream supervisor, reply workers, friendship, scheduler and commands
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"meitanbot/internal/adapters/corpus"
	"meitanbot/internal/adapters/twitter"
	"meitanbot/internal/adapters/weather"
	"meitanbot/internal/core/classify"
	"meitanbot/internal/core/counters"
	"meitanbot/internal/core/phrases"
	"meitanbot/internal/core/queue"
	"meitanbot/internal/core/rulepack"
	"meitanbot/internal/core/runtimecfg"
	"meitanbot/internal/core/version"
	"meitanbot/internal/modkit"
	"meitanbot/internal/modkit/module"
	"meitanbot/internal/platform/config"
	"meitanbot/internal/platform/logger"
	phttp "meitanbot/internal/platform/net/http"
	"meitanbot/internal/platform/store"

	"meitanbot/internal/services/api"
	adminhttp "meitanbot/internal/services/api/admin/http"
	cmdmod "meitanbot/internal/services/command/module"
	cmdsvc "meitanbot/internal/services/command/service"
	friendmod "meitanbot/internal/services/friendship/module"
	replymod "meitanbot/internal/services/reply/module"
	replysvc "meitanbot/internal/services/reply/service"
	schedmod "meitanbot/internal/services/scheduler/module"
	schedsvc "meitanbot/internal/services/scheduler/service"
	statsmod "meitanbot/internal/services/stats/module"
	streammod "meitanbot/internal/services/stream/module"
	streamsvc "meitanbot/internal/services/stream/service"

	"golang.org/x/sync/errgroup"
)

func main() {
	fl, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	logger.Init(logger.FromEnv())
	if err := run(fl); err != nil {
		logger.Get().Error().Err(err).Msg("meitanbot stopped with error")
		os.Exit(1)
	}
}

// run wires every module and blocks until a signal, a kill command or a fatal supervisor error
func run(fl flags) error {
	l := logger.Get()
	l.Info().Interface("build", version.Info()).Msg("meitanbot starting")

	root := config.New()
	bot := loadBotConfig(root)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// files first: a half configured bot must not start
	creds, err := twitter.LoadCredentials(bot.CredentialFile)
	if err != nil {
		l.Fatal().Err(err).Str("path", bot.CredentialFile).Msg("credentials")
	}
	slots := map[string]string{"SCREEN_NAME": bot.ScreenName}
	var pack *rulepack.Pack
	if bot.RulesFile != "" {
		pack, err = rulepack.LoadFile(bot.RulesFile, slots)
	} else {
		pack, err = rulepack.Load(slots)
	}
	if err != nil {
		l.Fatal().Err(err).Msg("rule pack")
	}
	book, err := phrases.Open(bot.PhraseDir, nil)
	if err != nil {
		l.Fatal().Err(err).Str("dir", bot.PhraseDir).Msg("phrases")
	}
	ignored, err := runtimecfg.LoadIgnoreFile(bot.IgnoreFile)
	if err != nil {
		l.Fatal().Err(err).Str("path", bot.IgnoreFile).Msg("ignore list")
	}

	signed := creds.HTTPClient(nil)
	tw := twitter.NewClient(signed, twitterOptions(root, bot.ScreenName))
	if bot.SelfID == 0 {
		id, err := tw.LookupUserID(ctx, bot.ScreenName)
		if err != nil {
			l.Fatal().Err(err).Str("screen_name", bot.ScreenName).Msg("resolve own id")
		}
		bot.SelfID = id
	}

	st, err := store.Open(ctx, store.ConfigFromEnv(root, "meitanbot", "bot"), store.WithLogger(*l))
	if err != nil {
		l.Fatal().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	deps := modkit.FromStore(*l, root, st)

	rt := runtimecfg.New(runtimecfg.Options{
		SelfID:         bot.SelfID,
		OwnerID:        bot.OwnerID,
		IgnoreOwner:    bot.IgnoreOwner,
		PostingEnabled: bot.PostingEnabled,
		Ignored:        ignored,
	})
	qs := queue.NewSet()
	c := counters.New()

	stats := statsmod.New(deps, c, statsmod.Options{})
	if err := stats.Init(ctx); err != nil {
		l.Warn().Err(err).Msg("stats schema setup failed; persistence may be degraded")
	}
	statsPorts := module.MustPortsOf[statsmod.Ports](stats)

	out := replysvc.Collaborators{
		Poster:   tw,
		Weather:  weather.New(nil, weatherOptions(root)),
		Recorder: statsPorts.Recorder,
	}
	if path := root.Prefix("CORPUS_").MayString("PATH", "data/corpus.db"); path != "" {
		cs, err := corpus.Open(path)
		if err != nil {
			return fmt.Errorf("corpus %s: %w", path, err)
		}
		defer func() { _ = cs.Close() }()
		out.Corpus = cs
	}
	reply := replymod.New(deps, replymod.Shared{
		Runtime:    rt,
		Classifier: classify.New(pack),
		Phrases:    book,
		Queues:     qs,
		Counters:   c,
	}, out, replymod.Options{})
	replyPorts := module.MustPortsOf[replymod.Ports](reply)

	friends := friendmod.New(deps, tw, rt, qs, c, friendmod.Options{})
	friendPorts := module.MustPortsOf[friendmod.Ports](friends)

	stream, err := streammod.New(deps, streamsvc.Shared{Runtime: rt, Pack: pack, Queues: qs, Counters: c},
		creds.HTTPClient, streammod.Collaborators{
			Announcer:  tw,
			Reconciler: friendPorts.Reconciler,
			IgnoreFile: bot.IgnoreFile,
			Announce:   bot.Announce,
		}, streammod.Options{})
	if err != nil {
		return fmt.Errorf("stream transport: %w", err)
	}
	streamPorts := module.MustPortsOf[streammod.Ports](stream)

	commands := cmdmod.New(deps, cmdmod.Shared{Runtime: rt, Phrases: book, Queues: qs, Counters: c},
		bot.IgnoreFile, cmdsvc.Collaborators{
			Messenger: tw,
			Resolver:  tw,
			Friends:   friendPorts.Counter,
			Stream:    streamPorts.Status,
			Terminate: stop,
		})
	cmdPorts := module.MustPortsOf[cmdmod.Ports](commands)

	sched := schedmod.New(deps, rt, pack, schedsvc.Jobs{
		Announcer:  tw,
		Flusher:    statsPorts.Flusher,
		Reconciler: friendPorts.Reconciler,
		Pruner:     replyPorts.Pruner,
	}, schedmod.Options{FlushEvery: stats.Options().FlushEvery})

	bots := []module.Module{stats, reply, friends, stream, commands, sched}
	for _, m := range bots {
		module.Register(m.Name(), m.Ports())
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return stream.Run(gctx) })
	g.Go(func() error { return reply.Run(gctx) })
	g.Go(func() error { return friends.Run(gctx) })
	g.Go(func() error { return commands.Run(gctx) })
	g.Go(func() error { return sched.Run(gctx) })

	adminCfg := root.Prefix("ADMIN_")
	if adminCfg.MayString("ADDR", "") != "" {
		srv := phttp.NewServer(adminCfg)
		api.Mount(srv.Router(), deps, adminhttp.Deps{
			Runtime:  rt,
			Queues:   qs,
			Stream:   streamPorts.Status,
			Stats:    statsPorts.Reader,
			Executor: cmdPorts.Executor,
		}, api.FromConfig(root), bots...)
		g.Go(func() error { return srv.Run(gctx) })
	}

	if fl.console {
		// the console ending on EOF leaves the bot running
		go func() {
			if err := commands.Console(gctx, os.Stdin, os.Stdout, fl.echoDM); err != nil {
				l.Warn().Err(err).Msg("console stopped")
			}
		}()
	}

	err = g.Wait()
	qs.Close()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	l.Info().Interface("stats", c.Snapshot()).Msg("meitanbot stopped")
	return nil
}
