// Package module wires the reply pipeline and exposes its ports
package module

import (
	"context"

	"meitanbot/internal/core/classify"
	"meitanbot/internal/core/counters"
	"meitanbot/internal/core/phrases"
	"meitanbot/internal/core/queue"
	"meitanbot/internal/core/runtimecfg"
	"meitanbot/internal/modkit"
	"meitanbot/internal/modkit/httpkit"
	"meitanbot/internal/services/reply/service"
)

// Shared is the process state the pipeline reads and mutates
type Shared struct {
	Runtime    *runtimecfg.Config
	Classifier *classify.Classifier
	Phrases    *phrases.Book
	Queues     *queue.Set
	Counters   *counters.Counters
}

// Module defines the reply module
type Module struct {
	svc   *service.Svc
	ports Ports
}

// New constructs the reply module; zero override fields keep the env values
func New(deps modkit.Deps, sh Shared, out service.Collaborators, overrides Options) *Module {
	opts := FromConfig(deps.Cfg)
	if overrides.WorkersPerKind != 0 {
		opts.WorkersPerKind = overrides.WorkersPerKind
	}
	if overrides.ForbiddenBackoff != 0 {
		opts.ForbiddenBackoff = overrides.ForbiddenBackoff
	}
	if overrides.RateThreshold != 0 {
		opts.RateThreshold = overrides.RateThreshold
	}
	if overrides.RateWindow != 0 {
		opts.RateWindow = overrides.RateWindow
	}
	if overrides.MentionCorpusRatio != 0 {
		opts.MentionCorpusRatio = overrides.MentionCorpusRatio
	}

	svc := service.New(deps.Named("reply"), service.Config{
		WorkersPerKind:     opts.WorkersPerKind,
		ForbiddenBackoff:   opts.ForbiddenBackoff,
		RateThreshold:      opts.RateThreshold,
		RateWindow:         opts.RateWindow,
		MentionCorpusRatio: opts.MentionCorpusRatio,
	}, sh.Runtime, sh.Classifier, sh.Phrases, sh.Queues, sh.Counters, out)

	return &Module{svc: svc, ports: Ports{Router: svc, Pruner: svc}}
}

// Run starts the classification stage and the workers
func (m *Module) Run(ctx context.Context) error { return m.svc.Run(ctx) }

// Name returns the module name
func (m *Module) Name() string { return "reply" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// MountRoutes returns no HTTP routes for reply
func (m *Module) MountRoutes(_ httpkit.Router) {}
