// Package module wires the scheduler
package module

import (
	"context"

	"meitanbot/internal/core/rulepack"
	"meitanbot/internal/core/runtimecfg"
	"meitanbot/internal/modkit"
	"meitanbot/internal/modkit/httpkit"
	"meitanbot/internal/services/scheduler/domain"
	"meitanbot/internal/services/scheduler/service"
)

// Module defines the scheduler module
type Module struct {
	svc  *service.Svc
	opts Options
}

// New constructs the scheduler; zero override fields keep the env values
func New(deps modkit.Deps, rt *runtimecfg.Config, pack *rulepack.Pack, jobs service.Jobs, overrides Options) *Module {
	opts := FromConfig(deps.Cfg)
	if overrides.Tick != 0 {
		opts.Tick = overrides.Tick
	}
	if overrides.FlushEvery != 0 {
		opts.FlushEvery = overrides.FlushEvery
	}
	if overrides.FriendshipEvery != 0 {
		opts.FriendshipEvery = overrides.FriendshipEvery
	}
	if overrides.PruneEvery != 0 {
		opts.PruneEvery = overrides.PruneEvery
	}
	svc := service.New(deps.Named("scheduler"), service.Config{
		Tick:            opts.Tick,
		TimeSignal:      opts.TimeSignal,
		Signal:          domain.Signal{Offset: opts.SignalOffset, Label: opts.SignalLabel},
		FlushEvery:      opts.FlushEvery,
		FriendshipEvery: opts.FriendshipEvery,
		PruneEvery:      opts.PruneEvery,
	}, jobs, rt, pack)
	return &Module{svc: svc, opts: opts}
}

// Run polls until ctx ends
func (m *Module) Run(ctx context.Context) error { return m.svc.Run(ctx) }

// Options returns the resolved options
func (m *Module) Options() Options { return m.opts }

// Name returns the module name
func (m *Module) Name() string { return "scheduler" }

// Ports has nothing to expose
func (m *Module) Ports() any { return nil }

// MountRoutes returns no HTTP routes for the scheduler
func (m *Module) MountRoutes(_ httpkit.Router) {}
