// Package module wires the stats service and exposes its ports
package module

import (
	"context"

	"meitanbot/internal/core/counters"
	"meitanbot/internal/modkit"
	"meitanbot/internal/modkit/httpkit"
	"meitanbot/internal/services/stats/service"
)

// Module defines the stats module
type Module struct {
	deps  modkit.Deps
	opts  Options
	svc   *service.Svc
	ports Ports
}

// New constructs the stats module; zero override fields keep the env values
func New(deps modkit.Deps, c *counters.Counters, overrides Options) *Module {
	opts := FromConfig(deps.Cfg)
	if overrides.FlushEvery != 0 {
		opts.FlushEvery = overrides.FlushEvery
	}
	if overrides.EventBatch != 0 {
		opts.EventBatch = overrides.EventBatch
	}
	deps = deps.Named("stats")
	svc := service.New(deps, c, service.Config{EventBatch: opts.EventBatch})
	return &Module{
		deps:  deps,
		opts:  opts,
		svc:   svc,
		ports: Ports{Recorder: svc, Flusher: svc, Reader: svc},
	}
}

// Init creates the tables in the configured stores
func (m *Module) Init(ctx context.Context) error { return m.svc.EnsureSchema(ctx) }

// Options returns the resolved options
func (m *Module) Options() Options { return m.opts }

// Name returns the module name
func (m *Module) Name() string { return "stats" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// MountRoutes has nothing to mount; the admin module serves stats
func (m *Module) MountRoutes(_ httpkit.Router) {}
