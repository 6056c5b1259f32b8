// Package module wires the friendship service
package module

import (
	"context"

	"meitanbot/internal/core/counters"
	"meitanbot/internal/core/event"
	"meitanbot/internal/core/queue"
	"meitanbot/internal/core/runtimecfg"
	"meitanbot/internal/modkit"
	"meitanbot/internal/modkit/httpkit"
	"meitanbot/internal/services/friendship/domain"
	"meitanbot/internal/services/friendship/service"
)

// Module defines the friendship module
type Module struct {
	svc    *service.Svc
	events *queue.Queue[event.Follow]
	ports  Ports
}

// New constructs the module; Remove only ever turns on through the env or an override
func New(deps modkit.Deps, g domain.Graph, rt *runtimecfg.Config, qs *queue.Set, c *counters.Counters, overrides Options) *Module {
	opts := FromConfig(deps.Cfg)
	if overrides.Remove {
		opts.Remove = true
	}
	if overrides.ForbiddenBackoff != 0 {
		opts.ForbiddenBackoff = overrides.ForbiddenBackoff
	}
	svc := service.New(deps.Named("friendship"), service.Config{
		Remove:           opts.Remove,
		FollowBack:       opts.FollowBack,
		ForbiddenBackoff: opts.ForbiddenBackoff,
	}, g, rt, c)
	return &Module{svc: svc, events: qs.Events, ports: Ports{Reconciler: svc, Counter: svc}}
}

// Run consumes follow events until ctx ends
func (m *Module) Run(ctx context.Context) error { return m.svc.Run(ctx, m.events) }

// Name returns the module name
func (m *Module) Name() string { return "friendship" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// MountRoutes returns no HTTP routes for friendship
func (m *Module) MountRoutes(_ httpkit.Router) {}
