// Package module wires the command dispatcher
package module

import (
	"context"
	"io"

	"meitanbot/internal/core/counters"
	"meitanbot/internal/core/phrases"
	"meitanbot/internal/core/queue"
	"meitanbot/internal/core/runtimecfg"
	"meitanbot/internal/modkit"
	"meitanbot/internal/modkit/httpkit"
	"meitanbot/internal/services/command/service"
)

// Shared is the process state commands mutate or report
type Shared struct {
	Runtime  *runtimecfg.Config
	Phrases  *phrases.Book
	Queues   *queue.Set
	Counters *counters.Counters
}

// Module defines the command module
type Module struct {
	svc   *service.Svc
	ports Ports
}

// New constructs the dispatcher
func New(deps modkit.Deps, sh Shared, ignoreFile string, out service.Collaborators) *Module {
	svc := service.New(deps.Named("command"), service.Config{IgnoreFile: ignoreFile},
		sh.Runtime, sh.Phrases, sh.Queues, sh.Counters, out)
	return &Module{svc: svc, ports: Ports{Executor: svc}}
}

// Run consumes owner direct messages until ctx ends
func (m *Module) Run(ctx context.Context) error { return m.svc.Run(ctx) }

// Console serves the line REPL on r and w
func (m *Module) Console(ctx context.Context, r io.Reader, w io.Writer, echoDM bool) error {
	return m.svc.Console(ctx, r, w, echoDM)
}

// Name returns the module name
func (m *Module) Name() string { return "command" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// MountRoutes returns no HTTP routes; the admin module exposes the executor
func (m *Module) MountRoutes(_ httpkit.Router) {}
