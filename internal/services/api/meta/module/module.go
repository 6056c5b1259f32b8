// Package module wires meta endpoints into the admin API
package module

import (
	"time"

	"meitanbot/internal/modkit"
	"meitanbot/internal/modkit/httpkit"
	metahttp "meitanbot/internal/services/api/meta/http"
)

// Module mounts /meta
type Module struct {
	deps      modkit.Deps
	startedAt time.Time
}

// New constructs a meta module
func New(deps modkit.Deps) *Module {
	return &Module{deps: deps, startedAt: time.Now()}
}

// MountRoutes mounts the meta routes under /meta
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route("/meta", func(rr httpkit.Router) {
		d := metahttp.Deps{ServiceName: "meitanbot", StartedAt: m.startedAt}
		// typed nil interfaces would defeat the skipped check
		if m.deps.PG != nil {
			d.PG = m.deps.PG
		}
		if m.deps.CH != nil {
			d.CH = m.deps.CH
		}
		metahttp.Register(rr, d)
	})
}

// Name returns the module name
func (m *Module) Name() string { return "meta" }

// Ports has nothing to expose
func (m *Module) Ports() any { return nil }
