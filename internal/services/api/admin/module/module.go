// Package module wires the admin endpoints
package module

import (
	"meitanbot/internal/modkit/httpkit"
	adminhttp "meitanbot/internal/services/api/admin/http"
)

// Module mounts the admin endpoints at the API root
type Module struct {
	deps  adminhttp.Deps
	stack httpkit.StackOptions
}

// New constructs the admin module; stack.Token guards the command endpoint
func New(deps adminhttp.Deps, stack httpkit.StackOptions) *Module {
	if deps.Runtime == nil || deps.Executor == nil {
		panic("admin: runtime config and executor are required")
	}
	return &Module{deps: deps, stack: stack}
}

// MountRoutes mounts reads directly and commands behind the bearer guard
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Group(func(guarded httpkit.Router) {
		guarded.Use(httpkit.Auth(m.stack))
		adminhttp.Register(r, guarded, m.deps)
	})
}

// Name returns the module name
func (m *Module) Name() string { return "admin" }

// Ports has nothing to expose
func (m *Module) Ports() any { return nil }
