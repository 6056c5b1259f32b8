// Package api assembles the admin HTTP API
package api

import (
	"time"

	"meitanbot/internal/modkit"
	"meitanbot/internal/modkit/httpkit"
	"meitanbot/internal/modkit/module"
	"meitanbot/internal/modkit/swaggerkit"
	"meitanbot/internal/platform/config"
	phttp "meitanbot/internal/platform/net/http"

	adminhttp "meitanbot/internal/services/api/admin/http"
	adminmod "meitanbot/internal/services/api/admin/module"
	metamod "meitanbot/internal/services/api/meta/module"
)

// Options are the admin API options
type Options struct {
	Token          string
	Operator       string
	CORSOrigins    []string
	Timeout        time.Duration
	EnableSwagger  bool
	EnableProfiler bool
}

// FromConfig reads options using the ADMIN_ prefix; ADMIN_ADDR is read by the server itself
func FromConfig(cfg config.Conf) Options {
	a := cfg.Prefix("ADMIN_")
	return Options{
		Token:          a.MayString("TOKEN", ""),
		Operator:       a.MayString("OPERATOR", "owner"),
		CORSOrigins:    a.MayCSV("CORS_ORIGINS", nil),
		Timeout:        a.MayDuration("TIMEOUT", 30*time.Second),
		EnableSwagger:  a.MayBool("SWAGGER", true),
		EnableProfiler: a.MayBool("PROFILER", false),
	}
}

func (o Options) stack() httpkit.StackOptions {
	return httpkit.StackOptions{Token: o.Token, Operator: o.Operator, CORSOrigins: o.CORSOrigins, Timeout: o.Timeout}
}

// Mount mounts the admin API onto r; bots lists the running bot modules so their ports are registered
func Mount(r phttp.Router, deps modkit.Deps, admin adminhttp.Deps, opt Options, bots ...module.Module) {
	if opt.Token == "" {
		deps.Log.Warn().Msg("ADMIN_TOKEN is empty; command endpoint is unauthenticated")
	}

	r.Use(httpkit.CommonStack(opt.stack())...)
	swaggerkit.Mount(r, opt.EnableSwagger)
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

	mods := append([]module.Module{
		metamod.New(deps),
		adminmod.New(admin, opt.stack()),
	}, bots...)

	httpkit.MountAPIV1(r, nil, func(api httpkit.Router) {
		for _, m := range mods {
			// register each module's ports under its own name for cross-module lookups
			module.Register(m.Name(), m.Ports())
			m.MountRoutes(api)
		}
	})
}
