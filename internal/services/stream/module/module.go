// Package module wires the stream supervisor over a signed HTTP client
package module

import (
	"context"
	"net/http"

	"meitanbot/internal/adapters/stream"
	"meitanbot/internal/modkit"
	"meitanbot/internal/modkit/httpkit"
	"meitanbot/internal/services/stream/domain"
	"meitanbot/internal/services/stream/service"
)

// Module defines the stream module
type Module struct {
	svc   *service.Svc
	opts  Options
	ports Ports
}

// Collaborators are the outbound seams; Reconciler may be nil
type Collaborators struct {
	Announcer  service.Announcer
	Reconciler service.Reconciler
	IgnoreFile string
	Announce   bool
}

// New builds the module; signer wraps the TLS transport with request signing
func New(deps modkit.Deps, sh service.Shared, signer func(*http.Client) *http.Client, out Collaborators, overrides Options) (*Module, error) {
	opts := merge(FromConfig(deps.Cfg), overrides)

	tlsCfg, err := stream.TLSConfig(opts.CAFile, opts.VerifyDepth)
	if err != nil {
		return nil, err
	}
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.TLSClientConfig = tlsCfg
	hc := &http.Client{Transport: tr}
	if signer != nil {
		hc = signer(hc)
	}

	deps = deps.Named("stream")
	svc := service.New(deps, service.Config{
		Policy: domain.Policy{
			Short:           opts.RetryShort,
			Long:            opts.RetryLong,
			MaxContinuative: opts.MaxContinuative,
			HardCeiling:     opts.HardCeiling,
		},
		IgnoreFile:  out.IgnoreFile,
		MaxFrame:    opts.MaxFrame,
		IdleTimeout: opts.IdleTimeout,
		Announce:    out.Announce,
	}, stream.Transport{Client: hc, URL: opts.URL, Track: opts.Track}, out.Announcer, out.Reconciler, sh)

	return &Module{svc: svc, opts: opts, ports: Ports{Status: svc}}, nil
}

func merge(o, ov Options) Options {
	if ov.URL != "" {
		o.URL = ov.URL
	}
	if ov.Track != "" {
		o.Track = ov.Track
	}
	if ov.CAFile != "" {
		o.CAFile = ov.CAFile
	}
	if ov.VerifyDepth != 0 {
		o.VerifyDepth = ov.VerifyDepth
	}
	if ov.MaxFrame != 0 {
		o.MaxFrame = ov.MaxFrame
	}
	if ov.IdleTimeout != 0 {
		o.IdleTimeout = ov.IdleTimeout
	}
	if ov.RetryShort != 0 {
		o.RetryShort = ov.RetryShort
	}
	if ov.RetryLong != 0 {
		o.RetryLong = ov.RetryLong
	}
	if ov.MaxContinuative != 0 {
		o.MaxContinuative = ov.MaxContinuative
	}
	if ov.HardCeiling != 0 {
		o.HardCeiling = ov.HardCeiling
	}
	return o
}

// Run supervises the connection until ctx ends
func (m *Module) Run(ctx context.Context) error { return m.svc.Run(ctx) }

// Options returns the resolved options
func (m *Module) Options() Options { return m.opts }

// Name returns the module name
func (m *Module) Name() string { return "stream" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// MountRoutes returns no HTTP routes for stream
func (m *Module) MountRoutes(_ httpkit.Router) {}
