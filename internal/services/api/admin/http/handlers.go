// Package http provides the admin endpoints
package http

import (
	"net/http"
	"slices"
	"time"

	"meitanbot/internal/core/queue"
	"meitanbot/internal/core/runtimecfg"
	"meitanbot/internal/modkit/httpkit"
	"meitanbot/internal/modkit/module"
	perr "meitanbot/internal/platform/errors"
	"meitanbot/internal/services/api/admin/domain"
	cmddomain "meitanbot/internal/services/command/domain"
	statsdomain "meitanbot/internal/services/stats/domain"
	streamdomain "meitanbot/internal/services/stream/domain"

	"github.com/go-chi/chi/v5"
)

// Deps are the handler dependencies; Stream and Stats may be nil
type Deps struct {
	Runtime  *runtimecfg.Config
	Queues   *queue.Set
	Stream   streamdomain.StatusPort
	Stats    statsdomain.ReaderPort
	Executor cmddomain.ExecutorPort
}

type handlers struct {
	deps Deps
	now  func() time.Time
}

// Register mounts the read endpoints on r and the mutating ones on guarded
func Register(r, guarded httpkit.Router, d Deps) {
	h := &handlers{deps: d, now: time.Now}

	httpkit.GetJSON(r, "/status", h.status)
	httpkit.GetJSON(r, "/stats", h.stats)
	httpkit.GetJSON(r, "/stats/latest", h.latest)
	httpkit.GetJSON(r, "/ignored", h.ignored)
	httpkit.PostJSON(guarded, "/commands", h.command)
	httpkit.Delete(guarded, "/ignored/{id}", h.unignore)
}

func (h *handlers) status(_ *http.Request) (any, error) {
	snap := h.deps.Runtime.Snapshot()
	out := domain.StatusResponse{
		Runtime: domain.RuntimeView{
			PostingEnabled: snap.PostingEnabled,
			IgnoreOwner:    snap.IgnoreOwner,
			IgnoredCount:   len(snap.IgnoredIDs()),
			SelfID:         int64(snap.SelfID),
			OwnerID:        int64(snap.OwnerID),
		},
		Modules: module.Names(),
		Now:     h.now().UTC(),
	}
	slices.Sort(out.Modules)
	if h.deps.Queues != nil {
		out.Queues = h.deps.Queues.Depths()
	}
	if h.deps.Stream != nil {
		st := h.deps.Stream.Status()
		out.Stream = &st
	}
	return out, nil
}

func (h *handlers) stats(_ *http.Request) (any, error) {
	if h.deps.Stats == nil {
		return nil, perr.Unavailablef("stats: not wired")
	}
	return h.deps.Stats.Current(), nil
}

func (h *handlers) latest(r *http.Request) (any, error) {
	if h.deps.Stats == nil {
		return nil, perr.Unavailablef("stats: not wired")
	}
	return h.deps.Stats.Latest(r.Context())
}

func (h *handlers) ignored(_ *http.Request) (any, error) {
	ids := h.deps.Runtime.Snapshot().IgnoredIDs()
	out := domain.IgnoredResponse{IDs: make([]string, len(ids))}
	for i, id := range ids {
		out.IDs[i] = id.String()
	}
	return out, nil
}

// command runs through the same dispatcher as direct messages
// a rejected command is a 400 carrying the dispatcher's message
func (h *handlers) command(r *http.Request, in domain.CommandRequest) (any, error) {
	c := in.Parsed()
	res := h.deps.Executor.Execute(r.Context(), c.Name, c.Args, in.ReplyToOwner)
	if !res.OK {
		return nil, perr.Newf(perr.ErrorCodeValidation, "%s", res.Message)
	}
	return httpkit.Accepted(res), nil
}

// unignore is the REST spelling of the unignore command
func (h *handlers) unignore(r *http.Request) (any, error) {
	id := chi.URLParam(r, "id")
	res := h.deps.Executor.Execute(r.Context(), "unignore", []string{id}, false)
	if !res.OK {
		return nil, perr.NotFoundf("%s", res.Message)
	}
	return res, nil
}
