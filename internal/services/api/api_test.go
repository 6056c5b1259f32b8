package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"meitanbot/internal/core/counters"
	"meitanbot/internal/core/event"
	"meitanbot/internal/core/queue"
	"meitanbot/internal/core/runtimecfg"
	"meitanbot/internal/modkit"
	"meitanbot/internal/modkit/module"
	"meitanbot/internal/platform/config"
	"meitanbot/internal/platform/logger"
	phttp "meitanbot/internal/platform/net/http"
	kit "meitanbot/internal/platform/testkit"
	adminhttp "meitanbot/internal/services/api/admin/http"
	cmddomain "meitanbot/internal/services/command/domain"
	statsdomain "meitanbot/internal/services/stats/domain"
	streamdomain "meitanbot/internal/services/stream/domain"

	"github.com/go-chi/chi/v5"
)

type fakeExecutor struct {
	calls []cmddomain.Command
	reply []bool
}

func (f *fakeExecutor) Execute(_ context.Context, name string, args []string, replyToOwner bool) cmddomain.Result {
	f.calls = append(f.calls, cmddomain.Command{Name: name, Args: args})
	f.reply = append(f.reply, replyToOwner)
	if name == "frobnicate" || (name == "unignore" && args[0] == "5") {
		return cmddomain.Result{Command: name, Message: "unknown command: \"frobnicate\""}
	}
	return cmddomain.Result{Command: name, OK: true, Message: "pong"}
}

type fakeReader struct{}

func (fakeReader) Current() counters.Snapshot { return counters.Snapshot{PostsReceived: 12} }

func (fakeReader) Latest(context.Context) (statsdomain.SnapshotRecord, error) {
	return statsdomain.SnapshotRecord{}, nil
}

type fakeStream struct{}

func (fakeStream) Status() streamdomain.Status { return streamdomain.Status{State: "streaming", ConnID: "c1"} }

func newAPI(t *testing.T, token string) (http.Handler, *fakeExecutor) {
	t.Helper()
	kit.Serial(t)
	module.Reset()
	exec := &fakeExecutor{}
	rt := runtimecfg.New(runtimecfg.Options{SelfID: 1, OwnerID: 2, PostingEnabled: true, Ignored: []event.UserID{9}})
	r := phttp.AdaptChi(chi.NewRouter())
	Mount(r, modkit.Deps{Log: *logger.Get(), Cfg: config.New()}, adminhttp.Deps{
		Runtime:  rt,
		Queues:   queue.NewSet(),
		Stream:   fakeStream{},
		Stats:    fakeReader{},
		Executor: exec,
	}, Options{Token: token, EnableSwagger: true})
	return r.Mux(), exec
}

func do(t *testing.T, h http.Handler, method, path, body, token string) (*httptest.ResponseRecorder, phttp.Envelope) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	var env phttp.Envelope
	if rr.Body.Len() > 0 && strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %s: %v (%s)", path, err, rr.Body.String())
		}
	}
	return rr, env
}

func TestStatusAndReads(t *testing.T) {
	h, _ := newAPI(t, "s3cret")

	rr, env := do(t, h, http.MethodGet, "/api/v1/status", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d (%s)", rr.Code, rr.Body.String())
	}
	raw, _ := json.Marshal(env.Data)
	kit.MustContain(t, string(raw), `"state":"streaming"`)
	kit.MustContain(t, string(raw), `"posting_enabled":true`)
	kit.MustContain(t, string(raw), `"reply.meitan":0`)

	rr, env = do(t, h, http.MethodGet, "/api/v1/stats", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("stats code = %d", rr.Code)
	}
	raw, _ = json.Marshal(env.Data)
	kit.MustContain(t, string(raw), `"posts_received":12`)

	rr, env = do(t, h, http.MethodGet, "/api/v1/ignored", "", "")
	raw, _ = json.Marshal(env.Data)
	if rr.Code != http.StatusOK || string(raw) != `{"ids":["1","9"]}` {
		t.Fatalf("ignored = %d %s", rr.Code, raw)
	}

	rr, env = do(t, h, http.MethodGet, "/api/v1/meta/ready", "", "")
	raw, _ = json.Marshal(env.Data)
	if rr.Code != http.StatusOK {
		t.Fatalf("ready code = %d", rr.Code)
	}
	kit.MustContain(t, string(raw), `"status":"ok"`)
	kit.MustContain(t, string(raw), `"skipped"`)

	if rr, _ = do(t, h, http.MethodGet, "/health", "", ""); rr.Code != http.StatusOK {
		t.Fatalf("heartbeat = %d", rr.Code)
	}
	if rr, _ = do(t, h, http.MethodGet, "/api/docs/doc.json", "", ""); rr.Code != http.StatusOK {
		t.Fatalf("docs = %d", rr.Code)
	}
}

func TestCommands(t *testing.T) {
	h, exec := newAPI(t, "s3cret")

	cases := []struct {
		name  string
		body  string
		token string
		want  int
	}{
		{"no token", `{"command":"ping"}`, "", http.StatusUnauthorized},
		{"wrong token", `{"command":"ping"}`, "nope", http.StatusUnauthorized},
		{"accepted", `{"command":"ping","reply_to_owner":true}`, "s3cret", http.StatusAccepted},
		{"with args", `{"command":"ignore","args":["@alice"]}`, "s3cret", http.StatusAccepted},
		{"upper case name", `{"command":"PING"}`, "s3cret", http.StatusBadRequest},
		{"too many args", `{"command":"ignore","args":["1","2","3","4","5"]}`, "s3cret", http.StatusBadRequest},
		{"unknown field", `{"command":"ping","x":1}`, "s3cret", http.StatusBadRequest},
		{"rejected by dispatcher", `{"command":"frobnicate"}`, "s3cret", http.StatusBadRequest},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rr, _ := do(t, h, http.MethodPost, "/api/v1/commands", c.body, c.token)
			if rr.Code != c.want {
				t.Fatalf("code = %d, want %d (%s)", rr.Code, c.want, rr.Body.String())
			}
		})
	}

	if len(exec.calls) != 3 {
		t.Fatalf("executor calls = %+v", exec.calls)
	}
	if !exec.reply[0] || exec.reply[1] {
		t.Fatalf("reply_to_owner not passed through: %v", exec.reply)
	}
	if exec.calls[1].Args[0] != "@alice" {
		t.Fatalf("args = %v", exec.calls[1].Args)
	}
}

func TestUnignoreRoute(t *testing.T) {
	h, exec := newAPI(t, "s3cret")

	rr, _ := do(t, h, http.MethodDelete, "/api/v1/ignored/9", "", "")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unguarded delete: %d", rr.Code)
	}
	rr, _ = do(t, h, http.MethodDelete, "/api/v1/ignored/9", "", "s3cret")
	if rr.Code != http.StatusOK {
		t.Fatalf("code = %d (%s)", rr.Code, rr.Body.String())
	}
	if len(exec.calls) != 1 || exec.calls[0].Name != "unignore" || exec.calls[0].Args[0] != "9" || exec.reply[0] {
		t.Fatalf("calls = %+v reply = %v", exec.calls, exec.reply)
	}
	rr, _ = do(t, h, http.MethodDelete, "/api/v1/ignored/5", "", "s3cret")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("not ignored: %d", rr.Code)
	}
}

func TestFromConfig(t *testing.T) {
	t.Setenv("ADMIN_TOKEN", "abc")
	t.Setenv("ADMIN_CORS_ORIGINS", "http://a, http://b")
	o := FromConfig(config.New())
	if o.Token != "abc" || len(o.CORSOrigins) != 2 || !o.EnableSwagger || o.EnableProfiler {
		t.Fatalf("options = %+v", o)
	}
}
