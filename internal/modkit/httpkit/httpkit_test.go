package httpkit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "meitanbot/internal/platform/errors"
	phttp "meitanbot/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

type toggleIn struct {
	Command string `json:"command" validate:"required"`
}

func newRouter() Router { return phttp.AdaptChi(chi.NewRouter()) }

func decode(t *testing.T, rr *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, rr.Body.String())
	}
	return env
}

func TestMountAPIV1_RoutesAndMiddleware(t *testing.T) {
	r := newRouter()
	hit := false
	mw := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			hit = true
			next.ServeHTTP(w, req)
		})
	}
	MountAPIV1(r, []func(http.Handler) http.Handler{mw}, func(api Router) {
		GetJSON(api, "/status", func(*http.Request) (any, error) { return map[string]bool{"streaming": true}, nil })
	})

	rr := httptest.NewRecorder()
	r.Mux().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))
	if rr.Code != http.StatusOK || !hit {
		t.Fatalf("status=%d hit=%v", rr.Code, hit)
	}
	if env := decode(t, rr); env.Data == nil {
		t.Fatalf("missing data: %+v", env)
	}
}

func TestPostJSON_ValidatesAndPassesResponse(t *testing.T) {
	r := newRouter()
	PostJSON(r, "/commands", func(_ *http.Request, in toggleIn) (any, error) {
		if in.Command == "kill" {
			return nil, perr.Conflictf("shutdown already requested")
		}
		return Accepted(map[string]string{"command": in.Command}), nil
	})

	cases := []struct {
		name string
		body string
		want int
	}{
		{"accepted", `{"command":"ping"}`, http.StatusAccepted},
		{"missing field", `{}`, http.StatusBadRequest},
		{"unknown field", `{"command":"ping","x":1}`, http.StatusBadRequest},
		{"service error", `{"command":"kill"}`, http.StatusConflict},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/commands", strings.NewReader(c.body))
			r.Mux().ServeHTTP(rr, req)
			if rr.Code != c.want {
				t.Fatalf("status = %d, want %d (%s)", rr.Code, c.want, rr.Body.String())
			}
		})
	}
}

func TestAuth_RejectsWithoutToken(t *testing.T) {
	r := newRouter()
	r.Use(Auth(StackOptions{Token: "s3cret"}))
	Delete(r, "/ignored/1", func(*http.Request) (any, error) { return NoContent(), nil })

	rr := httptest.NewRecorder()
	r.Mux().ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/ignored/1", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}

	rr = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/ignored/1", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	r.Mux().ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rr.Code)
	}
}

func TestCommonStack_Heartbeat(t *testing.T) {
	r := newRouter()
	r.Use(CommonStack(StackOptions{CORSOrigins: []string{"http://localhost"}})...)
	r.Get("/x", Handle(func(*http.Request) Response { return OK("x") }))

	rr := httptest.NewRecorder()
	r.Mux().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("heartbeat status = %d", rr.Code)
	}
	if got := rr.Header().Get("Cache-Control"); got == "" {
		t.Fatalf("expected no-cache headers")
	}
	if len(CommonStack(StackOptions{})) >= len(CommonStack(StackOptions{CORSOrigins: []string{"*"}})) {
		t.Fatalf("CORS should only be added when origins are configured")
	}
}
