package http

import (
	"context"
	"io"
	"net"
	stdhttp "net/http"
	"testing"
	"time"

	"meitanbot/internal/platform/config"

	"github.com/go-chi/chi/v5"
)

func TestNewServer_AddrFromConfig(t *testing.T) {
	t.Setenv("ADMIN_ADDR", "127.0.0.1:9999")
	s := NewServer(config.New().Prefix("ADMIN_"))
	if s.Addr() != "127.0.0.1:9999" {
		t.Fatalf("Addr = %q", s.Addr())
	}
	if d := NewServer(config.New().Prefix("NOPE_")); d.Addr() != "127.0.0.1:4300" {
		t.Fatalf("default Addr = %q", d.Addr())
	}
}

func TestServe_StopsOnContextCancel(t *testing.T) {
	s := NewServer(config.New().Prefix("NOPE_"), func(m *chi.Mux) {
		m.Get("/health", func(w stdhttp.ResponseWriter, _ *stdhttp.Request) { _, _ = io.WriteString(w, "ok") })
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := stdhttp.Get("http://" + ln.Addr().String() + "/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if string(body) != "ok" {
		t.Fatalf("body = %q", body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("server did not stop")
	}
}
