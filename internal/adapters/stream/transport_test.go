package stream

import (
	"context"
	"crypto/x509"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"meitanbot/internal/core/event"
	perr "meitanbot/internal/platform/errors"
	kit "meitanbot/internal/platform/testkit"
)

func TestTransportOpen_StreamsBody(t *testing.T) {
	var query, ua string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		ua = r.Header.Get("User-Agent")
		_, _ = io.WriteString(w, "{\"event\":\"follow\",\"source\":{\"id\":5}}\r\n")
	}))
	defer srv.Close()

	tr := Transport{Client: srv.Client(), URL: srv.URL, Track: "meitanbot"}
	body, err := tr.Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer body.Close()

	kit.MustContain(t, query, "track=meitanbot")
	kit.MustContain(t, ua, "Meitan bot")

	var got []event.Record
	err = Pump(context.Background(), body, NewDecoder(0), time.Minute, func(r event.Record) { got = append(got, r) })
	if !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("Pump end = %v, want unavailable", err)
	}
	if len(got) != 1 || got[0].Route().Follow.Source.ID != 5 {
		t.Fatalf("records = %+v", got)
	}
}

func TestTransportOpen_Status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := Transport{Client: srv.Client(), URL: srv.URL}.Open(context.Background())
	if !perr.IsCode(err, perr.ErrorCodeUnauthorized) {
		t.Fatalf("want unauthorized, got %v", err)
	}
}

type slowReader struct{ ctx context.Context }

func (s slowReader) Read([]byte) (int, error) {
	<-s.ctx.Done()
	return 0, errors.New("conn closed")
}

func TestPump_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Pump(ctx, slowReader{ctx}, NewDecoder(0), 0, func(event.Record) {}) }()
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("pump did not stop")
	}
}

// silentReader delivers its frames once and then blocks without ever returning
type silentReader struct {
	frames string
	sent   bool
	block  chan struct{}
}

func (s *silentReader) Read(p []byte) (int, error) {
	if !s.sent {
		s.sent = true
		return copy(p, s.frames), nil
	}
	<-s.block
	return 0, io.EOF
}

func TestPump_IdleTimeout(t *testing.T) {
	r := &silentReader{frames: "{\"event\":\"follow\",\"source\":{\"id\":5}}\r\n", block: make(chan struct{})}
	defer close(r.block)

	var got int
	start := time.Now()
	err := Pump(context.Background(), r, NewDecoder(0), 50*time.Millisecond, func(event.Record) { got++ })
	if !errors.Is(err, ErrIdle) || !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("err = %v, want idle unavailable", err)
	}
	if got != 1 {
		t.Fatalf("records = %d", got)
	}
	if el := time.Since(start); el > 2*time.Second {
		t.Fatalf("idle detection took %s", el)
	}
}

func TestPump_DataResetsIdleTimer(t *testing.T) {
	pr, pw := io.Pipe()
	go func() {
		for i := 0; i < 5; i++ {
			time.Sleep(30 * time.Millisecond)
			_, _ = io.WriteString(pw, "\r\n")
		}
		_ = pw.Close()
	}()
	err := Pump(context.Background(), pr, NewDecoder(0), 80*time.Millisecond, func(event.Record) {})
	if errors.Is(err, ErrIdle) {
		t.Fatalf("keep-alives should keep the connection open: %v", err)
	}
	kit.MustContain(t, err.Error(), "closed by server")
}

func TestCheckDepth(t *testing.T) {
	chain := func(n int) []*x509.Certificate { return make([]*x509.Certificate, n) }
	if err := checkDepth([][]*x509.Certificate{chain(3)}, 2); err != nil {
		t.Fatalf("3 certs at depth 2: %v", err)
	}
	if err := checkDepth([][]*x509.Certificate{chain(4)}, 2); err == nil {
		t.Fatalf("4 certs at depth 2 should fail")
	}
	if err := checkDepth([][]*x509.Certificate{chain(7), chain(2)}, 2); err != nil {
		t.Fatalf("one short chain should pass: %v", err)
	}
}

func TestTLSConfig(t *testing.T) {
	cfg, err := TLSConfig("", 0)
	if err != nil || cfg.RootCAs != nil || cfg.VerifyConnection == nil {
		t.Fatalf("system roots config = %+v, %v", cfg, err)
	}
	dir := t.TempDir()
	bad := kit.WriteFile(t, dir, "ca.pem", "not a certificate")
	if _, err := TLSConfig(bad, 5); err == nil || !strings.Contains(err.Error(), "no certificates") {
		t.Fatalf("want no certificates error, got %v", err)
	}
	if _, err := TLSConfig(dir+"/missing.pem", 5); err == nil {
		t.Fatalf("want read error")
	}
}
