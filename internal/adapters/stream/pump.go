package stream

import (
	"context"
	"errors"
	"io"
	"time"

	"meitanbot/internal/core/event"
	perr "meitanbot/internal/platform/errors"
)

const readChunk = 32 * 1024

// DefaultIdleTimeout is how long a connection may stay silent; the server sends keep-alive newlines well within it
const DefaultIdleTimeout = 90 * time.Second

// ErrIdle marks a connection that went silent for longer than the idle timeout
var ErrIdle = errors.New("stream: idle timeout")

type chunk struct {
	b   []byte
	err error
}

// Pump reads r until it fails, feeding d and handing each record to emit in order
// it always returns a non-nil error; a clean EOF and an idle connection are both Unavailable
// reads run on their own goroutine so a Read that never returns cannot hold the caller;
// the caller closes r afterwards, which ends that goroutine
func Pump(ctx context.Context, r io.Reader, d *Decoder, idle time.Duration, emit func(event.Record)) error {
	done := make(chan struct{})
	defer close(done)
	chunks := make(chan chunk)
	go func() {
		for {
			buf := make([]byte, readChunk)
			n, err := r.Read(buf)
			select {
			case chunks <- chunk{b: buf[:n], err: err}:
			case <-done:
				return
			}
			if err != nil {
				return
			}
		}
	}()

	var expired <-chan time.Time
	var timer *time.Timer
	if idle > 0 {
		timer = time.NewTimer(idle)
		defer timer.Stop()
		expired = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-expired:
			return perr.Wrapf(ErrIdle, perr.ErrorCodeUnavailable, "stream: no data for %s", idle)
		case c := <-chunks:
			if len(c.b) > 0 {
				if timer != nil {
					timer.Reset(idle)
				}
				for _, rec := range d.Feed(c.b) {
					emit(rec)
				}
			}
			if c.err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				if errors.Is(c.err, io.EOF) {
					return perr.Unavailablef("stream: closed by server")
				}
				return perr.Wrap(c.err, perr.ErrorCodeUnavailable, "stream: read")
			}
		}
	}
}
